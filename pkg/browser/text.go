package browser

import "strings"

// NormalizeText collapses every whitespace run to a single space and trims
// the ends.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// detectChallengePage reports the kind of bot challenge a captured page
// looks like, or "" for a normal page.
func detectChallengePage(title, text string) string {
	titleLower := strings.ToLower(title)
	textLower := strings.ToLower(text)

	if strings.Contains(titleLower, "just a moment") ||
		strings.Contains(titleLower, "attention required") ||
		strings.Contains(textLower, "checking your browser") ||
		strings.Contains(textLower, "verify you are human") {
		return "cloudflare"
	}

	if strings.Contains(textLower, "captcha") {
		return "captcha"
	}

	if strings.Contains(titleLower, "access denied") ||
		strings.Contains(titleLower, "blocked") ||
		strings.Contains(titleLower, "bot detection") ||
		strings.Contains(textLower, "robot or human") {
		return "anti-bot"
	}

	return ""
}
