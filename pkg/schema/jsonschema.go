package schema

import "strings"

// ToJSONSchema renders the schema as a JSON Schema object suitable for a
// model's structured response format. Properties are closed and every
// non-omitempty field is required.
func (s *Schema[T]) ToJSONSchema() map[string]any {
	out := objectSchema(s.Fields)
	if s.Description != "" {
		out["description"] = s.Description
	}
	return out
}

func objectSchema(fields []Field) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))

	for _, f := range fields {
		properties[f.Name] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}

	out := map[string]any{
		"type":                 string(TypeObject),
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func fieldSchema(f Field) map[string]any {
	var out map[string]any
	switch {
	case f.Type == TypeObject:
		out = objectSchema(f.Properties)
	case f.Type == TypeArray && f.Items != nil:
		out = map[string]any{
			"type":  string(TypeArray),
			"items": fieldSchema(*f.Items),
		}
	default:
		out = map[string]any{"type": string(f.Type)}
	}

	if f.Description != "" {
		out["description"] = f.Description
	}
	if len(f.Examples) > 0 {
		out["examples"] = f.Examples
	}
	return out
}

// ToPromptDescription lists the fields as an indented outline for the
// prompt, so models without native schema support still see the contract.
func (s *Schema[T]) ToPromptDescription() string {
	var sb strings.Builder

	sb.WriteString("## Output Fields\n")
	if s.Description != "" {
		sb.WriteString(s.Description)
		sb.WriteString("\n\n")
	}
	for _, f := range s.Fields {
		writeField(&sb, f, 0)
	}

	return sb.String()
}

func writeField(sb *strings.Builder, f Field, indent int) {
	prefix := strings.Repeat("  ", indent)

	sb.WriteString(prefix)
	sb.WriteString("- ")
	sb.WriteString(f.Name)
	sb.WriteString(" (")
	sb.WriteString(string(f.Type))
	if f.Type == TypeArray && f.Items != nil {
		sb.WriteString(" of ")
		sb.WriteString(string(f.Items.Type))
	}
	if f.Required {
		sb.WriteString(", required")
	}
	sb.WriteString(")")
	if f.Description != "" {
		sb.WriteString(": ")
		sb.WriteString(f.Description)
	}
	sb.WriteString("\n")

	switch {
	case f.Type == TypeArray && f.Items != nil && f.Items.Type == TypeObject:
		sb.WriteString(prefix)
		sb.WriteString("  Each item:\n")
		for _, p := range f.Items.Properties {
			writeField(sb, p, indent+2)
		}
	case f.Type == TypeObject:
		for _, p := range f.Properties {
			writeField(sb, p, indent+1)
		}
	}
}
