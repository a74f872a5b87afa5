package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	info := Info{Version: "dev", Commit: "unknown", BuildDate: "unknown"}
	fromBuildInfo(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2025-11-27T00:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	})

	assert.Equal(t, "0123456789abcdef0123", info.Commit)
	assert.Equal(t, "2025-11-27T00:00:00Z", info.BuildDate)
	assert.True(t, info.Dirty, "Dirty should be set from vcs.modified")
	assert.Equal(t, "dev-dirty", info.String())
}

func TestFromBuildInfo_KeepsLdflags(t *testing.T) {
	info := Info{Commit: "abc123", BuildDate: "2025-01-01T00:00:00Z"}
	fromBuildInfo(&info, []debug.BuildSetting{{Key: "vcs.revision", Value: "fff"}})

	assert.Equal(t, "abc123", info.Commit, "ldflags value should win")
}

func TestFull(t *testing.T) {
	info := Info{Version: "1.2.0", Commit: "0123456789abcdef", BuildDate: "b", GoVersion: "go1.25", Platform: "linux/amd64"}
	full := info.Full()

	assert.Regexp(t, `^wxscrape 1\.2\.0\n`, full)
	assert.Contains(t, full, "Commit:     0123456789ab\n", "commit should be shortened")
}
