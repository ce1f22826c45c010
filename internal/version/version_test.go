package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		info        *debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{
			name: "module version and dirty revision",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.3"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			wantVersion: "v1.2.3",
			wantCommit:  "0123456-dirty",
		},
		{
			name: "devel build",
			info: &debug.BuildInfo{
				Main:     debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
			},
			wantVersion: "",
			wantCommit:  "abc",
		},
		{
			name: "nil info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldVersion, oldCommit := Version, Commit
			defer func() { Version, Commit = oldVersion, oldCommit }()
			Version, Commit = "", ""

			fromBuildInfo(tt.info, tt.info != nil)
			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestFull(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()
	Version, Commit = "v0.1.0", "abc1234"

	if got := Full(); got != "v0.1.0 (commit: abc1234)" {
		t.Errorf("Full() = %q", got)
	}
	if got := Detailed(); !strings.HasPrefix(got, "v0.1.0 (commit: abc1234) go") {
		t.Errorf("Detailed() = %q", got)
	}
}
