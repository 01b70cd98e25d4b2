package version

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		commit      string
		settings    map[string]string
		wantVersion string
		wantCommit  string
	}{
		{
			name:        "ldflags win",
			version:     "v0.3.0",
			commit:      "abc1234",
			settings:    map[string]string{"vcs.revision": "ffffffffffff"},
			wantVersion: "v0.3.0",
			wantCommit:  "abc1234",
		},
		{
			name: "VCS stamp",
			settings: map[string]string{
				"vcs.revision": "0123456789abcdef",
				"vcs.modified": "true",
				"vcs.time":     "2026-03-14T09:26:53Z",
			},
			wantVersion: "dev-20260314",
			wantCommit:  "0123456-dirty",
		},
		{
			name:        "go install",
			settings:    map[string]string{"module.version": "v0.4.1"},
			wantVersion: "v0.4.1",
			wantCommit:  "unknown",
		},
		{
			name:        "nothing known",
			settings:    map[string]string{},
			wantVersion: "dev",
			wantCommit:  "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := resolve(tt.version, tt.commit, tt.settings)
			if info.Version != tt.wantVersion {
				t.Errorf("Version = %v, want %v", info.Version, tt.wantVersion)
			}
			if info.Commit != tt.wantCommit {
				t.Errorf("Commit = %v, want %v", info.Commit, tt.wantCommit)
			}
			if !strings.HasPrefix(info.GoVersion, "go") {
				t.Errorf("GoVersion = %v", info.GoVersion)
			}
		})
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.Contains(full, "(commit: ") {
		t.Errorf("Full() = %q, missing commit", full)
	}
	if Get() != Get() {
		t.Error("Get() should be stable")
	}
}
