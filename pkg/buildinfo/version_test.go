package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestGet(t *testing.T) {
	embedded := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.2.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name    string
		stamped Info
		bi      *debug.BuildInfo
		want    Info
	}{
		{
			name:    "no metadata",
			stamped: Info{Version: "dev", Commit: "none", Date: "unknown"},
			want:    Info{Version: "dev", Commit: "none", Date: "unknown"},
		},
		{
			name:    "embedded fills unstamped",
			stamped: Info{Version: "dev", Commit: "none", Date: "unknown"},
			bi:      embedded,
			want:    Info{Version: "v0.2.1", Commit: "abc123", Date: "2026-01-02T03:04:05Z", Dirty: true},
		},
		{
			name:    "ldflags win",
			stamped: Info{Version: "v1.0.0", Commit: "fff", Date: "today"},
			bi:      embedded,
			want:    Info{Version: "v1.0.0", Commit: "fff", Date: "today", Dirty: true},
		},
		{
			name:    "devel main module",
			stamped: Info{Version: "dev", Commit: "none", Date: "unknown"},
			bi:      &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want:    Info{Version: "dev", Commit: "none", Date: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = tt.stamped.Version, tt.stamped.Commit, tt.stamped.Date
			t.Cleanup(func() { Version, Commit, Date = "dev", "none", "unknown" })
			stubBuildInfo(t, tt.bi)

			if got := Get(); got != tt.want {
				t.Errorf("Get() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	s := Info{Version: "v1", Commit: "abc", Date: "d", Dirty: true}.String()
	if !strings.Contains(s, "commit: abc+dirty") {
		t.Errorf("String() = %q", s)
	}
	if tmpl := (Info{Version: "v1"}).Template(); !strings.HasPrefix(tmpl, "{{.Name}} version: v1") {
		t.Errorf("Template() = %q", tmpl)
	}
}
