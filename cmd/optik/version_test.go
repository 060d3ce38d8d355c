package main

import (
	"runtime/debug"
	"testing"
)

func TestDevelString(t *testing.T) {
	rev := "0123456789abcdef0123"
	tests := []struct {
		name string
		info *debug.BuildInfo
		want string
	}{
		{
			name: "no build info",
			info: nil,
			want: "0.1.0-dev",
		},
		{
			name: "no vcs settings",
			info: &debug.BuildInfo{},
			want: "0.1.0-dev",
		},
		{
			name: "revision",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: rev},
			}},
			want: "0.1.0-dev+0123456789ab",
		},
		{
			name: "dirty checkout",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: rev},
				{Key: "vcs.modified", Value: "true"},
			}},
			want: "0.1.0-dev+0123456789ab.dirty",
		},
		{
			name: "modified flag without revision",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.modified", Value: "true"},
			}},
			want: "0.1.0-dev",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := develString("0.1.0", tt.info); got != tt.want {
				t.Errorf("develString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	// Exercises the embed and the build info path; the exact form depends on
	// how the test binary was built.
	if versionString() == "" {
		t.Fatal("expected a non-empty version")
	}
}
