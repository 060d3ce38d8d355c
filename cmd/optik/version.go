package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionFile string

// versionString resolves what the version subcommand prints. Installs via
// `go install ...@version` report the module version. Builds from a source
// checkout report the embedded VERSION with a -dev suffix, plus the VCS
// revision and a dirty marker when the toolchain stamped them.
func versionString() string {
	info, ok := debug.ReadBuildInfo()
	if ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	if !ok {
		info = nil
	}
	return develString(strings.TrimSpace(versionFile), info)
}

// develString formats the fallback version for source builds.
func develString(base string, info *debug.BuildInfo) string {
	v := base + "-dev"
	if info == nil {
		return v
	}
	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return v
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	v += "+" + rev
	if dirty {
		v += ".dirty"
	}
	return v
}
