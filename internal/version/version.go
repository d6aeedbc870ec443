// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version reports the version of the commands built from this
// repository.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Major, Minor and Patch follow semantic versioning 2.0.0.
const (
	Major uint = 0
	Minor uint = 3
	Patch uint = 0
)

var (
	// PreRelease and BuildMetadata may be set at link time, for example:
	//
	//	-ldflags "-X github.com/stasproject/stasd/internal/version.PreRelease=rc1"
	//
	// Characters semantic versioning does not allow are dropped.
	PreRelease = "pre"

	// BuildMetadata falls back to the revision the toolchain recorded for
	// the build when it is empty.
	BuildMetadata = ""

	// buildRevision is replaced in tests.
	buildRevision = vcsRevision
)

// vcsRevision returns the abbreviated commit the binary was built from, or an
// empty string when the toolchain did not record one.
func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	var vcs, revision string
	for _, bs := range bi.Settings {
		switch bs.Key {
		case "vcs":
			vcs = bs.Value
		case "vcs.revision":
			revision = bs.Value
		}
	}
	if vcs == "" {
		return ""
	}
	if vcs == "git" && len(revision) > 9 {
		revision = revision[:9]
	}
	return revision
}

// clean drops every rune outside [0-9A-Za-z-] from s, keeping dots as well
// when allowDot is set.
func clean(s string, allowDot bool) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z', r == '-':
			return r
		case r == '.' && allowDot:
			return r
		}
		return -1
	}, s)
}

// NormalizePreRelString returns str stripped of the characters a pre-release
// identifier may not contain.
func NormalizePreRelString(str string) string {
	return clean(str, false)
}

// NormalizeBuildString returns str stripped of the characters build metadata
// may not contain.
func NormalizeBuildString(str string) string {
	return clean(str, true)
}

// String returns the version as MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
func String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", Major, Minor, Patch)

	if pre := NormalizePreRelString(PreRelease); pre != "" {
		b.WriteByte('-')
		b.WriteString(pre)
	}

	build := BuildMetadata
	if build == "" {
		build = buildRevision()
	}
	if build = NormalizeBuildString(build); build != "" {
		b.WriteByte('+')
		b.WriteString(build)
	}

	return b.String()
}

// Full returns the version line of the named program along with the Go
// version and platform it was built for.
func Full(program string) string {
	return fmt.Sprintf("%s version %s (Go version %s %s/%s)", program,
		String(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
