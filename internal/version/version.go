// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version reports which build of the de-identifier is running.
// Release builds stamp the values with
//
//	-ldflags "-X deduce/internal/version.Version=1.2.0 -X deduce/internal/version.GitCommit=..."
//
// Local builds fall back to the VCS data the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version of the deduce release; development builds keep the placeholder.
	Version = "0.0.0-development"

	// GitCommit the binary was cut from.
	GitCommit = "unknown"

	// BuildDate in RFC 3339, as stamped by the release pipeline.
	BuildDate = "unknown"
)

// Info is the one-line banner printed by --version.
func Info() string {
	commit, date := stamped(buildSettings())
	return fmt.Sprintf("deduce %s (commit: %s, built: %s, go: %s, platform: %s/%s)",
		Version, commit, date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func buildSettings() []debug.BuildSetting {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return info.Settings
}

// stamped prefers ldflags values and fills the gaps from embedded VCS
// settings. A dirty tree gets a "+dirty" suffix on the commit.
func stamped(settings []debug.BuildSetting) (commit, date string) {
	commit, date = GitCommit, BuildDate
	var revision, modified, vcsTime string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}
	if commit == "unknown" && revision != "" {
		commit = revision
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if modified == "true" {
			commit += "+dirty"
		}
	}
	if date == "unknown" && vcsTime != "" {
		date = vcsTime
	}
	return commit, date
}
