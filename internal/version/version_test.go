// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()
	assert.True(t, strings.HasPrefix(info, "deduce "+Version+" "))
	assert.Contains(t, info, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestStamped(t *testing.T) {
	vcs := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	tests := []struct {
		name       string
		gitCommit  string
		buildDate  string
		settings   []debug.BuildSetting
		wantCommit string
		wantDate   string
	}{
		{"no data", "unknown", "unknown", nil, "unknown", "unknown"},
		{"vcs fallback", "unknown", "unknown", vcs, "0123456789ab+dirty", "2026-10-01T12:00:00Z"},
		{"ldflags win", "abc123", "2026-09-30", vcs, "abc123", "2026-09-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldCommit, oldDate := GitCommit, BuildDate
			t.Cleanup(func() { GitCommit, BuildDate = oldCommit, oldDate })
			GitCommit, BuildDate = tt.gitCommit, tt.buildDate

			commit, date := stamped(tt.settings)
			assert.Equal(t, tt.wantCommit, commit)
			assert.Equal(t, tt.wantDate, date)
		})
	}
}
