// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package deidentify

import (
	"fmt"

	"deduce/internal/tags"
)

// Replace turns flattened tags into markers. Patient spans all become
// "<PATIENT>". Spans of any other category become "<CATEGORY-n>", where n
// numbers the distinct values of that category in order of first use, so a
// repeated value keeps its marker.
func Replace(nodes []*tags.Node) string {
	seen := make(map[string]map[string]int)
	out := make([]*tags.Node, 0, len(nodes))

	for _, n := range nodes {
		if !n.IsTag() {
			out = tags.AppendText(out, n.Text)
			continue
		}
		if n.Category == tags.Patient {
			out = tags.AppendText(out, "<"+tags.Patient+">")
			continue
		}
		values, ok := seen[n.Category]
		if !ok {
			values = make(map[string]int)
			seen[n.Category] = values
		}
		content := n.Content()
		id, ok := values[content]
		if !ok {
			id = len(values) + 1
			values[content] = id
		}
		out = tags.AppendText(out, fmt.Sprintf("<%s-%d>", n.Category, id))
	}
	return tags.Plain(out)
}

// ReplaceText applies Replace to flattened markup such as AnnotateFlat
// returns.
func ReplaceText(annotated string) (string, error) {
	nodes, err := tags.Parse(annotated)
	if err != nil {
		return "", err
	}
	return Replace(tags.Flatten(nodes)), nil
}
