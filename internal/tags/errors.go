// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tags

import "fmt"

// StructuralError reports unbalanced brackets in tagged text.
type StructuralError struct {
	Offset int // byte offset of the offending bracket
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed tag structure at offset %d: %s", e.Offset, e.Reason)
}
