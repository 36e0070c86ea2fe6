// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import "strconv"

// HttpVersion is the parsed HTTP protocol version (major.minor).
type HttpVersion struct {
	Major uint8
	Minor uint8
}

// String implements the Stringer interface.
func (v HttpVersion) String() string {
	return strconv.Itoa(int(v.Major)) + "." + strconv.Itoa(int(v.Minor))
}

// AtLeast11 returns true if the version is >= 1.1.
func (v HttpVersion) AtLeast11() bool {
	return v.Major > 1 || (v.Major == 1 && v.Minor >= 1)
}
