// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// pFlags packs the parser's per-message boolean state into bits, mirroring
// original_source/src/flags.rs.
type pFlags uint8

const (
	flagChunked pFlags = 1 << iota
	flagKeepAlive
	flagClose
	flagTrailing
	flagUpgrade
	flagSkipBody
)

func (f *pFlags) set(b pFlags)      { *f |= b }
func (f *pFlags) clear(b pFlags)    { *f &^= b }
func (f pFlags) has(b pFlags) bool  { return f&b != 0 }
