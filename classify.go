// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import (
	"github.com/intuitivelabs/bytescase"
)

// isNum returns true for an ASCII digit.
func isNum(c byte) bool {
	return c >= '0' && c <= '9'
}

// isAlpha returns true for an ASCII letter.
func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// lower maps an ASCII letter to its lowercase form. Only valid when c is
// already known to be a letter: '|' 0x20 is not a general-purpose
// lowercasing operation for arbitrary bytes.
func lower(c byte) byte {
	return bytescase.ByteToLower(c)
}

// headerTokenTable holds, for each byte value, whether it is a valid RFC
// 7230 "token" character usable inside a header field name in strict mode.
var headerTokenTable [256]bool

// headerTokenLenientTable additionally allows ' ' (lenient mode only).
var headerTokenLenientTable [256]bool

func init() {
	const extra = "!#$%&'*+-.^_`|~"
	for c := 'A'; c <= 'Z'; c++ {
		headerTokenTable[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		headerTokenTable[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		headerTokenTable[c] = true
	}
	for _, c := range []byte(extra) {
		headerTokenTable[c] = true
	}
	headerTokenLenientTable = headerTokenTable
	headerTokenLenientTable[' '] = true
}

// isHeaderToken returns true if c may appear in a header field name.
func isHeaderToken(strict bool, c byte) bool {
	if strict {
		return headerTokenTable[c]
	}
	return headerTokenLenientTable[c]
}

// urlCharTable holds, for each byte value, whether it may appear inside a
// request-target in strict mode: every byte except CTLs, space and the
// small set of characters explicitly excluded by spec §4.2.
var urlCharTable [256]bool

func init() {
	for i := 0; i < 256; i++ {
		urlCharTable[i] = true
	}
	for i := 0; i <= 0x1f; i++ {
		urlCharTable[i] = false
	}
	urlCharTable[0x7f] = false
	for _, c := range []byte(" \"<>\\^`{|}") {
		urlCharTable[c] = false
	}
	for i := 0x80; i < 256; i++ {
		urlCharTable[i] = false
	}
}

// isUrlChar returns true if c is a valid byte inside a request-target.
// In lenient mode, bytes with the high bit set and the HT/FF control
// characters are also accepted.
func isUrlChar(strict bool, c byte) bool {
	if !strict {
		if c >= 0x80 {
			return true
		}
		if c == '\t' || c == '\f' {
			return true
		}
	}
	return urlCharTable[c]
}

// unhex converts an ASCII hex digit to its numeric value, or reports false.
func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// userinfoCharTable holds, for each byte value, whether it may appear in
// the userinfo portion of an authority (RFC 3986 "unreserved / pct-encoded
// / sub-delims / : ").
var userinfoCharTable [256]bool

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		userinfoCharTable[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		userinfoCharTable[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		userinfoCharTable[c] = true
	}
	for _, c := range []byte("-_.~!*'()%;:&=+$,") {
		userinfoCharTable[c] = true
	}
}

// isUserinfoChar returns true if c is valid inside the authority userinfo.
func isUserinfoChar(c byte) bool {
	return userinfoCharTable[c]
}
