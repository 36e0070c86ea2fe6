// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// needsEOF reports whether the current message's body can only be
// delimited by connection close, per spec §4.7: true only for responses
// that have neither a Content-Length nor chunked encoding and aren't one
// of the statuses defined to never carry a body.
func (p *Parser) needsEOF() bool {
	if p.rKind == Request {
		return false
	}
	if p.statusCode/100 == 1 || p.statusCode == 204 || p.statusCode == 304 {
		return false
	}
	if p.flags.has(flagSkipBody) {
		return false
	}
	if p.flags.has(flagChunked) || p.contentLength != clUnset {
		return false
	}
	return true
}

// ShouldKeepAlive reports whether the connection should stay open after
// the current message, per spec §4.7.
func (p *Parser) ShouldKeepAlive() bool {
	if p.version.AtLeast11() {
		if p.flags.has(flagClose) {
			return false
		}
	} else if !p.flags.has(flagKeepAlive) {
		return false
	}
	return !p.needsEOF()
}
