// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import (
	"bytes"

	"github.com/intuitivelabs/bytescase"
)

// WSExt is a recognized Sec-WebSocket-Extensions token, resolved to a flag
// value (see https://www.iana.org/assignments/websocket/websocket.xhtml).
// Not part of the core 5-header recognizer (spec §4.3): a Sink interested
// in WebSocket upgrades calls ParseWSExtensions itself on the raw value it
// received through OnHeaderValue for a general header named
// "Sec-WebSocket-Extensions".
type WSExt uint

const (
	WSExtNone WSExt = 0
	WSExtPermessageDeflate WSExt = 1 << iota
	WSExtOther // recognized as present, but not one of the known tokens
)

// ResolveWSExt maps an extension token to its flag value.
func ResolveWSExt(tok []byte) WSExt {
	if bytescase.CmpEq(tok, []byte("permessage-deflate")) {
		return WSExtPermessageDeflate
	}
	return WSExtOther
}

// ParseWSExtensions splits a Sec-WebSocket-Extensions header value into its
// comma-separated tokens (RFC 6455 §9.1: each token may itself carry
// ";"-separated parameters, which are ignored here beyond stripping them)
// and resolves each one. The returned flags are the union of every token
// seen; exts holds each bare token name in order.
func ParseWSExtensions(value []byte) (flags WSExt, exts [][]byte) {
	for _, item := range splitTrim(value, ',') {
		name := item
		if j := bytes.IndexByte(item, ';'); j >= 0 {
			name = bytes.TrimRight(item[:j], " \t")
		}
		if len(name) == 0 {
			continue
		}
		flags |= ResolveWSExt(name)
		exts = append(exts, name)
	}
	return flags, exts
}

// splitTrim splits buf on sep and trims surrounding linear whitespace from
// each piece, discarding empty pieces (a stray trailing comma or repeated
// separators shouldn't produce a spurious empty token).
func splitTrim(buf []byte, sep byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i <= len(buf); i++ {
		if i == len(buf) || buf[i] == sep {
			piece := bytes.Trim(buf[start:i], " \t")
			if len(piece) > 0 {
				out = append(out, piece)
			}
			start = i + 1
		}
	}
	return out
}
