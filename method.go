// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import (
	"github.com/intuitivelabs/bytescase"
)

// Method is the type used to hold the parsed HTTP request method.
type Method uint8

// method types: the 27-entry enumeration, covering plain HTTP, WebDAV
// (RFC 4918), Subversion's DeltaV extensions, UPnP, RFC 5789 PATCH/PURGE
// and CalDAV (RFC 4791).
const (
	MUndef Method = iota
	MDelete
	MGet
	MHead
	MPost
	MPut
	MConnect
	MOptions
	MTrace
	MCopy
	MLock
	MMkCol
	MMove
	MPropFind
	MPropPatch
	MSearch
	MUnlock
	MReport
	MMkActivity
	MCheckout
	MMerge
	MMSearch
	MNotify
	MSubscribe
	MUnsubscribe
	MPatch
	MPurge
	MMkCalendar
	MOther // must be last
)

// Method2Name translates between a numeric Method and its ASCII name.
var Method2Name = [MOther + 1][]byte{
	MUndef:       []byte(""),
	MDelete:      []byte("DELETE"),
	MGet:         []byte("GET"),
	MHead:        []byte("HEAD"),
	MPost:        []byte("POST"),
	MPut:         []byte("PUT"),
	MConnect:     []byte("CONNECT"),
	MOptions:     []byte("OPTIONS"),
	MTrace:       []byte("TRACE"),
	MCopy:        []byte("COPY"),
	MLock:        []byte("LOCK"),
	MMkCol:       []byte("MKCOL"),
	MMove:        []byte("MOVE"),
	MPropFind:    []byte("PROPFIND"),
	MPropPatch:   []byte("PROPPATCH"),
	MSearch:      []byte("SEARCH"),
	MUnlock:      []byte("UNLOCK"),
	MReport:      []byte("REPORT"),
	MMkActivity:  []byte("MKACTIVITY"),
	MCheckout:    []byte("CHECKOUT"),
	MMerge:       []byte("MERGE"),
	MMSearch:     []byte("M-SEARCH"),
	MNotify:      []byte("NOTIFY"),
	MSubscribe:   []byte("SUBSCRIBE"),
	MUnsubscribe: []byte("UNSUBSCRIBE"),
	MPatch:       []byte("PATCH"),
	MPurge:       []byte("PURGE"),
	MMkCalendar:  []byte("MKCALENDAR"),
	MOther:       []byte("OTHER"),
}

// Name returns the ASCII method name.
func (m Method) Name() []byte {
	if m > MOther {
		return Method2Name[MUndef]
	}
	return Method2Name[m]
}

// String implements the Stringer interface.
func (m Method) String() string {
	return string(m.Name())
}

// magic values: after adding/removing methods re-check the lookup
// distribution (max elem per bucket should stay small).
const (
	mthBitsLen   uint = 2
	mthBitsFChar uint = 3
)

type mth2Type struct {
	n []byte
	t Method
}

var mthNameLookup [1 << (mthBitsLen + mthBitsFChar)][]mth2Type

func hashMthName(n []byte) int {
	const (
		mC = (1 << mthBitsFChar) - 1
		mL = (1 << mthBitsLen) - 1
	)
	return (int(bytescase.ByteToLower(n[0])) & mC) |
		((len(n) & mL) << mthBitsFChar)
}

func init() {
	for i := MUndef + 1; i < MOther; i++ {
		h := hashMthName(Method2Name[i])
		mthNameLookup[h] = append(mthNameLookup[h], mth2Type{Method2Name[i], i})
	}
}

// methodMatcher narrows a bitmask of still-possible methods as request-line
// bytes arrive, the same technique headerNameMatcher uses for the five
// significant header names: O(1) per-byte state, no byte buffering.
type methodMatcher struct {
	active uint32 // bitmask of 1<<Method, one bit per candidate
	idx    int
}

// start begins matching a new method token from its first byte. Method
// tokens are case-sensitive uppercase, unlike header names.
func (m *methodMatcher) start(c byte) {
	m.idx = 0
	m.active = 0
	for mth := MDelete; mth < MOther; mth++ {
		m.active |= 1 << uint(mth)
	}
	m.feed(c)
}

// feed advances the matcher by one method-token byte.
func (m *methodMatcher) feed(c byte) {
	if m.active == 0 {
		return
	}
	var still uint32
	for mth := MDelete; mth < MOther; mth++ {
		bit := uint32(1) << uint(mth)
		if m.active&bit == 0 {
			continue
		}
		name := Method2Name[mth]
		if m.idx < len(name) && name[m.idx] == c {
			still |= bit
		}
	}
	m.active = still
	m.idx++
}

// finish is called on the space that ends the method token. It returns
// the single matched method, or MUndef if none of the candidates matched
// their full literal length.
func (m *methodMatcher) finish() Method {
	for mth := MDelete; mth < MOther; mth++ {
		bit := uint32(1) << uint(mth)
		if m.active&bit != 0 && m.idx == len(Method2Name[mth]) {
			return mth
		}
	}
	return MUndef
}

// GetMethodNo converts an ASCII method name, compared case-insensitively,
// to the corresponding numeric value, or MOther if unrecognized. It serves
// callers that already hold a complete method token (e.g. tests); the main
// state machine matches methods with methodMatcher instead.
func GetMethodNo(buf []byte) Method {
	if len(buf) == 0 {
		return MOther
	}
	i := hashMthName(buf)
	for _, m := range mthNameLookup[i] {
		if bytescase.CmpEq(buf, m.n) {
			return m.t
		}
	}
	return MOther
}
