// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// urlState is the request-target sub-machine's internal state (spec §4.5).
type urlState uint8

const (
	uSpacesBeforeUrl urlState = iota
	uSchema
	uSchemaSlash
	uSchemaSlashSlash
	uServerStart
	uServer
	uServerWithAt
	uPath
	uQueryStringStart
	uQueryString
	uFragmentStart
	uFragment
	uDead
)

// urlMachine drives the request-target sub-state-machine, invoked once per
// byte from the main machine while parsing the request line's URL (spec
// §4.5). It is never recursively re-entered on the same byte.
type urlMachine struct {
	state   urlState
	atSeen  bool // '@' already consumed in the authority component
	connect bool // CONNECT request: authority-form target only
}

// reset prepares the sub-machine for a new URL. connect is true for
// CONNECT requests, which force an authority-only target (so '/' and '*'
// are not accepted as the first byte).
func (u *urlMachine) reset(connect bool) {
	u.atSeen = false
	u.connect = connect
	if connect {
		u.state = uServerStart
	} else {
		u.state = uSpacesBeforeUrl
	}
}

// step advances the sub-machine by one byte. It returns false (and sets
// the state to uDead) on any byte that doesn't fit the current state's
// grammar; the caller surfaces that as ErrInvalidUrl.
func (u *urlMachine) step(c byte, strict bool) bool {
	if !isUrlChar(strict, c) {
		// isUrlChar already excludes SP/CTL/CR/LF and (in strict mode)
		// HT/FF; every state rejects those the same way.
		u.state = uDead
		return false
	}
	switch u.state {
	case uSpacesBeforeUrl:
		switch {
		case c == '/' || c == '*':
			u.state = uPath
		case isAlpha(c):
			u.state = uSchema
		default:
			u.state = uDead
		}
	case uSchema:
		switch {
		case isAlpha(c) || isNum(c) || c == '+' || c == '-' || c == '.':
			// stay
		case c == ':':
			u.state = uSchemaSlash
		default:
			u.state = uDead
		}
	case uSchemaSlash:
		if c == '/' {
			u.state = uSchemaSlashSlash
		} else {
			u.state = uDead
		}
	case uSchemaSlashSlash:
		if c == '/' {
			u.state = uServerStart
		} else {
			u.state = uDead
		}
	case uServerStart, uServer, uServerWithAt:
		if u.connect && u.state == uServerStart && (c == '/' || c == '*') {
			u.state = uDead
			break
		}
		switch c {
		case '/':
			u.state = uPath
		case '?':
			u.state = uQueryStringStart
		case '#':
			u.state = uFragmentStart
		case '@':
			if u.atSeen {
				u.state = uDead
			} else {
				u.atSeen = true
				u.state = uServerWithAt
			}
		case '[', ']':
			u.state = uServer
		default:
			if isUserinfoChar(c) || isAlpha(c) || isNum(c) {
				u.state = uServer
			} else {
				u.state = uDead
			}
		}
	case uPath:
		switch c {
		case '?':
			u.state = uQueryStringStart
		case '#':
			u.state = uFragmentStart
		default:
			// any other url-char byte stays in Path
		}
	case uQueryStringStart, uQueryString:
		if c == '#' {
			u.state = uFragmentStart
		} else {
			u.state = uQueryString
		}
	case uFragmentStart, uFragment:
		u.state = uFragment
	default:
		u.state = uDead
	}
	return u.state != uDead
}
