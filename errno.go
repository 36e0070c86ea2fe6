// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// Errno is the closed set of sticky parsing errors (see spec §7).
// The zero value means "no error". Errno implements the error interface
// so it can cross the package boundary like any other Go error, unlike
// the teacher's internal ErrorHdr which never left the parsing package.
type Errno uint8

// Error kinds, grouped as in spec §7.
const (
	ErrNone Errno = iota

	// sink-origin
	ErrCBMessageBegin
	ErrCBUrl
	ErrCBStatus
	ErrCBHeaderField
	ErrCBHeaderValue
	ErrCBHeadersComplete
	ErrCBBody
	ErrCBMessageComplete

	// syntax
	ErrInvalidMethod
	ErrInvalidUrl
	ErrInvalidVersion
	ErrInvalidStatus
	ErrInvalidHeaderToken
	ErrInvalidContentLength
	ErrInvalidChunkSize
	ErrInvalidConstant
	ErrLFExpected

	// semantic/state
	ErrInvalidEofState
	ErrHeaderOverflow
	ErrClosedConnection
	ErrInvalidInternalState
	ErrStrict

	// control
	ErrPaused
)

var errnoStr = [...]string{
	ErrNone:                 "no error",
	ErrCBMessageBegin:       "the on_message_begin callback failed",
	ErrCBUrl:                "the on_url callback failed",
	ErrCBStatus:             "the on_status callback failed",
	ErrCBHeaderField:        "the on_header_field callback failed",
	ErrCBHeaderValue:        "the on_header_value callback failed",
	ErrCBHeadersComplete:    "the on_headers_complete callback failed",
	ErrCBBody:               "the on_body callback failed",
	ErrCBMessageComplete:    "the on_message_complete callback failed",
	ErrInvalidMethod:        "invalid HTTP method",
	ErrInvalidUrl:           "invalid URL",
	ErrInvalidVersion:       "invalid HTTP version",
	ErrInvalidStatus:        "invalid HTTP status code",
	ErrInvalidHeaderToken:   "invalid character in header",
	ErrInvalidContentLength: "invalid character in content-length header",
	ErrInvalidChunkSize:     "invalid character in chunk size header",
	ErrInvalidConstant:      "invalid constant string",
	ErrLFExpected:           "LF character expected",
	ErrInvalidEofState:      "stream ended at an unexpected time",
	ErrHeaderOverflow:       "too many header bytes seen, overflow detected",
	ErrClosedConnection:     "data received after completed connection: close message",
	ErrInvalidInternalState: "encountered unexpected internal state",
	ErrStrict:               "strict mode assertion failed",
	ErrPaused:               "parser paused",
}

// String implements the Stringer interface.
func (e Errno) String() string {
	if int(e) >= len(errnoStr) {
		return "unknown error"
	}
	return errnoStr[e]
}

// Error implements the error interface.
func (e Errno) Error() string {
	return e.String()
}

// Recoverable returns true for the single sticky error that pause(false)
// can clear. Every other non-zero Errno is permanent: the caller must
// build a fresh Parser to keep going.
func (e Errno) Recoverable() bool {
	return e == ErrPaused
}
