// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package httpparse is an incremental, zero-copy HTTP/1.x message parser.
//
// A Parser consumes bytes through Execute and drives a caller-supplied
// Sink with events (message_begin, url/status, header_field/value,
// headers_complete, body, message_complete). It never buffers: every
// byte slice handed to a Sink method is a sub-slice of the buffer passed
// to Execute, valid only for the duration of that call.
package httpparse

import "math"

// Kind tells the parser whether it is reading requests, responses, or
// should auto-detect from the first byte of the stream.
type Kind uint8

const (
	Request Kind = iota
	Response
	Both
)

// pState is the parser's internal state. The request/response line and
// header states below are the main machine described in spec §4.4; the
// request-target itself is driven by a nested urlMachine (spec §4.5).
type pState uint8

const (
	sDead pState = iota

	sStartReqOrRes
	sResOrRespH

	sStartRes
	sResHttpH
	sResHttpHT
	sResHttpHTT
	sResHttpHTTP
	sResFirstHttpMajor
	sResHttpMajor
	sResFirstHttpMinor
	sResHttpMinor
	sResFirstStatusCode
	sResStatusCode
	sResStatus
	sResLineAlmostDone

	sStartReq
	sReqMethod
	sReqSpacesBeforeUrl
	sReqURL
	sReqHttpStart
	sReqHttpH
	sReqHttpHT
	sReqHttpHTT
	sReqHttpHTTP
	sReqFirstHttpMajor
	sReqHttpMajor
	sReqFirstHttpMinor
	sReqHttpMinor
	sReqLineAlmostDone

	sHeaderFieldStart
	sHeaderField
	sHeaderValueDiscardWs
	sHeaderValueDiscardWsAlmostDone
	sHeaderValueDiscardLws
	sHeaderValue
	sHeaderValueLws
	sHeaderAlmostDone

	sHeadersAlmostDone
	sHeadersDone

	sChunkSizeStart
	sChunkSize
	sChunkParameters
	sChunkSizeAlmostDone
	sChunkData
	sChunkDataAlmostDone
	sChunkDataDone

	sBodyIdentity
	sBodyIdentityEof

	sMessageDone
)

// clUnset marks "no Content-Length header seen" (spec §3).
const clUnset = math.MaxUint64

// headerMax bounds the request/status line plus header block, reset to
// zero on entering the body and again on entering chunked trailers (spec
// §3, §9).
const headerMax = 80 * 1024

// Parser is an incremental HTTP/1.x message parser. The zero value is not
// usable; build one with New.
type Parser struct {
	kind  Kind // as configured by New: Request, Response, or Both
	rKind Kind // the kind resolved for the in-progress message (always Request or Response once past the first line)
	state pState

	flags         pFlags
	index         int // scratch index: literal/version-digit matching
	nread         int
	contentLength uint64

	version    HttpVersion
	statusCode uint16
	method     Method
	upgrade    bool

	strict bool
	errno  Errno

	url    urlMachine
	mthM   methodMatcher
	mth    headerNameMatcher
	curHdr HeaderState
	teM    exactMatcher
	kaM    exactMatcher
	closeM exactMatcher
}

// New creates a Parser for the given message kind. strict enables the
// RFC-conformant character classes; when false, the lenient tables
// (embedded spaces in header names, high-bit and HT/FF URL bytes) are used
// instead, matching real-world traffic the strict grammar would reject.
// A bare LF line terminator is accepted in both modes.
func New(kind Kind, strict bool) *Parser {
	p := &Parser{kind: kind, strict: strict}
	p.resetForNextMessage()
	return p
}

// Kind returns the parser's configured message kind (Request, Response or
// Both). Use ResolvedKind to find out which one a Both-configured parser
// settled on for the in-progress message.
func (p *Parser) Kind() Kind { return p.kind }

// ResolvedKind returns Request or Response for the in-progress (or just
// completed) message, even if the parser was configured with Both.
func (p *Parser) ResolvedKind() Kind { return p.rKind }

// Errno returns the parser's sticky error, or ErrNone.
func (p *Parser) Errno() Errno { return p.errno }

// Method returns the parsed request method (valid once past the request
// line; zero value MUndef for responses).
func (p *Parser) Method() Method { return p.method }

// StatusCode returns the parsed response status (valid once past the
// status line; zero for requests).
func (p *Parser) StatusCode() uint16 { return p.statusCode }

// Version returns the parsed protocol version.
func (p *Parser) Version() HttpVersion { return p.version }

// Upgrade reports whether the just-completed message switches protocols
// (an Upgrade header, or a successful CONNECT request).
func (p *Parser) Upgrade() bool { return p.upgrade }

// ContentLength returns the parser's content-length counter, or ok==false
// while it is unset. Up to and during OnHeadersComplete it holds the
// Content-Length header value (unset when the message had none). Once body
// decoding starts it counts down the bytes still to come of the body, or
// of the current chunk for a chunked body.
func (p *Parser) ContentLength() (n uint64, ok bool) {
	if p.contentLength == clUnset {
		return 0, false
	}
	return p.contentLength, true
}

// Pause suspends (true) or resumes (false) parsing. A Sink handler calls
// this on the *Parser it was given; Execute notices the resulting
// ErrPaused immediately after the handler returns and aborts the current
// call. Resuming only clears ErrPaused: any other sticky error is left
// untouched, since it isn't recoverable.
func (p *Parser) Pause(pause bool) {
	if pause {
		p.errno = ErrPaused
	} else if p.errno == ErrPaused {
		p.errno = ErrNone
	}
}

// resetForNextMessage clears all per-message state and picks the right
// initial state for p.kind. It does not touch p.strict.
func (p *Parser) resetForNextMessage() {
	p.state = p.initialState()
	if p.kind != Both {
		p.rKind = p.kind
	} else {
		p.rKind = Both
	}
	p.flags = 0
	p.index = 0
	p.nread = 0
	p.contentLength = clUnset
	p.version = HttpVersion{}
	p.statusCode = 0
	p.method = MUndef
	p.upgrade = false
}

func (p *Parser) initialState() pState {
	switch p.kind {
	case Request:
		return sStartReq
	case Response:
		return sStartRes
	default:
		return sStartReqOrRes
	}
}

// NewMessage prepares the parser to read the next message on the same
// connection (HTTP pipelining), per spec §4.7. In strict mode, if the
// connection the previous message announced should not be kept alive,
// the parser goes terminally Dead instead: a caller asking to continue a
// connection the protocol itself closed is a programming error.
func (p *Parser) NewMessage() {
	if p.strict && !p.ShouldKeepAlive() {
		// Leave errno untouched: Dead itself still tolerates a trailing
		// CR/LF (see the per-byte sDead case in Execute) and only turns
		// ClosedConnection sticky once some other byte actually arrives.
		p.state = sDead
		return
	}
	p.resetForNextMessage()
}

// BodyIsFinal reports whether the parser has reached the end of the
// current message. It is true once on_message_complete has fired, and
// already during the final on_body of a Content-Length body.
func (p *Parser) BodyIsFinal() bool {
	return p.state == sMessageDone
}

// Execute feeds data to the parser, invoking sink methods as it
// recognizes message structure. It returns the number of bytes consumed
// and the parser's errno afterward (ErrNone on a clean partial parse).
//
// consumed == len(data) unless the parser hit a sticky error (consumed is
// then the index of the offending byte) or finished a message mid-buffer
// (consumed is the index right after it; the remainder, if any, belongs
// to the caller -- call NewMessage and Execute again for pipelined data,
// or hand it to a tunnel after an Upgrade).
//
// Execute(sink, nil) or Execute(sink, []byte{}) signals end of stream; see
// the EOF handling below for which states accept it.
func (p *Parser) Execute(sink Sink, data []byte) (int, Errno) {
	if p.errno != ErrNone {
		return 0, p.errno
	}
	if len(data) == 0 {
		return p.executeEOF(sink)
	}

	urlMark, statusMark, fieldMark, valueMark, bodyMark := -1, -1, -1, -1, -1
	switch p.state {
	case sReqURL:
		urlMark = 0
	case sResStatus:
		if p.index != 0 {
			// already past the mandatory space from a prior call
			statusMark = 0
		}
	case sHeaderField:
		fieldMark = 0
	case sHeaderValue:
		valueMark = 0
	case sBodyIdentity, sBodyIdentityEof, sChunkData:
		bodyMark = 0
	}

	i := 0
	for i < len(data) {
		// Body/chunk-data states consume a run of bytes at once instead
		// of going through the per-byte switch below.
		switch p.state {
		case sBodyIdentity:
			n := len(data) - i
			if uint64(n) > p.contentLength {
				n = int(p.contentLength)
			}
			if bodyMark < 0 {
				bodyMark = i
			}
			end := i + n
			p.contentLength -= uint64(n)
			i = end
			if p.contentLength == 0 {
				// Reached Content-Length before consuming this last
				// sliver: flip to MessageDone before the final on_body
				// so a sink calling BodyIsFinal from inside it sees true.
				p.state = sMessageDone
				r := sink.OnBody(p, data[bodyMark:end])
				bodyMark = -1
				if p.errno != ErrNone {
					return i, p.errno
				}
				if r == CBError {
					p.errno = ErrCBBody
					return i, p.errno
				}
				if done, errno := p.finishMessage(sink); errno != ErrNone || done {
					p.errno = errno
					return i, p.errno
				}
			}
			continue
		case sBodyIdentityEof:
			if bodyMark < 0 {
				bodyMark = i
			}
			i = len(data)
			continue
		case sChunkData:
			n := len(data) - i
			if uint64(n) > p.contentLength {
				n = int(p.contentLength)
			}
			if bodyMark < 0 {
				bodyMark = i
			}
			end := i + n
			p.contentLength -= uint64(n)
			i = end
			if p.contentLength == 0 {
				r := sink.OnBody(p, data[bodyMark:end])
				bodyMark = -1
				if p.errno != ErrNone {
					return i, p.errno
				}
				if r == CBError {
					p.errno = ErrCBBody
					return i, p.errno
				}
				p.state = sChunkDataAlmostDone
			}
			continue
		}

		c := data[i]

		if p.isHeaderRegion() {
			p.nread++
			if p.nread > headerMax {
				p.errno = ErrHeaderOverflow
				return i, p.errno
			}
		}

		switch p.state {
		case sDead:
			if c == '\r' || c == '\n' {
				break
			}
			p.errno = ErrClosedConnection
			return i, p.errno

		// --- request/response disambiguation (kind == Both) ---
		case sStartReqOrRes:
			if c == '\r' || c == '\n' {
				break
			}
			if c == 'H' {
				if r := sink.OnMessageBegin(p); r == CBError || p.errno != ErrNone {
					p.errno = pick(p.errno, ErrCBMessageBegin)
					return i, p.errno
				}
				p.state = sResOrRespH
			} else if isAlpha(c) {
				p.state = sStartReq
				continue // reprocess this byte in the new state
			} else {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
		case sResOrRespH:
			switch c {
			case 'T':
				p.rKind = Response
				p.state = sResHttpHT
			case 'E':
				p.rKind = Request
				p.mthM.start('H')
				p.mthM.feed('E')
				p.state = sReqMethod
			default:
				p.errno = ErrInvalidConstant
				return i, p.errno
			}

		// --- status line ---
		case sStartRes:
			if c == '\r' || c == '\n' {
				break
			}
			if c != 'H' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			if r := sink.OnMessageBegin(p); r == CBError || p.errno != ErrNone {
				p.errno = pick(p.errno, ErrCBMessageBegin)
				return i, p.errno
			}
			p.rKind = Response
			p.state = sResHttpH
		case sResHttpH:
			if c != 'T' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			p.state = sResHttpHT
		case sResHttpHT:
			if c != 'T' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			p.state = sResHttpHTT
		case sResHttpHTT:
			if c != 'P' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			p.state = sResHttpHTTP
		case sResHttpHTTP:
			if c != '/' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			p.state = sResFirstHttpMajor
		case sResFirstHttpMajor:
			if !isNum(c) {
				p.errno = ErrInvalidVersion
				return i, p.errno
			}
			p.version.Major = c - '0'
			p.state = sResHttpMajor
		case sResHttpMajor:
			switch {
			case c == '.':
				p.state = sResFirstHttpMinor
			case isNum(c):
				if v := int(p.version.Major)*10 + int(c-'0'); v > 99 {
					p.errno = ErrInvalidVersion
					return i, p.errno
				} else {
					p.version.Major = uint8(v)
				}
			default:
				p.errno = ErrInvalidVersion
				return i, p.errno
			}
		case sResFirstHttpMinor:
			if !isNum(c) {
				p.errno = ErrInvalidVersion
				return i, p.errno
			}
			p.version.Minor = c - '0'
			p.state = sResHttpMinor
		case sResHttpMinor:
			switch {
			case c == ' ':
				p.state = sResFirstStatusCode
			case isNum(c):
				if v := int(p.version.Minor)*10 + int(c-'0'); v > 99 {
					p.errno = ErrInvalidVersion
					return i, p.errno
				} else {
					p.version.Minor = uint8(v)
				}
			default:
				p.errno = ErrInvalidVersion
				return i, p.errno
			}
		case sResFirstStatusCode:
			if !isNum(c) {
				p.errno = ErrInvalidStatus
				return i, p.errno
			}
			p.statusCode = uint16(c - '0')
			p.index = 1
			p.state = sResStatusCode
		case sResStatusCode:
			if isNum(c) {
				p.statusCode = p.statusCode*10 + uint16(c-'0')
				p.index++
				if p.index == 3 {
					p.state = sResStatus
					p.index = 0 // repurposed: 0 until the space before the reason phrase (if any) is consumed
				}
			} else {
				p.errno = ErrInvalidStatus
				return i, p.errno
			}
		case sResStatus:
			if p.index == 0 {
				p.index = 1
				if c == ' ' {
					break // the single space before the reason phrase isn't part of it
				}
			}
			switch c {
			case '\r':
				if statusMark >= 0 {
					if r := sink.OnStatus(p, data[statusMark:i]); r == CBError || p.errno != ErrNone {
						p.errno = pick(p.errno, ErrCBStatus)
						return i, p.errno
					}
					statusMark = -1
				}
				p.state = sResLineAlmostDone
			case '\n':
				if statusMark >= 0 {
					if r := sink.OnStatus(p, data[statusMark:i]); r == CBError || p.errno != ErrNone {
						p.errno = pick(p.errno, ErrCBStatus)
						return i, p.errno
					}
					statusMark = -1
				}
				p.state = sHeaderFieldStart
			default:
				if statusMark < 0 {
					statusMark = i
				}
			}
		case sResLineAlmostDone:
			if c != '\n' {
				p.errno = ErrLFExpected
				return i, p.errno
			}
			p.state = sHeaderFieldStart

		// --- request line ---
		case sStartReq:
			if c == '\r' || c == '\n' {
				break
			}
			if !isAlpha(c) {
				p.errno = ErrInvalidMethod
				return i, p.errno
			}
			if r := sink.OnMessageBegin(p); r == CBError || p.errno != ErrNone {
				p.errno = pick(p.errno, ErrCBMessageBegin)
				return i, p.errno
			}
			p.rKind = Request
			p.mthM.start(c)
			p.state = sReqMethod
		case sReqMethod:
			if c == ' ' {
				m := p.mthM.finish()
				if m == MUndef {
					p.errno = ErrInvalidMethod
					return i, p.errno
				}
				p.method = m
				p.state = sReqSpacesBeforeUrl
			} else if isAlpha(c) || c == '-' {
				p.mthM.feed(c)
			} else {
				p.errno = ErrInvalidMethod
				return i, p.errno
			}
		case sReqSpacesBeforeUrl:
			if c == ' ' {
				break
			}
			p.url.reset(p.method == MConnect)
			urlMark = i
			if !p.url.step(c, p.strict) {
				p.errno = ErrInvalidUrl
				return i, p.errno
			}
			p.state = sReqURL
		case sReqURL:
			switch c {
			case ' ':
				if r := sink.OnURL(p, data[urlMark:i]); r == CBError || p.errno != ErrNone {
					p.errno = pick(p.errno, ErrCBUrl)
					return i, p.errno
				}
				urlMark = -1
				p.state = sReqHttpStart
			case '\r', '\n':
				if r := sink.OnURL(p, data[urlMark:i]); r == CBError || p.errno != ErrNone {
					p.errno = pick(p.errno, ErrCBUrl)
					return i, p.errno
				}
				urlMark = -1
				p.version = HttpVersion{0, 9}
				p.state = sHeaderFieldStart
				continue // reprocess the CR/LF as the headers terminator
			default:
				if !p.url.step(c, p.strict) {
					p.errno = ErrInvalidUrl
					return i, p.errno
				}
			}
		case sReqHttpStart:
			if c != 'H' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			p.state = sReqHttpH
		case sReqHttpH:
			if c != 'T' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			p.state = sReqHttpHT
		case sReqHttpHT:
			if c != 'T' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			p.state = sReqHttpHTT
		case sReqHttpHTT:
			if c != 'P' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			p.state = sReqHttpHTTP
		case sReqHttpHTTP:
			if c != '/' {
				p.errno = ErrInvalidConstant
				return i, p.errno
			}
			p.state = sReqFirstHttpMajor
		case sReqFirstHttpMajor:
			if !isNum(c) {
				p.errno = ErrInvalidVersion
				return i, p.errno
			}
			p.version.Major = c - '0'
			p.state = sReqHttpMajor
		case sReqHttpMajor:
			switch {
			case c == '.':
				p.state = sReqFirstHttpMinor
			case isNum(c):
				if v := int(p.version.Major)*10 + int(c-'0'); v > 99 {
					p.errno = ErrInvalidVersion
					return i, p.errno
				} else {
					p.version.Major = uint8(v)
				}
			default:
				p.errno = ErrInvalidVersion
				return i, p.errno
			}
		case sReqFirstHttpMinor:
			if !isNum(c) {
				p.errno = ErrInvalidVersion
				return i, p.errno
			}
			p.version.Minor = c - '0'
			p.state = sReqHttpMinor
		case sReqHttpMinor:
			switch {
			case c == '\r':
				p.state = sReqLineAlmostDone
			case c == '\n':
				p.state = sHeaderFieldStart
			case isNum(c):
				if v := int(p.version.Minor)*10 + int(c-'0'); v > 99 {
					p.errno = ErrInvalidVersion
					return i, p.errno
				} else {
					p.version.Minor = uint8(v)
				}
			default:
				p.errno = ErrInvalidVersion
				return i, p.errno
			}
		case sReqLineAlmostDone:
			if c != '\n' {
				p.errno = ErrLFExpected
				return i, p.errno
			}
			p.state = sHeaderFieldStart

		// --- headers ---
		case sHeaderFieldStart:
			switch c {
			case '\r':
				p.state = sHeadersAlmostDone
			case '\n':
				if done, errno := p.headersDone(sink); errno != ErrNone {
					p.errno = errno
					return i + 1, errno
				} else if done {
					return i + 1, ErrNone
				}
			default:
				if !isHeaderToken(p.strict, c) {
					p.errno = ErrInvalidHeaderToken
					return i, p.errno
				}
				fieldMark = i
				p.curHdr = HdrGeneral
				p.mth.start(c)
				p.state = sHeaderField
			}
		case sHeaderField:
			if c == ':' {
				if r := sink.OnHeaderField(p, data[fieldMark:i]); r == CBError || p.errno != ErrNone {
					p.errno = pick(p.errno, ErrCBHeaderField)
					return i, p.errno
				}
				fieldMark = -1
				p.curHdr = p.mth.finish()
				if p.curHdr == HdrUpgrade {
					p.flags.set(flagUpgrade)
				}
				p.teM = newExactMatcher([]byte("chunked"))
				p.kaM = newExactMatcher([]byte("keep-alive"))
				p.closeM = newExactMatcher([]byte("close"))
				p.state = sHeaderValueDiscardWs
			} else if isHeaderToken(p.strict, c) {
				p.mth.feed(c)
			} else {
				p.errno = ErrInvalidHeaderToken
				return i, p.errno
			}
		case sHeaderValueDiscardWs:
			switch c {
			case ' ', '\t':
			case '\r':
				p.state = sHeaderValueDiscardWsAlmostDone
			case '\n':
				p.commitHeader()
				p.state = sHeaderFieldStart
			default:
				valueMark = i
				if err := p.feedHeaderValue(c); err != ErrNone {
					p.errno = err
					return i, p.errno
				}
				p.state = sHeaderValue
			}
		case sHeaderValueDiscardWsAlmostDone:
			if c != '\n' {
				p.errno = ErrLFExpected
				return i, p.errno
			}
			p.commitHeader()
			p.state = sHeaderFieldStart
		case sHeaderValueDiscardLws:
			switch c {
			case ' ', '\t':
			case '\r':
				p.state = sHeaderAlmostDone
			case '\n':
				p.commitHeader()
				p.state = sHeaderFieldStart
			default:
				valueMark = i
				if err := p.feedHeaderValue(c); err != ErrNone {
					p.errno = err
					return i, p.errno
				}
				p.state = sHeaderValue
			}
		case sHeaderValue:
			switch c {
			case '\r':
				if valueMark >= 0 {
					if r := sink.OnHeaderValue(p, data[valueMark:i]); r == CBError || p.errno != ErrNone {
						p.errno = pick(p.errno, ErrCBHeaderValue)
						return i, p.errno
					}
					valueMark = -1
				}
				p.state = sHeaderAlmostDone
			case '\n':
				if valueMark >= 0 {
					if r := sink.OnHeaderValue(p, data[valueMark:i]); r == CBError || p.errno != ErrNone {
						p.errno = pick(p.errno, ErrCBHeaderValue)
						return i, p.errno
					}
					valueMark = -1
				}
				p.state = sHeaderValueLws
			default:
				if err := p.feedHeaderValue(c); err != ErrNone {
					p.errno = err
					return i, p.errno
				}
			}
		case sHeaderAlmostDone:
			if c != '\n' {
				p.errno = ErrLFExpected
				return i, p.errno
			}
			p.state = sHeaderValueLws
		case sHeaderValueLws:
			if c == ' ' || c == '\t' {
				p.state = sHeaderValueDiscardLws
			} else {
				p.commitHeader()
				p.state = sHeaderFieldStart
				continue // reprocess: next header field, or end of headers
			}

		case sHeadersAlmostDone:
			if c != '\n' {
				p.errno = ErrLFExpected
				return i, p.errno
			}
			if done, errno := p.headersDone(sink); errno != ErrNone {
				p.errno = errno
				return i + 1, errno
			} else if done {
				return i + 1, ErrNone
			}

		// --- chunked transfer encoding ---
		case sChunkSizeStart:
			v, ok := unhex(c)
			if !ok {
				p.errno = ErrInvalidChunkSize
				return i, p.errno
			}
			p.contentLength = uint64(v)
			p.state = sChunkSize
		case sChunkSize:
			if v, ok := unhex(c); ok {
				if (math.MaxUint64-16)/16 < p.contentLength {
					p.errno = ErrInvalidContentLength
					return i, p.errno
				}
				p.contentLength = p.contentLength*16 + uint64(v)
			} else if c == ';' || c == ' ' {
				p.state = sChunkParameters
			} else if c == '\r' {
				p.state = sChunkSizeAlmostDone
			} else if c == '\n' {
				if done := p.chunkSizeDone(); done != ErrNone {
					p.errno = done
					return i, p.errno
				}
			} else {
				p.errno = ErrInvalidChunkSize
				return i, p.errno
			}
		case sChunkParameters:
			if c == '\r' {
				p.state = sChunkSizeAlmostDone
			} else if c == '\n' {
				if done := p.chunkSizeDone(); done != ErrNone {
					p.errno = done
					return i, p.errno
				}
			}
		case sChunkSizeAlmostDone:
			if c != '\n' {
				p.errno = ErrLFExpected
				return i, p.errno
			}
			if done := p.chunkSizeDone(); done != ErrNone {
				p.errno = done
				return i, p.errno
			}
		case sChunkDataAlmostDone:
			if c != '\r' {
				if c == '\n' {
					p.contentLength = 0
					p.state = sChunkSizeStart
					break
				}
				p.errno = ErrLFExpected
				return i, p.errno
			}
			p.state = sChunkDataDone
		case sChunkDataDone:
			if c != '\n' {
				p.errno = ErrLFExpected
				return i, p.errno
			}
			p.contentLength = 0
			p.state = sChunkSizeStart

		case sMessageDone:
			return i, ErrNone

		default:
			p.errno = ErrInvalidInternalState
			return i, p.errno
		}

		i++
	}

	// Buffer exhausted mid-region: fire the final, partial emit for any
	// mark still open (spec §5).
	if urlMark >= 0 {
		if r := sink.OnURL(p, data[urlMark:]); r == CBError || p.errno != ErrNone {
			p.errno = pick(p.errno, ErrCBUrl)
			return len(data), p.errno
		}
	}
	if statusMark >= 0 {
		if r := sink.OnStatus(p, data[statusMark:]); r == CBError || p.errno != ErrNone {
			p.errno = pick(p.errno, ErrCBStatus)
			return len(data), p.errno
		}
	}
	if fieldMark >= 0 {
		if r := sink.OnHeaderField(p, data[fieldMark:]); r == CBError || p.errno != ErrNone {
			p.errno = pick(p.errno, ErrCBHeaderField)
			return len(data), p.errno
		}
	}
	if valueMark >= 0 {
		if r := sink.OnHeaderValue(p, data[valueMark:]); r == CBError || p.errno != ErrNone {
			p.errno = pick(p.errno, ErrCBHeaderValue)
			return len(data), p.errno
		}
	}
	if bodyMark >= 0 {
		if r := sink.OnBody(p, data[bodyMark:]); r == CBError || p.errno != ErrNone {
			p.errno = pick(p.errno, ErrCBBody)
			return len(data), p.errno
		}
	}
	return len(data), ErrNone
}

// executeEOF implements the empty-input half of spec §4.6.
func (p *Parser) executeEOF(sink Sink) (int, Errno) {
	switch p.state {
	case sBodyIdentityEof:
		if r := sink.OnMessageComplete(p); r == CBError || p.errno != ErrNone {
			p.errno = pick(p.errno, ErrCBMessageComplete)
			return 0, p.errno
		}
		p.state = sMessageDone
		return 0, ErrNone
	case sMessageDone, sStartReq, sStartRes, sStartReqOrRes, sDead:
		return 0, ErrNone
	default:
		p.errno = ErrInvalidEofState
		return 0, p.errno
	}
}

// feedHeaderValue updates the running recognizers for the five
// significant headers as value bytes arrive. It returns a non-ErrNone
// Errno only for a malformed Content-Length digit string.
func (p *Parser) feedHeaderValue(c byte) Errno {
	switch p.curHdr {
	case HdrContentLength:
		if !isNum(c) {
			return ErrInvalidContentLength
		}
		if p.contentLength == clUnset {
			p.contentLength = 0
		}
		if (math.MaxUint64-10)/10 < p.contentLength {
			return ErrInvalidContentLength
		}
		p.contentLength = p.contentLength*10 + uint64(c-'0')
	case HdrTransferEncoding:
		p.teM.feed(c)
	case HdrConnection, HdrProxyConnection:
		// Proxy-Connection is a legacy alias some clients/proxies still
		// send instead of Connection; tracked the same way.
		p.kaM.feed(c)
		p.closeM.feed(c)
	}
	return ErrNone
}

// commitHeader finalizes the flags implied by a just-completed header
// line (spec §4.3): called once the value, including any continuation
// lines, is fully seen.
func (p *Parser) commitHeader() {
	switch p.curHdr {
	case HdrTransferEncoding:
		if p.teM.matched() {
			p.flags.set(flagChunked)
		}
	case HdrConnection, HdrProxyConnection:
		if p.kaM.matched() {
			p.flags.set(flagKeepAlive)
		}
		if p.closeM.matched() {
			p.flags.set(flagClose)
		}
	}
}

// headersDone runs the body-mode decision from spec §4.4 once the blank
// line ending the header block (or chunked trailer block) is seen. It
// returns done==true when Execute should return immediately (message
// complete or protocol upgrade mid-buffer).
func (p *Parser) headersDone(sink Sink) (done bool, errno Errno) {
	p.nread = 0

	if p.flags.has(flagTrailing) {
		p.flags.clear(flagTrailing)
		if r := sink.OnMessageComplete(p); r == CBError || p.errno != ErrNone {
			return true, pick(p.errno, ErrCBMessageComplete)
		}
		p.state = sMessageDone
		return true, ErrNone
	}

	p.upgrade = p.flags.has(flagUpgrade) || (p.rKind == Request && p.method == MConnect)

	switch r := sink.OnHeadersComplete(p); r {
	case CBSkipBody:
		p.flags.set(flagSkipBody)
	case CBError:
		return true, ErrCBHeadersComplete
	}
	if p.errno != ErrNone {
		return true, p.errno
	}

	if p.upgrade {
		if r := sink.OnMessageComplete(p); r == CBError || p.errno != ErrNone {
			return true, pick(p.errno, ErrCBMessageComplete)
		}
		p.state = sMessageDone
		return true, ErrNone
	}
	if p.flags.has(flagSkipBody) {
		if r := sink.OnMessageComplete(p); r == CBError || p.errno != ErrNone {
			return true, pick(p.errno, ErrCBMessageComplete)
		}
		p.state = sMessageDone
		return true, ErrNone
	}
	if p.flags.has(flagChunked) {
		p.contentLength = 0
		p.state = sChunkSizeStart
		return false, ErrNone
	}
	if p.contentLength == 0 {
		if r := sink.OnMessageComplete(p); r == CBError || p.errno != ErrNone {
			return true, pick(p.errno, ErrCBMessageComplete)
		}
		p.state = sMessageDone
		return true, ErrNone
	}
	if p.contentLength != clUnset {
		p.state = sBodyIdentity
		return false, ErrNone
	}
	if p.rKind == Request || !p.needsEOF() {
		if r := sink.OnMessageComplete(p); r == CBError || p.errno != ErrNone {
			return true, pick(p.errno, ErrCBMessageComplete)
		}
		p.state = sMessageDone
		return true, ErrNone
	}
	p.state = sBodyIdentityEof
	return false, ErrNone
}

// chunkSizeDone is the LF-reached half of the chunk-size grammar (spec
// §4.4 Chunked): a zero-sized chunk starts the trailer header block,
// otherwise the next contentLength bytes are chunk data.
func (p *Parser) chunkSizeDone() Errno {
	if p.contentLength == 0 {
		p.flags.set(flagTrailing)
		p.nread = 0
		p.state = sHeaderFieldStart
		return ErrNone
	}
	p.state = sChunkData
	return ErrNone
}

// finishMessage emits on_message_complete once identity-body decoding
// reaches zero remaining bytes.
func (p *Parser) finishMessage(sink Sink) (done bool, errno Errno) {
	if r := sink.OnMessageComplete(p); r == CBError || p.errno != ErrNone {
		return true, pick(p.errno, ErrCBMessageComplete)
	}
	p.state = sMessageDone
	return true, ErrNone
}

// isHeaderRegion reports whether the current state counts toward the
// header-block size cap (spec §3, §9): the request/status line, header
// field/value parsing, and chunk trailers, but not body or chunk-size
// lines (chunk framing has no comparable size hazard: each chunk-size
// line is a handful of bytes).
func (p *Parser) isHeaderRegion() bool {
	switch p.state {
	case sStartReqOrRes, sResOrRespH,
		sStartRes, sResHttpH, sResHttpHT, sResHttpHTT, sResHttpHTTP,
		sResFirstHttpMajor, sResHttpMajor, sResFirstHttpMinor, sResHttpMinor,
		sResFirstStatusCode, sResStatusCode, sResStatus, sResLineAlmostDone,
		sStartReq, sReqMethod, sReqSpacesBeforeUrl, sReqURL,
		sReqHttpStart, sReqHttpH, sReqHttpHT, sReqHttpHTT, sReqHttpHTTP,
		sReqFirstHttpMajor, sReqHttpMajor, sReqFirstHttpMinor, sReqHttpMinor,
		sReqLineAlmostDone,
		sHeaderFieldStart, sHeaderField, sHeaderValueDiscardWs,
		sHeaderValueDiscardWsAlmostDone, sHeaderValueDiscardLws,
		sHeaderValue, sHeaderValueLws, sHeaderAlmostDone,
		sHeadersAlmostDone, sHeadersDone:
		return true
	}
	return false
}

// pick keeps an already-set sticky errno (e.g. one a Sink set via Pause
// from inside a callback) instead of overwriting it with the default for
// the call site that noticed it.
func pick(existing, fallback Errno) Errno {
	if existing != ErrNone {
		return existing
	}
	return fallback
}
