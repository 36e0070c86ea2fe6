// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import (
	"strings"
	"testing"
)

// recSink records every event it receives, concatenating multi-call data
// (a single logical field/value/body/url/status may arrive over several
// Sink calls when Execute is fed in small pieces).
type recSink struct {
	NoopSink
	events       []string
	url          string
	status       string
	fields       []string
	values       []string
	body         []byte
	headersDone  int
	messageDone  int
	messageBegin int
}

func (s *recSink) OnMessageBegin(p *Parser) CBResult {
	s.messageBegin++
	s.events = append(s.events, "message_begin")
	return CBNone
}
func (s *recSink) OnURL(p *Parser, data []byte) CBResult {
	s.url += string(data)
	return CBNone
}
func (s *recSink) OnStatus(p *Parser, data []byte) CBResult {
	s.status += string(data)
	return CBNone
}
func (s *recSink) OnHeaderField(p *Parser, data []byte) CBResult {
	if len(s.fields) == len(s.values) {
		s.fields = append(s.fields, string(data))
	} else {
		s.fields[len(s.fields)-1] += string(data)
	}
	return CBNone
}
func (s *recSink) OnHeaderValue(p *Parser, data []byte) CBResult {
	if len(s.values) < len(s.fields) {
		s.values = append(s.values, string(data))
	} else {
		s.values[len(s.values)-1] += string(data)
	}
	return CBNone
}
func (s *recSink) OnHeadersComplete(p *Parser) CBResult {
	s.headersDone++
	s.events = append(s.events, "headers_complete")
	return CBNone
}
func (s *recSink) OnBody(p *Parser, data []byte) CBResult {
	s.body = append(s.body, data...)
	return CBNone
}
func (s *recSink) OnMessageComplete(p *Parser) CBResult {
	s.messageDone++
	s.events = append(s.events, "message_complete")
	return CBNone
}

// feedPieces runs the whole input through Execute n bytes at a time, to
// exercise partial-buffer behavior instead of only the easy single-shot
// case.
func feedPieces(t *testing.T, p *Parser, sink Sink, input string, pieceLen int) {
	t.Helper()
	data := []byte(input)
	for len(data) > 0 {
		n := pieceLen
		if n > len(data) {
			n = len(data)
		}
		consumed, errno := p.Execute(sink, data[:n])
		if errno != ErrNone {
			t.Fatalf("Execute error: %v (consumed %d of %q)", errno, consumed, data[:n])
		}
		if consumed != n {
			t.Fatalf("consumed %d of %d bytes mid-message; this harness doesn't feed pipelined data", consumed, n)
		}
		data = data[n:]
	}
}

func TestSimpleGetRequest(t *testing.T) {
	for _, piece := range []int{1, 3, 7, 4096} {
		p := New(Request, false)
		sink := &recSink{}
		req := "GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n"
		feedPieces(t, p, sink, req, piece)
		if sink.url != "/index.html" {
			t.Errorf("piece=%d: url = %q, want /index.html", piece, sink.url)
		}
		if p.Method() != MGet {
			t.Errorf("piece=%d: method = %v, want MGet", piece, p.Method())
		}
		if p.Version() != (HttpVersion{1, 1}) {
			t.Errorf("piece=%d: version = %v, want 1.1", piece, p.Version())
		}
		if sink.messageDone != 1 {
			t.Errorf("piece=%d: messageDone = %d, want 1", piece, sink.messageDone)
		}
		if !p.ShouldKeepAlive() {
			t.Errorf("piece=%d: expected keep-alive for HTTP/1.1", piece)
		}
	}
}

func TestResponseWithContentLength(t *testing.T) {
	p := New(Response, false)
	sink := &recSink{}
	resp := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"
	feedPieces(t, p, sink, resp, 2)
	if p.StatusCode() != 200 {
		t.Errorf("status = %d, want 200", p.StatusCode())
	}
	if sink.status != "OK" {
		t.Errorf("status reason = %q, want OK", sink.status)
	}
	if string(sink.body) != "hello" {
		t.Errorf("body = %q, want hello", sink.body)
	}
	if sink.messageDone != 1 {
		t.Errorf("messageDone = %d, want 1", sink.messageDone)
	}
}

func TestResponseEOFTerminated(t *testing.T) {
	p := New(Response, false)
	sink := &recSink{}
	resp := "HTTP/1.0 200 OK\r\n\r\nsome body without a length"
	n, errno := p.Execute(sink, []byte(resp))
	if errno != ErrNone {
		t.Fatalf("Execute: %v", errno)
	}
	if n != len(resp) {
		t.Fatalf("consumed %d, want %d", n, len(resp))
	}
	if sink.messageDone != 0 {
		t.Fatalf("message should not be complete before EOF")
	}
	if _, errno := p.Execute(sink, nil); errno != ErrNone {
		t.Fatalf("Execute(nil): %v", errno)
	}
	if string(sink.body) != "some body without a length" {
		t.Errorf("body = %q", sink.body)
	}
	if sink.messageDone != 1 {
		t.Errorf("messageDone = %d, want 1", sink.messageDone)
	}
	if p.ShouldKeepAlive() {
		t.Error("expected no keep-alive for HTTP/1.0 EOF-terminated body")
	}
}

func TestChunkedResponse(t *testing.T) {
	p := New(Response, false)
	sink := &recSink{}
	resp := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	for _, piece := range []int{1, 5} {
		p = New(Response, false)
		sink = &recSink{}
		feedPieces(t, p, sink, resp, piece)
		if string(sink.body) != "hello world" {
			t.Errorf("piece=%d: body = %q, want %q", piece, sink.body, "hello world")
		}
		if sink.messageDone != 1 {
			t.Errorf("piece=%d: messageDone = %d, want 1", piece, sink.messageDone)
		}
	}
}

func TestChunkedWithTrailers(t *testing.T) {
	p := New(Response, false)
	sink := &recSink{}
	resp := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"4\r\nWiki\r\n0\r\nX-Checksum: abc123\r\n\r\n"
	feedPieces(t, p, sink, resp, 3)
	if string(sink.body) != "Wiki" {
		t.Errorf("body = %q, want Wiki", sink.body)
	}
	if sink.messageDone != 1 {
		t.Errorf("messageDone = %d, want 1", sink.messageDone)
	}
}

func TestInvalidVersion(t *testing.T) {
	p := New(Request, false)
	sink := &recSink{}
	_, errno := p.Execute(sink, []byte("GET / HTP/1.1\r\n\r\n"))
	if errno != ErrInvalidConstant {
		t.Errorf("errno = %v, want ErrInvalidConstant", errno)
	}
}

func TestLargeContentLengthOneByteAtATime(t *testing.T) {
	const n = 100000
	p := New(Request, false)
	sink := &recSink{}
	head := "POST /upload HTTP/1.1\r\nContent-Length: " + itoa(n) + "\r\n\r\n"
	body := strings.Repeat("x", n)
	feedPieces(t, p, sink, head+body, 1)
	if len(sink.body) != n {
		t.Fatalf("body length = %d, want %d", len(sink.body), n)
	}
	if sink.messageDone != 1 {
		t.Errorf("messageDone = %d, want 1", sink.messageDone)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestConnectUpgrade(t *testing.T) {
	p := New(Request, false)
	sink := &recSink{}
	req := "CONNECT example.com:443 HTTP/1.1\r\nHost: example.com:443\r\n\r\n"
	n, errno := p.Execute(sink, []byte(req))
	if errno != ErrNone {
		t.Fatalf("Execute: %v", errno)
	}
	if n != len(req) {
		t.Fatalf("consumed %d, want %d (tunnel ownership should begin right after headers)", n, len(req))
	}
	if !p.Upgrade() {
		t.Error("expected Upgrade() true for CONNECT")
	}
	if sink.messageDone != 1 {
		t.Errorf("messageDone = %d, want 1", sink.messageDone)
	}
}

func TestUpgradeHeader(t *testing.T) {
	p := New(Request, false)
	sink := &recSink{}
	req := "GET /chat HTTP/1.1\r\nHost: example.com\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n\r\n"
	_, errno := p.Execute(sink, []byte(req))
	if errno != ErrNone {
		t.Fatalf("Execute: %v", errno)
	}
	if !p.Upgrade() {
		t.Error("expected Upgrade() true")
	}
}

func TestHeadRequestHasNoBody(t *testing.T) {
	p := New(Request, false)
	sink := &recSink{}
	req := "HEAD / HTTP/1.1\r\nHost: x\r\n\r\n"
	feedPieces(t, p, sink, req, 3)
	if p.Method() != MHead {
		t.Fatalf("method = %v, want MHead", p.Method())
	}
	if sink.messageDone != 1 {
		t.Errorf("messageDone = %d, want 1", sink.messageDone)
	}
}

func TestAutoDetectKind(t *testing.T) {
	p := New(Both, false)
	sink := &recSink{}
	feedPieces(t, p, sink, "HTTP/1.1 204 No Content\r\n\r\n", 2)
	if p.ResolvedKind() != Response {
		t.Errorf("ResolvedKind = %v, want Response", p.ResolvedKind())
	}
	if p.Kind() != Both {
		t.Errorf("Kind should stay Both, got %v", p.Kind())
	}

	p2 := New(Both, false)
	sink2 := &recSink{}
	feedPieces(t, p2, sink2, "GET / HTTP/1.1\r\n\r\n", 2)
	if p2.ResolvedKind() != Request {
		t.Errorf("ResolvedKind = %v, want Request", p2.ResolvedKind())
	}
}

func TestPipeliningNewMessage(t *testing.T) {
	p := New(Request, false)
	sink := &recSink{}
	first := "GET /a HTTP/1.1\r\nHost: x\r\n\r\n"
	n, errno := p.Execute(sink, []byte(first))
	if errno != ErrNone || n != len(first) {
		t.Fatalf("first message: n=%d errno=%v", n, errno)
	}
	if !p.BodyIsFinal() {
		t.Fatal("expected message complete")
	}
	p.NewMessage()
	second := "GET /b HTTP/1.1\r\nHost: x\r\n\r\n"
	sink2 := &recSink{}
	n, errno = p.Execute(sink2, []byte(second))
	if errno != ErrNone || n != len(second) {
		t.Fatalf("second message: n=%d errno=%v", n, errno)
	}
	if sink2.url != "/b" {
		t.Errorf("second url = %q, want /b", sink2.url)
	}
}

func TestPause(t *testing.T) {
	p := New(Request, false)
	sink := &pausingSink{}
	req := "GET /a HTTP/1.1\r\nHost: x\r\n\r\n"
	_, errno := p.Execute(sink, []byte(req))
	if errno != ErrPaused {
		t.Fatalf("errno = %v, want ErrPaused", errno)
	}
	if !errno.Recoverable() {
		t.Error("ErrPaused should be Recoverable")
	}
	p.Pause(false)
	if p.Errno() != ErrNone {
		t.Errorf("Errno() after resume = %v, want ErrNone", p.Errno())
	}
}

type pausingSink struct {
	NoopSink
}

func (pausingSink) OnURL(p *Parser, data []byte) CBResult {
	p.Pause(true)
	return CBNone
}

func TestOverlongHeadersRejected(t *testing.T) {
	p := New(Request, false)
	sink := &recSink{}
	req := "GET / HTTP/1.1\r\nX-Long: " + strings.Repeat("a", headerMax+1) + "\r\n\r\n"
	_, errno := p.Execute(sink, []byte(req))
	if errno != ErrHeaderOverflow {
		t.Errorf("errno = %v, want ErrHeaderOverflow", errno)
	}
}

func TestInvalidContentLengthDigit(t *testing.T) {
	p := New(Request, false)
	sink := &recSink{}
	_, errno := p.Execute(sink, []byte("POST / HTTP/1.1\r\nContent-Length: 12x\r\n\r\n"))
	if errno != ErrInvalidContentLength {
		t.Errorf("errno = %v, want ErrInvalidContentLength", errno)
	}
}

func TestNewMessageStrictGoesDeadButTolerantToCRLF(t *testing.T) {
	p := New(Request, true)
	sink := &recSink{}
	req := "GET /a HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"
	n, errno := p.Execute(sink, []byte(req))
	if errno != ErrNone || n != len(req) {
		t.Fatalf("first message: n=%d errno=%v", n, errno)
	}
	if p.ShouldKeepAlive() {
		t.Fatal("expected Connection: close to turn off keep-alive")
	}

	p.NewMessage()
	if errno := p.errno; errno != ErrNone {
		t.Fatalf("NewMessage set a sticky error eagerly: %v", errno)
	}

	// A trailing CR/LF left over on the closed connection must still be
	// tolerated rather than rejected outright.
	n, errno = p.Execute(sink, []byte("\r\n"))
	if errno != ErrNone || n != 2 {
		t.Fatalf("CR/LF on a dead connection: n=%d errno=%v", n, errno)
	}

	// Any other byte turns the sticky ClosedConnection error on.
	n, errno = p.Execute(sink, []byte("X"))
	if errno != ErrClosedConnection {
		t.Fatalf("errno = %v, want ErrClosedConnection", errno)
	}
	if n != 0 {
		t.Errorf("consumed = %d, want 0", n)
	}

	// The error is sticky: further calls keep returning it without
	// re-examining their input.
	if _, errno := p.Execute(sink, []byte("anything")); errno != ErrClosedConnection {
		t.Errorf("errno = %v, want sticky ErrClosedConnection", errno)
	}
}
