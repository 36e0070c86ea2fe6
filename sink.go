// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

// CBResult is the three-way result a Sink handler returns to the parser
// (see spec §6 and original_source/src/callback.rs ParseAction).
type CBResult uint8

const (
	// CBNone means proceed normally.
	CBNone CBResult = iota
	// CBSkipBody is meaningful only as the return of OnHeadersComplete;
	// elsewhere it is treated like CBNone.
	CBSkipBody
	// CBError aborts the current Execute call; the parser sets a sticky
	// CB* Errno matching the handler that returned it.
	CBError
)

// Sink receives parsing events from a Parser's Execute call. Data-style
// handlers receive a byte slice that is only valid for the duration of the
// call: the parser never retains it, and the Sink must copy out anything
// it needs to keep.
//
// A Sink implementation only needs to embed NoopSink to get default
// no-op behavior for handlers it doesn't care about.
type Sink interface {
	OnMessageBegin(p *Parser) CBResult
	OnURL(p *Parser, data []byte) CBResult
	OnStatus(p *Parser, data []byte) CBResult
	OnHeaderField(p *Parser, data []byte) CBResult
	OnHeaderValue(p *Parser, data []byte) CBResult
	OnHeadersComplete(p *Parser) CBResult
	OnBody(p *Parser, data []byte) CBResult
	OnMessageComplete(p *Parser) CBResult
}

// NoopSink implements Sink with every handler returning CBNone. Embed it
// in a caller's sink type to only override the handlers it needs.
type NoopSink struct{}

func (NoopSink) OnMessageBegin(p *Parser) CBResult                 { return CBNone }
func (NoopSink) OnURL(p *Parser, data []byte) CBResult             { return CBNone }
func (NoopSink) OnStatus(p *Parser, data []byte) CBResult          { return CBNone }
func (NoopSink) OnHeaderField(p *Parser, data []byte) CBResult     { return CBNone }
func (NoopSink) OnHeaderValue(p *Parser, data []byte) CBResult     { return CBNone }
func (NoopSink) OnHeadersComplete(p *Parser) CBResult              { return CBNone }
func (NoopSink) OnBody(p *Parser, data []byte) CBResult            { return CBNone }
func (NoopSink) OnMessageComplete(p *Parser) CBResult              { return CBNone }
