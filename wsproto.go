// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import "github.com/intuitivelabs/bytescase"

// WSProto is a recognized Sec-WebSocket-Protocol sub-protocol token.
// Like WSExt, this sits outside the core 5-header recognizer: a Sink
// interested in WebSocket upgrades parses the raw value it received
// through OnHeaderValue for a general header named
// "Sec-WebSocket-Protocol" itself, using ParseWSProtocols.
type WSProto uint

const (
	WSProtoNone WSProto = 0
	WSProtoSIP  WSProto = 1 << iota
	WSProtoXMPP
	WSProtoMSRP
	WSProtoOther
)

// ResolveWSProto maps a sub-protocol token to its flag value.
func ResolveWSProto(tok []byte) WSProto {
	switch {
	case bytescase.CmpEq(tok, []byte("sip")):
		return WSProtoSIP
	case bytescase.CmpEq(tok, []byte("xmpp")):
		return WSProtoXMPP
	case bytescase.CmpEq(tok, []byte("msrp")):
		return WSProtoMSRP
	}
	return WSProtoOther
}

// ParseWSProtocols splits a Sec-WebSocket-Protocol header value into its
// comma-separated tokens and resolves each one. protos holds each bare
// token name in order.
func ParseWSProtocols(value []byte) (flags WSProto, protos [][]byte) {
	for _, tok := range splitTrim(value, ',') {
		flags |= ResolveWSProto(tok)
		protos = append(protos, tok)
	}
	return flags, protos
}
