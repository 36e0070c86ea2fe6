// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package httpparse

import "github.com/intuitivelabs/bytescase"

// UpgradeProto is a recognized Upgrade: header protocol token, resolved to
// a numeric flag. Upgrade is a general header (spec §4.3 only recognizes
// 5 headers by name), so the parser itself only tracks whether an Upgrade
// header was present (flagUpgrade, surfaced through Parser.Upgrade); a Sink
// that wants to know which protocol was requested calls ResolveUpgradeProto
// itself on the raw bytes it received through OnHeaderValue.
type UpgradeProto uint

// Protocol flag values, see
// https://www.iana.org/assignments/http-upgrade-tokens/http-upgrade-tokens.xhtml
const (
	UpgradeProtoNone      UpgradeProto = 0
	UpgradeProtoWebSocket UpgradeProto = 1 << iota
	UpgradeProtoHTTP2
	UpgradeProtoOther // recognized as present, but not one of the known tokens
)

// ResolveUpgradeProto maps an Upgrade protocol token to its flag value.
func ResolveUpgradeProto(tok []byte) UpgradeProto {
	switch {
	case bytescase.CmpEq(tok, []byte("websocket")):
		return UpgradeProtoWebSocket
	case bytescase.CmpEq(tok, []byte("h2c")), bytescase.CmpEq(tok, []byte("http/2.0")):
		return UpgradeProtoHTTP2
	}
	return UpgradeProtoOther
}

// ParseUpgradeProtos splits an Upgrade header value into its comma-separated
// protocol tokens and resolves each one.
func ParseUpgradeProtos(value []byte) (flags UpgradeProto, protos [][]byte) {
	for _, tok := range splitTrim(value, ',') {
		flags |= ResolveUpgradeProto(tok)
		protos = append(protos, tok)
	}
	return flags, protos
}
