// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Command httptap is a thin demonstration of embedding httpparse: it taps
// a TCP listener, runs each connection's bytes through a Parser fed in
// small chunks (so the streaming/partial-read behavior is exercised, not
// just a full-buffer happy path), and logs every event the parser emits.
package main

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/streamparse/httpparse"
)

var (
	listenAddr string
	chunkSize  int
	kindFlag   string
	strict     bool
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "httptap",
		Short: "Tap a TCP listener and log the HTTP messages httpparse recognizes on it",
		RunE:  run,
	}
	root.Flags().StringVar(&listenAddr, "listen", ":8080", "address to listen on")
	root.Flags().IntVar(&chunkSize, "chunk-size", 512, "max bytes read per syscall, to exercise partial parses")
	root.Flags().StringVar(&kindFlag, "kind", "request", "message kind to expect: request, response, or auto")
	root.Flags().BoolVar(&strict, "strict", false, "enable RFC-strict character classes")
	root.Flags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	kind, err := parseKind(kindFlag)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", listenAddr, err)
	}
	defer ln.Close()
	logger.Info("listening", zap.String("addr", listenAddr), zap.Int("chunk_size", chunkSize))

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		go tapConnection(conn, kind, logger)
	}
}

func parseKind(s string) (httpparse.Kind, error) {
	switch s {
	case "request":
		return httpparse.Request, nil
	case "response":
		return httpparse.Response, nil
	case "auto":
		return httpparse.Both, nil
	}
	return 0, fmt.Errorf("unknown --kind %q (want request, response or auto)", s)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// tapConnection reads conn in chunkSize pieces and runs them through a
// fresh Parser, logging every Sink event, until the peer closes the
// connection or the parser hits a terminal error.
func tapConnection(conn net.Conn, kind httpparse.Kind, logger *zap.Logger) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	log := logger.With(zap.String("remote", remote))
	log.Info("connection opened")

	p := httpparse.New(kind, strict)
	sink := &tapSink{log: log}
	buf := make([]byte, chunkSize)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			pending := buf[:n]
			for len(pending) > 0 {
				consumed, errno := p.Execute(sink, pending)
				if errno != httpparse.ErrNone {
					log.Error("parse error", zap.Error(errno), zap.Int("consumed", consumed))
					return
				}
				pending = pending[consumed:]
				if p.BodyIsFinal() {
					if !p.ShouldKeepAlive() {
						log.Info("connection should close", zap.String("reason", "no keep-alive"))
						return
					}
					p.NewMessage()
					continue // feed any bytes left over from a pipelined next message
				}
				break
			}
		}
		if err != nil {
			if err == io.EOF {
				if _, errno := p.Execute(sink, nil); errno != httpparse.ErrNone {
					log.Error("parse error at eof", zap.Error(errno))
				}
			} else {
				log.Warn("read error", zap.Error(err))
			}
			return
		}
	}
}

// tapSink logs every parser event. Header field/value bytes only live for
// the duration of the callback, so the current field name is copied into
// curField to be paired with the matching value once it arrives.
type tapSink struct {
	httpparse.NoopSink
	log      *zap.Logger
	curField string
}

func (s *tapSink) OnMessageBegin(p *httpparse.Parser) httpparse.CBResult {
	s.log.Debug("message begin")
	return httpparse.CBNone
}

func (s *tapSink) OnURL(p *httpparse.Parser, data []byte) httpparse.CBResult {
	s.log.Info("request line", zap.String("method", p.Method().String()), zap.ByteString("url", data))
	return httpparse.CBNone
}

func (s *tapSink) OnStatus(p *httpparse.Parser, data []byte) httpparse.CBResult {
	s.log.Info("status line", zap.Uint16("code", p.StatusCode()), zap.ByteString("reason", data))
	return httpparse.CBNone
}

func (s *tapSink) OnHeaderField(p *httpparse.Parser, data []byte) httpparse.CBResult {
	s.curField += string(data)
	return httpparse.CBNone
}

func (s *tapSink) OnHeaderValue(p *httpparse.Parser, data []byte) httpparse.CBResult {
	field := s.curField
	s.curField = ""
	s.log.Debug("header", zap.String("field", field), zap.ByteString("value", data))

	switch field {
	case "Sec-WebSocket-Extensions", "sec-websocket-extensions":
		if flags, exts := httpparse.ParseWSExtensions(data); flags != httpparse.WSExtNone {
			s.log.Info("websocket extensions", zap.Any("flags", flags), zap.Int("count", len(exts)))
		}
	case "Sec-WebSocket-Protocol", "sec-websocket-protocol":
		if flags, protos := httpparse.ParseWSProtocols(data); flags != httpparse.WSProtoNone {
			s.log.Info("websocket protocols", zap.Any("flags", flags), zap.Int("count", len(protos)))
		}
	case "Upgrade", "upgrade":
		if flags, protos := httpparse.ParseUpgradeProtos(data); flags != httpparse.UpgradeProtoNone {
			s.log.Info("upgrade protocols", zap.Any("flags", flags), zap.Int("count", len(protos)))
		}
	}
	return httpparse.CBNone
}

func (s *tapSink) OnHeadersComplete(p *httpparse.Parser) httpparse.CBResult {
	cl, ok := p.ContentLength()
	s.log.Info("headers complete",
		zap.String("version", p.Version().String()),
		zap.Bool("upgrade", p.Upgrade()),
		zap.Uint64("content_length", cl),
		zap.Bool("content_length_set", ok),
	)
	return httpparse.CBNone
}

func (s *tapSink) OnBody(p *httpparse.Parser, data []byte) httpparse.CBResult {
	s.log.Debug("body chunk", zap.Int("len", len(data)))
	return httpparse.CBNone
}

func (s *tapSink) OnMessageComplete(p *httpparse.Parser) httpparse.CBResult {
	s.log.Info("message complete", zap.Bool("keep_alive", p.ShouldKeepAlive()))
	return httpparse.CBNone
}
