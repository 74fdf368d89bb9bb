package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/danmuck/sib1ctl/internal/protocol"
	"github.com/danmuck/sib1ctl/internal/protocol/frame"
	"github.com/danmuck/sib1ctl/internal/protocol/schema"
	"github.com/danmuck/sib1ctl/internal/rrc"
	"github.com/rs/zerolog/log"
)

// Delivery is one frame received by the sink.
type Delivery struct {
	Remote  string
	Payload []byte
	Message *rrc.Message
	Err     error
}

// Sink accepts framed SIB1 payloads and decodes them for inspection.
type Sink struct {
	Schema      schema.Schema
	Limits      frame.Limits
	ReadTimeout time.Duration
	Handle      func(Delivery)

	wg      sync.WaitGroup
	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
}

func NewSink(sch schema.Schema, handle func(Delivery)) *Sink {
	return &Sink{
		Schema:      sch,
		Limits:      frame.DefaultLimits(),
		ReadTimeout: 30 * time.Second,
		Handle:      handle,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Serve accepts connections on ln until ctx is done, then closes ln and
// every live connection and waits for their handlers to return.
func (s *Sink) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
			s.closeAllConns()
		case <-stop:
		}
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("server.Sink listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !s.trackConn(conn) {
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrackConn(conn)
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Sink) trackConn(conn net.Conn) bool {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if s.closing {
		return false
	}
	if s.conns == nil {
		s.conns = make(map[net.Conn]struct{})
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Sink) untrackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

// closeAllConns unblocks handlers parked in a read on shutdown.
func (s *Sink) closeAllConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.closing = true
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}

func (s *Sink) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	for {
		if s.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		}
		payload, err := frame.ReadFrame(conn, s.Limits)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, io.EOF) {
				log.Warn().Err(err).Str("remote", remote).Msg("server.Sink read failed")
				s.deliver(Delivery{Remote: remote, Err: err})
			}
			return
		}
		msg, err := protocol.Decode(payload, s.Schema)
		s.deliver(Delivery{Remote: remote, Payload: payload, Message: msg, Err: err})
	}
}

func (s *Sink) deliver(d Delivery) {
	if d.Err == nil && d.Message != nil {
		ev := log.Info().Str("remote", d.Remote).Int("bytes", len(d.Payload))
		if sib1 := d.Message.SIB1(); sib1 != nil {
			if sib1.CellSelectionInfo != nil {
				ev = ev.Int64("q_rxlevmin", sib1.CellSelectionInfo.QRxLevMin)
			}
			var plmns []string
			for _, info := range sib1.CellAccessRelatedInfo.PLMNIdentityInfoList {
				for _, id := range info.PLMNIdentityList {
					plmns = append(plmns, id.MCC.String()+"/"+id.MNC.String())
				}
			}
			ev = ev.Strs("plmn", plmns)
		}
		ev.Msg("server.Sink frame")
	}
	if s.Handle != nil {
		s.Handle(d)
	}
}
