package session

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/danmuck/sib1ctl/internal/protocol/frame"
	"github.com/rs/zerolog/log"
)

// ConnectionError reports a dial or resolve failure; nothing was written.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("session: connect %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Sender delivers one frame per connection and reads nothing back.
type Sender struct {
	cfg    Config
	dialer Dialer
}

func NewSender(cfg Config) *Sender {
	return NewSenderWithDialer(cfg, &net.Dialer{Timeout: cfg.ConnectTimeout})
}

func NewSenderWithDialer(cfg Config, d Dialer) *Sender {
	return &Sender{cfg: cfg, dialer: d}
}

// Send dials addr, writes payload as one frame and closes the connection on
// every path. It returns the number of bytes written including the header.
func (s *Sender) Send(ctx context.Context, addr string, payload []byte) (int, error) {
	if uint64(len(payload)) > uint64(s.cfg.Limits.MaxPayloadBytes) {
		return 0, fmt.Errorf("%w: %d > %d", frame.ErrPayloadTooLarge, len(payload), s.cfg.Limits.MaxPayloadBytes)
	}

	dialCtx := ctx
	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}
	log.Debug().Str("addr", addr).Dur("connect_timeout", s.cfg.ConnectTimeout).Msg("session.Send dial")
	conn, err := s.dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("session.Send dial failed")
		return 0, &ConnectionError{Addr: addr, Err: err}
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("session.Send close failed")
		}
	}()

	if s.cfg.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return 0, &frame.TransportError{Stage: frame.StageHeader, Err: err}
		}
	}
	n, err := frame.WriteFrame(conn, payload, s.cfg.Limits)
	if err != nil {
		log.Error().Err(err).Str("addr", addr).Int("written", n).Msg("session.Send write failed")
		return n, err
	}
	log.Info().Str("addr", addr).Int("payload_bytes", len(payload)).Int("written", n).Msg("session.Send ok")
	return n, nil
}
