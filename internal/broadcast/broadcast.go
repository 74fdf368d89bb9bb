package broadcast

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/danmuck/sib1ctl/internal/observability"
	"github.com/danmuck/sib1ctl/internal/protocol"
	"github.com/danmuck/sib1ctl/internal/protocol/schema"
	"github.com/danmuck/sib1ctl/internal/protocol/session"
	"github.com/danmuck/sib1ctl/internal/rrc"
	"github.com/rs/zerolog/log"
)

var ErrVerifyMismatch = errors.New("broadcast: decoded message differs from built message")

// Options configures one build, encode and send pass.
type Options struct {
	Plan           rrc.Plan
	Schema         schema.Schema
	EncodeCapacity int
	Session        session.Config
	// Verify decodes the encoded payload and compares it with the built
	// tree before any network I/O.
	Verify bool
	// Dump receives the XER rendering of the built tree when non-nil.
	Dump io.Writer
}

func DefaultOptions() Options {
	return Options{
		Plan:           rrc.SamplePlan(),
		Schema:         schema.Default(),
		EncodeCapacity: protocol.DefaultCapacity,
		Session:        session.DefaultConfig(),
	}
}

type Result struct {
	Payload []byte
	Bits    int
	Written int
}

// Prepare builds and encodes the plan without touching the network.
func Prepare(opts Options) (Result, error) {
	msg, err := rrc.BuildPlan(opts.Plan)
	if err != nil {
		return Result{}, err
	}
	if opts.Dump != nil {
		if err := rrc.Dump(opts.Dump, msg); err != nil {
			log.Warn().Err(err).Msg("broadcast.Prepare dump failed")
		}
	}

	payload, bits, err := protocol.Encode(msg, protocol.EncodeOptions{
		Schema:   opts.Schema,
		Capacity: opts.EncodeCapacity,
	})
	observability.RecordEncode(bits, err)
	if err != nil {
		return Result{}, err
	}
	log.Info().
		Int("bits", bits).
		Int("bytes", len(payload)).
		Str("hex", hex.EncodeToString(payload)).
		Msg("broadcast.Prepare encoded")

	if opts.Verify {
		decoded, err := protocol.Decode(payload, opts.Schema)
		if err != nil {
			return Result{}, fmt.Errorf("broadcast: verify: %w", err)
		}
		if !reflect.DeepEqual(decoded, msg) {
			return Result{}, ErrVerifyMismatch
		}
		log.Debug().Msg("broadcast.Prepare verify ok")
	}
	return Result{Payload: payload, Bits: bits}, nil
}

// Run prepares the payload and sends it to addr as one frame. Nothing is
// dialled unless encoding succeeded.
func Run(ctx context.Context, addr string, opts Options) (Result, error) {
	return RunWith(ctx, session.NewSender(opts.Session), addr, opts)
}

func RunWith(ctx context.Context, sender *session.Sender, addr string, opts Options) (Result, error) {
	res, err := Prepare(opts)
	if err != nil {
		return Result{}, err
	}
	start := time.Now()
	written, err := sender.Send(ctx, addr, res.Payload)
	observability.RecordSend(written, time.Since(start), err)
	res.Written = written
	return res, err
}
