package session

import (
	"time"

	"github.com/danmuck/sib1ctl/internal/protocol/frame"
)

// Config defines transport timeouts and frame limits. A zero timeout
// disables that bound.
type Config struct {
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	Limits         frame.Limits
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		WriteTimeout:   15 * time.Second,
		Limits:         frame.DefaultLimits(),
	}
}
