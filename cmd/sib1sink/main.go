package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/sib1ctl/internal/config"
	"github.com/danmuck/sib1ctl/internal/observability"
	"github.com/danmuck/sib1ctl/internal/protocol/schema"
	"github.com/danmuck/sib1ctl/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9600", "listen address")
	planPath := flag.String("plan", "", "plan file whose [schema] bounds decode incoming frames")
	flag.Parse()

	observability.InitLogger("sib1sink")

	sch := schema.Default()
	if *planPath != "" {
		plan, err := config.LoadPlanConfig(*planPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load plan")
		}
		sch = plan.Schema
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("listen failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := server.NewSink(sch, func(d server.Delivery) {
		if d.Err != nil && len(d.Payload) > 0 {
			log.Error().Err(d.Err).Str("remote", d.Remote).Hex("payload", d.Payload).Msg("sib1sink decode failed")
		}
	})
	if err := sink.Serve(ctx, ln); err != nil {
		log.Fatal().Err(err).Msg("sink stopped")
	}
	log.Info().Msg("sib1sink stopped")
}
