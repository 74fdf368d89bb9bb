package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/danmuck/sib1ctl/internal/broadcast"
	"github.com/danmuck/sib1ctl/internal/config"
	"github.com/danmuck/sib1ctl/internal/observability"
	"github.com/danmuck/sib1ctl/internal/protocol/schema"
	"github.com/danmuck/sib1ctl/internal/rrc"
	"github.com/rs/zerolog/log"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// UsageError marks bad or missing command-line input.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string { return "usage: " + e.Reason }

type invocation struct {
	addr       string
	configPath string
	planPath   string
	dump       bool
	verify     bool
	metricsOut string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "sib1ctl: %v\n", err)
		printUsage(stderr)
		return exitUsage
	}

	observability.InitLogger("sib1ctl")
	opts, metricsOut, err := loadOptions(inv, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "sib1ctl: %v\n", err)
		return exitFailure
	}

	res, err := broadcast.Run(context.Background(), inv.addr, opts)
	if metricsOut != "" {
		if werr := observability.WriteTextfile(metricsOut); werr != nil {
			log.Warn().Err(werr).Str("path", metricsOut).Msg("sib1ctl metrics write failed")
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "sib1ctl: %v\n", err)
		return exitFailure
	}
	log.Info().Str("addr", inv.addr).Int("bits", res.Bits).Int("written", res.Written).Msg("sib1ctl sent")
	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (invocation, error) {
	fs := flag.NewFlagSet("sib1ctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var inv invocation
	fs.StringVar(&inv.configPath, "config", "", "runtime config file (TOML)")
	fs.StringVar(&inv.planPath, "plan", "", "SIB1 plan file (TOML); overrides the config plan")
	fs.BoolVar(&inv.dump, "dump", true, "print the XER rendering of the built message to stdout")
	fs.BoolVar(&inv.verify, "verify", false, "decode the encoded payload and compare before sending")
	fs.StringVar(&inv.metricsOut, "metrics-out", "", "write prometheus text metrics to this file after the run")
	if err := fs.Parse(args); err != nil {
		return invocation{}, err
	}

	rest := fs.Args()
	if len(rest) < 2 {
		return invocation{}, &UsageError{Reason: "missing <dst-ip> <dst-port>"}
	}
	ip := net.ParseIP(rest[0])
	if ip == nil || ip.To4() == nil {
		return invocation{}, &UsageError{Reason: fmt.Sprintf("invalid IPv4 address %q", rest[0])}
	}
	port, err := strconv.Atoi(rest[1])
	if err != nil || port < 1 || port > 65535 {
		return invocation{}, &UsageError{Reason: fmt.Sprintf("invalid port %q", rest[1])}
	}
	inv.addr = net.JoinHostPort(ip.String(), strconv.Itoa(port))
	return inv, nil
}

func loadOptions(inv invocation, stdout io.Writer) (broadcast.Options, string, error) {
	rc := config.DefaultRuntimeConfig()
	if inv.configPath != "" {
		loaded, err := config.LoadRuntimeConfig(inv.configPath)
		if err != nil {
			return broadcast.Options{}, "", err
		}
		rc = loaded
		log.Info().Str("path", inv.configPath).Msg("sib1ctl loaded runtime config")
	}

	opts := broadcast.Options{
		Plan:           rrc.SamplePlan(),
		Schema:         schema.Default(),
		EncodeCapacity: rc.EncodeCapacity,
		Session:        rc.Session,
		Verify:         rc.Verify || inv.verify,
	}
	if inv.dump {
		opts.Dump = stdout
	}

	planPath := rc.PlanPath
	if inv.planPath != "" {
		planPath = inv.planPath
	}
	if planPath != "" {
		plan, err := config.LoadPlanConfig(planPath)
		if err != nil {
			return broadcast.Options{}, "", err
		}
		opts.Plan = plan.Plan()
		opts.Schema = plan.Schema
		log.Info().Str("path", planPath).Msg("sib1ctl loaded plan")
	}

	metricsOut := rc.MetricsOut
	if inv.metricsOut != "" {
		metricsOut = inv.metricsOut
	}
	return opts, metricsOut, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sib1ctl [-config file] [-plan file] [-verify] [-dump=false] [-metrics-out file] <dst-ip> <dst-port>")
}
