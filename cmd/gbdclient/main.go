// SPDX-License-Identifier: EPL-2.0

// Command gbdclient plays an audio file through the gbd tee plugin: every
// period is forwarded to a gbdserver for beat detection and passed on
// unchanged to the configured slave sink.
//
// Usage:
//
//	gbdclient -c gbd.yaml [--rate 44100] [--period 256] [--offline] input.mp3
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ik5/gbdclient/audio"
	"github.com/ik5/gbdclient/client"
	"github.com/ik5/gbdclient/config"
	"github.com/ik5/gbdclient/formats"
	"github.com/ik5/gbdclient/host"
)

var version = "dev"

type options struct {
	configPath string
	rate       int
	period     int
	offline    bool
	fallback   bool
	paced      bool
	input      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "gbdclient:", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	var showVersion bool

	fs := flag.NewFlagSet("gbdclient", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.configPath, "config", "c", "", "path to the plugin `file` (YAML)")
	fs.IntVar(&o.rate, "rate", 0, "resample the input to this rate in Hz (0 keeps the file rate)")
	fs.IntVar(&o.period, "period", host.DefaultPeriodFrames, "frames per transfer period")
	fs.BoolVar(&o.offline, "offline", false, "do not contact the gbdserver")
	fs.BoolVar(&o.fallback, "fallback", false, "keep playing without analysis when the gbdserver is unreachable")
	fs.BoolVar(&o.paced, "paced", false, "transfer periods in real time")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: gbdclient -c config.yaml [flags] input\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if showVersion {
		fmt.Fprintln(stderr, "gbdclient", version)
		return o, flag.ErrHelp
	}
	if o.configPath == "" {
		fs.Usage()
		return o, errors.New("missing --config")
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("exactly one input file required")
	}
	o.input = fs.Arg(0)

	return o, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if !cfg.HasSlave() {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, config.ErrMissingSlave)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if cfg.MetricsAddr != "" {
		ms, err := startMetrics(cfg.MetricsAddr, reg, logger)
		if err != nil {
			return err
		}
		defer ms.shutdown(2 * time.Second)
	}

	src, err := formats.Default().Open(o.input)
	if err != nil {
		return err
	}
	var stream audio.Source = audio.NewStereoMixer(src)
	if o.rate > 0 {
		stream = audio.Resample(stream, o.rate)
	}
	defer stream.Close()

	sink, err := host.OpenSink(&cfg.Slave, stream.SampleRate())
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("slave close failed", zap.Error(err))
		}
	}()

	plugin, err := openPlugin(ctx, cfg, o, reg, logger)
	if err != nil {
		return err
	}

	p := &host.Pipeline{
		Source:       stream,
		Plugin:       plugin,
		Sink:         sink,
		PeriodFrames: o.period,
		Paced:        o.paced,
		Logger:       logger,
	}
	st, err := p.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	logger.Info("playback done",
		zap.String("input", o.input),
		zap.Int("periods", st.Periods),
		zap.Int64("frames", st.Frames))

	return err
}

func openPlugin(ctx context.Context, cfg config.Config, o options, reg prometheus.Registerer, logger *zap.Logger) (client.Plugin, error) {
	if o.offline {
		logger.Info("offline mode, gbdserver not contacted")
		return client.NewNull(), nil
	}

	opts, err := client.ConfigOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, client.WithLogger(logger), client.WithMetrics(reg))

	s, err := client.New(ctx, cfg.Plugin, opts...)
	if err == nil {
		return s, nil
	}
	if o.fallback && errors.Is(err, client.ErrEstablish) {
		logger.Warn("gbdserver unreachable, playing without analysis", zap.Error(err))
		return client.NewNull(), nil
	}

	return nil, err
}
