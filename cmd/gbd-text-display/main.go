// SPDX-License-Identifier: EPL-2.0

// Command gbd-text-display prints beat events published by the gbdserver
// in its shared beat-count region.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ik5/gbdclient/beatmap"
	"github.com/ik5/gbdclient/config"
)

// display keeps one running count per event kind.
type display struct {
	w        io.Writer
	bassline bool

	kicks, snares, cymbals, basslines int
}

func (d *display) handle(_ beatmap.Snapshot, ev beatmap.Events) {
	if ev.Has(beatmap.Kickdrum) {
		fmt.Fprintf(d.w, "BassBeat (%d)\n", d.kicks)
		d.kicks++
	}
	if ev.Has(beatmap.Snare) {
		fmt.Fprintf(d.w, "\tSnareHit (%d)\n", d.snares)
		d.snares++
	}
	if ev.Has(beatmap.Cymbals) {
		fmt.Fprintf(d.w, "\t\tTweeters (%d)\n", d.cymbals)
		d.cymbals++
	}
	if ev.Has(beatmap.Bassline) {
		if d.bassline {
			fmt.Fprintf(d.w, "\t\t\tBassline (%d)\n", d.basslines)
		}
		d.basslines++
	}
}

func main() {
	var (
		name     string
		path     string
		interval time.Duration
		bassline bool
		level    string
	)
	flag.StringVar(&name, "region", beatmap.RegionName, "shared memory object name under "+beatmap.ShmDir)
	flag.StringVar(&path, "file", "", "map this file instead of the named region")
	flag.DurationVar(&interval, "interval", beatmap.DefaultPollInterval, "polling interval")
	flag.BoolVar(&bassline, "bassline", false, "also print bassline changes")
	flag.StringVar(&level, "log-level", "warn", "log level")
	flag.Parse()

	logger, err := config.Log{Level: level, Format: "console"}.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gbd-text-display:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var region *beatmap.Mapped
	if path != "" {
		region, err = beatmap.OpenFile(path)
	} else {
		region, err = beatmap.Open(name)
	}
	if err != nil {
		logger.Error("could not open GBD IPC region", zap.Error(err))
		os.Exit(1)
	}
	defer region.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := &display{w: os.Stdout, bassline: bassline}
	logger.Info("watching beat region", zap.String("region", name), zap.Duration("interval", interval))
	_ = beatmap.Watch(ctx, region, interval, d.handle)
}
