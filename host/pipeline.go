// SPDX-License-Identifier: EPL-2.0

package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"
	"go.uber.org/zap"

	"github.com/ik5/gbdclient/audio"
	"github.com/ik5/gbdclient/client"
	"github.com/ik5/gbdclient/config"
)

// DefaultPeriodFrames matches a common ALSA period size.
const DefaultPeriodFrames = 256

// Pipeline moves audio from Source through Plugin into Sink.
type Pipeline struct {
	Source       audio.Source
	Plugin       client.Plugin
	Sink         Sink
	PeriodFrames int

	// Paced sleeps one period duration between transfers, as a sound card
	// clock would.
	Paced  bool
	Logger *zap.Logger
}

// Stats summarizes one Run.
type Stats struct {
	Periods int
	Frames  int64
}

// Run initializes the plugin with the source rate, then transfers one
// period at a time until the source ends or ctx is done. The plugin is
// closed before Run returns whatever the outcome. Source and Sink stay
// open; they belong to the caller.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	var st Stats

	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if ch := p.Source.Channels(); ch != config.StereoChannels {
		return st, fmt.Errorf("%w: source has %d channels", ErrNotStereo, ch)
	}

	period := p.PeriodFrames
	if period <= 0 {
		period = DefaultPeriodFrames
	}
	rate := p.Source.SampleRate()

	defer func() {
		if err := p.Plugin.Close(); err != nil {
			log.Warn("plugin close failed", zap.Error(err))
		}
	}()

	if err := p.Plugin.Init(rate); err != nil {
		return st, fmt.Errorf("plugin init: %w", err)
	}

	format := &goaudio.Format{NumChannels: config.StereoChannels, SampleRate: rate}
	src := make([]float32, period*config.StereoChannels)
	dst := make([]float32, len(src))
	out := &goaudio.Float32Buffer{Format: format, SourceBitDepth: 32}

	var tick <-chan time.Time
	if p.Paced {
		t := time.NewTicker(time.Duration(period) * time.Second / time.Duration(rate))
		defer t.Stop()
		tick = t.C
	}

	log.Info("pipeline started",
		zap.Int("rate", rate),
		zap.Int("period_frames", period))

	for {
		if err := ctx.Err(); err != nil {
			log.Info("pipeline stopped", zap.Int("periods", st.Periods), zap.Int64("frames", st.Frames))
			return st, err
		}

		n, readErr := fill(p.Source, src)
		if rest := n % config.StereoChannels; rest != 0 {
			log.Debug("dropping partial trailing frame", zap.Int("samples", rest))
		}
		if frames := n / config.StereoChannels; frames > 0 {
			got := p.Plugin.Transfer(dst, src, frames)
			out.Data = dst[:got*config.StereoChannels]
			if err := p.Sink.Write(out); err != nil {
				return st, fmt.Errorf("sink write: %w", err)
			}
			st.Periods++
			st.Frames += int64(got)
		}

		if errors.Is(readErr, io.EOF) {
			log.Info("pipeline finished", zap.Int("periods", st.Periods), zap.Int64("frames", st.Frames))
			return st, nil
		}
		if readErr != nil {
			return st, fmt.Errorf("source read: %w", readErr)
		}

		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
	}
}

// fill reads until buf is full or the source stops. A short count is
// only returned together with an error and may end on a partial frame,
// which Run drops.
func fill(src audio.Source, buf []float32) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := src.ReadSamples(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, io.ErrNoProgress
		}
	}
	return n, nil
}
