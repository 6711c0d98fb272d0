package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/olivier-w/vorb/internal/config"
	"github.com/olivier-w/vorb/internal/driver"
	"github.com/olivier-w/vorb/internal/orb"
)

// transitionLog is a renderer that draws nothing. It logs every state change
// and a periodic summary of the parameters it receives.
type transitionLog struct {
	logger *slog.Logger
	every  uint64

	frames uint64
	last   orb.State
	seen   bool
}

func (r *transitionLog) Apply(p orb.RenderParameters) {
	r.frames++
	if !r.seen || p.State != r.last {
		r.logger.Info("orb state", "state", p.State.String(), "elapsed", p.Elapsed, "amplitude", p.Core.Amplitude)
		r.last = p.State
		r.seen = true
	}
	if r.every > 0 && r.frames%r.every == 0 {
		r.logger.Debug("frame",
			"frames", r.frames,
			"amplitude", p.Core.Amplitude,
			"bass", p.Core.BassAmplitude,
			"tilt", p.Core.SpectrumTilt,
			"bloom", p.BloomStrength,
			"particle_size", p.ParticleSize,
		)
	}
}

func (r *transitionLog) SetSize(int, int) {}

func (r *transitionLog) Dispose() error {
	r.logger.Info("headless renderer disposed", "frames", r.frames)
	return nil
}

// runHeadless drives the orb on a fixed-rate loop until ctx ends or duration
// elapses. A zero duration runs until ctx is cancelled.
func runHeadless(ctx context.Context, cfg config.Config, logger *slog.Logger, duration time.Duration) error {
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	loop := driver.NewLoop(cfg.Render.FPS)
	r := &transitionLog{logger: logger, every: uint64(cfg.Render.FPS) * 5}
	d := driver.New(r, driver.Options{
		Provider:   newProvider(cfg.Input, logger),
		Scheduler:  loop,
		Logger:     logger,
		Thresholds: cfg.Thresholds,
		Tuning:     cfg.Motion,
	})
	defer d.Dispose()

	if err := d.Start(ctx); err != nil {
		return err
	}
	err := loop.Run(ctx)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("headless run finished", "frames", d.Frames(), "state", d.State().String(), "mode", d.Mode().String())
	return err
}
