package main

import (
	"log/slog"

	"github.com/olivier-w/vorb/internal/audio"
	"github.com/olivier-w/vorb/internal/config"
	"github.com/olivier-w/vorb/internal/driver"
	"github.com/olivier-w/vorb/internal/render"
	"github.com/olivier-w/vorb/internal/ui"
)

// session is one orb wired for the TUI: scene, driver, scheduler and the
// channel carrying driver notices to the HUD.
type session struct {
	scene    *render.Scene
	driver   *driver.Driver
	sched    *ui.Scheduler
	provider audio.Provider
	notices  chan driver.Notice
	fps      int
}

func newProvider(in config.Input, logger *slog.Logger) audio.Provider {
	switch in.Source {
	case config.SourceFile:
		return audio.FileProvider{Path: in.File, Logger: logger}
	case config.SourceNone:
		return audio.NoneProvider{}
	}
	return audio.MicProvider{Device: in.Device, SampleRate: in.SampleRate, Logger: logger}
}

func newSession(cfg config.Config, logger *slog.Logger) (*session, error) {
	opts, err := cfg.SceneOptions()
	if err != nil {
		return nil, err
	}
	scene, err := render.NewScene(opts)
	if err != nil {
		return nil, err
	}

	s := &session{
		scene:    scene,
		sched:    ui.NewScheduler(cfg.Render.FPS),
		provider: newProvider(cfg.Input, logger),
		notices:  make(chan driver.Notice, 4),
		fps:      cfg.Render.FPS,
	}
	s.driver = driver.New(scene, driver.Options{
		Provider:   s.provider,
		Scheduler:  s.sched,
		Logger:     logger,
		Thresholds: cfg.Thresholds,
		Tuning:     cfg.Motion,
		OnNotice:   ui.NoticeSink(s.notices),
	})
	return s, nil
}

func (s *session) model() ui.Model {
	return ui.New(ui.Config{
		Driver:    s.driver,
		Scene:     s.scene,
		Scheduler: s.sched,
		Provider:  s.provider,
		Notices:   s.notices,
		FPS:       s.fps,
	})
}
