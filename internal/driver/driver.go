package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olivier-w/vorb/internal/audio"
	"github.com/olivier-w/vorb/internal/orb"
)

// ErrDisposed is returned by Start once the driver has been disposed.
var ErrDisposed = errors.New("driver disposed")

// Renderer draws frames from RenderParameters. It never feeds anything back.
type Renderer interface {
	Apply(p orb.RenderParameters)
	SetSize(width, height int)
	Dispose() error
}

// Mode says where features come from.
type Mode int

const (
	ModeSynthetic Mode = iota
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "synthetic"
}

// NoticeKind classifies a Notice.
type NoticeKind int

const (
	// NoticeAudioUnavailable means Start could not acquire a live source.
	NoticeAudioUnavailable NoticeKind = iota
	// NoticeAudioLost means a live source stopped while running.
	NoticeAudioLost
)

// Notice is a passive, user-facing message. It never stops the orb.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Options configures a Driver. Zero values get working defaults.
type Options struct {
	Provider   audio.Provider
	Scheduler  Scheduler
	Clock      Clock
	Logger     *slog.Logger
	Thresholds orb.Thresholds
	Tuning     orb.Tuning
	OnNotice   func(Notice)
}

// Driver advances one orb: each frame it extracts features, steps the state
// machine, maps parameters and hands them to the renderer.
//
// A Driver is not safe for concurrent use. All methods and frame callbacks
// must run on the host's single execution context.
type Driver struct {
	renderer  Renderer
	provider  audio.Provider
	scheduler Scheduler
	clock     Clock
	logger    *slog.Logger
	onNotice  func(Notice)

	machine   *orb.Machine
	mapper    *orb.Mapper
	extractor audio.Extractor
	live      *audio.Live
	mode      Mode
	label     string

	running  bool
	disposed bool
	cancel   func()

	start    time.Time
	last     time.Time
	params   orb.RenderParameters
	applied  bool
	features audio.Features
	frames   uint64
}

// New builds a stopped driver.
func New(r Renderer, opts Options) *Driver {
	if opts.Provider == nil {
		opts.Provider = audio.NoneProvider{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewLoop(30)
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Thresholds.Validate() != nil {
		opts.Thresholds = orb.DefaultThresholds()
	}
	return &Driver{
		renderer:  r,
		provider:  opts.Provider,
		scheduler: opts.Scheduler,
		clock:     opts.Clock,
		logger:    opts.Logger,
		onNotice:  opts.OnNotice,
		machine:   orb.NewMachine(opts.Thresholds),
		mapper:    orb.NewMapper(opts.Tuning),
	}
}

// Start acquires an audio source and begins the frame loop. A failed
// acquisition is not an error: the orb runs on synthetic features and a
// notice is emitted. Calling Start while running does nothing.
func (d *Driver) Start(ctx context.Context) error {
	if d.disposed {
		return ErrDisposed
	}
	if d.running {
		return nil
	}
	stream, err := d.provider.Open(ctx)
	return d.Activate(stream, err)
}

// Activate finishes Start with a source the host opened itself. err is the
// acquisition error, if any. The driver owns stream from here on.
func (d *Driver) Activate(stream audio.Stream, err error) error {
	if d.disposed || d.running {
		if stream != nil {
			stream.Close()
		}
		if d.disposed {
			return ErrDisposed
		}
		return nil
	}

	if err != nil && stream != nil {
		stream.Close()
	}
	if err == nil {
		live, lerr := audio.NewLive(stream, d.logger)
		if lerr != nil {
			if stream != nil {
				stream.Close()
			}
			err = lerr
		} else {
			d.live = live
			d.extractor = live
			d.mode = ModeLive
			d.label = live.Label()
		}
	}

	if err != nil {
		d.useSynthetic()
		if errors.Is(err, audio.ErrNoInput) {
			d.logger.Info("audio input disabled, animating without audio")
		} else {
			d.logger.Warn("audio input unavailable, animating without audio", "error", err)
			d.notify(Notice{
				Kind:    NoticeAudioUnavailable,
				Message: "Microphone access failed. The orb will animate without audio.",
				Err:     err,
			})
		}
	}

	d.machine.Reset()
	d.mapper.Reset()
	d.start = d.clock.Now()
	d.last = d.start
	d.running = true
	d.logger.Info("orb started", "mode", d.mode.String(), "source", d.label)

	d.cancel = d.scheduler.RequestFrame(d.frame)
	return nil
}

func (d *Driver) frame() {
	d.cancel = nil
	if !d.running || d.disposed {
		return
	}

	if d.live != nil && d.live.Failed() {
		label := d.label
		d.releaseLive()
		d.useSynthetic()
		d.logger.Warn("audio input lost, animating without audio", "source", label)
		d.notify(Notice{
			Kind:    NoticeAudioLost,
			Message: fmt.Sprintf("Lost audio from %s. The orb will animate without audio.", label),
		})
	}

	now := d.clock.Now()
	elapsed := now.Sub(d.start).Seconds()
	delta := now.Sub(d.last).Seconds()
	d.last = now

	f := d.extractor.Features(elapsed).Clamp()
	prev := d.machine.State()
	state := d.machine.Step(f.Amplitude)
	if state != prev {
		d.logger.Debug("orb state changed", "from", prev.String(), "to", state.String(), "amplitude", f.Amplitude)
	}

	d.params = d.mapper.Map(state, f, elapsed, delta)
	d.features = f
	d.applied = true
	d.frames++
	d.renderer.Apply(d.params)

	d.cancel = d.scheduler.RequestFrame(d.frame)
}

// Stop cancels the pending frame and releases the live source. Safe to call
// when already stopped.
func (d *Driver) Stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if !d.running {
		return
	}
	d.running = false
	d.releaseLive()
	d.extractor = nil
	d.mode = ModeSynthetic
	d.label = ""
	d.logger.Info("orb stopped", "frames", d.frames)
}

// Resize forwards a new viewport size. Non-positive sizes are ignored.
func (d *Driver) Resize(width, height int) {
	if d.disposed || width <= 0 || height <= 0 {
		return
	}
	d.renderer.SetSize(width, height)
}

// Dispose stops the driver and releases the renderer. Errors are logged, not
// returned. The driver cannot be started again.
func (d *Driver) Dispose() {
	if d.disposed {
		return
	}
	d.Stop()
	d.disposed = true
	if err := d.renderer.Dispose(); err != nil {
		d.logger.Warn("renderer dispose failed", "error", err)
	}
}

// State is the current orb state.
func (d *Driver) State() orb.State { return d.machine.State() }

// Mode reports whether features come from live audio.
func (d *Driver) Mode() Mode { return d.mode }

// Running reports whether frames are being produced.
func (d *Driver) Running() bool { return d.running }

// Disposed reports whether Dispose has been called.
func (d *Driver) Disposed() bool { return d.disposed }

// Label describes the current audio source, empty when synthetic.
func (d *Driver) Label() string { return d.label }

// Last returns the most recently applied parameters.
func (d *Driver) Last() (orb.RenderParameters, bool) { return d.params, d.applied }

// Features returns the features used for the last frame.
func (d *Driver) Features() audio.Features { return d.features }

// Frames counts frames applied since construction.
func (d *Driver) Frames() uint64 { return d.frames }

func (d *Driver) useSynthetic() {
	d.extractor = audio.Synthetic{}
	d.mode = ModeSynthetic
	d.label = ""
}

func (d *Driver) releaseLive() {
	if d.live == nil {
		return
	}
	if err := d.live.Close(); err != nil {
		d.logger.Debug("closing audio source", "error", err)
	}
	d.live = nil
}

func (d *Driver) notify(n Notice) {
	if d.onNotice != nil {
		d.onNotice(n)
	}
}
