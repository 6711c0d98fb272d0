package audio

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// pumpChunk is how many samples the pump moves from the stream per read.
const pumpChunk = 512

// Extractor produces features once per frame. elapsed is seconds since the
// driver started.
type Extractor interface {
	Features(elapsed float64) Features
}

// Synthetic animates a gentle idle pulse when no live source exists.
type Synthetic struct{}

func (Synthetic) Features(elapsed float64) Features {
	if math.IsNaN(elapsed) || math.IsInf(elapsed, 0) {
		elapsed = 0
	}
	return Features{
		Amplitude:    0.02 + math.Sin(elapsed*0.6)*0.01,
		BassEnergy:   0.05,
		SpectralTilt: math.Sin(elapsed*0.3) * 0.2,
	}.Clamp()
}

// Live extracts features from a Stream. A pump goroutine feeds the analyser;
// Features only snapshots what has arrived so far.
type Live struct {
	stream   Stream
	analyser *Analyser
	logger   *slog.Logger

	timeDomain []uint8
	freq       []uint8

	closing   atomic.Bool
	failed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewLive takes ownership of stream and starts pumping it.
func NewLive(stream Stream, logger *slog.Logger) (*Live, error) {
	if stream == nil {
		return nil, ErrNoInput
	}
	if logger == nil {
		logger = slog.Default()
	}
	analyser, err := NewAnalyser()
	if err != nil {
		return nil, err
	}

	l := &Live{
		stream:     stream,
		analyser:   analyser,
		logger:     logger,
		timeDomain: make([]uint8, analyser.FFTSize()),
		freq:       make([]uint8, analyser.BinCount()),
		done:       make(chan struct{}),
	}
	go l.pump()
	return l, nil
}

func (l *Live) pump() {
	defer close(l.done)
	buf := make([]float64, pumpChunk)
	for {
		n, err := l.stream.Read(buf)
		if n > 0 {
			l.analyser.Write(buf[:n])
		}
		if err == nil {
			continue
		}
		if l.closing.Load() {
			return
		}
		if errors.Is(err, io.EOF) {
			l.logger.Warn("audio source ended", "source", l.stream.Label())
		} else {
			l.logger.Warn("audio source failed", "source", l.stream.Label(), "error", err)
		}
		l.failed.Store(true)
		return
	}
}

// Features refreshes the analyser views and extracts features from them.
func (l *Live) Features(float64) Features {
	l.analyser.Refresh(l.timeDomain, l.freq)
	return Extract(l.timeDomain, l.freq)
}

// Failed reports whether the source stopped delivering audio on its own.
func (l *Live) Failed() bool { return l.failed.Load() }

// Label describes the underlying source.
func (l *Live) Label() string { return l.stream.Label() }

// Close releases the stream. Safe to call more than once.
func (l *Live) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.closing.Store(true)
		err = l.stream.Close()
		select {
		case <-l.done:
		case <-time.After(500 * time.Millisecond):
			l.logger.Debug("audio pump did not exit after close", "source", l.stream.Label())
		}
	})
	return err
}
