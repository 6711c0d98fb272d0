package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrUnavailable reports that a live source could not be acquired
	// (no capture tool, no device, permission denied).
	ErrUnavailable = errors.New("audio input unavailable")

	// ErrNoInput is returned by providers configured to never supply audio.
	ErrNoInput = errors.New("audio input disabled")
)

// DefaultSampleRate is the capture rate requested from live sources.
const DefaultSampleRate = 48000

// Stream supplies mono samples in -1..1 from a live or replayed source.
type Stream interface {
	// Read blocks until at least one sample is available.
	Read(p []float64) (int, error)
	SampleRate() int
	// Label is a short human-readable description of the source.
	Label() string
	io.Closer
}

// Provider acquires a Stream. Open may block on device or permission prompts.
type Provider interface {
	Open(ctx context.Context) (Stream, error)
}

// NoneProvider never supplies audio, which forces the synthetic idle animation.
type NoneProvider struct{}

func (NoneProvider) Open(context.Context) (Stream, error) { return nil, ErrNoInput }

// MicProvider captures the default (or named) input device through ffmpeg.
type MicProvider struct {
	Device     string
	SampleRate int
	// ProbeTimeout bounds how long Open waits for the first samples.
	ProbeTimeout time.Duration
	Logger       *slog.Logger
}

func (p MicProvider) Open(ctx context.Context) (Stream, error) {
	rate := p.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	input, err := captureInput(p.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	args := append(input,
		"-ac", "1",
		"-ar", fmt.Sprint(rate),
		"-f", "s16le",
		"pipe:1",
	)

	s, err := startFFmpeg(args, rate, 1, "microphone")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	timeout := p.ProbeTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if err := s.probe(ctx, timeout); err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	logger.Info("microphone capture started", "device", p.Device, "sample_rate", rate)
	return s, nil
}

// FileProvider replays an audio file in real time as if it were live input.
// Nothing is played back; the samples only drive the analyser.
type FileProvider struct {
	Path   string
	Logger *slog.Logger
}

func (p FileProvider) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ext := strings.ToLower(filepath.Ext(p.Path))
	var src Stream
	switch {
	case IsPlaylistExt(ext):
		entries, err := ParsePlaylist(p.Path)
		if err != nil {
			return nil, err
		}
		entries = playableFiles(entries)
		if len(entries) == 0 {
			return nil, fmt.Errorf("playlist %s has no playable files", p.Path)
		}
		src = newPlaylistStream(entries, logger)
	case IsSupportedExt(ext):
		s, err := openFileStream(p.Path, true)
		if err != nil {
			return nil, err
		}
		src = s
	default:
		return nil, fmt.Errorf("unsupported format %s (supported: %s)", ext, SupportedExtsList())
	}

	logger.Info("file input opened", "path", p.Path, "label", src.Label(), "sample_rate", src.SampleRate())
	return newPacedStream(src), nil
}

// openFileStream opens one audio file. loop restarts it at end of file;
// otherwise the stream ends with io.EOF.
func openFileStream(path string, loop bool) (Stream, error) {
	label := ReadLabel(path)
	if IsNativeExt(filepath.Ext(path)) {
		dec, err := openDecoder(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return &decoderStream{dec: dec, label: label, once: !loop}, nil
	}

	var args []string
	if loop {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args,
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", fmt.Sprint(DefaultSampleRate),
		"-f", "s16le",
		"pipe:1",
	)
	s, err := startFFmpeg(args, DefaultSampleRate, 1, label)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return s, nil
}
