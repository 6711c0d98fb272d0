package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

var errFFmpegNotFound = errors.New("ffmpeg not found (required for microphone capture and container input)")

// ffmpegStream adapts an ffmpeg subprocess writing s16le PCM to stdout.
type ffmpegStream struct {
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	sampleRate int
	channels   int
	label      string

	raw      []byte
	pending  []byte // bytes read ahead by probe or left from a partial frame
	waitDone chan struct{}

	closeOnce sync.Once
}

func startFFmpeg(args []string, sampleRate, channels int, label string) (*ffmpegStream, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, errFFmpegNotFound
	}

	full := append([]string{"-nostdin", "-hide_banner", "-loglevel", "error"}, args...)
	cmd := exec.Command(ffmpeg, full...)
	cmd.Stdin = nil
	cmd.Stderr = io.Discard

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("setting up ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	s := &ffmpegStream{
		cmd:        cmd,
		stdout:     stdout,
		sampleRate: sampleRate,
		channels:   channels,
		label:      label,
		waitDone:   make(chan struct{}),
	}
	go func() {
		_ = cmd.Wait()
		close(s.waitDone)
	}()
	return s, nil
}

// probe waits for the first bytes of audio so a device that cannot be opened
// is reported by Open instead of by the first frame.
func (s *ffmpegStream) probe(ctx context.Context, timeout time.Duration) error {
	type result struct {
		buf []byte
		err error
	}
	frame := s.channels * 2
	ch := make(chan result, 1)
	go func() {
		buf := make([]byte, frame*64)
		n, err := io.ReadAtLeast(s.stdout, buf, frame)
		ch <- result{buf: buf[:n], err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("capture produced no audio: %w", r.err)
		}
		s.pending = r.buf
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("capture produced no audio within %v", timeout)
	}
}

func (s *ffmpegStream) Read(p []float64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	frame := s.channels * 2
	want := len(p) * frame
	if cap(s.raw) < want {
		s.raw = make([]byte, want)
	}
	raw := s.raw[:want]

	n := copy(raw, s.pending)
	s.pending = s.pending[n:]
	var err error
	if n < frame {
		var m int
		m, err = io.ReadAtLeast(s.stdout, raw[n:], frame-n)
		n += m
	}

	whole := n - n%frame
	if rest := n - whole; rest > 0 {
		s.pending = append(s.pending[:0], raw[whole:n]...)
	}
	frames := s16leToMono(p, raw[:whole], s.channels)
	if frames > 0 {
		return frames, nil
	}
	if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return 0, err
}

func (s *ffmpegStream) SampleRate() int { return s.sampleRate }
func (s *ffmpegStream) Label() string   { return s.label }

func (s *ffmpegStream) Close() error {
	s.closeOnce.Do(func() {
		if s.stdout != nil {
			_ = s.stdout.Close()
		}
		if s.cmd != nil && s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-s.waitDone
	})
	return nil
}

// captureInput returns the ffmpeg input arguments for the platform's capture API.
func captureInput(device string) ([]string, error) {
	switch runtime.GOOS {
	case "linux":
		if device == "" {
			device = "default"
		}
		return []string{"-f", "pulse", "-i", device}, nil
	case "darwin":
		if device == "" {
			device = "0"
		}
		return []string{"-f", "avfoundation", "-i", ":" + device}, nil
	case "windows":
		if device == "" {
			return nil, errors.New("dshow capture needs an explicit device name (set input.device)")
		}
		return []string{"-f", "dshow", "-i", "audio=" + device}, nil
	default:
		return nil, fmt.Errorf("no capture backend for %s", runtime.GOOS)
	}
}

// s16leToMono averages interleaved little-endian int16 frames into dst and
// returns the number of frames written.
func s16leToMono(dst []float64, raw []byte, channels int) int {
	if channels < 1 {
		return 0
	}
	frame := channels * 2
	frames := len(raw) / frame
	if frames > len(dst) {
		frames = len(dst)
	}
	for i := range frames {
		var sum float64
		for ch := range channels {
			off := i*frame + ch*2
			sum += float64(int16(binary.LittleEndian.Uint16(raw[off:]))) / 32768
		}
		dst[i] = sum / float64(channels)
	}
	return frames
}
