package audio

import (
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"
)

// fakeStream returns a fixed pattern until closed or until failAfter reads.
type fakeStream struct {
	mu        sync.Mutex
	value     float64
	reads     int
	failAfter int
	failErr   error
	closes    int
	closed    chan struct{}
}

func newFakeStream(value float64) *fakeStream {
	return &fakeStream{value: value, closed: make(chan struct{})}
}

func (s *fakeStream) Read(p []float64) (int, error) {
	s.mu.Lock()
	s.reads++
	reads := s.reads
	s.mu.Unlock()

	select {
	case <-s.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	if s.failAfter > 0 && reads > s.failAfter {
		return 0, s.failErr
	}
	for i := range p {
		if i%2 == 0 {
			p[i] = s.value
		} else {
			p[i] = -s.value
		}
	}
	time.Sleep(time.Millisecond)
	return len(p), nil
}

func (s *fakeStream) SampleRate() int { return DefaultSampleRate }
func (s *fakeStream) Label() string   { return "fake" }

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	if s.closes == 1 {
		close(s.closed)
	}
	return nil
}

func (s *fakeStream) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func TestSyntheticFeatures(t *testing.T) {
	f := Synthetic{}.Features(0)
	if f.Amplitude != 0.02 {
		t.Fatalf("Amplitude(0) = %v, want 0.02", f.Amplitude)
	}
	if f.BassEnergy != 0.05 {
		t.Fatalf("BassEnergy = %v, want 0.05", f.BassEnergy)
	}
	if f.SpectralTilt != 0 {
		t.Fatalf("SpectralTilt(0) = %v, want 0", f.SpectralTilt)
	}

	elapsed := math.Pi / 1.2 // sin(0.6t) = 1
	f = Synthetic{}.Features(elapsed)
	if math.Abs(f.Amplitude-0.03) > 1e-12 {
		t.Fatalf("Amplitude(peak) = %v, want 0.03", f.Amplitude)
	}
}

func TestSyntheticStaysInRange(t *testing.T) {
	for _, elapsed := range []float64{-5, 0, 1.5, 1e9, math.NaN(), math.Inf(1)} {
		f := Synthetic{}.Features(elapsed)
		if f != f.Clamp() {
			t.Fatalf("Features(%v) = %+v out of range", elapsed, f)
		}
	}
}

func TestLiveExtractsFromStream(t *testing.T) {
	stream := newFakeStream(0.5)
	live, err := NewLive(stream, nil)
	if err != nil {
		t.Fatalf("NewLive() error = %v", err)
	}
	defer live.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		f := live.Features(0)
		if f.Amplitude > 0.4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("amplitude never rose, last %+v", f)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if live.Failed() {
		t.Fatal("live extractor reported failure on a healthy stream")
	}
	if live.Label() != "fake" {
		t.Fatalf("Label() = %q, want fake", live.Label())
	}
}

func TestLiveReportsFailure(t *testing.T) {
	stream := newFakeStream(0.5)
	stream.failAfter = 2
	stream.failErr = errors.New("device unplugged")

	live, err := NewLive(stream, nil)
	if err != nil {
		t.Fatalf("NewLive() error = %v", err)
	}
	defer live.Close()

	deadline := time.Now().Add(2 * time.Second)
	for !live.Failed() {
		if time.Now().After(deadline) {
			t.Fatal("expected Failed() after stream error")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLiveCloseIsIdempotent(t *testing.T) {
	stream := newFakeStream(0.1)
	live, err := NewLive(stream, nil)
	if err != nil {
		t.Fatalf("NewLive() error = %v", err)
	}

	live.Close()
	live.Close()

	if got := stream.closeCount(); got != 1 {
		t.Fatalf("stream closed %d times, want 1", got)
	}
	if live.Failed() {
		t.Fatal("a requested close must not count as failure")
	}
}

func TestNewLiveRejectsNilStream(t *testing.T) {
	if _, err := NewLive(nil, nil); !errors.Is(err, ErrNoInput) {
		t.Fatalf("NewLive(nil) error = %v, want ErrNoInput", err)
	}
}
