package audio

import (
	"errors"
	"io"
	"sync"
	"time"
)

// decoderStream mixes a decoder down to mono and restarts it at end of file,
// unless once is set.
type decoderStream struct {
	dec     pcmDecoder
	label   string
	once    bool
	scratch []float64
}

func (s *decoderStream) Read(p []float64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	channels := s.dec.Channels()
	want := len(p) * channels
	if cap(s.scratch) < want {
		s.scratch = make([]float64, want)
	}

	n, err := s.dec.Read(s.scratch[:want])
	if n == 0 && errors.Is(err, io.EOF) {
		if s.once {
			return 0, io.EOF
		}
		if rerr := s.dec.Rewind(); rerr != nil {
			return 0, rerr
		}
		n, err = s.dec.Read(s.scratch[:want])
		if n == 0 {
			// empty after rewind: nothing to loop
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
	}
	if n == 0 {
		return 0, err
	}

	frames := n / channels
	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += s.scratch[i*channels+ch]
		}
		p[i] = sum / float64(channels)
	}
	if frames == 0 {
		// a trailing partial frame; the next read rewinds
		return 0, nil
	}
	return frames, nil
}

func (s *decoderStream) SampleRate() int { return s.dec.SampleRate() }
func (s *decoderStream) Label() string   { return s.label }
func (s *decoderStream) Close() error    { return s.dec.Close() }

// pacedStream releases samples no faster than real time so a file behaves
// like a microphone.
type pacedStream struct {
	src   Stream
	chunk int

	start time.Time
	sent  int64
	rate  int

	closed    chan struct{}
	closeOnce sync.Once
}

func newPacedStream(src Stream) Stream {
	rate := src.SampleRate()
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &pacedStream{
		src:    src,
		chunk:  max(rate/100, 64), // ~10ms
		closed: make(chan struct{}),
	}
}

func (s *pacedStream) Read(p []float64) (int, error) {
	select {
	case <-s.closed:
		return 0, io.ErrClosedPipe
	default:
	}

	if len(p) > s.chunk {
		p = p[:s.chunk]
	}
	n, err := s.src.Read(p)
	if n == 0 {
		return 0, err
	}

	rate := s.SampleRate()
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if s.start.IsZero() || rate != s.rate {
		// playlists can change rate between entries
		s.start = time.Now()
		s.sent = 0
		s.rate = rate
	}
	s.sent += int64(n)

	due := s.start.Add(time.Duration(float64(s.sent) / float64(rate) * float64(time.Second)))
	if wait := time.Until(due); wait > 0 {
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-s.closed:
			timer.Stop()
		}
	}
	return n, err
}

func (s *pacedStream) SampleRate() int { return s.src.SampleRate() }
func (s *pacedStream) Label() string   { return s.src.Label() }

func (s *pacedStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.src.Close()
	})
	return err
}
