package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// pcmDecoder is implemented by all format-specific decoders. Read fills dst
// with interleaved samples in -1..1.
type pcmDecoder interface {
	Read(dst []float64) (int, error)
	Rewind() error
	SampleRate() int
	Channels() int
	Close() error
}

// openDecoder detects format by file extension and returns the appropriate decoder.
func openDecoder(path string) (pcmDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var dec pcmDecoder
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		dec, err = newMP3Decoder(f)
	case ".wav":
		dec, err = newWAVDecoder(f)
	case ".flac":
		dec, err = newFLACDecoder(f)
	case ".ogg":
		dec, err = newOGGDecoder(f)
	default:
		err = fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return dec, nil
}

func clampSample(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// --- MP3 decoder ---

// go-mp3 always produces 16-bit stereo.
type mp3Decoder struct {
	file *os.File
	dec  *mp3.Decoder
	raw  []byte
}

func newMP3Decoder(f *os.File) (*mp3Decoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	return &mp3Decoder{file: f, dec: dec}, nil
}

func (d *mp3Decoder) Read(dst []float64) (int, error) {
	// whole stereo frames only
	want := (len(dst) / 2) * 4
	if want == 0 {
		return 0, nil
	}
	if cap(d.raw) < want {
		d.raw = make([]byte, want)
	}
	n, err := io.ReadAtLeast(d.dec, d.raw[:want], 4)
	n -= n % 2
	for i := 0; i < n/2; i++ {
		dst[i] = float64(int16(binary.LittleEndian.Uint16(d.raw[i*2:]))) / 32768
	}
	if n > 0 {
		return n / 2, nil
	}
	if err == nil || err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return 0, err
}

func (d *mp3Decoder) Rewind() error {
	_, err := d.dec.Seek(0, io.SeekStart)
	return err
}

func (d *mp3Decoder) SampleRate() int { return d.dec.SampleRate() }
func (d *mp3Decoder) Channels() int   { return 2 }
func (d *mp3Decoder) Close() error    { return d.file.Close() }

// --- WAV decoder ---

type wavDecoder struct {
	file        *os.File
	raw         []byte
	pcmStart    int64 // byte offset in file where PCM data begins
	sampleRate  int
	channels    int
	srcBitDepth int
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	// FwdToPCM positions the reader at the start of PCM data
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", bitDepth)
	}

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("getting PCM start position: %w", err)
	}

	return &wavDecoder{
		file:        f,
		pcmStart:    pcmStart,
		sampleRate:  int(dec.SampleRate),
		channels:    max(int(dec.NumChans), 1),
		srcBitDepth: bitDepth,
	}, nil
}

func (d *wavDecoder) Read(dst []float64) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	bytesPerSample := d.srcBitDepth / 8
	want := len(dst) * bytesPerSample
	if cap(d.raw) < want {
		d.raw = make([]byte, want)
	}
	n, err := io.ReadFull(d.file, d.raw[:want])
	samples := n / bytesPerSample

	for i := range samples {
		off := i * bytesPerSample
		var v float64
		switch d.srcBitDepth {
		case 8:
			// 8-bit WAV is unsigned
			v = (float64(d.raw[off]) - 128) / 128
		case 16:
			v = float64(int16(binary.LittleEndian.Uint16(d.raw[off:]))) / 32768
		case 24:
			s := int32(d.raw[off]) | int32(d.raw[off+1])<<8 | int32(d.raw[off+2])<<16
			if s&0x800000 != 0 {
				s |= ^0xFFFFFF // sign extend
			}
			v = float64(s) / 8388608
		case 32:
			v = float64(int32(binary.LittleEndian.Uint32(d.raw[off:]))) / 2147483648
		}
		dst[i] = clampSample(v)
	}

	if samples > 0 {
		return samples, nil
	}
	if err == nil || err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return 0, err
}

func (d *wavDecoder) Rewind() error {
	_, err := d.file.Seek(d.pcmStart, io.SeekStart)
	return err
}

func (d *wavDecoder) SampleRate() int { return d.sampleRate }
func (d *wavDecoder) Channels() int   { return d.channels }
func (d *wavDecoder) Close() error    { return d.file.Close() }

// --- FLAC decoder ---

type flacDecoder struct {
	file       *os.File
	stream     *flac.Stream
	buf        []float64 // decoded samples not yet returned
	sampleRate int
	channels   int
	bps        int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	return &flacDecoder{
		file:       f,
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   max(int(info.NChannels), 1),
		bps:        int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(dst []float64) (int, error) {
	if len(d.buf) == 0 {
		frame, err := d.stream.ParseNext()
		if err != nil {
			return 0, err
		}

		scale := float64(int64(1) << (d.bps - 1))
		nSamples := int(frame.Subframes[0].NSamples)
		d.buf = d.buf[:0]
		for i := range nSamples {
			for ch := range d.channels {
				d.buf = append(d.buf, clampSample(float64(frame.Subframes[ch].Samples[i])/scale))
			}
		}
	}

	n := copy(dst, d.buf)
	d.buf = d.buf[n:]
	return n, nil
}

func (d *flacDecoder) Rewind() error {
	d.buf = nil
	_, err := d.stream.Seek(0)
	return err
}

func (d *flacDecoder) SampleRate() int { return d.sampleRate }
func (d *flacDecoder) Channels() int   { return d.channels }
func (d *flacDecoder) Close() error    { return d.file.Close() }

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	file    *os.File
	reader  *oggvorbis.Reader
	samples []float32
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{file: f, reader: reader}, nil
}

func (d *oggDecoder) Read(dst []float64) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if cap(d.samples) < len(dst) {
		d.samples = make([]float32, len(dst))
	}
	n, err := d.reader.Read(d.samples[:len(dst)])
	for i := range n {
		dst[i] = clampSample(float64(d.samples[i]))
	}
	if n > 0 {
		return n, nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

func (d *oggDecoder) Rewind() error {
	d.reader.SetPosition(0)
	return nil
}

func (d *oggDecoder) SampleRate() int { return d.reader.SampleRate() }
func (d *oggDecoder) Channels() int   { return max(d.reader.Channels(), 1) }
func (d *oggDecoder) Close() error    { return d.file.Close() }
