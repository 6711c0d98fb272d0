package audio

import (
	"math"
	"testing"
)

func filled(n int, v uint8) []uint8 {
	b := make([]uint8, n)
	for i := range b {
		b[i] = v
	}
	return b
}

func TestAmplitudeSilenceIsZero(t *testing.T) {
	if got := Amplitude(filled(1024, 128)); got != 0 {
		t.Fatalf("Amplitude(silence) = %v, want 0", got)
	}
}

func TestAmplitudeFullScale(t *testing.T) {
	td := make([]uint8, 1024)
	for i := range td {
		if i%2 == 0 {
			td[i] = 0
		} else {
			td[i] = 255
		}
	}
	got := Amplitude(td)
	if got < 0.99 || got > 1 {
		t.Fatalf("Amplitude(square) = %v, want ~1", got)
	}
}

func TestSpectralTiltZeroSpectrumIsZero(t *testing.T) {
	if got := SpectralTilt(filled(512, 0)); got != 0 {
		t.Fatalf("SpectralTilt(zeros) = %v, want 0", got)
	}
}

func TestSpectralTiltLeansTowardEnergy(t *testing.T) {
	low := make([]uint8, 512)
	low[0] = 255
	if got := SpectralTilt(low); got != -1 {
		t.Fatalf("SpectralTilt(low) = %v, want -1", got)
	}

	high := make([]uint8, 512)
	high[511] = 255
	if got := SpectralTilt(high); got <= 0.99 {
		t.Fatalf("SpectralTilt(high) = %v, want ~1", got)
	}
}

func TestBassEnergyUsesLowestBins(t *testing.T) {
	freq := make([]uint8, 512)
	// floor(512*0.08) = 40 bins
	for i := range 40 {
		freq[i] = 255
	}
	if got := BassEnergy(freq); got != 1 {
		t.Fatalf("BassEnergy = %v, want 1", got)
	}

	freq[40] = 0
	freq[0] = 0
	if got, want := BassEnergy(freq), 39.0/40.0; math.Abs(got-want) > 1e-12 {
		t.Fatalf("BassEnergy = %v, want %v", got, want)
	}
}

func TestBassEnergySmallSpectrumUsesOneBin(t *testing.T) {
	if got := BassEnergy([]uint8{255, 0, 0}); got != 1 {
		t.Fatalf("BassEnergy = %v, want 1", got)
	}
}

func TestExtractEmptyBuffersAreNeutral(t *testing.T) {
	f := Extract(nil, nil)
	if f != (Features{}) {
		t.Fatalf("Extract(nil, nil) = %+v, want zero features", f)
	}
}

func TestFeaturesClamp(t *testing.T) {
	f := Features{Amplitude: math.NaN(), BassEnergy: 3, SpectralTilt: -7}.Clamp()
	want := Features{Amplitude: 0, BassEnergy: 1, SpectralTilt: -1}
	if f != want {
		t.Fatalf("Clamp() = %+v, want %+v", f, want)
	}
}
