package render

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// ASCII brightness ramp from darkest to brightest.
const asciiRamp = " .:-=+*#%@"

const ansiReset = "\x1b[0m"

// ColorMode describes how colours reach the terminal.
type ColorMode uint8

const (
	ColorAuto    ColorMode = iota
	ColorOff               // NO_COLOR or dumb terminal
	ColorANSI16            // basic 16-color
	ColorANSI256           // 256-color
	ColorTrue              // 24-bit truecolor
)

// ParseColorMode accepts auto, off, 16, 256 and truecolor.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "off", "none", "ascii":
		return ColorOff, nil
	case "16", "ansi16":
		return ColorANSI16, nil
	case "256", "ansi256":
		return ColorANSI256, nil
	case "truecolor", "24bit", "true":
		return ColorTrue, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode %q", s)
	}
}

var (
	detectOnce sync.Once
	termColor  ColorMode
	seqCache   sync.Map
)

// detectColorMode checks terminal capabilities once.
func detectColorMode() ColorMode {
	detectOnce.Do(func() {
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			termColor = ColorOff
			return
		}
		term := strings.ToLower(os.Getenv("TERM"))
		ct := strings.ToLower(os.Getenv("COLORTERM"))
		switch {
		case strings.Contains(ct, "truecolor"), strings.Contains(ct, "24bit"):
			termColor = ColorTrue
		case strings.Contains(term, "256color"):
			termColor = ColorANSI256
		case term == "dumb":
			termColor = ColorOff
		case term == "" && runtime.GOOS == "windows":
			termColor = ColorANSI16
		case term == "":
			termColor = ColorOff
		default:
			termColor = ColorANSI16
		}
	})
	return termColor
}

func resolveColorMode(m ColorMode) ColorMode {
	if m == ColorAuto {
		return detectColorMode()
	}
	return m
}

// brightnessChar maps a 0-255 luminance to an ASCII character.
func brightnessChar(lum uint8) byte {
	idx := int(lum) * (len(asciiRamp) - 1) / 255
	return asciiRamp[idx]
}

// luminance computes perceived brightness (ITU-R BT.601).
func luminance(p rgb8) uint8 {
	return uint8((299*int(p.R) + 587*int(p.G) + 114*int(p.B)) / 1000)
}

// colorSeq returns the foreground or background escape for p, cached per mode.
// Returns empty string if colors are disabled.
func colorSeq(mode ColorMode, p rgb8, background bool) string {
	key := uint32(mode)<<25 | uint32(p.R)<<16 | uint32(p.G)<<8 | uint32(p.B)
	if background {
		key |= 1 << 24
	}
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	layer := 38
	if background {
		layer = 48
	}
	var seq string
	switch mode {
	case ColorTrue:
		seq = fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", layer, p.R, p.G, p.B)
	case ColorANSI256:
		ri := int(p.R) * 5 / 255
		gi := int(p.G) * 5 / 255
		bi := int(p.B) * 5 / 255
		seq = fmt.Sprintf("\x1b[%d;5;%dm", layer, 16+36*ri+6*gi+bi)
	case ColorANSI16:
		best := nearestANSI16(p)
		base := 30
		if background {
			base = 40
		}
		if best >= 8 {
			base += 60
			best -= 8
		}
		seq = fmt.Sprintf("\x1b[%dm", base+best)
	}

	seqCache.Store(key, seq)
	return seq
}

func nearestANSI16(p rgb8) int {
	best := 0
	bestDist := 1<<31 - 1
	for i, c := range ansi16Palette {
		dr := int(p.R) - int(c.R)
		dg := int(p.G) - int(c.G)
		db := int(p.B) - int(c.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

var ansi16Palette = [16]rgb8{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}
