package render

import "strings"

// encode writes fb as terminal cells. In colour modes "▀" packs two pixel
// rows per cell (fg = top, bg = bottom), so fb must be twice as tall as the
// cell grid. Without colour each pixel row maps to a brightness character
// taken from the top row of each pair.
func encode(sb *strings.Builder, fb *frameBuffer, mode ColorMode) {
	sb.Reset()
	rows := fb.h / 2
	if fb.w <= 0 || rows <= 0 {
		return
	}
	// Generous pre-allocation: worst case ~40 bytes per cell (two escapes).
	sb.Grow(fb.w * rows * 40)

	if mode == ColorOff {
		encodeASCII(sb, fb, rows)
		return
	}

	for row := range rows {
		var lastFg, lastBg string
		for col := range fb.w {
			top := toRGB8(fb.at(col, row*2))
			bot := toRGB8(fb.at(col, row*2+1))

			fg := colorSeq(mode, top, false)
			bg := colorSeq(mode, bot, true)
			if fg != lastFg {
				sb.WriteString(fg)
				lastFg = fg
			}
			if bg != lastBg {
				sb.WriteString(bg)
				lastBg = bg
			}
			sb.WriteString("▀")
		}
		sb.WriteString(ansiReset)
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
}

func encodeASCII(sb *strings.Builder, fb *frameBuffer, rows int) {
	for row := range rows {
		for col := range fb.w {
			a := fb.at(col, row*2)
			b := fb.at(col, row*2+1)
			sb.WriteByte(brightnessChar(luminance(toRGB8(a.add(b).scale(0.5)))))
		}
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
}
