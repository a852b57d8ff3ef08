package render

import (
	"image/color"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Scale maps population values onto a continuous light-to-dark red ramp
// spanning exactly [Min, Max].
type Scale struct {
	Min float64
	Max float64
}

// Ramp endpoints: a sequential single-hue red palette.
var (
	rampLight = color.NRGBA{R: 254, G: 229, B: 217, A: 255}
	rampDark  = color.NRGBA{R: 165, G: 15, B: 21, A: 255}
)

// NewScale builds a scale over the given value range.
func NewScale(min, max float64) Scale {
	return Scale{Min: min, Max: max}
}

// Color returns the ramp color for a value. Values are clamped to the
// scale's range; a degenerate range (min == max) maps to the ramp midpoint.
func (s Scale) Color(v float64) color.Color {
	return s.ColorAt(s.Frac(v))
}

// Frac returns the position of v within the scale, in [0, 1].
func (s Scale) Frac(v float64) float64 {
	if s.Max == s.Min {
		return 0.5
	}
	f := (v - s.Min) / (s.Max - s.Min)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ColorAt interpolates the ramp at a fraction in [0, 1].
func (s Scale) ColorAt(frac float64) color.Color {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return color.NRGBA{
		R: lerp8(rampLight.R, rampDark.R, frac),
		G: lerp8(rampLight.G, rampDark.G, frac),
		B: lerp8(rampLight.B, rampDark.B, frac),
		A: 255,
	}
}

func lerp8(a, b uint8, f float64) uint8 {
	return uint8(float64(a) + f*(float64(b)-float64(a)) + 0.5)
}

var popPrinter = message.NewPrinter(language.English)

// FormatPopulation renders a population value for legend labels: rounded,
// thousands-separated, never scientific notation.
func FormatPopulation(v float64) string {
	return popPrinter.Sprintf("%.0f", v)
}
