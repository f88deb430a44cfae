package app

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	hueStart = 236.0 // deep blue for the quietest bins
	hueEnd   = 0.0   // red for the loudest
)

// PowerBounds is the dB range mapped onto the color gradient.
type PowerBounds struct {
	Min float64
	Max float64
}

// pixelColor maps a power level onto the blue-to-red HSV gradient between
// the given bounds. Values outside the bounds clamp to the gradient ends.
func pixelColor(power float64, bounds PowerBounds) color.Color {
	span := bounds.Max - bounds.Min
	if span <= 0 {
		return colorful.Hsv(hueStart, 1, 0.90)
	}

	hPerDeg := (hueStart - hueEnd) / span
	hue := hueStart - (power-bounds.Min)*hPerDeg
	hue = math.Min(math.Max(hue, hueEnd), hueStart)

	return colorful.Hsv(hue, 1, 0.90)
}
