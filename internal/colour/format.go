// Package colour renders style colours as stylesheet colour literals.
package colour

import (
	"fmt"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/stylegen/internal/protocol"
	"github.com/jmylchreest/stylegen/internal/style"
)

// alphaPrecision is the number of decimals used for functional alpha.
const alphaPrecision = 2

type options struct {
	hexAlpha bool
}

// Option tunes colour rendering.
type Option func(*options)

// WithHexAlpha forces the alpha byte onto HEX output even for opaque colours.
func WithHexAlpha(force bool) Option {
	return func(o *options) { o.hexAlpha = force }
}

// Format renders c in the given mode. Every channel must be finite and within
// [0, 1]; anything else is a *protocol.ChannelEncodingError.
func Format(c style.Color, mode protocol.ColorMode, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := Validate(c); err != nil {
		return "", err
	}

	switch mode {
	case protocol.ColorModeRGBA:
		return rgba(c), nil
	case protocol.ColorModeHSLA:
		return hsla(c), nil
	case protocol.ColorModeHEX:
		return hex(c, o.hexAlpha), nil
	default:
		return "", &protocol.UnsupportedOptionError{Option: "colorMode", Value: string(mode)}
	}
}

// Validate checks that every channel is a finite value within [0, 1].
func Validate(c style.Color) error {
	channels := []struct {
		name  string
		value float64
	}{
		{"red", c.R},
		{"green", c.G},
		{"blue", c.B},
		{"alpha", c.A},
	}
	for _, ch := range channels {
		if math.IsNaN(ch.value) || math.IsInf(ch.value, 0) || ch.value < 0 || ch.value > 1 {
			return &protocol.ChannelEncodingError{Channel: ch.name, Value: ch.value}
		}
	}
	return nil
}

// Byte converts a unit channel to 0-255, rounding half away from zero.
func Byte(v float64) int {
	return int(math.Round(v * 255))
}

// Alpha renders a unit alpha with fixed precision, rounding half away from zero.
// An alpha of 1 renders as "1.00".
func Alpha(a float64) string {
	scale := math.Pow10(alphaPrecision)
	return strconv.FormatFloat(math.Round(a*scale)/scale, 'f', alphaPrecision, 64)
}

// rgba renders "rgba(r, g, b, a)".
func rgba(c style.Color) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", Byte(c.R), Byte(c.G), Byte(c.B), Alpha(c.A))
}

// hsla renders "hsla(h, s%, l%, a)" using the standard max/min transform.
func hsla(c style.Color) string {
	h, s, l := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()

	hue := int(math.Round(h)) % 360
	if hue < 0 {
		hue += 360
	}
	return fmt.Sprintf("hsla(%d, %d%%, %d%%, %s)",
		hue, int(math.Round(s*100)), int(math.Round(l*100)), Alpha(c.A))
}

// hex renders "#rrggbb", or "#rrggbbaa" for translucent colours or when forced.
func hex(c style.Color, forceAlpha bool) string {
	out := fmt.Sprintf("#%02x%02x%02x", Byte(c.R), Byte(c.G), Byte(c.B))
	if forceAlpha || c.A < 1 {
		out += fmt.Sprintf("%02x", Byte(c.A))
	}
	return out
}
