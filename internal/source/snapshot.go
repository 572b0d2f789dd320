// Package source resolves OutputStyle values from document snapshots written
// by the design-tool host.
//
// A snapshot is a JSON object with two members, both optional:
//
//	{
//	  "fills":      {"Primary Blue": {"r": 0, "g": 0, "b": 1}, "Overlay": "#00000080"},
//	  "textStyles": {"Heading 1": {"font-family": "Inter", "font-size": "32px", "font-weight": 700}}
//	}
//
// Member order is preserved: it is the discovery order used by every generator.
package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jmylchreest/stylegen/internal/style"
)

// ChannelScale is the range the host uses for red, green and blue in object fills.
// Alpha is always in [0, 1].
type ChannelScale string

const (
	// ScaleUnit means channels are in [0, 1].
	ScaleUnit ChannelScale = "unit"

	// ScaleByte means channels are in [0, 255].
	ScaleByte ChannelScale = "byte"
)

// ParseChannelScale matches a scale name case-insensitively. Empty means ScaleUnit.
func ParseChannelScale(s string) (ChannelScale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ScaleUnit):
		return ScaleUnit, nil
	case string(ScaleByte):
		return ScaleByte, nil
	default:
		return "", fmt.Errorf("unknown channel scale %q (valid: unit, byte)", s)
	}
}

// Parse builds an OutputStyle from snapshot JSON.
//
// Channel values are never clamped: a value outside the scale survives to the
// colour formatter, which rejects it.
func Parse(data []byte, scale ChannelScale) (*style.OutputStyle, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("snapshot is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("snapshot must be a JSON object")
	}

	b := style.NewBuilder()

	if fills := root.Get("fills"); fills.Exists() && fills.Type != gjson.Null {
		if !fills.IsObject() {
			return nil, fmt.Errorf("snapshot fills must be an object")
		}
		var err error
		fills.ForEach(func(key, value gjson.Result) bool {
			var c style.Color
			c, err = parseFill(value, scale)
			if err != nil {
				err = fmt.Errorf("fill %q: %w", key.String(), err)
				return false
			}
			b.AddFill(key.String(), c)
			return true
		})
		if err != nil {
			return nil, err
		}
	}

	if texts := root.Get("textStyles"); texts.Exists() && texts.Type != gjson.Null {
		if !texts.IsObject() {
			return nil, fmt.Errorf("snapshot textStyles must be an object")
		}
		var err error
		texts.ForEach(func(key, value gjson.Result) bool {
			var attrs *style.TextStyleAttributes
			attrs, err = parseTextStyle(value)
			if err != nil {
				err = fmt.Errorf("text style %q: %w", key.String(), err)
				return false
			}
			b.AddTextStyle(key.String(), attrs)
			return true
		})
		if err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

func parseFill(v gjson.Result, scale ChannelScale) (style.Color, error) {
	switch {
	case v.Type == gjson.String:
		return ParseCSSColour(v.String())
	case v.IsObject():
		return parseChannels(v, scale)
	default:
		return style.Color{}, fmt.Errorf("unsupported fill value %s", v.Raw)
	}
}

func parseChannels(v gjson.Result, scale ChannelScale) (style.Color, error) {
	var rgb [3]float64
	for i, name := range []string{"r", "g", "b"} {
		ch := v.Get(name)
		if ch.Type != gjson.Number {
			return style.Color{}, fmt.Errorf("channel %q missing or not a number", name)
		}
		rgb[i] = ch.Float()
	}

	alpha := 1.0
	for _, name := range []string{"a", "opacity"} {
		if ch := v.Get(name); ch.Exists() {
			if ch.Type != gjson.Number {
				return style.Color{}, fmt.Errorf("channel %q is not a number", name)
			}
			alpha = ch.Float()
			break
		}
	}

	if scale == ScaleByte {
		return style.NewColor255(rgb[0], rgb[1], rgb[2], alpha), nil
	}
	return style.NewColor(rgb[0], rgb[1], rgb[2], alpha), nil
}

func parseTextStyle(v gjson.Result) (*style.TextStyleAttributes, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("unsupported text style value %s", v.Raw)
	}

	attrs := style.NewTextStyleAttributes()
	var err error
	v.ForEach(func(prop, value gjson.Result) bool {
		switch value.Type {
		case gjson.String:
			attrs.Set(prop.String(), value.String())
		case gjson.Number:
			attrs.Set(prop.String(), strings.TrimSpace(value.Raw))
		default:
			err = fmt.Errorf("attribute %q must be a string or number", prop.String())
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// ParseCSSColour parses the colour notations a host may write for a fill:
// "#rgb", "#rgba", "#rrggbb", "#rrggbbaa", "rgb(r, g, b)" and "rgba(r, g, b, a)".
// Functional channels are 0-255 and alpha is 0-1.
func ParseCSSColour(s string) (style.Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}

	lower := strings.ToLower(s)
	for _, fn := range []string{"rgba(", "rgb("} {
		if strings.HasPrefix(lower, fn) && strings.HasSuffix(lower, ")") {
			return parseFunctional(s[len(fn) : len(s)-1])
		}
	}
	return style.Color{}, fmt.Errorf("unsupported colour %q", s)
}

func parseHex(h string) (style.Color, error) {
	switch len(h) {
	case 3, 4:
		expanded := make([]byte, 0, len(h)*2)
		for i := 0; i < len(h); i++ {
			expanded = append(expanded, h[i], h[i])
		}
		h = string(expanded)
	case 6, 8:
	default:
		return style.Color{}, fmt.Errorf("invalid hex colour #%s", h)
	}

	var ch [4]float64
	ch[3] = 255
	for i := 0; i < len(h)/2; i++ {
		n, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return style.Color{}, fmt.Errorf("invalid hex colour #%s", h)
		}
		ch[i] = float64(n)
	}
	return style.NewColor255(ch[0], ch[1], ch[2], ch[3]/255), nil
}

func parseFunctional(args string) (style.Color, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return style.Color{}, fmt.Errorf("expected 3 or 4 components, got %d", len(parts))
	}

	vals := make([]float64, 4)
	vals[3] = 1
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return style.Color{}, fmt.Errorf("invalid colour component %q", strings.TrimSpace(p))
		}
		vals[i] = v
	}
	return style.NewColor255(vals[0], vals[1], vals[2], vals[3]), nil
}
