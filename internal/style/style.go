// Package style is the dialect-independent model of the styles discovered in a
// design document: named fills and named text styles, kept in discovery order.
package style

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind distinguishes fills from text styles.
type Kind int

const (
	KindFill Kind = iota
	KindTextStyle
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFill:
		return "fill"
	case KindTextStyle:
		return "text-style"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Color is a colour on the internal unit scale: every channel, alpha included,
// is nominally in [0, 1]. Values are stored as given; range checking is the
// colour formatter's job so that extraction defects surface instead of being
// clamped away.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// NewColor builds a colour from unit-scale channels.
func NewColor(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// Opaque builds a unit-scale colour with alpha 1.
func Opaque(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// NewColor255 builds a colour from 0-255 channels and a unit-scale alpha.
func NewColor255(r, g, b, a float64) Color {
	return Color{R: r / 255, G: g / 255, B: b / 255, A: a}
}

// String returns a debug representation.
func (c Color) String() string {
	return fmt.Sprintf("color(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
}

// TextStyleAttributes is an ordered set of CSS property -> literal value pairs.
// Properties and values are opaque and emitted verbatim.
type TextStyleAttributes struct {
	props *orderedmap.OrderedMap[string, string]
}

// NewTextStyleAttributes builds attributes from alternating property/value
// arguments. A trailing property without a value is ignored.
func NewTextStyleAttributes(pairs ...string) *TextStyleAttributes {
	a := &TextStyleAttributes{props: orderedmap.New[string, string]()}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Set(pairs[i], pairs[i+1])
	}
	return a
}

// Set adds or replaces a property. Replacing keeps the original position.
func (a *TextStyleAttributes) Set(prop, value string) {
	if a.props == nil {
		a.props = orderedmap.New[string, string]()
	}
	a.props.Set(prop, value)
}

// Get returns the value of prop.
func (a *TextStyleAttributes) Get(prop string) (string, bool) {
	if a == nil || a.props == nil {
		return "", false
	}
	return a.props.Get(prop)
}

// Len returns the number of properties.
func (a *TextStyleAttributes) Len() int {
	if a == nil || a.props == nil {
		return 0
	}
	return a.props.Len()
}

// Each calls fn for every property in insertion order.
func (a *TextStyleAttributes) Each(fn func(prop, value string)) {
	if a == nil || a.props == nil {
		return
	}
	for pair := a.props.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

func (a *TextStyleAttributes) clone() *TextStyleAttributes {
	c := NewTextStyleAttributes()
	a.Each(c.Set)
	return c
}

// StyleEntry is one discovered style.
type StyleEntry struct {
	Name       string
	Kind       Kind
	Color      Color
	Attributes *TextStyleAttributes
}

// OutputStyle is the sole input to code generation. It is built once per
// request and is read-only afterwards.
type OutputStyle struct {
	fills      *orderedmap.OrderedMap[string, Color]
	textStyles *orderedmap.OrderedMap[string, *TextStyleAttributes]
}

// Empty returns an OutputStyle with no entries.
func Empty() *OutputStyle {
	return NewBuilder().Build()
}

// FillCount returns the number of fills.
func (s *OutputStyle) FillCount() int {
	if s == nil {
		return 0
	}
	return s.fills.Len()
}

// TextStyleCount returns the number of text styles.
func (s *OutputStyle) TextStyleCount() int {
	if s == nil {
		return 0
	}
	return s.textStyles.Len()
}

// Len returns the total number of entries.
func (s *OutputStyle) Len() int {
	return s.FillCount() + s.TextStyleCount()
}

// Fill returns the fill called name.
func (s *OutputStyle) Fill(name string) (Color, bool) {
	if s == nil {
		return Color{}, false
	}
	return s.fills.Get(name)
}

// TextStyle returns the text style called name.
func (s *OutputStyle) TextStyle(name string) (*TextStyleAttributes, bool) {
	if s == nil {
		return nil, false
	}
	return s.textStyles.Get(name)
}

// EachFill calls fn for every fill in discovery order.
func (s *OutputStyle) EachFill(fn func(name string, c Color)) {
	if s == nil {
		return
	}
	for pair := s.fills.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// EachTextStyle calls fn for every text style in discovery order.
func (s *OutputStyle) EachTextStyle(fn func(name string, attrs *TextStyleAttributes)) {
	if s == nil {
		return
	}
	for pair := s.textStyles.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Entries returns fills then text styles, each in discovery order.
func (s *OutputStyle) Entries() []StyleEntry {
	entries := make([]StyleEntry, 0, s.Len())
	s.EachFill(func(name string, c Color) {
		entries = append(entries, StyleEntry{Name: name, Kind: KindFill, Color: c})
	})
	s.EachTextStyle(func(name string, attrs *TextStyleAttributes) {
		entries = append(entries, StyleEntry{Name: name, Kind: KindTextStyle, Attributes: attrs})
	})
	return entries
}

// Builder accumulates entries in discovery order.
type Builder struct {
	fills      *orderedmap.OrderedMap[string, Color]
	textStyles *orderedmap.OrderedMap[string, *TextStyleAttributes]
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		fills:      orderedmap.New[string, Color](),
		textStyles: orderedmap.New[string, *TextStyleAttributes](),
	}
}

// AddFill records a fill. A repeated name replaces the value but keeps the
// position of the first occurrence, since names are unique within a kind.
func (b *Builder) AddFill(name string, c Color) *Builder {
	b.fills.Set(name, c)
	return b
}

// AddTextStyle records a text style. Repeated names behave as in AddFill.
func (b *Builder) AddTextStyle(name string, attrs *TextStyleAttributes) *Builder {
	if attrs == nil {
		attrs = NewTextStyleAttributes()
	}
	b.textStyles.Set(name, attrs)
	return b
}

// Add records an entry of either kind.
func (b *Builder) Add(e StyleEntry) *Builder {
	if e.Kind == KindTextStyle {
		return b.AddTextStyle(e.Name, e.Attributes)
	}
	return b.AddFill(e.Name, e.Color)
}

// Build returns an OutputStyle detached from the builder.
func (b *Builder) Build() *OutputStyle {
	s := &OutputStyle{
		fills:      orderedmap.New[string, Color](),
		textStyles: orderedmap.New[string, *TextStyleAttributes](),
	}
	for pair := b.fills.Oldest(); pair != nil; pair = pair.Next() {
		s.fills.Set(pair.Key, pair.Value)
	}
	for pair := b.textStyles.Oldest(); pair != nil; pair = pair.Next() {
		s.textStyles.Set(pair.Key, pair.Value.clone())
	}
	return s
}
