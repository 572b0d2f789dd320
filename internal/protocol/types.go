// Package protocol defines the command protocol spoken between the panel and
// the generation engine: option enumerations, message payloads, the error
// taxonomy and protocol version compatibility.
package protocol

import (
	"fmt"
	"strings"
)

// CommandType is the action a panel request asks for.
type CommandType string

const (
	// CommandGenerateCode requests code for the current selections.
	CommandGenerateCode CommandType = "GENERATE_CODE"

	// CommandCopy requests code that the panel will place on the clipboard.
	CommandCopy CommandType = "COPY"

	// CommandDownload requests code that the panel will save to a file.
	CommandDownload CommandType = "DOWNLOAD"

	// CommandClean clears the displayed code. No styles are resolved.
	CommandClean CommandType = "CLEAN"
)

// OutputFormat is a stylesheet dialect.
type OutputFormat string

const (
	FormatSCSS   OutputFormat = "SCSS"
	FormatLESS   OutputFormat = "LESS"
	FormatStylus OutputFormat = "STYLUS"
	FormatCSS    OutputFormat = "CSS"
)

// ColorMode is a textual encoding for colour values.
type ColorMode string

const (
	ColorModeRGBA ColorMode = "RGBA"
	ColorModeHSLA ColorMode = "HSLA"
	ColorModeHEX  ColorMode = "HEX"
)

// NameFormat is an identifier naming convention.
type NameFormat string

const (
	NameKebabHyphen     NameFormat = "KEBAB_HYPHEN"
	NameKebabUnderscore NameFormat = "KEBAB_UNDERSCORE"
	NameCamel           NameFormat = "CAMEL"
	NamePascal          NameFormat = "PASCAL"
)

// Commands returns every command token in protocol order.
func Commands() []CommandType {
	return []CommandType{CommandGenerateCode, CommandCopy, CommandDownload, CommandClean}
}

// Formats returns every output format token in protocol order.
func Formats() []OutputFormat {
	return []OutputFormat{FormatSCSS, FormatLESS, FormatStylus, FormatCSS}
}

// ColorModes returns every colour mode token in protocol order.
func ColorModes() []ColorMode {
	return []ColorMode{ColorModeRGBA, ColorModeHSLA, ColorModeHEX}
}

// NameFormats returns every naming convention token in protocol order.
func NameFormats() []NameFormat {
	return []NameFormat{NameKebabHyphen, NameKebabUnderscore, NameCamel, NamePascal}
}

// Valid reports whether c is a known command token.
func (c CommandType) Valid() bool { return contains(Commands(), c) }

// Valid reports whether f is a known output format token.
func (f OutputFormat) Valid() bool { return contains(Formats(), f) }

// Valid reports whether m is a known colour mode token.
func (m ColorMode) Valid() bool { return contains(ColorModes(), m) }

// Valid reports whether n is a known naming convention token.
func (n NameFormat) Valid() bool { return contains(NameFormats(), n) }

// Extension returns the file extension used for downloads: the lowercase
// format token.
func (f OutputFormat) Extension() string {
	return strings.ToLower(string(f))
}

// ParseCommand matches a command token case-insensitively.
func ParseCommand(s string) (CommandType, error) {
	return parse(Commands(), "command", s)
}

// ParseFormat matches an output format token case-insensitively.
func ParseFormat(s string) (OutputFormat, error) {
	return parse(Formats(), "format", s)
}

// ParseColorMode matches a colour mode token case-insensitively.
func ParseColorMode(s string) (ColorMode, error) {
	return parse(ColorModes(), "colorMode", s)
}

// ParseNameFormat matches a naming convention token case-insensitively.
// Hyphens are accepted in place of underscores ("kebab-hyphen").
func ParseNameFormat(s string) (NameFormat, error) {
	return parse(NameFormats(), "nameFormat", strings.ReplaceAll(s, "-", "_"))
}

func contains[T ~string](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func parse[T ~string](set []T, option, s string) (T, error) {
	for _, v := range set {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, nil
		}
	}
	var zero T
	return zero, &UnsupportedOptionError{Option: option, Value: s}
}

// tokens renders a token set for help and error text.
func tokens[T ~string](set []T) string {
	parts := make([]string, len(set))
	for i, v := range set {
		parts[i] = string(v)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
