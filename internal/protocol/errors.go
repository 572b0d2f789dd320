package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName matches any *InvalidNameError.
	ErrInvalidName = errors.New("invalid style name")

	// ErrChannelEncoding matches any *ChannelEncodingError.
	ErrChannelEncoding = errors.New("malformed colour channel")

	// ErrUnsupportedOption matches any *UnsupportedOptionError.
	ErrUnsupportedOption = errors.New("unsupported option")
)

// InvalidNameError reports a style name that cannot be turned into an
// identifier. It only ever aborts the single entry it names.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid style name %q", e.Name)
	}
	return fmt.Sprintf("invalid style name %q: %s", e.Name, e.Reason)
}

// Is lets errors.Is match ErrInvalidName.
func (e *InvalidNameError) Is(target error) bool { return target == ErrInvalidName }

// ChannelEncodingError reports a colour channel outside its valid range.
// It indicates an upstream extraction defect and aborts the whole request.
type ChannelEncodingError struct {
	Channel string
	Value   float64
}

func (e *ChannelEncodingError) Error() string {
	return fmt.Sprintf("colour channel %s out of range: %v", e.Channel, e.Value)
}

// Is lets errors.Is match ErrChannelEncoding.
func (e *ChannelEncodingError) Is(target error) bool { return target == ErrChannelEncoding }

// UnsupportedOptionError reports an unrecognised enumeration token in a request.
type UnsupportedOptionError struct {
	Option string
	Value  string
}

func (e *UnsupportedOptionError) Error() string {
	var valid string
	switch e.Option {
	case "command":
		valid = tokens(Commands())
	case "format":
		valid = tokens(Formats())
	case "colorMode":
		valid = tokens(ColorModes())
	case "nameFormat":
		valid = tokens(NameFormats())
	}
	if valid == "" {
		return fmt.Sprintf("unsupported %s: %q", e.Option, e.Value)
	}
	return fmt.Sprintf("unsupported %s: %q (valid: %s)", e.Option, e.Value, valid)
}

// Is lets errors.Is match ErrUnsupportedOption.
func (e *UnsupportedOptionError) Is(target error) bool { return target == ErrUnsupportedOption }

// ErrorKind classifies an error carried inside a Response.
type ErrorKind string

const (
	KindInvalidName       ErrorKind = "invalid_name"
	KindChannelEncoding   ErrorKind = "channel_encoding"
	KindUnsupportedOption ErrorKind = "unsupported_option"
	KindInternal          ErrorKind = "internal"
)

// ErrorPayload is the serialised form of an error crossing the process boundary.
type ErrorPayload struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewErrorPayload classifies err for transport.
func NewErrorPayload(err error) *ErrorPayload {
	if err == nil {
		return nil
	}
	kind := KindInternal
	switch {
	case errors.Is(err, ErrUnsupportedOption):
		kind = KindUnsupportedOption
	case errors.Is(err, ErrChannelEncoding):
		kind = KindChannelEncoding
	case errors.Is(err, ErrInvalidName):
		kind = KindInvalidName
	}
	return &ErrorPayload{Kind: kind, Message: err.Error()}
}

// RemoteError is an error rebuilt from an ErrorPayload on the receiving side.
// It still matches the sentinel for its kind.
type RemoteError struct {
	Kind    ErrorKind
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Is matches the sentinel that corresponds to the error kind.
func (e *RemoteError) Is(target error) bool {
	switch e.Kind {
	case KindInvalidName:
		return target == ErrInvalidName
	case KindChannelEncoding:
		return target == ErrChannelEncoding
	case KindUnsupportedOption:
		return target == ErrUnsupportedOption
	}
	return false
}

// Err rebuilds an error from the payload. A nil payload yields nil.
func (p *ErrorPayload) Err() error {
	if p == nil {
		return nil
	}
	return &RemoteError{Kind: p.Kind, Message: p.Message}
}
