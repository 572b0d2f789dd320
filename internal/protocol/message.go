package protocol

import (
	"encoding/json"
	"fmt"
)

// Request is one panel action. It is a value: build a new one per action.
type Request struct {
	// ID is an opaque correlation id echoed in the response. Optional.
	ID         string       `json:"id,omitempty"`
	Command    CommandType  `json:"command"`
	Format     OutputFormat `json:"format,omitempty"`
	ColorMode  ColorMode    `json:"colorMode,omitempty"`
	NameFormat NameFormat   `json:"nameFormat,omitempty"`
}

// Validate checks every enumeration token. CLEAN does not need options, so
// empty options are accepted for it; options that are present are still checked.
func (r Request) Validate() error {
	if !r.Command.Valid() {
		return &UnsupportedOptionError{Option: "command", Value: string(r.Command)}
	}
	clean := r.Command == CommandClean
	if !(clean && r.Format == "") && !r.Format.Valid() {
		return &UnsupportedOptionError{Option: "format", Value: string(r.Format)}
	}
	if !(clean && r.ColorMode == "") && !r.ColorMode.Valid() {
		return &UnsupportedOptionError{Option: "colorMode", Value: string(r.ColorMode)}
	}
	if !(clean && r.NameFormat == "") && !r.NameFormat.Valid() {
		return &UnsupportedOptionError{Option: "nameFormat", Value: string(r.NameFormat)}
	}
	return nil
}

// Response answers exactly one Request.
type Response struct {
	ID      string        `json:"id,omitempty"`
	Command CommandType   `json:"command"`
	Count   *int          `json:"count,omitempty"`
	Code    string        `json:"code,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// HasCount reports whether the response carries a count.
func (r Response) HasCount() bool { return r.Count != nil }

// StyleCount returns the count, or zero when absent.
func (r Response) StyleCount() int {
	if r.Count == nil {
		return 0
	}
	return *r.Count
}

// Err returns the error carried by the response, if any.
func (r Response) Err() error { return r.Error.Err() }

// CodeResponse builds a successful response carrying generated code.
func CodeResponse(req Request, code string, count int) Response {
	return Response{ID: req.ID, Command: req.Command, Count: &count, Code: code}
}

// CleanResponse builds the answer to a CLEAN request: a zero count and no code.
func CleanResponse(req Request) Response {
	zero := 0
	return Response{ID: req.ID, Command: req.Command, Count: &zero}
}

// ErrorResponse builds the answer to a request that failed as a whole.
func ErrorResponse(req Request, err error) Response {
	return Response{ID: req.ID, Command: req.Command, Error: NewErrorPayload(err)}
}

// Envelope wraps a payload in the single-field message shape shared by both
// directions of the channel.
type Envelope[T any] struct {
	PluginMessage T `json:"pluginMessage"`
}

// EncodeRequest marshals a request inside an envelope.
func EncodeRequest(req Request) ([]byte, error) {
	return json.Marshal(Envelope[Request]{PluginMessage: req})
}

// DecodeRequest unmarshals an enveloped request.
func DecodeRequest(data []byte) (Request, error) {
	var env Envelope[Request]
	if err := json.Unmarshal(data, &env); err != nil {
		return Request{}, fmt.Errorf("failed to decode request: %w", err)
	}
	return env.PluginMessage, nil
}

// EncodeResponse marshals a response inside an envelope.
func EncodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(Envelope[Response]{PluginMessage: resp})
}

// DecodeResponse unmarshals an enveloped response.
func DecodeResponse(data []byte) (Response, error) {
	var env Envelope[Response]
	if err := json.Unmarshal(data, &env); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return env.PluginMessage, nil
}
