package httptool

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/pretty"
)

// Envelope is the normalized result of a tool invocation.
type Envelope interface {
	Succeeded() bool
}

// ResponseEnvelope reports a completed HTTP exchange, whatever its status.
type ResponseEnvelope struct {
	Success bool              `json:"success"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body"`
	URL     string            `json:"url"`
}

// ErrorEnvelope reports a request that never produced a response.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Type    string `json:"type"`
	URL     string `json:"url"`
}

// DefaultsEnvelope reports the default headers after an update.
type DefaultsEnvelope struct {
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
	CurrentDefaults map[string]string `json:"current_defaults"`
}

func (e ResponseEnvelope) Succeeded() bool { return e.Success }
func (e ErrorEnvelope) Succeeded() bool    { return e.Success }
func (e DefaultsEnvelope) Succeeded() bool { return e.Success }

var renderOptions = &pretty.Options{Indent: "  ", SortKeys: false}

// Render encodes an envelope as two-space indented JSON without HTML escaping.
func Render(e Envelope) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return "", fmt.Errorf("failed to encode envelope: %w", err)
	}
	out := pretty.PrettyOptions(buf.Bytes(), renderOptions)
	return string(bytes.TrimRight(out, "\n")), nil
}
