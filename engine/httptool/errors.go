package httptool

import (
	"errors"
	"fmt"
)

// Canonical fault codes surfaced to the protocol layer.
const (
	CodeInvalidParams  = "InvalidParams"
	CodeMethodNotFound = "MethodNotFound"
	CodeInternal       = "InternalError"
)

// JSON-RPC 2.0 error codes matching the canonical fault codes.
const (
	JSONRPCInvalidParams  int64 = -32602
	JSONRPCMethodNotFound int64 = -32601
	JSONRPCInternalError  int64 = -32603
)

// Fault is a protocol-level failure. Domain failures never become faults;
// they are reported through an ErrorEnvelope instead.
type Fault struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (f *Fault) Error() string {
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// JSONRPCCode maps the fault code onto its JSON-RPC error code.
func (f *Fault) JSONRPCCode() int64 {
	switch f.Code {
	case CodeInvalidParams:
		return JSONRPCInvalidParams
	case CodeMethodNotFound:
		return JSONRPCMethodNotFound
	default:
		return JSONRPCInternalError
	}
}

// InvalidParams reports a missing or malformed tool argument.
func InvalidParams(message string, details map[string]any) *Fault {
	return &Fault{Code: CodeInvalidParams, Message: message, Details: details}
}

// MethodNotFound reports a tool name the executor does not know.
func MethodNotFound(name string) *Fault {
	return &Fault{
		Code:    CodeMethodNotFound,
		Message: fmt.Sprintf("unknown tool: %s", name),
		Details: map[string]any{"tool": name},
	}
}

// Internal wraps an unexpected failure raised while executing a tool.
func Internal(err error, details map[string]any) *Fault {
	return &Fault{
		Code:    CodeInternal,
		Message: fmt.Sprintf("tool execution failed: %s", err),
		Details: details,
		Err:     err,
	}
}

// Timeout reports a request aborted because its deadline elapsed.
func Timeout(timeoutMs int, err error) *Fault {
	return &Fault{
		Code:    CodeInternal,
		Message: fmt.Sprintf("request timed out after %dms", timeoutMs),
		Details: map[string]any{"timeout_ms": timeoutMs},
		Err:     err,
	}
}

// AsFault converts any error into a Fault, wrapping foreign errors as internal.
func AsFault(err error) *Fault {
	if err == nil {
		return nil
	}
	var fault *Fault
	if errors.As(err, &fault) {
		return fault
	}
	return Internal(err, nil)
}
