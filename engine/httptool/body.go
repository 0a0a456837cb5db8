package httptool

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// methodsWithBody lists the methods that ever carry a request body.
var methodsWithBody = map[string]struct{}{
	http.MethodPost:  {},
	http.MethodPut:   {},
	http.MethodPatch: {},
}

// requestBody returns the payload to send, or "" when the method takes no
// body or the caller supplied none. Non-string values are JSON-encoded and
// flagged so a Content-Type can be defaulted.
func requestBody(method string, body any) (payload string, isJSON bool, err error) {
	if _, ok := methodsWithBody[method]; !ok || isAbsent(body) {
		return "", false, nil
	}
	if text, ok := body.(string); ok {
		return text, false, nil
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode request body: %w", err)
	}
	return string(encoded), true, nil
}

// decodeBody returns the body as raw JSON when it parses, else as text.
func decodeBody(raw []byte) any {
	text := string(raw)
	if strings.TrimSpace(text) != "" && gjson.Valid(text) {
		return json.RawMessage(raw)
	}
	return text
}

// DecodedBody returns the response body as plain Go values: maps, slices,
// float64, bool, nil or string.
func (e ResponseEnvelope) DecodedBody() any {
	if raw, ok := e.Body.(json.RawMessage); ok {
		return gjson.ParseBytes(raw).Value()
	}
	return e.Body
}

func flattenHeaders(header http.Header) map[string]string {
	result := make(map[string]string, len(header))
	for key, values := range header {
		result[strings.ToLower(key)] = strings.Join(values, ", ")
	}
	return result
}
