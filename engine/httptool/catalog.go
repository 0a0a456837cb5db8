package httptool

import (
	"slices"
	"sync"

	"github.com/invopop/jsonschema"
)

// Tool names exposed by the executor.
const (
	ToolRequest           = "http_request"
	ToolGet               = "http_get"
	ToolPost              = "http_post"
	ToolSetDefaultHeaders = "set_default_headers"
)

// Operation describes one callable tool.
type Operation struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

var reflector = &jsonschema.Reflector{
	Anonymous:                 true,
	DoNotReference:            true,
	AllowAdditionalProperties: true,
}

func schemaFor(v any) *jsonschema.Schema {
	s := reflector.Reflect(v)
	s.Version = ""
	return s
}

var catalog = sync.OnceValue(func() []Operation {
	return []Operation{
		{
			Name:        ToolRequest,
			Description: "Make HTTP requests with any method (GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, etc.)",
			InputSchema: schemaFor(&RequestArgs{}),
		},
		{
			Name:        ToolGet,
			Description: "Simplified GET request",
			InputSchema: schemaFor(&GetArgs{}),
		},
		{
			Name:        ToolPost,
			Description: "Simplified POST request",
			InputSchema: schemaFor(&PostArgs{}),
		},
		{
			Name:        ToolSetDefaultHeaders,
			Description: "Set headers for all requests",
			InputSchema: schemaFor(&SetDefaultHeadersArgs{}),
		},
	}
})

// ListOperations returns the static tool catalog.
func ListOperations() []Operation {
	return slices.Clone(catalog())
}
