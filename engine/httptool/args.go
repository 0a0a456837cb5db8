package httptool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/invopop/jsonschema"
)

// DefaultTimeoutMs applies when a request does not name its own timeout.
const DefaultTimeoutMs = 30000

// QueryParams are appended to the request URL. Values may be scalars or
// arrays; each array element becomes its own pair.
type QueryParams map[string]any

// JSONSchema describes the accepted value shapes.
func (QueryParams) JSONSchema() *jsonschema.Schema {
	scalar := []*jsonschema.Schema{{Type: "string"}, {Type: "number"}, {Type: "boolean"}}
	return &jsonschema.Schema{
		Type: "object",
		AdditionalProperties: &jsonschema.Schema{
			AnyOf: append(scalar, &jsonschema.Schema{
				Type:  "array",
				Items: &jsonschema.Schema{AnyOf: scalar},
			}),
		},
	}
}

// RequestArgs describes one outbound HTTP call.
type RequestArgs struct {
	URL             string            `mapstructure:"url"              json:"url"                        jsonschema:"description=The URL to request"`
	Method          string            `mapstructure:"method"           json:"method,omitempty"           jsonschema:"description=HTTP method,enum=GET,enum=POST,enum=PUT,enum=DELETE,enum=PATCH,enum=HEAD,enum=OPTIONS,enum=TRACE,enum=CONNECT,default=GET"`
	Headers         map[string]string `mapstructure:"headers"          json:"headers,omitempty"          jsonschema:"description=HTTP headers as key-value pairs"`
	Body            any               `mapstructure:"body"             json:"body,omitempty"             jsonschema:"description=Request body (for POST\, PUT\, PATCH). Non-string values are sent as JSON"`
	QueryParams     QueryParams       `mapstructure:"query_params"     json:"query_params,omitempty"     jsonschema:"description=URL query parameters"`
	Timeout         *int              `mapstructure:"timeout"          json:"timeout,omitempty"          jsonschema:"description=Request timeout in milliseconds,minimum=1,default=30000" validate:"omitempty,gt=0"`
	FollowRedirects *bool             `mapstructure:"follow_redirects" json:"follow_redirects,omitempty" jsonschema:"description=Whether to follow redirects,default=true"`
}

// GetArgs is the argument shape advertised for http_get.
type GetArgs struct {
	URL         string            `mapstructure:"url"          json:"url"                    jsonschema:"description=The URL to request"`
	Headers     map[string]string `mapstructure:"headers"      json:"headers,omitempty"      jsonschema:"description=HTTP headers"`
	QueryParams QueryParams       `mapstructure:"query_params" json:"query_params,omitempty" jsonschema:"description=URL query parameters"`
}

// PostArgs describes a simplified POST.
type PostArgs struct {
	URL         string            `mapstructure:"url"          json:"url"                    jsonschema:"description=The URL to request"`
	Data        any               `mapstructure:"data"         json:"data"                   jsonschema:"description=Data to send in the request body"`
	ContentType string            `mapstructure:"content_type" json:"content_type,omitempty" jsonschema:"description=Content type,enum=application/json,enum=application/x-www-form-urlencoded,enum=text/plain,enum=application/xml,default=application/json"`
	Headers     map[string]string `mapstructure:"headers"      json:"headers,omitempty"      jsonschema:"description=Additional headers"`
}

// SetDefaultHeadersArgs replaces or extends the executor default headers.
type SetDefaultHeadersArgs struct {
	Headers map[string]string `mapstructure:"headers" json:"headers"         jsonschema:"description=Headers to set as defaults"`
	Merge   *bool             `mapstructure:"merge"   json:"merge,omitempty" jsonschema:"description=Whether to merge with existing defaults or replace them,default=true"`
}

// ShouldFollowRedirects reports the redirect policy, following by default.
func (a RequestArgs) ShouldFollowRedirects() bool {
	return a.FollowRedirects == nil || *a.FollowRedirects
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeArgs decodes a raw argument map into out. Scalars are coerced
// leniently so "1500" and 1500 both satisfy an integer field.
func decodeArgs(tool string, payload map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Internal(fmt.Errorf("failed to build decoder: %w", err), nil)
	}
	if err := decoder.Decode(payload); err != nil {
		return InvalidParams(
			fmt.Sprintf("invalid arguments for %s: %s", tool, err),
			map[string]any{"tool": tool},
		)
	}
	if err := validate.Struct(out); err != nil {
		return InvalidParams(describeValidation(tool, err), map[string]any{"tool": tool})
	}
	return nil
}

func describeValidation(tool string, err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Sprintf("invalid arguments for %s: %s", tool, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be greater than %s", fieldName(fe), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fieldName(fe), fe.Tag()))
		}
	}
	return fmt.Sprintf("invalid arguments for %s: %s", tool, strings.Join(parts, "; "))
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "FollowRedirects":
		return "follow_redirects"
	case "QueryParams":
		return "query_params"
	case "ContentType":
		return "content_type"
	default:
		return strings.ToLower(fe.Field())
	}
}

// isAbsent treats nil and the empty string as missing, matching how callers
// routinely send "" for fields they meant to omit. Whitespace is a value.
func isAbsent(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	default:
		return false
	}
}
