package tools

import (
	"regexp"
	"strings"
)

// directivePattern matches one tool-call directive in model output text.
// The argument list cannot contain a closing parenthesis; this mirrors the
// reproduced grammar, values needing ")" are not supported.
var directivePattern = regexp.MustCompile(`TOOL_CALL:\s*(\w+)\(([^)]*)\)`)

// Param is one key/value argument of a parsed directive. Parameter order
// is preserved as written.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Call is a parsed tool-call directive.
type Call struct {
	Name   string  `json:"name"`
	Params []Param `json:"params"`
	Raw    string  `json:"raw"`
}

// Get returns the value for a parameter key.
func (c Call) Get(key string) (string, bool) {
	for _, p := range c.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// HasDirective reports whether the output contains a tool-call marker.
func HasDirective(output string) bool {
	return strings.Contains(output, "TOOL_CALL:")
}

// ParseDirectives extracts all tool-call directives from model output, in
// textual order of appearance.
func ParseDirectives(output string) []Call {
	matches := directivePattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return nil
	}
	calls := make([]Call, 0, len(matches))
	for _, m := range matches {
		calls = append(calls, Call{
			Name:   m[1],
			Params: parseParams(m[2]),
			Raw:    m[0],
		})
	}
	return calls
}

// parseParams splits an argument list on top-level commas, then each pair
// on the first "=", stripping surrounding quotes from values.
func parseParams(s string) []Param {
	var params []Param
	for _, pair := range splitTopLevel(s) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		params = append(params, Param{
			Key:   strings.TrimSpace(key),
			Value: unquote(strings.TrimSpace(value)),
		})
	}
	return params
}

// splitTopLevel splits on commas that are not inside quotes.
func splitTopLevel(s string) []string {
	var (
		parts   []string
		start   int
		inQuote rune
	)
	for i, r := range s {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			}
		case r == '"' || r == '\'':
			inQuote = r
		case r == ',':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// unquote strips one matching pair of surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
