package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// FormatFunc turns a raw live message into the text appended to the log.
// An empty result appends nothing.
type FormatFunc func(raw string) (string, error)

// Identity returns messages unchanged
func Identity(raw string) (string, error) {
	return raw, nil
}

// JQFormat compiles a jq expression into a FormatFunc. Each message is
// decoded as JSON (non-JSON messages are passed in as a plain string);
// string results are used as-is, other values are encoded back to JSON,
// and multiple results are joined with newlines.
func JQFormat(expression string) (FormatFunc, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile jq expression: %w", err)
	}

	return func(raw string) (string, error) {
		var input any
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			input = raw
		}

		var out []string
		iter := code.Run(input)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, ok := v.(error); ok {
				if haltErr, ok := err.(*gojq.HaltError); ok && haltErr.Value() == nil {
					break
				}
				return "", err
			}
			switch v := v.(type) {
			case nil:
				continue
			case string:
				out = append(out, v)
			default:
				b, err := gojq.Marshal(v)
				if err != nil {
					return "", err
				}
				out = append(out, string(b))
			}
		}
		return strings.Join(out, "\n"), nil
	}, nil
}

// safeFormat runs f, turning errors and panics into a TransformError
func safeFormat(f FormatFunc, raw string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", &TransformError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	out, err = f(raw)
	if err != nil {
		return "", &TransformError{Err: err}
	}
	return out, nil
}
