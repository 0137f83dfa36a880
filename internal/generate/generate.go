// Package generate turns prompts into schema-conforming values by calling
// LLM backends. Calls are one-shot: a failure is returned, never retried.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// Request is one structured generation call.
type Request struct {
	Backend     string
	Prompt      string
	Temperature *float64
	Schema      SchemaSpec
}

// SchemaSpec names the expected output shape and carries its JSON Schema.
type SchemaSpec struct {
	Name string
	JSON json.RawMessage
}

// Generator returns the raw model text for a request.
type Generator interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Schema binds a SchemaSpec to a Go type and an optional validator run after
// decoding.
type Schema[T any] struct {
	Name     string
	JSON     json.RawMessage
	Validate func(*T) error
}

// Spec returns the untyped description of s.
func (s Schema[T]) Spec() SchemaSpec {
	return SchemaSpec{Name: s.Name, JSON: s.JSON}
}

// GenerationError means a backend could not produce a value matching the
// schema, for whatever reason (transport, refusal, malformed JSON, failed
// validation, open circuit).
type GenerationError struct {
	Backend string
	Schema  string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate: %s via %s: %v", e.Schema, e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generate runs req against g and decodes the result into T.
func Generate[T any](ctx context.Context, g Generator, req Request, schema Schema[T]) (T, error) {
	var zero T
	req.Schema = schema.Spec()

	text, err := g.Complete(ctx, req)
	if err != nil {
		var ge *GenerationError
		if errors.As(err, &ge) {
			return zero, err
		}
		return zero, &GenerationError{Backend: req.Backend, Schema: schema.Name, Err: err}
	}

	cleaned := cleanJSON(text)
	var out T
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return zero, &GenerationError{Backend: req.Backend, Schema: schema.Name, Err: eris.Wrap(err, "decode response")}
	}
	if err := validateJSON(schema.Name, schema.JSON, cleaned); err != nil {
		return zero, &GenerationError{Backend: req.Backend, Schema: schema.Name, Err: err}
	}
	if schema.Validate != nil {
		if err := schema.Validate(&out); err != nil {
			return zero, &GenerationError{Backend: req.Backend, Schema: schema.Name, Err: err}
		}
	}
	return out, nil
}

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// cleanJSON extracts a JSON object from model text that may carry reasoning
// blocks, markdown code fences or surrounding prose.
func cleanJSON(text string) string {
	text = thinkBlock.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// systemPrompt is sent ahead of every prompt so providers without native
// schema support still answer with bare JSON.
func systemPrompt(spec SchemaSpec) string {
	if len(spec.JSON) == 0 {
		return "Respond with a single JSON object and nothing else."
	}
	return "Respond with a single JSON object that conforms to this JSON Schema and nothing else. " +
		"Use null where the schema allows it and a value is unknown.\n\nJSON Schema:\n" + string(spec.JSON)
}
