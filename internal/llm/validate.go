package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache holds compiled schemas keyed by name and definition, so two
// schemas sharing a name never collide.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// finishResponse applies the stop-reason and schema checks every provider
// shares. A schema response cut off at MaxTokens is never valid JSON, so
// it is reported as truncation rather than as a malformed response.
func finishResponse(req Request, content json.RawMessage, stopReason string) (json.RawMessage, error) {
	switch stopReason {
	case StopMaxTokens:
		if req.Schema != nil {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
	case StopError:
		return nil, &ErrRejected{Err: errors.New("output blocked by the provider's content filter")}
	}
	return validateResponse(req.Schema, content)
}

// validateResponse checks raw model output against schema and returns the
// JSON object it contains. Models without native structured output often
// wrap the object in a markdown fence; that wrapper is dropped.
// Failures are reported as *ErrInvalidResponse.
func validateResponse(schema *Schema, raw json.RawMessage) (json.RawMessage, error) {
	if schema == nil {
		return raw, nil
	}

	content := extractJSON(raw)

	var parsed any
	if err := json.Unmarshal(content, &parsed); err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("compile schema %q: %w", schema.Name, err),
		}
	}

	if err := compiled.Validate(parsed); err != nil {
		return nil, &ErrInvalidResponse{
			Content: raw,
			Err:     fmt.Errorf("schema %q: %w", schema.Name, err),
		}
	}

	return content, nil
}

// extractJSON trims a ```json fence or stray prose around the first
// top-level JSON object in raw.
func extractJSON(raw []byte) json.RawMessage {
	s := bytes.TrimSpace(raw)
	if bytes.HasPrefix(s, []byte("```")) {
		s = s[3:]
		if nl := bytes.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = bytes.TrimSuffix(bytes.TrimSpace(s), []byte("```"))
		s = bytes.TrimSpace(s)
	}
	if len(s) > 0 && s[0] != '{' {
		start := bytes.IndexByte(s, '{')
		end := bytes.LastIndexByte(s, '}')
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}
	return json.RawMessage(s)
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}

	key := schema.Name + "\x00" + string(defBytes)
	if cached, ok := schemaCache.Load(key); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON value rather than Go maps with
	// typed slices.
	defParsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("mem://schemas/%s.json", schema.Name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	schemaCache.Store(key, compiled)
	return compiled, nil
}

// Decode unmarshals a schema-validated response into v.
func Decode(resp *Response, v any) error {
	if resp == nil {
		return &ErrInvalidResponse{Err: fmt.Errorf("empty response")}
	}
	if err := json.Unmarshal(extractJSON(resp.Content), v); err != nil {
		return &ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return nil
}
