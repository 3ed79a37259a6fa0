package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaSet compiles each Schema once, keyed by Schema.Name.
type schemaSet struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

func newSchemaSet() *schemaSet {
	return &schemaSet{compiled: make(map[string]*jsonschema.Schema)}
}

// structured turns model text produced for a schema request into checked
// JSON. A surrounding Markdown fence is dropped first.
func (s *schemaSet) structured(schema *Schema, text string) (json.RawMessage, error) {
	body := StripCodeFence(text)
	if body == "" {
		return nil, &ErrInvalidResponse{Content: json.RawMessage(text), Err: fmt.Errorf("empty %s output", schema.Name)}
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(body))
	if err != nil {
		return nil, &ErrInvalidResponse{Content: json.RawMessage(text), Err: fmt.Errorf("decode %s output: %w", schema.Name, err)}
	}

	sch, err := s.get(schema)
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		return nil, &ErrInvalidResponse{Content: json.RawMessage(body), Err: fmt.Errorf("%s output: %w", schema.Name, err)}
	}
	return json.RawMessage(body), nil
}

func (s *schemaSet) get(schema *Schema) (*jsonschema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sch, ok := s.compiled[schema.Name]; ok {
		return sch, nil
	}

	// AddResource wants a decoded document, not a Go map literal.
	raw, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", schema.Name, err)
	}

	url := "adaptiq://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("load schema %s: %w", schema.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}
	s.compiled[schema.Name] = sch
	return sch, nil
}
