package backoffice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// JSONSchemaValidator compiles action schemas and validates parameter maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures params satisfy the action schema. Actions without a schema accept anything.
func (v *JSONSchemaValidator) Validate(table string, action ActionDescriptor, params map[string]any) error {
	if len(action.Schema) == 0 {
		return nil
	}
	key := table + "." + action.Name
	schema, err := v.schemaFor(key, action.Schema)
	if err != nil {
		return err
	}
	payload := map[string]any{}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("backoffice: marshal params for %s: %w", key, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("backoffice: normalize params for %s: %w", key, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidParams, key, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(key string, raw map[string]any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[key]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("backoffice: marshal schema %s: %w", key, err)
	}
	compiler := jsonschema.NewCompiler()
	name := key + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("backoffice: load schema %s: %w", key, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("backoffice: compile schema %s: %w", key, err)
	}
	v.mu.Lock()
	v.compiled[key] = compiled
	v.mu.Unlock()
	return compiled, nil
}
