package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema returns the JSON Schema of the configuration file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Unknown keys are ignored, not rejected.
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		Anonymous:                 true,
	}

	s := r.Reflect(&Config{})
	s.Title = "river-swww configuration"
	s.Description = "Maps River tags to swww wallpapers."

	return json.MarshalIndent(s, "", "  ")
}

// Validator checks decoded JSON documents against the configuration schema.
type Validator struct {
	schema *santhosh.Schema
}

// NewValidator compiles the configuration schema.
func NewValidator() (*Validator, error) {
	data, err := Schema()
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}

	compiler := santhosh.NewCompiler()
	if err := compiler.AddResource("config.json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := compiler.Compile("config.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate validates a document produced by json.Unmarshal into an interface{}.
func (v *Validator) Validate(doc interface{}) error {
	if err := v.schema.Validate(doc); err != nil {
		if verr, ok := err.(*santhosh.ValidationError); ok {
			var msgs []string
			collectErrors(verr, &msgs)
			return fmt.Errorf("schema validation failed:\n%s", strings.Join(msgs, "\n"))
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func collectErrors(err *santhosh.ValidationError, msgs *[]string) {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, fmt.Sprintf("- %s: %s", loc, err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, msgs)
	}
}

var (
	validatorOnce sync.Once
	validator     *Validator
	validatorErr  error
)

func defaultValidator() (*Validator, error) {
	validatorOnce.Do(func() {
		validator, validatorErr = NewValidator()
	})
	return validator, validatorErr
}
