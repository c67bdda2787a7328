package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"mission-workers/internal/common/errors"
	"mission-workers/pkg/registry"
)

// Validator checks job variables against the input schema registered for
// each task type.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles every input schema of the catalog.
func NewValidator(reg *registry.ActivityRegistry) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	for _, activity := range reg.Activities {
		if len(activity.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(activity.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", activity.TaskType, err)
		}
		v.schemas[activity.TaskType] = schema
	}
	return v, nil
}

// Validate returns a VALIDATION_FAILED error listing every schema violation.
// Task types without a schema are accepted as is.
func (v *Validator) Validate(taskType, variables string) error {
	if v == nil {
		return nil
	}
	schema, ok := v.schemas[taskType]
	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(variables))
	if err != nil {
		return errors.NewValidationFailedError(fmt.Sprintf("malformed variables: %v", err))
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
	}
	sort.Strings(msgs)
	return errors.NewValidationFailedError(strings.Join(msgs, "; ")).
		WithMetadata("taskType", taskType)
}

// Decode validates variables and unmarshals them into out.
func (v *Validator) Decode(taskType, variables string, out interface{}) error {
	if err := v.Validate(taskType, variables); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(variables), out); err != nil {
		return errors.NewValidationFailedError(fmt.Sprintf("parse input: %v", err))
	}
	return nil
}
