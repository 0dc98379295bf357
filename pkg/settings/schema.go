package settings

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	oaerrors "github.com/go-openapi/errors"
	"github.com/go-openapi/spec"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
	"github.com/go-openapi/validate/post"
)

//go:embed schema.json
var schemaJSON []byte

// Validator checks untyped settings trees against the embedded JSON schema
type Validator struct {
	schema *spec.Schema
}

// NewValidator loads the embedded schema and expands its references
func NewValidator() (*Validator, error) {
	var schema, root spec.Schema
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return nil, fmt.Errorf("failed to load settings schema: %w", err)
	}
	if err := json.Unmarshal(schemaJSON, &root); err != nil {
		return nil, fmt.Errorf("failed to load settings schema: %w", err)
	}
	if err := spec.ExpandSchema(&schema, &root, nil); err != nil {
		return nil, fmt.Errorf("failed to expand settings schema: %w", err)
	}

	return &Validator{schema: &schema}, nil
}

// Validate checks tree, injects schema defaults and converts it into a Document.
// Every violation is reported at once in a *SchemaViolationError.
func (v *Validator) Validate(p string, tree any) (*Document, error) {
	obj, ok := tree.(map[string]any)
	if !ok {
		violations := ValidationErrors{}
		violations.Add("", fmt.Sprintf("document root must be an object, got %s", typeName(tree)))
		return nil, &SchemaViolationError{Path: p, Violations: violations}
	}

	result := validate.NewSchemaValidator(v.schema, v.schema, "", strfmt.Default).Validate(obj)

	violations := ValidationErrors{}
	for _, err := range flattenErrors(result.Errors) {
		var verr *oaerrors.Validation
		if errors.As(err, &verr) && verr.Name != "" {
			msg := strings.TrimPrefix(verr.Error(), verr.Name+" in body ")
			violations.Add(verr.Name, msg)
			continue
		}
		violations.Add("", err.Error())
	}
	violations = append(violations, semanticViolations(obj)...)

	if violations.HasErrors() {
		return nil, &SchemaViolationError{Path: p, Violations: violations}
	}

	post.ApplyDefaults(result)

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert validated settings: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert validated settings: %w", err)
	}
	return &doc, nil
}

// Load runs the parser and the validator over one document
func (v *Validator) Load(p string, text []byte) (*Document, error) {
	tree, err := Parse(p, text)
	if err != nil {
		return nil, err
	}
	return v.Validate(p, tree)
}

// semanticViolations covers the rules JSON schema cannot express
func semanticViolations(obj map[string]any) ValidationErrors {
	violations := ValidationErrors{}

	if rules, ok := obj["branchProtection"].(map[string]any); ok {
		for branch := range rules {
			if strings.TrimSpace(branch) == "" {
				violations.Add("branchProtection", "branch name must not be empty")
			}
		}
	}

	if sa, ok := obj["securityAnalysis"].(map[string]any); ok {
		if sa["automaticSecurityUpdatesEnabled"] == true && sa["vulnerabilitiesAlertsEnabled"] == false {
			violations.Add("securityAnalysis",
				"automaticSecurityUpdatesEnabled requires vulnerabilitiesAlertsEnabled, which is explicitly disabled")
		}
	}

	return violations
}

func flattenErrors(errs []error) []error {
	var out []error
	for _, err := range errs {
		var composite *oaerrors.CompositeError
		if errors.As(err, &composite) {
			out = append(out, flattenErrors(composite.Errors)...)
			continue
		}
		out = append(out, err)
	}
	return out
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
