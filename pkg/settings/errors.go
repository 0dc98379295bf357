package settings

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoDocument is returned when none of the candidate paths holds a settings document.
// A repository without a document is deliberately unmanaged.
var ErrNoDocument = errors.New("no settings document found")

// MultipleDocumentsError is returned when more than one candidate path exists
type MultipleDocumentsError struct {
	Paths []string
}

// Error implements the error interface
func (e *MultipleDocumentsError) Error() string {
	return fmt.Sprintf("found %d settings documents, keep exactly one: %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

// InvalidContentError is returned when a candidate path is not a base64 encoded file
type InvalidContentError struct {
	Path   string
	Reason string
}

// Error implements the error interface
func (e *InvalidContentError) Error() string {
	return fmt.Sprintf("settings document %s: %s", e.Path, e.Reason)
}

// UnsupportedExtensionError is returned for a path whose extension has no decoder
type UnsupportedExtensionError struct {
	Path      string
	Extension string
}

// Error implements the error interface
func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("settings document %s: unsupported extension %q", e.Path, e.Extension)
}

// DecodeError wraps a decoder failure with the document path
type DecodeError struct {
	Path   string
	Format string
	Err    error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse %s as %s: %v", e.Path, e.Format, e.Err)
}

// Unwrap returns the underlying decoder error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError describes one violation found in a settings document
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Add adds a validation error to the collection
func (e *ValidationErrors) Add(field, message string) {
	*e = append(*e, ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// SchemaViolationError aggregates every violation found in a settings document
type SchemaViolationError struct {
	Path       string
	Violations ValidationErrors
}

// Error implements the error interface
func (e *SchemaViolationError) Error() string {
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, "  - "+v.Error())
	}
	sort.Strings(lines)

	source := "settings document"
	if e.Path != "" {
		source = e.Path
	}
	return fmt.Sprintf("%s failed validation with %d error(s):\n%s", source, len(e.Violations), strings.Join(lines, "\n"))
}

// PrecedenceConflictError is returned when branchProtection names the default branch,
// whose slot belongs to defaultBranchProtection
type PrecedenceConflictError struct {
	Branch string
}

// Error implements the error interface
func (e *PrecedenceConflictError) Error() string {
	return fmt.Sprintf("branchProtection must not contain the default branch %q: use defaultBranchProtection for it", e.Branch)
}

// PartialFailureError reports branches whose protection could not be applied
// while the rest of the run went through
type PartialFailureError struct {
	Succeeded []string         `json:"succeeded"`
	Failed    map[string]error `json:"failed"`
}

// NewPartialFailureError creates a new partial failure error
func NewPartialFailureError(succeeded []string, failed map[string]error) *PartialFailureError {
	return &PartialFailureError{
		Succeeded: succeeded,
		Failed:    failed,
	}
}

// Error implements the error interface
func (e *PartialFailureError) Error() string {
	ops := e.GetFailedOperations()
	details := make([]string, 0, len(ops))
	for _, op := range ops {
		details = append(details, fmt.Sprintf("%s: %v", op, e.Failed[op]))
	}
	return fmt.Sprintf("completed with partial success: %d operation(s) succeeded, %d failed (%s)",
		len(e.Succeeded), len(e.Failed), strings.Join(details, "; "))
}

// GetFailedOperations returns the failed operation descriptions in sorted order
func (e *PartialFailureError) GetFailedOperations() []string {
	operations := make([]string, 0, len(e.Failed))
	for op := range e.Failed {
		operations = append(operations, op)
	}
	sort.Strings(operations)
	return operations
}

// GetSucceededOperations returns a list of successful operation descriptions
func (e *PartialFailureError) GetSucceededOperations() []string {
	return e.Succeeded
}
