package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// Validation error codes (C100-C199).
const (
	ErrSchemaCompile    = "C100" // embedded schema failed to compile
	ErrConstraintBroken = "C101" // config value conflicts with schema
)

// ValidationError is one schema violation in the loaded configuration.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// ValidationErrors aggregates all violations into a single error.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Validate unifies the config with the embedded CUE schema and returns
// every violation found (it does not fail fast).
func Validate(cfg *Config) []ValidationError {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return []ValidationError{{
			Field:   "schema",
			Message: err.Error(),
			Code:    ErrSchemaCompile,
		}}
	}

	// Encode uses the json tags, which mirror the koanf keys.
	val := ctx.Encode(cfg)
	if err := val.Err(); err != nil {
		return []ValidationError{{
			Field:   "config",
			Message: err.Error(),
			Code:    ErrConstraintBroken,
		}}
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var out []ValidationError
		for _, e := range cueerrors.Errors(err) {
			field := strings.Join(e.Path(), ".")
			format, args := e.Msg()
			out = append(out, ValidationError{
				Field:   field,
				Message: fmt.Sprintf(format, args...),
				Code:    ErrConstraintBroken,
			})
		}
		return out
	}
	return nil
}
