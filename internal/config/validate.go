// CUE schema validation code
package config

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var defaultSchema []byte

// DefaultSchema returns the embedded CUE schema.
func DefaultSchema() []byte { return defaultSchema }

// ValidateWithCue unifies cfg with the #Simulation definition in schema and
// requires the result to be concrete.
func ValidateWithCue(cfg *SimulationConfig, schema []byte) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(schema)
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Simulation"))
	if !def.Exists() {
		return fmt.Errorf("CUE schema has no #Simulation definition")
	}

	configVal := ctx.Encode(cfg)
	if err := configVal.Err(); err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}

	final := def.Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
