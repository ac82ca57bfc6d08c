// CUE schema validation code
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed simulation.cue
var builtinSchema []byte

// BuiltinSchema returns the CUE schema compiled into the binary.
func BuiltinSchema() []byte {
	return builtinSchema
}

// ValidateWithCue validates cfg against the #Simulation definition of a CUE
// schema file. An empty cueFile uses the built-in schema.
func ValidateWithCue(cfg *SimulationConfig, cueFile string) error {
	schema := builtinSchema
	name := "simulation.cue"
	if cueFile != "" {
		b, err := os.ReadFile(cueFile)
		if err != nil {
			return fmt.Errorf("cannot read CUE schema: %w", err)
		}
		schema = b
		name = cueFile
	}
	return Validate(cfg, schema, name)
}

// Validate checks cfg against schema source.
func Validate(cfg *SimulationConfig, schema []byte, filename string) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileBytes(schema, cue.Filename(filename))
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", err)
	}
	def := schemaVal.LookupPath(cue.ParsePath("#Simulation"))
	if !def.Exists() {
		return fmt.Errorf("CUE schema %s has no #Simulation definition", filename)
	}

	// Merge values with schema
	final := def.Unify(ctx.Encode(cfg))
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
