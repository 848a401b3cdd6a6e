package rules

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

// Schema shape error code (precedes the E2xx structural checks).
const ErrSchema = "E200"

// checkSchema validates a decoded rule document against the embedded CUE
// schema. The document is the raw YAML/JSON value (maps and slices), checked
// for shape before it is mapped onto Def structs. Every schema violation is
// collected into the returned errors, mirroring the collect-all behavior of
// structural validation.
func checkSchema(doc any) []ValidationError {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		// The schema is embedded and fixed; failing to compile it is a
		// programming error, not a data error.
		panic(fmt.Sprintf("rules: embedded schema does not compile: %v", err))
	}
	file := schema.LookupPath(cue.ParsePath("#File"))
	unified := file.Unify(ctx.Encode(doc))
	err := unified.Validate(cue.Concrete(true), cue.Final())
	if err == nil {
		return nil
	}
	var errs []ValidationError
	for _, ce := range cueerrors.Errors(err) {
		errs = append(errs, ValidationError{
			Field:   strings.Join(ce.Path(), "."),
			Message: ce.Error(),
			Code:    ErrSchema,
		})
	}
	return errs
}
