package savedquery

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// schema constrains saved query files. Criterion values are scalars or
// flat lists of scalars.
const schema = `
#Criterion: string | int | bool | [...(string | int | bool)]

#Query: {
	description?: string
	criteria: [string]: #Criterion
}

queries: [string]: #Query
`

// LoadError is a CUE saved query error with its source position.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// ParseCUE evaluates a CUE saved query file against the saved query schema.
// filename is used in error positions.
func ParseCUE(filename string, src []byte) (Library, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v = ctx.CompileString(schema, cue.Filename("schema.cue")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	queries := v.LookupPath(cue.ParsePath("queries"))
	if !queries.Exists() {
		return Library{}, nil
	}

	iter, err := queries.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	lib := Library{}
	for iter.Next() {
		name := iter.Selector().Unquoted()
		q := Query{Name: name, Criteria: map[string]any{}}

		if d := iter.Value().LookupPath(cue.ParsePath("description")); d.Exists() {
			if q.Description, err = d.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		if err := iter.Value().LookupPath(cue.ParsePath("criteria")).Decode(&q.Criteria); err != nil {
			return nil, formatCUEError(err)
		}
		lib[name] = q
	}
	return lib, nil
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	le := &LoadError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
