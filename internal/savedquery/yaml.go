package savedquery

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Queries map[string]yamlQuery `yaml:"queries"`
}

type yamlQuery struct {
	Description string         `yaml:"description"`
	Criteria    map[string]any `yaml:"criteria"`
}

// ParseYAML decodes a YAML saved query file. Unknown keys are rejected.
func ParseYAML(r io.Reader) (Library, error) {
	var f yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse saved queries: %w", err)
	}

	lib := make(Library, len(f.Queries))
	for name, q := range f.Queries {
		crit := q.Criteria
		if crit == nil {
			crit = map[string]any{}
		}
		lib[name] = Query{Name: name, Description: q.Description, Criteria: crit}
	}
	return lib, nil
}
