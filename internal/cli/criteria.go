package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/elementq/internal/assetq"
	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/elementq"
	"github.com/roach88/elementq/internal/savedquery"
	"github.com/roach88/elementq/internal/store"
)

// queryFlags are shared by query and explain.
type queryFlags struct {
	Saved   string
	Queries string
}

// newAssetQuery builds an asset query over st from a saved query and
// name=value arguments. Arguments are applied after the saved query and
// override it.
func (s *session) newAssetQuery(st *store.Store, flags queryFlags, args []string) (*assetq.AssetQuery, error) {
	q, err := assetq.New(st, assetq.Collaborators{
		Volumes:    st.Volumes(),
		Folders:    st.Folders(),
		Transforms: st,
	}, elementq.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	if flags.Saved != "" {
		path := flags.Queries
		if path == "" {
			path = s.cfg.Queries
		}
		if path == "" {
			return nil, fmt.Errorf("--saved needs a saved query file (--queries or config 'queries')")
		}
		lib, err := savedquery.Load(path)
		if err != nil {
			return nil, err
		}
		saved, err := lib.Get(flags.Saved)
		if err != nil {
			return nil, err
		}
		s.out.VerboseLog("Applying saved query %s from %s", saved.Name, path)
		if err := saved.Apply(q); err != nil {
			return nil, err
		}
	}

	registry := q.Query().Registry()
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("criterion %q: expected name=value", arg)
		}
		name = strings.TrimSpace(name)
		value, err := parseArgValue(registry, name, raw)
		if err != nil {
			return nil, err
		}
		if err := q.Set(name, value); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// parseArgValue converts command-line text to the Go type the criterion's
// kind expects. Everything else stays a string for the param grammar.
// Plain id lists become []int64 so folder expansion can use them.
func parseArgValue(r *criteria.Registry, name, raw string) (any, error) {
	def, _, ok := r.Canonical(name)
	if !ok {
		return raw, nil
	}

	switch def.Kind {
	case criteria.KindBool, criteria.KindFixedOrder:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, criteria.NewInvalidValueError(name, "expects true or false, got %q", raw)
		}
		return b, nil
	case criteria.KindIDList, criteria.KindContainer:
		if ids, ok := parseIDs(raw); ok {
			return ids, nil
		}
		return raw, nil
	case criteria.KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, criteria.NewInvalidValueError(name, "expects an integer, got %q", raw)
		}
		return n, nil
	default:
		return raw, nil
	}
}

// parseIDs reads "1, 2, 3" as an id list. Anything else, such as a
// comparison, is left to the param grammar.
func parseIDs(raw string) ([]int64, bool) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, false
		}
		ids = append(ids, n)
	}
	return ids, true
}
