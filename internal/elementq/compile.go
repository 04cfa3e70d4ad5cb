package elementq

import (
	"context"
	"slices"
	"strings"

	"github.com/roach88/elementq/internal/criteria"
	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/predicate"
	"github.com/roach88/elementq/internal/queryir"
)

// compiled is the part of a plan that depends only on criteria values.
type compiled struct {
	version uint64
	filters []predicate.Filter
	orders  []queryir.Order
	limit   *int64
	offset  int64
}

// plan is one execution's immutable view of the query.
type plan struct {
	snap    criteria.Snapshot
	filters []predicate.Filter
	sel     queryir.Select
	empty   bool
}

// prepare runs the stages up to Joined.
func (q *Query[T]) prepare(ctx context.Context) (*plan, error) {
	if q.err != nil {
		return nil, q.err
	}

	snap := q.store.Snapshot()
	q.logStage(StageUnprepared, snap)

	c, err := q.compile(snap)
	if err != nil {
		return nil, err
	}

	p := &plan{snap: snap, filters: slices.Clone(c.filters)}
	p.empty = matchesNothing(p.filters)

	// Collaborators are not consulted once the result is known to be empty.
	if !p.empty {
		resolved, err := q.ext.Resolve(ctx, snap)
		if err != nil {
			if criteria.IsUnknownCriterion(err) || criteria.IsInvalidValue(err) {
				return nil, err
			}
			return nil, q.fail(ErrCodeExecutionFailure, StagePredicatesCompiled, err)
		}
		p.filters = append(p.filters, resolved...)
		slices.SortStableFunc(p.filters, func(a, b predicate.Filter) int {
			return strings.Compare(a.Criterion, b.Criterion)
		})
		p.empty = matchesNothing(resolved)
	}
	q.logStage(StagePredicatesCompiled, snap, "filters", len(p.filters), "empty", p.empty)

	preds := make([]queryir.Predicate, len(p.filters))
	for i, f := range p.filters {
		preds[i] = f.Predicate
	}
	p.sel = queryir.Select{
		From:    queryir.Table{Name: ElementsTable},
		Joins:   q.ext.Joins(),
		Columns: slices.Clone(q.columns),
		Filter:  queryir.Conjoin(preds...),
		OrderBy: c.orders,
		Limit:   c.limit,
		Offset:  c.offset,
	}
	q.logStage(StageJoined, snap, "joins", len(p.sel.Joins))

	return p, nil
}

func matchesNothing(filters []predicate.Filter) bool {
	for _, f := range filters {
		if queryir.MatchesNothing(f.Predicate) {
			return true
		}
	}
	return false
}

// compile compiles every criterion that needs no collaborator. The result
// is reused until the store changes.
func (q *Query[T]) compile(snap criteria.Snapshot) (*compiled, error) {
	if q.memo != nil && q.memo.version == snap.Version() {
		return q.memo, nil
	}

	c := &compiled{version: snap.Version()}
	for _, name := range snap.Names() {
		def, _ := snap.Definition(name)
		v, _ := snap.Get(name)

		var pred queryir.Predicate
		var err error

		switch def.Kind {
		case criteria.KindIDList, criteria.KindString, criteria.KindNumber, criteria.KindDate:
			if def.Column == "" {
				continue
			}
			pred, err = predicate.Compile(def, v)
		case criteria.KindStatus:
			pred, err = statusPredicate(def, v)
		case criteria.KindBool:
			if name != CriterionArchived {
				continue
			}
			pred = queryir.Equals{Field: def.Column, Value: v.First()}
		case criteria.KindOrder:
			c.orders, err = q.orderTerms(def, v)
		case criteria.KindInt:
			n := int64(v.First().(ir.IRInt))
			switch name {
			case CriterionLimit:
				c.limit = &n
			case CriterionOffset:
				c.offset = n
			}
		}
		if err != nil {
			return nil, err
		}
		if pred != nil {
			c.filters = append(c.filters, predicate.Filter{Criterion: name, Predicate: pred})
		}
	}

	if snap.Bool(CriterionFixedOrder) {
		fixed, err := fixedOrder(snap)
		if err != nil {
			return nil, err
		}
		c.orders = append([]queryir.Order{fixed}, c.orders...)
	}

	q.memo = c
	return c, nil
}

// statusPredicate maps element statuses onto the enabled and archived flags.
func statusPredicate(def criteria.Definition, v criteria.Value) (queryir.Predicate, error) {
	statuses, ok := predicate.Names(v)
	if !ok {
		return nil, criteria.NewInvalidValueError(def.Name, "expected status names, got %s", v)
	}
	if len(statuses) == 0 {
		return queryir.Nothing{Reason: def.Name}, nil
	}

	var preds []queryir.Predicate
	for _, status := range statuses {
		switch strings.ToLower(status) {
		case StatusEnabled:
			preds = append(preds, queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: "elements.enabled", Value: ir.IRBool(true)},
				queryir.Equals{Field: "elements.archived", Value: ir.IRBool(false)},
			}})
		case StatusDisabled:
			preds = append(preds, queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: "elements.enabled", Value: ir.IRBool(false)},
				queryir.Equals{Field: "elements.archived", Value: ir.IRBool(false)},
			}})
		case StatusArchived:
			preds = append(preds, queryir.Equals{Field: "elements.archived", Value: ir.IRBool(true)})
		default:
			return nil, criteria.NewInvalidValueError(def.Name, "unknown status %q", status)
		}
	}

	if len(preds) == 1 {
		return preds[0], nil
	}
	return queryir.Or{Predicates: preds}, nil
}

// orderTerms parses "filename desc, id" style order criteria. Only
// projected columns may be ordered by.
func (q *Query[T]) orderTerms(def criteria.Definition, v criteria.Value) ([]queryir.Order, error) {
	var terms []string
	for _, item := range v.Items() {
		for _, part := range strings.Split(string(item.(ir.IRString)), ",") {
			if part = strings.TrimSpace(part); part != "" {
				terms = append(terms, part)
			}
		}
	}

	orders := make([]queryir.Order, 0, len(terms))
	for _, t := range terms {
		fields := strings.Fields(t)
		if len(fields) > 2 {
			return nil, criteria.NewInvalidValueError(def.Name, "cannot parse order term %q", t)
		}

		expr, ok := q.columnExpr(fields[0])
		if !ok {
			return nil, criteria.NewInvalidValueError(def.Name, "cannot order by %q", fields[0])
		}

		desc := false
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, criteria.NewInvalidValueError(def.Name, "unknown direction %q", fields[1])
			}
		}
		orders = append(orders, queryir.Order{Field: expr, Desc: desc})
	}
	return orders, nil
}

func (q *Query[T]) columnExpr(name string) (string, bool) {
	for _, c := range q.columns {
		if c.As == name {
			return c.Expr, true
		}
	}
	return "", false
}

// fixedOrder orders results by the position of their id in the id criterion.
func fixedOrder(snap criteria.Snapshot) (queryir.Order, error) {
	v, ok := snap.Get(CriterionID)
	ids, isList := predicate.IDs(v)
	if !ok || !isList {
		return queryir.Order{}, criteria.NewInvalidValueError(CriterionFixedOrder, "fixedOrder needs an id list")
	}

	fixed := make([]ir.IRValue, len(ids))
	for i, id := range ids {
		fixed[i] = ir.IRInt(id)
	}
	return queryir.Order{Field: "elements.id", Fixed: fixed}, nil
}
