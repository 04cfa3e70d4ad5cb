package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/elementq/internal/ir"
	"github.com/roach88/elementq/internal/queryir"
)

// likeEscape is the escape character used for LIKE patterns.
const likeEscape = `\`

// SQLCompiler compiles queryir queries to parameterized SQL for SQLite.
//
// Every query is ordered, with the FROM table's id as the final tiebreaker,
// so paging is deterministic. Every operand is bound as a parameter, never
// interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a query into a SELECT statement.
// Returns (sql, params, error).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	sel, err := c.selectOf(q)
	if err != nil {
		return "", nil, err
	}

	from, params, err := c.compileBody(sel)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(c.compileColumns(sel.Columns))
	b.WriteString(from)

	orderSQL, orderParams := c.compileOrder(sel)
	b.WriteString(" ORDER BY ")
	b.WriteString(orderSQL)
	params = append(params, orderParams...)

	switch {
	case sel.Limit != nil:
		b.WriteString(" LIMIT ?")
		params = append(params, *sel.Limit)
		if sel.Offset > 0 {
			b.WriteString(" OFFSET ?")
			params = append(params, sel.Offset)
		}
	case sel.Offset > 0:
		// SQLite requires a LIMIT clause before OFFSET; -1 means unbounded.
		b.WriteString(" LIMIT -1 OFFSET ?")
		params = append(params, sel.Offset)
	}

	return b.String(), params, nil
}

// CompileCount converts a query into a SELECT COUNT(*) statement over the
// same joins and filter. Ordering and paging are ignored.
func (c *SQLCompiler) CompileCount(q queryir.Query) (string, []any, error) {
	sel, err := c.selectOf(q)
	if err != nil {
		return "", nil, err
	}

	from, params, err := c.compileBody(sel)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*)" + from, params, nil
}

func (c *SQLCompiler) selectOf(q queryir.Query) (queryir.Select, error) {
	if result := queryir.Validate(q); !result.Valid {
		return queryir.Select{}, result.Err()
	}

	switch query := q.(type) {
	case queryir.Select:
		return query, nil
	case *queryir.Select:
		return *query, nil
	default:
		return queryir.Select{}, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileBody renders " FROM ... JOIN ... WHERE ...".
func (c *SQLCompiler) compileBody(sel queryir.Select) (string, []any, error) {
	var b strings.Builder
	b.WriteString(" FROM ")
	b.WriteString(tableSQL(sel.From))

	for _, j := range sel.Joins {
		switch j.Kind {
		case queryir.LeftJoin:
			b.WriteString(" LEFT JOIN ")
		default:
			b.WriteString(" INNER JOIN ")
		}
		b.WriteString(tableSQL(j.Table))
		b.WriteString(" ON ")
		b.WriteString(j.Field)
		b.WriteString(" = ")
		b.WriteString(j.Other)
	}

	var params []any
	if sel.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(sel.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(filterSQL)
		params = filterParams
	}

	return b.String(), params, nil
}

func tableSQL(t queryir.Table) string {
	if t.Alias != "" && t.Alias != t.Name {
		return t.Name + " " + t.Alias
	}
	return t.Name
}

// compileColumns renders the projection in declaration order.
// Example: {Expr: "volumeFolders.path", As: "folderPath"} → "volumeFolders.path AS folderPath"
func (c *SQLCompiler) compileColumns(cols []queryir.Column) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		if col.As == "" || col.Expr == col.As {
			parts[i] = col.Expr
			continue
		}
		parts[i] = col.Expr + " AS " + col.As
	}
	return strings.Join(parts, ", ")
}

// compileOrder renders the ORDER BY terms followed by the id tiebreaker.
// COLLATE BINARY keeps text ordering identical across SQLite builds.
func (c *SQLCompiler) compileOrder(sel queryir.Select) (string, []any) {
	tiebreak := sel.From.Ref() + ".id"

	var parts []string
	var params []any
	hasTiebreak := false

	for _, o := range sel.OrderBy {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}

		if len(o.Fixed) > 0 {
			var b strings.Builder
			b.WriteString("CASE ")
			b.WriteString(o.Field)
			for i, v := range o.Fixed {
				fmt.Fprintf(&b, " WHEN ? THEN %d", i)
				params = append(params, ir.ToGo(v))
			}
			fmt.Fprintf(&b, " ELSE %d END %s", len(o.Fixed), dir)
			parts = append(parts, b.String())
			continue
		}

		if o.Field == tiebreak {
			hasTiebreak = true
		}
		parts = append(parts, o.Field+" COLLATE BINARY "+dir)
	}

	if !hasTiebreak {
		parts = append(parts, tiebreak+" ASC")
	}
	return strings.Join(parts, ", "), params
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
// Returns (sql, params, error).
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		param, err := irValueToParam(pred.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", pred.Field, err)
		}
		return pred.Field + " = ?", []any{param}, nil
	case queryir.In:
		return c.compileSet(pred.Field, "IN", pred.Values)
	case queryir.NotIn:
		return c.compileSet(pred.Field, "NOT IN", pred.Values)
	case queryir.Range:
		return c.compileRange(pred)
	case queryir.Match:
		op := "LIKE"
		if pred.Negate {
			op = "NOT LIKE"
		}
		sql := fmt.Sprintf("%s %s ? ESCAPE '%s'", pred.Field, op, likeEscape)
		return sql, []any{LikePattern(pred.Pattern)}, nil
	case queryir.IsNull:
		if pred.Negate {
			return fmt.Sprintf("(%s IS NOT NULL AND %s <> '')", pred.Field, pred.Field), nil, nil
		}
		return fmt.Sprintf("(%s IS NULL OR %s = '')", pred.Field, pred.Field), nil, nil
	case queryir.And:
		return c.compileGroup(pred.Predicates, " AND ", "1 = 1")
	case queryir.Or:
		return c.compileGroup(pred.Predicates, " OR ", "0 = 1")
	case queryir.Nothing:
		return "0 = 1", nil, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *SQLCompiler) compileSet(field, op string, values []ir.IRValue) (string, []any, error) {
	params := make([]any, len(values))
	for i, v := range values {
		param, err := irValueToParam(v)
		if err != nil {
			return "", nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		params[i] = param
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return fmt.Sprintf("%s %s (%s)", field, op, placeholders), params, nil
}

func (c *SQLCompiler) compileRange(r queryir.Range) (string, []any, error) {
	var parts []string
	var params []any

	if r.Lower != nil {
		param, err := irValueToParam(r.Lower.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%s lower bound: %w", r.Field, err)
		}
		op := ">"
		if r.Lower.Inclusive {
			op = ">="
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", r.Field, op))
		params = append(params, param)
	}
	if r.Upper != nil {
		param, err := irValueToParam(r.Upper.Value)
		if err != nil {
			return "", nil, fmt.Errorf("%s upper bound: %w", r.Field, err)
		}
		op := "<"
		if r.Upper.Inclusive {
			op = "<="
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", r.Field, op))
		params = append(params, param)
	}

	return strings.Join(parts, " AND "), params, nil
}

func (c *SQLCompiler) compileGroup(preds []queryir.Predicate, glue, empty string) (string, []any, error) {
	if len(preds) == 0 {
		return empty, nil, nil
	}

	sqlParts := make([]string, 0, len(preds))
	var allParams []any
	for _, pred := range preds {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if compound(pred) {
			sql = "(" + sql + ")"
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, glue), allParams, nil
}

// compound reports whether p renders with a top-level AND or OR and so
// needs parentheses inside a group.
func compound(p queryir.Predicate) bool {
	switch pred := p.(type) {
	case queryir.And:
		return len(pred.Predicates) > 1
	case queryir.Or:
		return len(pred.Predicates) > 1
	case queryir.Range:
		return pred.Lower != nil && pred.Upper != nil
	default:
		return false
	}
}

// LikePattern converts a '*' wildcard pattern to a LIKE pattern, escaping
// the characters LIKE treats specially.
func LikePattern(pattern string) string {
	r := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
		"*", "%",
	)
	return r.Replace(pattern)
}

// irValueToParam converts an ir.IRValue to a Go native type for a SQL parameter.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRNull:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
