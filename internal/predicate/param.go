package predicate

import (
	"strings"
)

// glue is the boolean connective of a param list.
type glue string

const (
	glueOr  glue = "or"
	glueAnd glue = "and"
)

// paramOps lists operator prefixes, longest first so "<=" wins over "<".
var paramOps = []struct {
	prefix string
	op     string
}{
	{"not ", "!="},
	{"!=", "!="},
	{"<=", "<="},
	{">=", ">="},
	{"<", "<"},
	{">", ">"},
	{"=", "="},
}

// splitParam splits a param string on commas not escaped with a backslash.
// Empty items are dropped.
func splitParam(s string) []string {
	var parts []string
	var cur strings.Builder

	flush := func() {
		if part := strings.TrimSpace(cur.String()); part != "" {
			parts = append(parts, part)
		}
		cur.Reset()
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && s[i+1] == ',' {
			cur.WriteByte(',')
			i++
			continue
		}
		if c == ',' {
			flush()
			continue
		}
		cur.WriteByte(c)
	}
	flush()
	return parts
}

// takeGlue removes a leading "and" / "or" item.
func takeGlue(items []string) (glue, []string) {
	if len(items) > 0 {
		switch strings.ToLower(items[0]) {
		case "and":
			return glueAnd, items[1:]
		case "or":
			return glueOr, items[1:]
		}
	}
	return glueOr, items
}

// splitOp separates an operator prefix from its operand.
// "not :empty:" and friends are handled by the caller first.
func splitOp(item string) (op, operand string) {
	lower := strings.ToLower(item)
	for _, candidate := range paramOps {
		if strings.HasPrefix(lower, candidate.prefix) {
			return candidate.op, strings.TrimSpace(item[len(candidate.prefix):])
		}
	}
	return "=", item
}

// hasWildcard reports whether s contains an unescaped '*'.
func hasWildcard(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '*':
			return true
		}
	}
	return false
}

// unescape removes backslashes in front of '*'.
func unescape(s string) string {
	return strings.ReplaceAll(s, `\*`, "*")
}
