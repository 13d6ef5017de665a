package database

import (
	"fmt"
	"strings"
)

// rewritePlaceholders translates the public `?` placeholder syntax into
// PostgreSQL's numbered positional form: the first `?` becomes $1, the
// second $2, and so on.
//
// The rewrite is a plain text substitution and is not aware of string
// literals: a `?` embedded as literal data inside the query text would be
// rewritten too. Known constraint - query text at this boundary must not
// embed the placeholder character as data. Pass such values as parameters
// instead.
func rewritePlaceholders(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
