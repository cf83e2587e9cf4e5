package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/feteer-counter/api/internal/validate"
)

// ErrInvalidSearchTerm is returned when a search term fails validation.
// Callers must surface it rather than fall back to an unfiltered query.
var ErrInvalidSearchTerm = errors.New("invalid search term")

// likeConditionsToken marks where the OR-joined LIKE clause is spliced
// into a base query. Only compile-time column lists ever reach the SQL
// text; user data travels exclusively in bound parameters.
const likeConditionsToken = "{{LIKE_CONDITIONS}}"

// Base queries write their fixed bind parameters as $e1, $e2, ... so the
// builder can renumber them after the LIKE parameters are assigned.
func renumberExtraPlaceholders(sql string, count, offset int) string {
	for i := count; i >= 1; i-- {
		sql = strings.ReplaceAll(sql, fmt.Sprintf("$e%d", i), fmt.Sprintf("$%d", offset+i))
	}
	return sql
}

// likeQuery is the result of building a parameterized multi-column search.
type likeQuery struct {
	SQL  string
	Args []any
}

// buildLikeQuery splices an OR-joined `col LIKE $n ESCAPE '\'` clause into
// base in place of the placeholder token and binds one copy of the
// wildcard-wrapped term per column, followed by extraArgs in that fixed
// order. With an empty term the token is replaced by TRUE and only
// extraArgs are bound.
//
// The term is validated and sanitized first; LIKE metacharacters are
// escaped so user input always matches literally. A term that fails
// validation yields ErrInvalidSearchTerm, never a degraded query.
func buildLikeQuery(base string, columns []string, term string, extraArgs ...any) (likeQuery, error) {
	if term == "" {
		sql := strings.Replace(base, likeConditionsToken, "TRUE", 1)
		sql = renumberExtraPlaceholders(sql, len(extraArgs), 0)
		return likeQuery{SQL: sql, Args: extraArgs}, nil
	}

	sanitized, err := validate.SearchQuery(term)
	if err != nil {
		return likeQuery{}, fmt.Errorf("%w: %w", ErrInvalidSearchTerm, err)
	}
	pattern := "%" + validate.EscapeLikePattern(sanitized) + "%"

	conditions := make([]string, len(columns))
	args := make([]any, 0, len(columns)+len(extraArgs))
	for i, col := range columns {
		conditions[i] = fmt.Sprintf(`%s LIKE $%d ESCAPE '\'`, col, i+1)
		args = append(args, pattern)
	}
	args = append(args, extraArgs...)

	sql := strings.Replace(base, likeConditionsToken, "("+strings.Join(conditions, " OR ")+")", 1)
	sql = renumberExtraPlaceholders(sql, len(extraArgs), len(columns))

	return likeQuery{SQL: sql, Args: args}, nil
}
