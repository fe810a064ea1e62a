package sqlite3

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern matches term anywhere in a column. SQLite LIKE ignores ASCII
// case.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func like(column, term string) sq.Sqlizer {
	return sq.Expr(column+` LIKE ? ESCAPE '\'`, likePattern(term))
}

// textMatch ORs a substring match for every non-empty term. It returns nil
// when both terms are empty.
func textMatch(titleColumn, title, contentColumn, content string) sq.Sqlizer {
	or := sq.Or{}

	if title != "" {
		or = append(or, like(titleColumn, title))
	}

	if content != "" {
		or = append(or, like(contentColumn, content))
	}

	if len(or) == 0 {
		return nil
	}

	return or
}

// expectAffected returns notFoundErr when res touched no row.
func expectAffected(res sql.Result, notFoundErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if n == 0 {
		return notFoundErr
	}

	return nil
}
