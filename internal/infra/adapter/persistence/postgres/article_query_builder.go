// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"article-service/internal/repository"
)

// ArticleQueryBuilder builds the WHERE and ORDER BY clauses for article listing.
// The WHERE clause is shared between the COUNT and SELECT queries so the total
// always describes the same filtered set as the page.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause builds the WHERE clause and its arguments for q.
// Placeholders are numbered from $1. Returns an empty clause when q has no filters.
func (qb *ArticleQueryBuilder) BuildWhereClause(q repository.ListQuery) (clause string, args []interface{}) {
	var conditions []string
	paramIndex := 1

	if q.Author != "" {
		conditions = append(conditions, fmt.Sprintf("author = $%d", paramIndex))
		args = append(args, q.Author)
		paramIndex++
	}

	if q.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("tags ILIKE $%d", paramIndex))
		args = append(args, containsPattern(q.Tag))
		paramIndex++
	}

	if q.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR body ILIKE $%d)", paramIndex, paramIndex))
		args = append(args, containsPattern(q.Search))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// BuildOrderClause orders by published_at with nulls last in either direction.
// id breaks ties so pages are stable.
func (qb *ArticleQueryBuilder) BuildOrderClause(order repository.SortOrder) string {
	if order == repository.SortAsc {
		return "ORDER BY published_at ASC NULLS LAST, id ASC"
	}
	return "ORDER BY published_at DESC NULLS LAST, id DESC"
}

// containsPattern wraps s for an ILIKE substring match, escaping wildcards.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
