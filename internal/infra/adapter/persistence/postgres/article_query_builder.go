// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"
	"strings"

	"newsdigest/internal/repository"
)

// ArticleQueryBuilder builds WHERE clauses for news listing in PostgreSQL.
// This builder is shared between COUNT and SELECT queries so both see the same filter.
// It uses PostgreSQL-specific features like ILIKE and numbered placeholders ($1, $2, etc.).
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// BuildWhereClause builds the WHERE clause and arguments for a ListFilter.
// Returns an empty clause if the filter is empty. The returned next index is the
// placeholder number the caller should use for any further arguments.
func (qb *ArticleQueryBuilder) BuildWhereClause(filter repository.ListFilter) (clause string, args []any, next int) {
	var conditions []string
	paramIndex := 1

	if topic := strings.TrimSpace(filter.Topic); topic != "" {
		conditions = append(conditions, fmt.Sprintf("topic ILIKE $%d", paramIndex))
		args = append(args, containsPattern(topic))
		paramIndex++
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", paramIndex, paramIndex))
		args = append(args, containsPattern(q))
		paramIndex++
	}

	if len(conditions) == 0 {
		return "", args, paramIndex
	}
	return "WHERE " + strings.Join(conditions, " AND "), args, paramIndex
}

// containsPattern escapes LIKE metacharacters and wraps s in %...%.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
