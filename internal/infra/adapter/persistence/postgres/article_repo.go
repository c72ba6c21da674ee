package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"article-service/internal/domain/entity"
	"article-service/internal/repository"
)

// uniqueViolation is the SQLSTATE Postgres reports for a unique constraint failure.
const uniqueViolation = "23505"

const articleColumns = `id, title, author, body, tags, published_at, created_at, updated_at`

type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
	now          func() time.Time
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(s rowScanner) (*entity.Article, error) {
	var (
		article     entity.Article
		tags        sql.NullString
		publishedAt sql.NullTime
	)
	if err := s.Scan(&article.ID, &article.Title, &article.Author, &article.Body,
		&tags, &publishedAt, &article.CreatedAt, &article.UpdatedAt); err != nil {
		return nil, err
	}
	article.Tags = entity.SplitTags(tags.String)
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	return &article, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) GetByTitleAndAuthor(ctx context.Context, title, author string) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE title = $1 AND author = $2
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, title, author))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByTitleAndAuthor: %w", err)
	}
	return article, nil
}

// List counts the filtered set first, then fetches the requested window of it.
func (repo *ArticleRepo) List(ctx context.Context, q repository.ListQuery) ([]*entity.Article, int64, error) {
	whereClause, args := repo.queryBuilder.BuildWhereClause(q)

	countQuery := "SELECT COUNT(*) FROM articles " + whereClause
	var total int64
	if err := repo.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("List: count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`
SELECT %s
FROM articles
%s
%s
LIMIT $%d OFFSET $%d`, articleColumns, whereClause, repo.queryBuilder.BuildOrderClause(q.SortOrder), n+1, n+2)

	rows, err := repo.db.QueryContext(ctx, query, append(args, q.Limit, q.Skip)...)
	if err != nil {
		return nil, 0, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, q.Limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("List: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("List: rows: %w", err)
	}
	return articles, total, nil
}

func (repo *ArticleRepo) Create(ctx context.Context, d entity.Draft) (*entity.Article, error) {
	const query = `
INSERT INTO articles (title, author, body, tags, published_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING ` + articleColumns
	now := repo.now()
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query,
		d.Title, d.Author, d.Body, nullableTags(d.Tags), nullableTime(d.PublishedAt), now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("Create: %w", repository.ErrConflict)
		}
		return nil, fmt.Errorf("Create: %w", err)
	}
	return article, nil
}

// Update writes only the columns present in p, plus updated_at, and returns the
// row as stored afterwards.
func (repo *ArticleRepo) Update(ctx context.Context, existing *entity.Article, p entity.Patch) (*entity.Article, error) {
	next := existing.Apply(p, repo.now())

	var (
		sets []string
		args []interface{}
	)
	set := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Title.Set {
		set("title", next.Title)
	}
	if p.Body.Set {
		set("body", next.Body)
	}
	if p.Tags.Set {
		set("tags", nullableTags(next.Tags))
	}
	if p.PublishedAt.Set {
		set("published_at", nullableTime(next.PublishedAt))
	}
	set("updated_at", next.UpdatedAt)
	args = append(args, existing.ID)

	query := fmt.Sprintf(`
UPDATE articles
SET %s
WHERE id = $%d
RETURNING %s`, strings.Join(sets, ", "), len(args), articleColumns)

	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("Update: %w", repository.ErrConflict)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, existing *entity.Article) (*entity.Article, error) {
	const query = `DELETE FROM articles WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("Delete: RowsAffected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	snapshot := *existing
	return &snapshot, nil
}

func (repo *ArticleRepo) Ping(ctx context.Context) error {
	return repo.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullableTags(tags []string) sql.NullString {
	if len(tags) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: entity.JoinTags(tags), Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
