package postgres_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"

	"newsdigest/internal/domain/entity"
	pg "newsdigest/internal/infra/adapter/persistence/postgres"
	"newsdigest/internal/repository"
)

/* ─────────────────────────── ヘルパ ─────────────────────────── */

var columns = []string{
	"id", "source", "title", "url", "content", "published_at",
	"summary", "topic", "sentiment", "image_url", "created_at",
}

func artRow(rows *sqlmock.Rows, a *entity.Article) *sqlmock.Rows {
	var published driver.Value
	if a.PublishedAt != nil {
		published = *a.PublishedAt
	}
	return rows.AddRow(
		a.ID, orNil(a.Source), a.Title, orNil(a.URL), a.Content, published,
		orNil(a.Summary), orNil(string(a.Topic)), orNil(string(a.Sentiment)),
		orNil(a.ImageURL), a.CreatedAt,
	)
}

func orNil(s string) driver.Value {
	if s == "" {
		return nil
	}
	return s
}

func sampleArticle() *entity.Article {
	published := time.Date(2025, 7, 19, 8, 0, 0, 0, time.UTC)
	return &entity.Article{
		ID:          1,
		Source:      "BBC News",
		Title:       "Markets rally",
		URL:         "https://example.com/a",
		Content:     "Stocks rose.",
		PublishedAt: &published,
		Summary:     "Stocks rose on Monday.",
		Topic:       entity.TopicEconomy,
		Sentiment:   entity.SentimentPositive,
		ImageURL:    "https://example.com/a.jpg",
		CreatedAt:   time.Date(2025, 7, 19, 9, 0, 0, 0, time.UTC),
	}
}

/* ─────────────────────────── 1. Get ─────────────────────────── */

func TestArticleRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleArticle()
	mock.ExpectQuery(regexp.QuoteMeta("FROM news\nWHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(artRow(sqlmock.NewRows(columns), want))

	repo := pg.NewArticleRepo(db)
	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM news").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(columns))

	got, err := pg.NewArticleRepo(db).Get(context.Background(), 99)
	if err != nil || got != nil {
		t.Fatalf("Get = %v, %v; want nil, nil", got, err)
	}
}

func TestArticleRepo_Get_NullColumns(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	created := time.Date(2025, 7, 19, 9, 0, 0, 0, time.UTC)
	want := &entity.Article{ID: 2, Title: "t", Content: "c", CreatedAt: created}
	mock.ExpectQuery("FROM news").
		WithArgs(int64(2)).
		WillReturnRows(artRow(sqlmock.NewRows(columns), want))

	got, err := pg.NewArticleRepo(db).Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

/* ─────────────────────────── 2. GetByURL / ExistsByURL ─────────────────────────── */

func TestArticleRepo_GetByURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleArticle()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE url = $1")).
		WithArgs(want.URL).
		WillReturnRows(artRow(sqlmock.NewRows(columns), want))

	got, err := pg.NewArticleRepo(db).GetByURL(context.Background(), want.URL)
	if err != nil {
		t.Fatalf("GetByURL err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleRepo_ExistsByURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM news WHERE url = $1)")).
		WithArgs("https://example.com/a").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := pg.NewArticleRepo(db).ExistsByURL(context.Background(), "https://example.com/a")
	if err != nil || !exists {
		t.Fatalf("ExistsByURL = %v, %v; want true, nil", exists, err)
	}
}

/* ─────────────────────────── 3. Create ─────────────────────────── */

func TestArticleRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	a := sampleArticle()
	a.ID = 0
	a.Source = ""
	created := time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO news")).
		WithArgs(nil, a.Title, a.URL, a.Content, *a.PublishedAt, a.Summary,
			"economy", "positive", a.ImageURL).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))
	mock.ExpectCommit()

	if err := pg.NewArticleRepo(db).Create(context.Background(), a); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if a.ID != 7 || !a.CreatedAt.Equal(created) {
		t.Errorf("ID=%d CreatedAt=%v, want 7 / %v", a.ID, a.CreatedAt, created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Create_DuplicateURL(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO news").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_news_url"})
	mock.ExpectRollback()

	err := pg.NewArticleRepo(db).Create(context.Background(), sampleArticle())
	if !errors.Is(err, repository.ErrDuplicateURL) {
		t.Fatalf("err=%v, want ErrDuplicateURL", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_Create_OtherErrorRollsBack(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO news").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := pg.NewArticleRepo(db).Create(context.Background(), sampleArticle())
	if err == nil || errors.Is(err, repository.ErrDuplicateURL) {
		t.Fatalf("err=%v, want non-duplicate error", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ─────────────────────────── 4. List / Count ─────────────────────────── */

func TestArticleRepo_List_Filtered(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := sampleArticle()
	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE topic ILIKE $1 AND (title ILIKE $2 OR content ILIKE $2)\n"+
			"ORDER BY published_at DESC NULLS LAST, created_at DESC, id DESC\n"+
			"LIMIT $3 OFFSET $4")).
		WithArgs("%econ%", "%rally%", 20, 40).
		WillReturnRows(artRow(sqlmock.NewRows(columns), want))

	got, err := pg.NewArticleRepo(db).List(context.Background(),
		repository.ListFilter{Topic: "econ", Query: "rally"}, 20, 40)
	if err != nil {
		t.Fatalf("List err=%v", err)
	}
	if diff := cmp.Diff([]*entity.Article{want}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestArticleRepo_List_Unfiltered(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
		WithArgs(5, 0).
		WillReturnRows(sqlmock.NewRows(columns)) // 空集合で OK

	got, err := pg.NewArticleRepo(db).List(context.Background(), repository.ListFilter{}, 5, 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("List = %v, %v", got, err)
	}
}

func TestArticleRepo_Count(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM news WHERE (title ILIKE $1 OR content ILIKE $1)")).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := pg.NewArticleRepo(db).Count(context.Background(), repository.ListFilter{Query: "100%"})
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v; want 3, nil", n, err)
	}
}
