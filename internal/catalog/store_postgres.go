// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/komikflow/internal/platform/database/schema"
	"github.com/taibuivan/komikflow/internal/platform/dberr"
	"github.com/taibuivan/komikflow/pkg/uuid"
)

// NewPostgresStore returns the repositories backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Sources:  &pgSourceRepository{pool: pool},
		Comics:   &pgComicRepository{pool: pool},
		Chapters: &pgChapterRepository{pool: pool},
		Pages:    &pgPageCacheRepository{pool: pool},
		Logs:     &pgScrapeLogRepository{pool: pool},
		Stats:    &pgStatsRepository{pool: pool},
	}
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func columns(names ...string) string {
	return strings.Join(names, ", ")
}

// # Column Lists

var (
	sourceColumns = columns(
		schema.CatalogSource.ID, schema.CatalogSource.Code, schema.CatalogSource.Name,
		schema.CatalogSource.BaseURL, schema.CatalogSource.IsActive,
		schema.CatalogSource.CreatedAt, schema.CatalogSource.UpdatedAt,
	)

	comicColumns = columns(
		schema.CatalogComic.ID, schema.CatalogComic.Title, schema.CatalogComic.Slug,
		schema.CatalogComic.Description, schema.CatalogComic.CoverURL, schema.CatalogComic.Status,
		schema.CatalogComic.Genres, schema.CatalogComic.SourceID, schema.CatalogComic.SourceSlug,
		schema.CatalogComic.SourceURL, schema.CatalogComic.CreatedAt, schema.CatalogComic.UpdatedAt,
	)

	chapterColumns = columns(
		schema.CatalogChapter.ID, schema.CatalogChapter.ComicID, schema.CatalogChapter.ChapterNumber,
		schema.CatalogChapter.Title, schema.CatalogChapter.SourceChapterID, schema.CatalogChapter.SourceURL,
		schema.CatalogChapter.CreatedAt,
	)

	pageColumns = columns(
		schema.CatalogChapterPage.ChapterID, schema.CatalogChapterPage.PageNumber,
		schema.CatalogChapterPage.SourceImageURL, schema.CatalogChapterPage.CachedAt,
	)
)

// # Source Repository

type pgSourceRepository struct {
	pool *pgxpool.Pool
}

func scanPgSource(row rowScanner) (*Source, error) {
	var source Source
	err := row.Scan(
		&source.ID, &source.Code, &source.Name, &source.BaseURL, &source.IsActive,
		&source.CreatedAt, &source.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

func (repository *pgSourceRepository) FindByCode(context context.Context, code string) (*Source, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		sourceColumns, schema.CatalogSource.Table, schema.CatalogSource.Code)

	source, err := scanPgSource(repository.pool.QueryRow(context, query, code))
	if err != nil {
		return nil, dberr.Wrap(err, "source", "find_source_by_code")
	}
	return source, nil
}

func (repository *pgSourceRepository) FindByID(context context.Context, id string) (*Source, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		sourceColumns, schema.CatalogSource.Table, schema.CatalogSource.ID)

	source, err := scanPgSource(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "source", "find_source_by_id")
	}
	return source, nil
}

func (repository *pgSourceRepository) List(context context.Context) ([]*Source, error) {
	return repository.list(context, "")
}

func (repository *pgSourceRepository) ListActive(context context.Context) ([]*Source, error) {
	return repository.list(context, fmt.Sprintf("WHERE %s", schema.CatalogSource.IsActive))
}

func (repository *pgSourceRepository) list(context context.Context, where string) ([]*Source, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s ASC`,
		sourceColumns, schema.CatalogSource.Table, where, schema.CatalogSource.Code)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "source", "list_sources")
	}
	defer rows.Close()

	sources := make([]*Source, 0)
	for rows.Next() {
		source, err := scanPgSource(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "source", "scan_source")
		}
		sources = append(sources, source)
	}
	return sources, dberr.Wrap(rows.Err(), "source", "list_sources")
}

func (repository *pgSourceRepository) Upsert(context context.Context, source *Source) error {
	if source.ID == "" {
		source.ID = uuid.New()
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%[3]s) DO UPDATE SET
			%[4]s = EXCLUDED.%[4]s,
			%[5]s = EXCLUDED.%[5]s,
			%[6]s = EXCLUDED.%[6]s,
			%[7]s = now()
		RETURNING %[2]s, %[8]s, %[7]s
	`,
		schema.CatalogSource.Table,
		schema.CatalogSource.ID, schema.CatalogSource.Code, schema.CatalogSource.Name,
		schema.CatalogSource.BaseURL, schema.CatalogSource.IsActive,
		schema.CatalogSource.UpdatedAt, schema.CatalogSource.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		source.ID, source.Code, source.Name, source.BaseURL, source.IsActive,
	).Scan(&source.ID, &source.CreatedAt, &source.UpdatedAt)

	return dberr.Wrap(err, "source", "upsert_source")
}

func (repository *pgSourceRepository) SetActive(context context.Context, code string, active bool) (*Source, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = now() WHERE %s = $2 RETURNING %s`,
		schema.CatalogSource.Table, schema.CatalogSource.IsActive, schema.CatalogSource.UpdatedAt,
		schema.CatalogSource.Code, sourceColumns)

	source, err := scanPgSource(repository.pool.QueryRow(context, query, active, code))
	if err != nil {
		return nil, dberr.Wrap(err, "source", "set_source_active")
	}
	return source, nil
}

// # Comic Repository

type pgComicRepository struct {
	pool *pgxpool.Pool
}

func scanPgComic(row rowScanner) (*Comic, error) {
	var comic Comic
	err := row.Scan(
		&comic.ID, &comic.Title, &comic.Slug, &comic.Description, &comic.CoverURL, &comic.Status,
		&comic.Genres, &comic.SourceID, &comic.SourceSlug, &comic.SourceURL,
		&comic.CreatedAt, &comic.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comic, nil
}

func (repository *pgComicRepository) UpsertBySourceKey(context context.Context, comic *Comic) error {
	if comic.ID == "" {
		comic.ID = uuid.New()
	}

	c := schema.CatalogComic
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s, %[11]s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ON CONSTRAINT %[12]s DO UPDATE SET
			%[3]s  = EXCLUDED.%[3]s,
			%[5]s  = COALESCE(EXCLUDED.%[5]s, %[1]s.%[5]s),
			%[6]s  = EXCLUDED.%[6]s,
			%[7]s  = EXCLUDED.%[7]s,
			%[8]s  = EXCLUDED.%[8]s,
			%[11]s = EXCLUDED.%[11]s,
			%[13]s = now()
		RETURNING %[2]s, %[4]s, %[14]s, %[13]s
	`,
		c.Table,
		c.ID, c.Title, c.Slug, c.Description, c.CoverURL, c.Status, c.Genres,
		c.SourceID, c.SourceSlug, c.SourceURL,
		c.SourceKey, c.UpdatedAt, c.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		comic.ID, comic.Title, comic.Slug, comic.Description, comic.CoverURL, comic.Status,
		comic.Genres, comic.SourceID, comic.SourceSlug, comic.SourceURL,
	).Scan(&comic.ID, &comic.Slug, &comic.CreatedAt, &comic.UpdatedAt)

	if constraint, ok := dberr.UniqueViolation(err); ok && constraint == c.SlugKey {
		return ErrSlugTaken
	}
	return dberr.Wrap(err, "comic", "upsert_comic")
}

func (repository *pgComicRepository) UpdateScraped(context context.Context, comic *Comic) error {
	c := schema.CatalogComic
	query := fmt.Sprintf(`
		UPDATE %[1]s SET
			%[2]s = $1,
			%[3]s = $2,
			%[4]s = $3,
			%[5]s = $4,
			%[6]s = $5,
			%[7]s = now()
		WHERE %[8]s = $6
		RETURNING %[9]s
	`,
		c.Table,
		c.Title, c.Description, c.CoverURL, c.Status, c.Genres, c.UpdatedAt,
		c.ID, comicColumns,
	)

	updated, err := scanPgComic(repository.pool.QueryRow(context, query,
		comic.Title, comic.Description, comic.CoverURL, comic.Status, comic.Genres, comic.ID,
	))
	if err != nil {
		return dberr.Wrap(err, "comic", "update_scraped_comic")
	}

	*comic = *updated
	return nil
}

func (repository *pgComicRepository) FindByID(context context.Context, id string) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		comicColumns, schema.CatalogComic.Table, schema.CatalogComic.ID)

	comic, err := scanPgComic(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "comic", "find_comic_by_id")
	}
	return comic, nil
}

func (repository *pgComicRepository) FindBySourceKey(context context.Context, sourceID, sourceSlug string) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		comicColumns, schema.CatalogComic.Table, schema.CatalogComic.SourceID, schema.CatalogComic.SourceSlug)

	comic, err := scanPgComic(repository.pool.QueryRow(context, query, sourceID, sourceSlug))
	if err != nil {
		return nil, dberr.Wrap(err, "comic", "find_comic_by_source_key")
	}
	return comic, nil
}

// # Chapter Repository

type pgChapterRepository struct {
	pool *pgxpool.Pool
}

func scanPgChapter(row rowScanner) (*Chapter, error) {
	var chapter Chapter
	err := row.Scan(
		&chapter.ID, &chapter.ComicID, &chapter.ChapterNumber, &chapter.Title,
		&chapter.SourceChapterID, &chapter.SourceURL, &chapter.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

/*
UpsertByNumber pipelines one upsert per chapter inside a transaction.
*/
func (repository *pgChapterRepository) UpsertByNumber(context context.Context, chapters []*Chapter) error {
	if len(chapters) == 0 {
		return nil
	}

	c := schema.CatalogChapter
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%[3]s, %[4]s) DO UPDATE SET
			%[5]s = EXCLUDED.%[5]s,
			%[6]s = EXCLUDED.%[6]s,
			%[7]s = EXCLUDED.%[7]s
		RETURNING %[2]s, %[8]s
	`,
		c.Table, c.ID, c.ComicID, c.ChapterNumber, c.Title, c.SourceChapterID, c.SourceURL, c.CreatedAt,
	)

	return pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, chapter := range chapters {
			if chapter.ID == "" {
				chapter.ID = uuid.New()
			}
			batch.Queue(query,
				chapter.ID, chapter.ComicID, chapter.ChapterNumber,
				chapter.Title, chapter.SourceChapterID, chapter.SourceURL,
			).QueryRow(func(row pgx.Row) error {
				return row.Scan(&chapter.ID, &chapter.CreatedAt)
			})
		}

		if err := tx.SendBatch(context, batch).Close(); err != nil {
			return dberr.Wrap(err, "chapter", "upsert_chapters")
		}
		return nil
	})
}

func (repository *pgChapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		chapterColumns, schema.CatalogChapter.Table, schema.CatalogChapter.ID)

	chapter, err := scanPgChapter(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "chapter", "find_chapter_by_id")
	}
	return chapter, nil
}

func (repository *pgChapterRepository) ListByComic(context context.Context, comicID string) ([]*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		chapterColumns, schema.CatalogChapter.Table, schema.CatalogChapter.ComicID, schema.CatalogChapter.ChapterNumber)

	rows, err := repository.pool.Query(context, query, comicID)
	if err != nil {
		return nil, dberr.Wrap(err, "chapter", "list_chapters")
	}
	defer rows.Close()

	chapters := make([]*Chapter, 0)
	for rows.Next() {
		chapter, err := scanPgChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "chapter", "scan_chapter")
		}
		chapters = append(chapters, chapter)
	}
	return chapters, dberr.Wrap(rows.Err(), "chapter", "list_chapters")
}

// # Page Cache Repository

type pgPageCacheRepository struct {
	pool *pgxpool.Pool
}

func (repository *pgPageCacheRepository) ListByChapter(context context.Context, chapterID string) ([]*PageCacheEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		pageColumns, schema.CatalogChapterPage.Table,
		schema.CatalogChapterPage.ChapterID, schema.CatalogChapterPage.PageNumber)

	rows, err := repository.pool.Query(context, query, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, "chapter_page", "list_cached_pages")
	}
	defer rows.Close()

	entries := make([]*PageCacheEntry, 0)
	for rows.Next() {
		var entry PageCacheEntry
		if err := rows.Scan(&entry.ChapterID, &entry.PageNumber, &entry.SourceImageURL, &entry.CachedAt); err != nil {
			return nil, dberr.Wrap(err, "chapter_page", "scan_cached_page")
		}
		entries = append(entries, &entry)
	}
	return entries, dberr.Wrap(rows.Err(), "chapter_page", "list_cached_pages")
}

func (repository *pgPageCacheRepository) Replace(context context.Context, chapterID string, entries []*PageCacheEntry) error {
	p := schema.CatalogChapterPage
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, p.Table, p.ChapterID)
	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4)`, p.Table, pageColumns)

	return pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(deleteQuery, chapterID)
		for _, entry := range entries {
			batch.Queue(insertQuery, chapterID, entry.PageNumber, entry.SourceImageURL, entry.CachedAt)
		}

		if err := tx.SendBatch(context, batch).Close(); err != nil {
			return dberr.Wrap(err, "chapter_page", "replace_cached_pages")
		}
		return nil
	})
}

// # Scrape Log Repository

type pgScrapeLogRepository struct {
	pool *pgxpool.Pool
}

func (repository *pgScrapeLogRepository) Append(context context.Context, entry *ScrapeLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	l := schema.CatalogScrapeLog
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.Table, l.ID, l.SourceID, l.TargetURL, l.Action, l.Status, l.ErrorMessage, l.CreatedAt)

	_, err := repository.pool.Exec(context, query,
		entry.ID, entry.SourceID, entry.TargetURL, string(entry.Action), string(entry.Status),
		entry.ErrorMessage, entry.CreatedAt,
	)
	return dberr.Wrap(err, "scrape_log", "append_scrape_log")
}

func (repository *pgScrapeLogRepository) ListRecent(context context.Context, limit, offset int) ([]*ScrapeLogView, int, error) {
	l, s := schema.CatalogScrapeLog, schema.CatalogSource
	query := fmt.Sprintf(`
		SELECT l.%s, l.%s, l.%s, l.%s, l.%s, l.%s, l.%s, s.%s, s.%s,
			COUNT(*) OVER() AS total_count
		FROM %s l
		JOIN %s s ON l.%s = s.%s
		ORDER BY l.%s DESC, l.%s DESC
		LIMIT $1 OFFSET $2
	`,
		l.ID, l.SourceID, l.TargetURL, l.Action, l.Status, l.ErrorMessage, l.CreatedAt, s.Code, s.Name,
		l.Table, s.Table, l.SourceID, s.ID,
		l.CreatedAt, l.ID,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "scrape_log", "list_scrape_logs")
	}
	defer rows.Close()

	views := make([]*ScrapeLogView, 0)
	var total int
	for rows.Next() {
		var view ScrapeLogView
		err := rows.Scan(
			&view.ID, &view.SourceID, &view.TargetURL, &view.Action, &view.Status, &view.ErrorMessage,
			&view.CreatedAt, &view.SourceCode, &view.SourceName, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scrape_log", "scan_scrape_log")
		}
		views = append(views, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "scrape_log", "list_scrape_logs")
	}
	return views, total, nil
}

// # Stats Repository

type pgStatsRepository struct {
	pool *pgxpool.Pool
}

func (repository *pgStatsRepository) Stats(context context.Context) (*Stats, error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %[1]s),
			(SELECT COUNT(*) FROM %[1]s WHERE %[2]s),
			(SELECT COUNT(*) FROM %[3]s),
			(SELECT COUNT(*) FROM %[4]s),
			(SELECT COUNT(*) FROM %[5]s),
			(SELECT COUNT(*) FROM %[6]s WHERE %[7]s = 'FAILED'),
			(SELECT MAX(%[8]s) FROM %[6]s)
	`,
		schema.CatalogSource.Table, schema.CatalogSource.IsActive,
		schema.CatalogComic.Table, schema.CatalogChapter.Table, schema.CatalogChapterPage.Table,
		schema.CatalogScrapeLog.Table, schema.CatalogScrapeLog.Status, schema.CatalogScrapeLog.CreatedAt,
	)

	var stats Stats
	err := repository.pool.QueryRow(context, query).Scan(
		&stats.Sources, &stats.ActiveSources, &stats.Comics, &stats.Chapters,
		&stats.CachedPages, &stats.FailedScrapes, &stats.LastScrapeAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "stats", "compute_stats")
	}
	return &stats, nil
}
