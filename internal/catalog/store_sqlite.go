// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/taibuivan/komikflow/internal/platform/database/schema"
	"github.com/taibuivan/komikflow/internal/platform/dberr"
	"github.com/taibuivan/komikflow/pkg/uuid"
)

// NewSQLiteStore returns the repositories backed by an embedded SQLite database.
//
// Timestamps are stored as unix microseconds in UTC and genres as a JSON array.
func NewSQLiteStore(db *sql.DB) *Store {
	return &Store{
		Sources:  &liteSourceRepository{db: db},
		Comics:   &liteComicRepository{db: db},
		Chapters: &liteChapterRepository{db: db},
		Pages:    &litePageCacheRepository{db: db},
		Logs:     &liteScrapeLogRepository{db: db},
		Stats:    &liteStatsRepository{db: db},
	}
}

// # Encoding Helpers

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

func fromMicros(micros int64) time.Time {
	return time.UnixMicro(micros).UTC()
}

func nowMicros() int64 {
	return toMicros(time.Now())
}

func encodeGenres(genres []string) (*string, error) {
	if genres == nil {
		return nil, nil
	}
	raw, err := json.Marshal(genres)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encode genres: %w", err)
	}
	encoded := string(raw)
	return &encoded, nil
}

func decodeGenres(raw *string) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	var genres []string
	if err := json.Unmarshal([]byte(*raw), &genres); err != nil {
		return nil, fmt.Errorf("sqlite: decode genres: %w", err)
	}
	return genres, nil
}

func withTx(context context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(context, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// # Source Repository

type liteSourceRepository struct {
	db *sql.DB
}

func scanLiteSource(row rowScanner) (*Source, error) {
	var source Source
	var createdAt, updatedAt int64
	err := row.Scan(
		&source.ID, &source.Code, &source.Name, &source.BaseURL, &source.IsActive,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	source.CreatedAt, source.UpdatedAt = fromMicros(createdAt), fromMicros(updatedAt)
	return &source, nil
}

func (repository *liteSourceRepository) FindByCode(context context.Context, code string) (*Source, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		sourceColumns, schema.CatalogSource.Table, schema.CatalogSource.Code)

	source, err := scanLiteSource(repository.db.QueryRowContext(context, query, code))
	if err != nil {
		return nil, dberr.Wrap(err, "source", "find_source_by_code")
	}
	return source, nil
}

func (repository *liteSourceRepository) FindByID(context context.Context, id string) (*Source, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		sourceColumns, schema.CatalogSource.Table, schema.CatalogSource.ID)

	source, err := scanLiteSource(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "source", "find_source_by_id")
	}
	return source, nil
}

func (repository *liteSourceRepository) List(context context.Context) ([]*Source, error) {
	return repository.list(context, "")
}

func (repository *liteSourceRepository) ListActive(context context.Context) ([]*Source, error) {
	return repository.list(context, fmt.Sprintf("WHERE %s = 1", schema.CatalogSource.IsActive))
}

func (repository *liteSourceRepository) list(context context.Context, where string) ([]*Source, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s ASC`,
		sourceColumns, schema.CatalogSource.Table, where, schema.CatalogSource.Code)

	rows, err := repository.db.QueryContext(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "source", "list_sources")
	}
	defer rows.Close()

	sources := make([]*Source, 0)
	for rows.Next() {
		source, err := scanLiteSource(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "source", "scan_source")
		}
		sources = append(sources, source)
	}
	return sources, dberr.Wrap(rows.Err(), "source", "list_sources")
}

func (repository *liteSourceRepository) Upsert(context context.Context, source *Source) error {
	if source.ID == "" {
		source.ID = uuid.New()
	}

	now := nowMicros()
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[8]s, %[7]s)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (%[3]s) DO UPDATE SET
			%[4]s = excluded.%[4]s,
			%[5]s = excluded.%[5]s,
			%[6]s = excluded.%[6]s,
			%[7]s = excluded.%[7]s
		RETURNING %[2]s, %[8]s, %[7]s
	`,
		schema.CatalogSource.Table,
		schema.CatalogSource.ID, schema.CatalogSource.Code, schema.CatalogSource.Name,
		schema.CatalogSource.BaseURL, schema.CatalogSource.IsActive,
		schema.CatalogSource.UpdatedAt, schema.CatalogSource.CreatedAt,
	)

	var createdAt, updatedAt int64
	err := repository.db.QueryRowContext(context, query,
		source.ID, source.Code, source.Name, source.BaseURL, source.IsActive, now, now,
	).Scan(&source.ID, &createdAt, &updatedAt)
	if err != nil {
		return dberr.Wrap(err, "source", "upsert_source")
	}

	source.CreatedAt, source.UpdatedAt = fromMicros(createdAt), fromMicros(updatedAt)
	return nil
}

func (repository *liteSourceRepository) SetActive(context context.Context, code string, active bool) (*Source, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = ?, %s = ? WHERE %s = ? RETURNING %s`,
		schema.CatalogSource.Table, schema.CatalogSource.IsActive, schema.CatalogSource.UpdatedAt,
		schema.CatalogSource.Code, sourceColumns)

	source, err := scanLiteSource(repository.db.QueryRowContext(context, query, active, nowMicros(), code))
	if err != nil {
		return nil, dberr.Wrap(err, "source", "set_source_active")
	}
	return source, nil
}

// # Comic Repository

type liteComicRepository struct {
	db *sql.DB
}

func scanLiteComic(row rowScanner) (*Comic, error) {
	var comic Comic
	var genres *string
	var createdAt, updatedAt int64
	err := row.Scan(
		&comic.ID, &comic.Title, &comic.Slug, &comic.Description, &comic.CoverURL, &comic.Status,
		&genres, &comic.SourceID, &comic.SourceSlug, &comic.SourceURL,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if comic.Genres, err = decodeGenres(genres); err != nil {
		return nil, err
	}
	comic.CreatedAt, comic.UpdatedAt = fromMicros(createdAt), fromMicros(updatedAt)
	return &comic, nil
}

func (repository *liteComicRepository) UpsertBySourceKey(context context.Context, comic *Comic) error {
	if comic.ID == "" {
		comic.ID = uuid.New()
	}

	genres, err := encodeGenres(comic.Genres)
	if err != nil {
		return err
	}

	c := schema.CatalogComic
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s, %[9]s, %[10]s, %[11]s, %[13]s, %[12]s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (%[9]s, %[10]s) DO UPDATE SET
			%[3]s  = excluded.%[3]s,
			%[5]s  = COALESCE(excluded.%[5]s, %[5]s),
			%[6]s  = excluded.%[6]s,
			%[7]s  = excluded.%[7]s,
			%[8]s  = excluded.%[8]s,
			%[11]s = excluded.%[11]s,
			%[12]s = excluded.%[12]s
		RETURNING %[2]s, %[4]s, %[13]s, %[12]s
	`,
		c.Table,
		c.ID, c.Title, c.Slug, c.Description, c.CoverURL, c.Status, c.Genres,
		c.SourceID, c.SourceSlug, c.SourceURL,
		c.UpdatedAt, c.CreatedAt,
	)

	now := nowMicros()
	var createdAt, updatedAt int64
	err = repository.db.QueryRowContext(context, query,
		comic.ID, comic.Title, comic.Slug, comic.Description, comic.CoverURL, comic.Status,
		genres, comic.SourceID, comic.SourceSlug, comic.SourceURL, now, now,
	).Scan(&comic.ID, &comic.Slug, &createdAt, &updatedAt)

	if column, ok := dberr.UniqueViolation(err); ok && column == c.Table+"."+c.Slug {
		return ErrSlugTaken
	}
	if err != nil {
		return dberr.Wrap(err, "comic", "upsert_comic")
	}

	comic.CreatedAt, comic.UpdatedAt = fromMicros(createdAt), fromMicros(updatedAt)
	return nil
}

func (repository *liteComicRepository) UpdateScraped(context context.Context, comic *Comic) error {
	genres, err := encodeGenres(comic.Genres)
	if err != nil {
		return err
	}

	c := schema.CatalogComic
	query := fmt.Sprintf(`
		UPDATE %[1]s SET
			%[2]s = ?,
			%[3]s = ?,
			%[4]s = ?,
			%[5]s = ?,
			%[6]s = ?,
			%[7]s = ?
		WHERE %[8]s = ?
		RETURNING %[9]s
	`,
		c.Table,
		c.Title, c.Description, c.CoverURL, c.Status, c.Genres, c.UpdatedAt,
		c.ID, comicColumns,
	)

	updated, err := scanLiteComic(repository.db.QueryRowContext(context, query,
		comic.Title, comic.Description, comic.CoverURL, comic.Status, genres, nowMicros(), comic.ID,
	))
	if err != nil {
		return dberr.Wrap(err, "comic", "update_scraped_comic")
	}

	*comic = *updated
	return nil
}

func (repository *liteComicRepository) FindByID(context context.Context, id string) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		comicColumns, schema.CatalogComic.Table, schema.CatalogComic.ID)

	comic, err := scanLiteComic(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "comic", "find_comic_by_id")
	}
	return comic, nil
}

func (repository *liteComicRepository) FindBySourceKey(context context.Context, sourceID, sourceSlug string) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND %s = ?`,
		comicColumns, schema.CatalogComic.Table, schema.CatalogComic.SourceID, schema.CatalogComic.SourceSlug)

	comic, err := scanLiteComic(repository.db.QueryRowContext(context, query, sourceID, sourceSlug))
	if err != nil {
		return nil, dberr.Wrap(err, "comic", "find_comic_by_source_key")
	}
	return comic, nil
}

// # Chapter Repository

type liteChapterRepository struct {
	db *sql.DB
}

func scanLiteChapter(row rowScanner) (*Chapter, error) {
	var chapter Chapter
	var createdAt int64
	err := row.Scan(
		&chapter.ID, &chapter.ComicID, &chapter.ChapterNumber, &chapter.Title,
		&chapter.SourceChapterID, &chapter.SourceURL, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	chapter.CreatedAt = fromMicros(createdAt)
	return &chapter, nil
}

func (repository *liteChapterRepository) UpsertByNumber(context context.Context, chapters []*Chapter) error {
	if len(chapters) == 0 {
		return nil
	}

	c := schema.CatalogChapter
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s, %[5]s, %[6]s, %[7]s, %[8]s)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (%[3]s, %[4]s) DO UPDATE SET
			%[5]s = excluded.%[5]s,
			%[6]s = excluded.%[6]s,
			%[7]s = excluded.%[7]s
		RETURNING %[2]s, %[8]s
	`,
		c.Table, c.ID, c.ComicID, c.ChapterNumber, c.Title, c.SourceChapterID, c.SourceURL, c.CreatedAt,
	)

	now := nowMicros()
	err := withTx(context, repository.db, func(tx *sql.Tx) error {
		statement, err := tx.PrepareContext(context, query)
		if err != nil {
			return err
		}
		defer statement.Close()

		for _, chapter := range chapters {
			if chapter.ID == "" {
				chapter.ID = uuid.New()
			}

			var createdAt int64
			err := statement.QueryRowContext(context,
				chapter.ID, chapter.ComicID, chapter.ChapterNumber,
				chapter.Title, chapter.SourceChapterID, chapter.SourceURL, now,
			).Scan(&chapter.ID, &createdAt)
			if err != nil {
				return err
			}
			chapter.CreatedAt = fromMicros(createdAt)
		}
		return nil
	})
	return dberr.Wrap(err, "chapter", "upsert_chapters")
}

func (repository *liteChapterRepository) FindByID(context context.Context, id string) (*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`,
		chapterColumns, schema.CatalogChapter.Table, schema.CatalogChapter.ID)

	chapter, err := scanLiteChapter(repository.db.QueryRowContext(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "chapter", "find_chapter_by_id")
	}
	return chapter, nil
}

func (repository *liteChapterRepository) ListByComic(context context.Context, comicID string) ([]*Chapter, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY %s ASC`,
		chapterColumns, schema.CatalogChapter.Table, schema.CatalogChapter.ComicID, schema.CatalogChapter.ChapterNumber)

	rows, err := repository.db.QueryContext(context, query, comicID)
	if err != nil {
		return nil, dberr.Wrap(err, "chapter", "list_chapters")
	}
	defer rows.Close()

	chapters := make([]*Chapter, 0)
	for rows.Next() {
		chapter, err := scanLiteChapter(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "chapter", "scan_chapter")
		}
		chapters = append(chapters, chapter)
	}
	return chapters, dberr.Wrap(rows.Err(), "chapter", "list_chapters")
}

// # Page Cache Repository

type litePageCacheRepository struct {
	db *sql.DB
}

func (repository *litePageCacheRepository) ListByChapter(context context.Context, chapterID string) ([]*PageCacheEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY %s ASC`,
		pageColumns, schema.CatalogChapterPage.Table,
		schema.CatalogChapterPage.ChapterID, schema.CatalogChapterPage.PageNumber)

	rows, err := repository.db.QueryContext(context, query, chapterID)
	if err != nil {
		return nil, dberr.Wrap(err, "chapter_page", "list_cached_pages")
	}
	defer rows.Close()

	entries := make([]*PageCacheEntry, 0)
	for rows.Next() {
		var entry PageCacheEntry
		var cachedAt int64
		if err := rows.Scan(&entry.ChapterID, &entry.PageNumber, &entry.SourceImageURL, &cachedAt); err != nil {
			return nil, dberr.Wrap(err, "chapter_page", "scan_cached_page")
		}
		entry.CachedAt = fromMicros(cachedAt)
		entries = append(entries, &entry)
	}
	return entries, dberr.Wrap(rows.Err(), "chapter_page", "list_cached_pages")
}

func (repository *litePageCacheRepository) Replace(context context.Context, chapterID string, entries []*PageCacheEntry) error {
	p := schema.CatalogChapterPage
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, p.Table, p.ChapterID)
	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?)`, p.Table, pageColumns)

	err := withTx(context, repository.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(context, deleteQuery, chapterID); err != nil {
			return err
		}
		for _, entry := range entries {
			_, err := tx.ExecContext(context, insertQuery,
				chapterID, entry.PageNumber, entry.SourceImageURL, toMicros(entry.CachedAt))
			if err != nil {
				return err
			}
		}
		return nil
	})
	return dberr.Wrap(err, "chapter_page", "replace_cached_pages")
}

// # Scrape Log Repository

type liteScrapeLogRepository struct {
	db *sql.DB
}

func (repository *liteScrapeLogRepository) Append(context context.Context, entry *ScrapeLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	l := schema.CatalogScrapeLog
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.Table, l.ID, l.SourceID, l.TargetURL, l.Action, l.Status, l.ErrorMessage, l.CreatedAt)

	_, err := repository.db.ExecContext(context, query,
		entry.ID, entry.SourceID, entry.TargetURL, string(entry.Action), string(entry.Status),
		entry.ErrorMessage, toMicros(entry.CreatedAt),
	)
	return dberr.Wrap(err, "scrape_log", "append_scrape_log")
}

func (repository *liteScrapeLogRepository) ListRecent(context context.Context, limit, offset int) ([]*ScrapeLogView, int, error) {
	l, s := schema.CatalogScrapeLog, schema.CatalogSource
	query := fmt.Sprintf(`
		SELECT l.%s, l.%s, l.%s, l.%s, l.%s, l.%s, l.%s, s.%s, s.%s,
			COUNT(*) OVER() AS total_count
		FROM %s l
		JOIN %s s ON l.%s = s.%s
		ORDER BY l.%s DESC, l.%s DESC
		LIMIT ? OFFSET ?
	`,
		l.ID, l.SourceID, l.TargetURL, l.Action, l.Status, l.ErrorMessage, l.CreatedAt, s.Code, s.Name,
		l.Table, s.Table, l.SourceID, s.ID,
		l.CreatedAt, l.ID,
	)

	rows, err := repository.db.QueryContext(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "scrape_log", "list_scrape_logs")
	}
	defer rows.Close()

	views := make([]*ScrapeLogView, 0)
	var total int
	for rows.Next() {
		var view ScrapeLogView
		var createdAt int64
		err := rows.Scan(
			&view.ID, &view.SourceID, &view.TargetURL, &view.Action, &view.Status, &view.ErrorMessage,
			&createdAt, &view.SourceCode, &view.SourceName, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scrape_log", "scan_scrape_log")
		}
		view.CreatedAt = fromMicros(createdAt)
		views = append(views, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "scrape_log", "list_scrape_logs")
	}
	return views, total, nil
}

// # Stats Repository

type liteStatsRepository struct {
	db *sql.DB
}

func (repository *liteStatsRepository) Stats(context context.Context) (*Stats, error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %[1]s),
			(SELECT COUNT(*) FROM %[1]s WHERE %[2]s = 1),
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
	var lastScrapeAt sql.NullInt64
	err := repository.db.QueryRowContext(context, query).Scan(
		&stats.Sources, &stats.ActiveSources, &stats.Comics, &stats.Chapters,
		&stats.CachedPages, &stats.FailedScrapes, &lastScrapeAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "stats", "compute_stats")
	}

	if lastScrapeAt.Valid {
		last := fromMicros(lastScrapeAt.Int64)
		stats.LastScrapeAt = &last
	}
	return &stats, nil
}
