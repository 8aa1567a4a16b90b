package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"

	"github.com/civitashq/trustengine/internal/models"
)

// Watchlist CRUD. Every write invalidates the matcher's compiled
// cache. Regex patterns are validated strictly here; an entry is
// never stored with a pattern that does not compile.

func (sdb *SharedDB) CreateWatchlistEntry(ctx context.Context, entry *models.KeywordWatchlistEntry) error {
	if !entry.AutoFlagReason.Valid() {
		return models.ErrInvalidFormat
	}
	if err := models.ValidatePattern(entry.Keyword, entry.IsRegex); err != nil {
		return err
	}

	sql, args, _ := psql.
		Insert("keyword_watchlist").
		Columns("keyword", "is_regex", "auto_flag_reason", "is_active", "created_by").
		Values(entry.Keyword, entry.IsRegex, entry.AutoFlagReason, entry.IsActive, entry.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	row := sdb.db.QueryRow(ctx, sql, args...)
	err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if isUniqueViolation(err, "keyword_watchlist_keyword_key") {
		return models.ErrDuplicateKeyword
	}
	if err != nil {
		return err
	}
	sdb.matcher.Invalidate()
	return nil
}

func (sdb *SharedDB) UpdateWatchlistEntry(ctx context.Context, entry *models.KeywordWatchlistEntry) error {
	if !entry.AutoFlagReason.Valid() {
		return models.ErrInvalidFormat
	}
	// Toggling a literal entry to regex mode re-validates the pattern.
	if err := models.ValidatePattern(entry.Keyword, entry.IsRegex); err != nil {
		return err
	}

	sql, args, _ := psql.
		Update("keyword_watchlist").
		Set("keyword", entry.Keyword).
		Set("is_regex", entry.IsRegex).
		Set("auto_flag_reason", entry.AutoFlagReason).
		Set("is_active", entry.IsActive).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": entry.ID}).
		ToSql()

	tag, err := sdb.db.Exec(ctx, sql, args...)
	if isUniqueViolation(err, "keyword_watchlist_keyword_key") {
		return models.ErrDuplicateKeyword
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	sdb.matcher.Invalidate()
	return nil
}

func (sdb *SharedDB) DeleteWatchlistEntry(ctx context.Context, id int) error {
	sql, args, _ := psql.
		Delete("keyword_watchlist").
		Where(sq.Eq{"id": id}).
		ToSql()
	tag, err := sdb.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	sdb.matcher.Invalidate()
	return nil
}

func (sdb *SharedDB) ListWatchlistEntries(ctx context.Context) ([]models.KeywordWatchlistEntry, error) {
	entries := []models.KeywordWatchlistEntry{}
	sql, args, _ := psql.
		Select("*").
		From("keyword_watchlist").
		OrderBy("id").
		ToSql()
	err := pgxscan.Select(ctx, sdb.db, &entries, sql, args...)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (sdb *SharedDB) GetWatchlistEntry(ctx context.Context, id int) (*models.KeywordWatchlistEntry, error) {
	entry := &models.KeywordWatchlistEntry{}
	sql, args, _ := psql.
		Select("*").
		From("keyword_watchlist").
		Where(sq.Eq{"id": id}).
		ToSql()
	err := pgxscan.Get(ctx, sdb.db, entry, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func activeWatchlistEntries(ctx context.Context, db DBTX) ([]models.KeywordWatchlistEntry, error) {
	entries := []models.KeywordWatchlistEntry{}
	sql, args, _ := psql.
		Select("*").
		From("keyword_watchlist").
		Where(sq.Eq{"is_active": true}).
		OrderBy("id").
		ToSql()
	err := pgxscan.Select(ctx, db, &entries, sql, args...)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// bumpMatchCount counts a hit regardless of whether a flag resulted.
func bumpMatchCount(ctx context.Context, db DBTX, entryID int) error {
	sql, args, _ := psql.
		Update("keyword_watchlist").
		Set("match_count", sq.Expr("match_count + 1")).
		Where(sq.Eq{"id": entryID}).
		ToSql()
	_, err := db.Exec(ctx, sql, args...)
	return err
}
