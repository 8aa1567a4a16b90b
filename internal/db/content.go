package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"

	"github.com/civitashq/trustengine/internal/models"
)

// ModeratableContent is the capability surface the engine needs from
// each content kind. One implementation exists per content type,
// selected through the registry instead of type switches.
type ModeratableContent interface {
	GetAuthor(ctx context.Context, db DBTX, id int) (int, error)
	GetPreview(ctx context.Context, db DBTX, id int) (*models.ContentPreview, error)
	Lock(ctx context.Context, db DBTX, id int) error
	SoftDelete(ctx context.Context, db DBTX, id, deletedBy int, reason string) (authorID int, err error)
	SetHidden(ctx context.Context, db DBTX, id int, hidden bool, at time.Time) error
	SetFlagCount(ctx context.Context, db DBTX, id, n int) error
}

type contentRegistry struct {
	byType map[models.ContentType]ModeratableContent
}

func newContentRegistry() *contentRegistry {
	return &contentRegistry{byType: map[models.ContentType]ModeratableContent{
		models.ContentTypeComment: commentContent{},
		models.ContentTypeIdea:    ideaContent{},
	}}
}

func (r *contentRegistry) For(t models.ContentType) (ModeratableContent, error) {
	c, ok := r.byType[t]
	if !ok {
		return nil, models.ErrInvalidFormat
	}
	return c, nil
}

type commentContent struct{}

func (commentContent) GetAuthor(ctx context.Context, db DBTX, id int) (int, error) {
	return contentAuthor(ctx, db, "comments", id)
}
func (commentContent) GetPreview(ctx context.Context, db DBTX, id int) (*models.ContentPreview, error) {
	return contentPreview(ctx, db, "comments", "body", id)
}
func (commentContent) Lock(ctx context.Context, db DBTX, id int) error {
	return contentLock(ctx, db, "comments", id)
}
func (commentContent) SoftDelete(ctx context.Context, db DBTX, id, deletedBy int, reason string) (int, error) {
	return contentSoftDelete(ctx, db, "comments", id, deletedBy, reason)
}
func (commentContent) SetHidden(ctx context.Context, db DBTX, id int, hidden bool, at time.Time) error {
	return contentSetHidden(ctx, db, "comments", id, hidden, at)
}
func (commentContent) SetFlagCount(ctx context.Context, db DBTX, id, n int) error {
	return contentSetFlagCount(ctx, db, "comments", id, n)
}

type ideaContent struct{}

func (ideaContent) GetAuthor(ctx context.Context, db DBTX, id int) (int, error) {
	return contentAuthor(ctx, db, "ideas", id)
}
func (ideaContent) GetPreview(ctx context.Context, db DBTX, id int) (*models.ContentPreview, error) {
	return contentPreview(ctx, db, "ideas", "title", id)
}
func (ideaContent) Lock(ctx context.Context, db DBTX, id int) error {
	return contentLock(ctx, db, "ideas", id)
}
func (ideaContent) SoftDelete(ctx context.Context, db DBTX, id, deletedBy int, reason string) (int, error) {
	return contentSoftDelete(ctx, db, "ideas", id, deletedBy, reason)
}
func (ideaContent) SetHidden(ctx context.Context, db DBTX, id int, hidden bool, at time.Time) error {
	return contentSetHidden(ctx, db, "ideas", id, hidden, at)
}
func (ideaContent) SetFlagCount(ctx context.Context, db DBTX, id, n int) error {
	return contentSetFlagCount(ctx, db, "ideas", id, n)
}

func contentAuthor(ctx context.Context, db DBTX, table string, id int) (int, error) {
	sql, args, _ := psql.
		Select("author_id").
		From(table).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()

	var authorID int
	err := pgxscan.Get(ctx, db, &authorID, sql, args...)
	if pgxscan.NotFound(err) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return authorID, nil
}

// contentLock takes the row lock that serializes concurrent visibility
// recomputes over one content item. Soft-deleted rows still lock.
func contentLock(ctx context.Context, db DBTX, table string, id int) error {
	sql, args, _ := psql.
		Select("id").
		From(table).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()

	var locked int
	err := pgxscan.Get(ctx, db, &locked, sql, args...)
	if pgxscan.NotFound(err) {
		return models.ErrNotFound
	}
	return err
}

func contentPreview(ctx context.Context, db DBTX, table, excerptCol string, id int) (*models.ContentPreview, error) {
	sql, args, _ := psql.
		Select(
			"author_id",
			"LEFT("+excerptCol+", 200) AS excerpt",
			"flag_count",
			"is_hidden",
			"created_at",
		).
		From(table).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()

	preview := &models.ContentPreview{}
	err := pgxscan.Get(ctx, db, preview, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return preview, nil
}

func contentSoftDelete(ctx context.Context, db DBTX, table string, id, deletedBy int, reason string) (int, error) {
	sql, args, _ := psql.
		Update(table).
		Set("deleted_at", sq.Expr("now()")).
		Set("deleted_by", deletedBy).
		Set("delete_reason", reason).
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		Suffix("RETURNING author_id").
		ToSql()

	var authorID int
	err := pgxscan.Get(ctx, db, &authorID, sql, args...)
	if pgxscan.NotFound(err) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return authorID, nil
}

func contentSetHidden(ctx context.Context, db DBTX, table string, id int, hidden bool, at time.Time) error {
	update := psql.Update(table).Where(sq.Eq{"id": id})
	if hidden {
		update = update.Set("is_hidden", true).Set("hidden_at", at)
	} else {
		update = update.Set("is_hidden", false).Set("hidden_at", nil)
	}
	sql, args, _ := update.ToSql()
	_, err := db.Exec(ctx, sql, args...)
	return err
}

func contentSetFlagCount(ctx context.Context, db DBTX, table string, id, n int) error {
	sql, args, _ := psql.
		Update(table).
		Set("flag_count", n).
		Where(sq.Eq{"id": id}).
		ToSql()
	_, err := db.Exec(ctx, sql, args...)
	return err
}

// CreateIdea inserts a new idea. The caller is expected to run the
// watchlist scan afterwards, before the idea is served publicly.
func (sdb *SharedDB) CreateIdea(ctx context.Context, idea *models.Idea) error {
	sql, args, _ := psql.
		Insert("ideas").
		Columns("author_id", "title", "body").
		Values(idea.AuthorID, idea.Title, idea.Body).
		Suffix("RETURNING id, created_at").
		ToSql()

	row := sdb.db.QueryRow(ctx, sql, args...)
	return row.Scan(&idea.ID, &idea.CreatedAt)
}

func (sdb *SharedDB) CreateComment(ctx context.Context, comment *models.Comment) error {
	sql, args, _ := psql.
		Insert("comments").
		Columns("idea_id", "author_id", "body").
		Values(comment.IdeaID, comment.AuthorID, comment.Body).
		Suffix("RETURNING id, created_at").
		ToSql()

	row := sdb.db.QueryRow(ctx, sql, args...)
	return row.Scan(&comment.ID, &comment.CreatedAt)
}

func (sdb *SharedDB) GetIdea(ctx context.Context, id int) (*models.Idea, error) {
	idea := &models.Idea{}
	sql, args, _ := psql.
		Select("*").
		From("ideas").
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	err := pgxscan.Get(ctx, sdb.db, idea, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return idea, nil
}

func (sdb *SharedDB) GetComment(ctx context.Context, id int) (*models.Comment, error) {
	comment := &models.Comment{}
	sql, args, _ := psql.
		Select("*").
		From("comments").
		Where(sq.Eq{"id": id, "deleted_at": nil}).
		ToSql()
	err := pgxscan.Get(ctx, sdb.db, comment, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}
