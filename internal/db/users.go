package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"golang.org/x/crypto/bcrypt"

	"github.com/civitashq/trustengine/internal/models"
	"github.com/civitashq/trustengine/internal/utils"
)

func (sdb *SharedDB) CreateUser(ctx context.Context, user *models.User, passwd string) error {
	if !utils.ValidateEmail(user.Email) {
		return models.ErrInvalidFormat
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passwd), sdb.bcryptCost)
	if err != nil {
		return err
	}

	return execTx(ctx, sdb.db, func(ctx context.Context, tx DBTX) error {
		sql, args, _ := psql.
			Insert("users").
			Columns("name", "email", "passwd_hash").
			Values(user.Name, user.Email, hash).
			Suffix("RETURNING id, role, trust_score, created_at").
			ToSql()

		row := tx.QueryRow(ctx, sql, args...)
		err := row.Scan(&user.ID, &user.Role, &user.TrustScore, &user.CreatedAt)
		if isUniqueViolation(err, "users_email_key") {
			return models.ErrEmailAlreadyUsed
		}
		if err != nil {
			return err
		}

		// First human user becomes the admin.
		sql, args, _ = psql.
			Select("COUNT(*)").
			From("users").
			Where(sq.Eq{"system": false}).
			ToSql()
		c := 0
		row = tx.QueryRow(ctx, sql, args...)
		if err := row.Scan(&c); err != nil {
			return err
		}
		if c == 1 {
			sql, args, _ = psql.
				Update("users").
				Set("role", models.RoleAdmin).
				Where(sq.Eq{"id": user.ID}).
				ToSql()
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return err
			}
			user.Role = models.RoleAdmin
		}
		return nil
	})
}

// Login verifies credentials, then gates on CheckBanned before any
// token is issued. Banned users get a BannedError carrying the
// penalty, so the HTTP layer can surface reason and expiry.
func (sdb *SharedDB) Login(ctx context.Context, email, passwd string) (token string, err error) {
	sql, args, _ := psql.
		Select("id", "passwd_hash").
		From("users").
		Where(sq.Eq{"email": email, "system": false}).
		ToSql()

	var data struct {
		ID         int
		PasswdHash string
	}
	err = pgxscan.Get(ctx, sdb.db, &data, sql, args...)
	if pgxscan.NotFound(err) {
		return "", models.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(data.PasswdHash), []byte(passwd)); err != nil {
		return "", err
	}

	ban, err := sdb.CheckBanned(ctx, data.ID)
	if err != nil {
		return "", err
	}
	if ban != nil {
		return "", &models.BannedError{Penalty: ban}
	}

	token = utils.GenToken(TokenLen)
	sql, args, _ = psql.
		Insert("tokens").
		Columns("user_id", "token").
		Values(data.ID, token).
		ToSql()

	if _, err := sdb.db.Exec(ctx, sql, args...); err != nil {
		return "", err
	}
	return token, nil
}

func (sdb *SharedDB) Signout(ctx context.Context, token string) error {
	_, err := sdb.db.Exec(ctx, "DELETE FROM tokens WHERE tokens.token = $1", token)
	return err
}

type UserH struct {
	id       int
	role     string
	sharedDB DBTX
}

func (sdb *SharedDB) GetUserH(ctx context.Context, token string) (UserH, error) {
	sql, args, _ := psql.
		Select("users.id", "users.role").
		From("tokens").
		Join("users ON users.id = tokens.user_id").
		Where(sq.Eq{"token": token}).
		ToSql()

	uH := UserH{sharedDB: sdb.db}
	row := sdb.db.QueryRow(ctx, sql, args...)
	err := row.Scan(&uH.id, &uH.role)
	if err != nil {
		return uH, models.ErrNotFound
	}
	return uH, nil
}

func (h UserH) ID() int {
	return h.id
}
func (h UserH) isAdmin() bool {
	return h.role == models.RoleAdmin
}
func (h UserH) Read(ctx context.Context) (*models.User, error) {
	return getUser(ctx, h.sharedDB, h.id)
}

func getUser(ctx context.Context, db DBTX, id int) (*models.User, error) {
	user := &models.User{}
	sql, args, _ := psql.
		Select(
			"id", "name", "email", "role", "system",
			"trust_score", "total_flags_received", "valid_flags_received",
			"flags_submitted_validated", "approved_comments_count",
			"requires_comment_approval", "created_at",
		).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()

	err := pgxscan.Get(ctx, db, user, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (sdb *SharedDB) GetUser(ctx context.Context, id int) (*models.User, error) {
	return getUser(ctx, sdb.db, id)
}
