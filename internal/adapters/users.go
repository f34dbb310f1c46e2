package adapters

import (
	"context"
	"errors"
	"unicode"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/pgxscan"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
	"gitlab.com/contesa/contesa/internal/utils"
)

const tokenLen = 64 // bytes

// UserStore is the pg-backed user repository plus session auth. It satisfies
// domain.UserRepo; signup/login/token lookup are used by the HTTP layer.
type UserStore struct {
	db         DBTX
	bcryptCost int
}

func NewUserStore(db DBTX, bcryptCost int) *UserStore {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost + 2
	}
	return &UserStore{db: db, bcryptCost: bcryptCost}
}

const userColumns = "id, name, email, role, created_at"

func (s *UserStore) User(ctx context.Context, id int) (*models.User, error) {
	sql, args, _ := psql.
		Select(userColumns).
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()

	user := &models.User{}
	err := pgxscan.Get(ctx, s.db, user, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserStore) UpdateUserRole(ctx context.Context, id int, role models.Role) error {
	sql, args, _ := psql.
		Update("users").
		Set("role", role).
		Where(sq.Eq{"id": id}).
		ToSql()

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateUser registers a user. The first registered user becomes the owner;
// everyone else starts as a plain user.
func (s *UserStore) CreateUser(ctx context.Context, user *models.User, passwd string) error {
	if !utils.ValidateEmail(user.Email) {
		return models.ErrInvalidFormat
	}
	if !validatePasswd(passwd) {
		return models.ErrWeakPasswd
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passwd), s.bcryptCost)
	if err != nil {
		return err
	}

	return execTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		sql, args, _ := psql.
			Insert("users").
			Columns("name", "email", "passwd_hash", "role").
			Values(user.Name, user.Email, hash, models.RoleUser).
			Suffix("RETURNING id, role, created_at").
			ToSql()

		row := tx.QueryRow(ctx, sql, args...)
		err := row.Scan(&user.ID, &user.Role, &user.CreatedAt)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key" {
			return models.ErrEmailAlreadyUsed
		} else if err != nil {
			return err
		}

		sql, args, _ = psql.Select("COUNT(*)").From("users").ToSql()
		c := 0
		row = tx.QueryRow(ctx, sql, args...)
		if err := row.Scan(&c); err != nil {
			return err
		}
		if c == 1 {
			sql, args, _ = psql.
				Update("users").
				Set("role", models.RoleOwner).
				Where(sq.Eq{"id": user.ID}).
				ToSql()
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return err
			}
			user.Role = models.RoleOwner
		}
		return nil
	})
}

func (s *UserStore) Login(ctx context.Context, email, passwd string) (string, error) {
	sql, args, _ := psql.
		Select("id", "passwd_hash").
		From("users").
		Where(sq.Eq{"email": email}).
		ToSql()

	var data struct {
		ID         int
		PasswdHash string
	}
	err := pgxscan.Get(ctx, s.db, &data, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(data.PasswdHash), []byte(passwd)); err != nil {
		return "", err
	}

	token := utils.GenToken(tokenLen)
	sql, args, _ = psql.
		Insert("tokens").
		Columns("user_id", "token").
		Values(data.ID, token).
		ToSql()
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserStore) Signout(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, "DELETE FROM tokens WHERE tokens.token = $1", token)
	return err
}

func (s *UserStore) UserByToken(ctx context.Context, token string) (*models.User, error) {
	sql, args, _ := psql.
		Select("users.id", "users.name", "users.email", "users.role", "users.created_at").
		From("users").
		Join("tokens ON tokens.user_id = users.id").
		Where(sq.Eq{"tokens.token": token}).
		ToSql()

	user := &models.User{}
	err := pgxscan.Get(ctx, s.db, user, sql, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func validatePasswd(passwd string) bool {
	if len(passwd) < 8 || len(passwd) > 64 {
		return false
	}
	containsLetter := false
	containsNumber := false
	for _, r := range passwd {
		if !unicode.IsPrint(r) {
			return false
		}
		if unicode.IsLetter(r) {
			containsLetter = true
		} else if unicode.IsNumber(r) {
			containsNumber = true
		}
	}
	return containsLetter && containsNumber
}
