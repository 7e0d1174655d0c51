package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	src Source
	// cost is the bcrypt cost for password hashes
	cost int
}

// NewUserRepository creates a new user repository
func NewUserRepository(src Source) *UserRepository {
	return &UserRepository{src: src, cost: bcrypt.DefaultCost}
}

// WithHashCost returns a copy of r hashing passwords at cost. Tests use
// bcrypt.MinCost to stay fast.
func (r *UserRepository) WithHashCost(cost int) *UserRepository {
	cp := *r
	cp.cost = cost
	return &cp
}

// Create validates req and inserts a new user
func (r *UserRepository) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if err := validate(req.Validate()); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		CreatedOn: time.Now().UTC(),
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), r.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		user.Hash = &h
	}

	_, err := r.src.Querier(ctx).ExecContext(ctx,
		`INSERT INTO users (id, username, hash, created_on) VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.Hash, user.CreatedOn,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: username %q already exists", database.ErrDuplicate, user.Username)
		}
		return nil, fmt.Errorf("%w: create user: %v", database.ErrQuery, err)
	}
	return user, nil
}

// BulkCreate creates one passwordless user per username
func (r *UserRepository) BulkCreate(ctx context.Context, usernames ...string) ([]*model.User, error) {
	users := make([]*model.User, 0, len(usernames))
	for _, name := range usernames {
		u, err := r.Create(ctx, &model.CreateUserRequest{Username: name})
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.src.Querier(ctx).QueryRowContext(ctx,
		`SELECT id, username, hash, created_on FROM users WHERE username = ?`, username)

	var (
		user model.User
		hash sql.NullString
	)
	if err := row.Scan(&user.ID, &user.Username, &hash, &user.CreatedOn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %q", database.ErrNotFound, username)
		}
		return nil, fmt.Errorf("%w: get user: %v", database.ErrQuery, err)
	}
	if hash.Valid {
		user.Hash = &hash.String
	}
	return &user, nil
}

// List returns every user ordered by username
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.src.Querier(ctx).QueryContext(ctx,
		`SELECT id, username, hash, created_on FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", database.ErrQuery, err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var (
			user model.User
			hash sql.NullString
		)
		if err := rows.Scan(&user.ID, &user.Username, &hash, &user.CreatedOn); err != nil {
			return nil, fmt.Errorf("%w: scan user: %v", database.ErrQuery, err)
		}
		if hash.Valid {
			user.Hash = &hash.String
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// Count returns the number of users visible to ctx
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return countRows(ctx, r.src, "users")
}

// Delete removes a user by username
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	res, err := r.src.Querier(ctx).ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("%w: delete user: %v", database.ErrQuery, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: user %q", database.ErrNotFound, username)
	}
	return nil
}

// CheckPassword reports whether password matches the stored hash
func CheckPassword(user *model.User, password string) bool {
	if !user.HasPassword() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*user.Hash), []byte(password)) == nil
}
