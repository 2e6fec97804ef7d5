package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop_service/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewUserRepository(db *sql.DB, logger *logrus.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: logger,
	}
}

const userColumns = `id, email, password_hash, role, first_name, last_name, created_at, updated_at`

func (r *UserRepository) CreateWithCart(ctx context.Context, user *domain.User) (*domain.User, error) {
	err := withTx(ctx, r.db, r.log, func(tx *sql.Tx) error {
		query := `
			INSERT INTO users (email, password_hash, role, first_name, last_name)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.Role, user.FirstName, user.LastName).
			Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				r.log.Warnf("Repository: Attempted to register duplicate email: %s", user.Email)
				return domain.NewConflictError("User already exists with this email")
			}
			r.log.Errorf("Repository: Failed to insert user %s: %v", user.Email, err)
			return fmt.Errorf("could not create user: %w", err)
		}

		if _, err = tx.ExecContext(ctx, `INSERT INTO carts (user_id) VALUES ($1)`, user.ID); err != nil {
			r.log.Errorf("Repository: Failed to create cart for user %s: %v", user.ID, err)
			return fmt.Errorf("could not create cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("Repository: User created with ID %s and an empty cart", user.ID)
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugf("Repository: User with email %s not found", email)
			return nil, domain.NewNotFoundError("User not found")
		}
		r.log.Errorf("Repository: Failed to get user by email %s: %v", email, err)
		return nil, fmt.Errorf("could not get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugf("Repository: User with ID %s not found", id)
			return nil, domain.NewNotFoundError("User not found")
		}
		r.log.Errorf("Repository: Failed to get user by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
