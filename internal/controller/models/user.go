package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type User struct {
	Id              string     `json:"id"`
	Email           string     `json:"email"`
	PhoneNumber     *string    `json:"phoneNumber"`
	PasswordHash    *string    `json:"-"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt"`
	CreatedAt       *time.Time `json:"createdAt"`
	LastUpdatedAt   *time.Time `json:"lastUpdatedAt"`
}

type GetUserV1Opts struct {
	Db *sql.DB

	// Id when set, identifies the user by their `id`. Takes precedence
	// over the Email field
	Id *string

	// Email when set, identifies the user by their `email`
	Email *string
}

func (o GetUserV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.Id == nil && o.Email == nil {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func GetUserV1(opts GetUserV1Opts) (*User, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("models.GetUserV1: failed to validate input: %w", err)
	}
	selectorField := "id"
	selectorValue := ""
	if opts.Id != nil {
		selectorValue = *opts.Id
	} else if opts.Email != nil {
		selectorField = "email"
		selectorValue = *opts.Email
	}
	user := User{}
	if err := executeMysqlSelect(mysqlQueryInput{
		Db: opts.Db,
		Stmt: fmt.Sprintf(`
			SELECT
				id,
				email,
				phone_number,
				password_hash,
				email_verified_at,
				created_at,
				last_updated_at
				FROM users
				WHERE %s = ?`, selectorField),
		Args:     []any{selectorValue},
		FnSource: "models.GetUserV1",
		ProcessRow: func(row *sql.Row) error {
			return row.Scan(
				&user.Id,
				&user.Email,
				&user.PhoneNumber,
				&user.PasswordHash,
				&user.EmailVerifiedAt,
				&user.CreatedAt,
				&user.LastUpdatedAt,
			)
		},
	}); err != nil {
		return nil, err
	}
	return &user, nil
}
