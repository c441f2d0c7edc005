package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type CreateUserAuthenticatorV1Opts struct {
	Db *sql.DB

	Id          string
	UserId      string
	Kind        string
	Secret      *string
	PhoneNumber *string
	Credential  []byte
	DeviceName  *string
	VerifiedAt  *time.Time
}

func (o CreateUserAuthenticatorV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.Id == "" || o.UserId == "" || o.Kind == "" {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func CreateUserAuthenticatorV1(opts CreateUserAuthenticatorV1Opts) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("models.CreateUserAuthenticatorV1: failed to validate input: %w", err)
	}
	return executeMysqlInsert(mysqlQueryInput{
		Db: opts.Db,
		Stmt: `
			INSERT INTO user_authenticators(
				id,
				user_id,
				kind,
				secret,
				phone_number,
				credential,
				device_name,
				verified_at
			) VALUES (
				?,
				?,
				?,
				?,
				?,
				?,
				?,
				?
			)`,
		Args: []any{
			opts.Id,
			opts.UserId,
			opts.Kind,
			opts.Secret,
			opts.PhoneNumber,
			opts.Credential,
			opts.DeviceName,
			opts.VerifiedAt,
		},
		FnSource:     "models.CreateUserAuthenticatorV1",
		RowsAffected: oneRowAffected,
	})
}
