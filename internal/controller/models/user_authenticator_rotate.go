package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type RotateUserAuthenticatorV1Opts struct {
	Db *sql.DB

	Id          string
	UserId      string
	Secret      *string
	PhoneNumber *string
	Credential  []byte
	DeviceName  *string
	VerifiedAt  *time.Time
}

func (o RotateUserAuthenticatorV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.Id == "" || o.UserId == "" {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// RotateUserAuthenticatorV1 swaps the secret material of an existing
// enrollment. The row keeps its id so references to the authenticator
// stay valid.
func RotateUserAuthenticatorV1(opts RotateUserAuthenticatorV1Opts) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("models.RotateUserAuthenticatorV1: failed to validate input: %w", err)
	}
	return executeMysqlUpdate(mysqlQueryInput{
		Db: opts.Db,
		Stmt: `
			UPDATE user_authenticators SET
				secret = ?,
				phone_number = ?,
				credential = ?,
				device_name = ?,
				verified_at = ?
				WHERE id = ?
					AND user_id = ?`,
		Args: []any{
			opts.Secret,
			opts.PhoneNumber,
			opts.Credential,
			opts.DeviceName,
			opts.VerifiedAt,
			opts.Id,
			opts.UserId,
		},
		FnSource:     "models.RotateUserAuthenticatorV1",
		RowsAffected: oneRowAffected,
	})
}
