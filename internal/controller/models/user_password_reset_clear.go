package models

import (
	"database/sql"
	"errors"
	"fmt"
)

type ClearUserPasswordResetsV1Opts struct {
	Db *sql.DB

	UserId string
}

func (o ClearUserPasswordResetsV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.UserId == "" {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ClearUserPasswordResetsV1 invalidates any in-flight lost-password
// requests for the user. Zero rows is a valid outcome.
func ClearUserPasswordResetsV1(opts ClearUserPasswordResetsV1Opts) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("models.ClearUserPasswordResetsV1: failed to validate input: %w", err)
	}
	return executeMysqlDelete(mysqlQueryInput{
		Db: opts.Db,
		Stmt: `
			DELETE FROM user_password_resets
				WHERE user_id = ?
					AND status = 'pending'`,
		Args:     []any{opts.UserId},
		FnSource: "models.ClearUserPasswordResetsV1",
	})
}
