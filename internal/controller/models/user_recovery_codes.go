package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"vigil/internal/auth"
)

type ReplaceUserRecoveryCodesV1Opts struct {
	Db *sql.DB

	UserId string
	Codes  []string
}

func (o ReplaceUserRecoveryCodesV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.UserId == "" || len(o.Codes) == 0 {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ReplaceUserRecoveryCodesV1 drops the user's existing backup codes
// and stores hashes of the new set. Plaintext codes never hit the
// database.
func ReplaceUserRecoveryCodesV1(opts ReplaceUserRecoveryCodesV1Opts) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("models.ReplaceUserRecoveryCodesV1: failed to validate input: %w", err)
	}
	if err := executeMysqlDelete(mysqlQueryInput{
		Db:       opts.Db,
		Stmt:     `DELETE FROM user_recovery_codes WHERE user_id = ?`,
		Args:     []any{opts.UserId},
		FnSource: "models.ReplaceUserRecoveryCodesV1",
	}); err != nil {
		return err
	}
	placeholders := []string{}
	args := []any{}
	for _, code := range opts.Codes {
		codeHash, err := auth.HashPassword(code)
		if err != nil {
			return fmt.Errorf("models.ReplaceUserRecoveryCodesV1: failed to hash code: %w", err)
		}
		placeholders = append(placeholders, "(?, ?)")
		args = append(args, opts.UserId, codeHash)
	}
	return executeMysqlInsert(mysqlQueryInput{
		Db: opts.Db,
		Stmt: fmt.Sprintf(
			`INSERT INTO user_recovery_codes(user_id, code_hash) VALUES %s`,
			strings.Join(placeholders, ", "),
		),
		Args:         args,
		FnSource:     "models.ReplaceUserRecoveryCodesV1",
		RowsAffected: atLeastNRowsAffected(int64(len(opts.Codes))),
	})
}
