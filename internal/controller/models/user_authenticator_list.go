package models

import (
	"database/sql"
	"errors"
	"fmt"
)

type ListUserAuthenticatorsV1Opts struct {
	Db *sql.DB

	UserId string
}

func (o ListUserAuthenticatorsV1Opts) Validate() error {
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

func ListUserAuthenticatorsV1(opts ListUserAuthenticatorsV1Opts) (UserAuthenticators, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("models.ListUserAuthenticatorsV1: failed to validate input: %w", err)
	}
	output := UserAuthenticators{}
	if err := executeMysqlSelects(mysqlQueryInput{
		Db: opts.Db,
		Stmt: `
			SELECT
				id,
				user_id,
				kind,
				secret,
				phone_number,
				credential,
				device_name,
				created_at,
				verified_at
				FROM user_authenticators
				WHERE user_id = ?
					AND verified_at IS NOT NULL
				ORDER BY created_at ASC`,
		Args:     []any{opts.UserId},
		FnSource: "models.ListUserAuthenticatorsV1",
		ProcessRows: func(rows *sql.Rows) error {
			authenticator := UserAuthenticator{}
			if err := rows.Scan(
				&authenticator.Id,
				&authenticator.UserId,
				&authenticator.Kind,
				&authenticator.Secret,
				&authenticator.PhoneNumber,
				&authenticator.Credential,
				&authenticator.DeviceName,
				&authenticator.CreatedAt,
				&authenticator.VerifiedAt,
			); err != nil {
				return err
			}
			output = append(output, authenticator)
			return nil
		},
	}); err != nil {
		return nil, err
	}
	return output, nil
}
