package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Org struct {
	Id            string     `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	CreatedAt     *time.Time `json:"createdAt"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt"`
}

type GetOrgV1Opts struct {
	Db *sql.DB

	// Id when set, identifies the org by its `id`. Takes precedence
	// over the Code field
	Id *string

	// Code when set, identifies the org by its `code`
	Code *string
}

func (o GetOrgV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.Id == nil && o.Code == nil {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func GetOrgV1(opts GetOrgV1Opts) (*Org, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("models.GetOrgV1: failed to validate input: %w", err)
	}
	selectorField := "id"
	selectorValue := ""
	if opts.Id != nil {
		selectorValue = *opts.Id
	} else if opts.Code != nil {
		selectorField = "code"
		selectorValue = *opts.Code
	}
	org := Org{}
	if err := executeMysqlSelect(mysqlQueryInput{
		Db: opts.Db,
		Stmt: fmt.Sprintf(`
			SELECT
				id,
				code,
				name,
				created_at,
				last_updated_at
				FROM orgs
				WHERE %s = ?`, selectorField),
		Args:     []any{selectorValue},
		FnSource: "models.GetOrgV1",
		ProcessRow: func(row *sql.Row) error {
			return row.Scan(
				&org.Id,
				&org.Code,
				&org.Name,
				&org.CreatedAt,
				&org.LastUpdatedAt,
			)
		},
	}); err != nil {
		return nil, err
	}
	return &org, nil
}
