package models

import (
	"database/sql"
	"errors"
	"fmt"
)

type UpdateOrgMemberRoleV1Opts struct {
	Db *sql.DB

	OrgId    string
	MemberId string
	Role     string
}

func (o UpdateOrgMemberRoleV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.OrgId == "" || o.MemberId == "" {
		errs = append(errs, errorInputValidationFailed)
	}
	switch o.Role {
	case OrgMemberRoleMember, OrgMemberRoleManager, OrgMemberRoleAdmin:
	default:
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func UpdateOrgMemberRoleV1(opts UpdateOrgMemberRoleV1Opts) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("models.UpdateOrgMemberRoleV1: failed to validate input: %w", err)
	}
	if err := executeMysqlUpdate(mysqlQueryInput{
		Db: opts.Db,
		Stmt: `
			UPDATE org_members SET
				role = ?
				WHERE org_id = ?
					AND id = ?`,
		Args:         []any{opts.Role, opts.OrgId, opts.MemberId},
		FnSource:     "models.UpdateOrgMemberRoleV1",
		RowsAffected: atMostNRowsAffected(1),
	}); err != nil {
		return err
	}
	return nil
}
