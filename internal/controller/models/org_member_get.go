package models

import (
	"database/sql"
	"errors"
	"fmt"
)

type GetOrgMemberV1Opts struct {
	Db *sql.DB

	OrgId string

	// MemberId when set, identifies the membership row by its `id`.
	// Takes precedence over the UserId field
	MemberId *string

	// UserId when set, identifies the membership by the joined user
	UserId *string
}

func (o GetOrgMemberV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.OrgId == "" {
		errs = append(errs, errorInputValidationFailed)
	}
	if o.MemberId == nil && o.UserId == nil {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func GetOrgMemberV1(opts GetOrgMemberV1Opts) (*OrgMember, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("models.GetOrgMemberV1: failed to validate input: %w", err)
	}
	selectorField := "id"
	selectorValue := ""
	if opts.MemberId != nil {
		selectorValue = *opts.MemberId
	} else if opts.UserId != nil {
		selectorField = "user_id"
		selectorValue = *opts.UserId
	}
	member := OrgMember{}
	if err := executeMysqlSelect(mysqlQueryInput{
		Db: opts.Db,
		Stmt: fmt.Sprintf(`
			SELECT
				id,
				org_id,
				user_id,
				email,
				role,
				invite_status,
				invite_token,
				invited_by,
				joined_at,
				created_at,
				last_updated_at
				FROM org_members
				WHERE org_id = ?
					AND %s = ?`, selectorField),
		Args:     []any{opts.OrgId, selectorValue},
		FnSource: "models.GetOrgMemberV1",
		ProcessRow: func(row *sql.Row) error {
			return row.Scan(
				&member.Id,
				&member.OrgId,
				&member.UserId,
				&member.Email,
				&member.Role,
				&member.InviteStatus,
				&member.InviteToken,
				&member.InvitedBy,
				&member.JoinedAt,
				&member.CreatedAt,
				&member.LastUpdatedAt,
			)
		},
	}); err != nil {
		return nil, err
	}
	return &member, nil
}
