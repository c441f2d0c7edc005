package models

import (
	"database/sql"
	"errors"
	"fmt"
	"vigil/internal/common"
)

const inviteTokenLength = 48

type ApproveOrgInviteRequestV1Opts struct {
	Db *sql.DB

	OrgId      string
	MemberId   string
	ApproverId string
}

func (o ApproveOrgInviteRequestV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.OrgId == "" || o.MemberId == "" || o.ApproverId == "" {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ApproveOrgInviteRequestV1 converts a pending join request into a
// sent invite: a fresh token is minted and the approver is recorded.
// Returns ErrorNotFound when the membership is not a pending request.
func ApproveOrgInviteRequestV1(opts ApproveOrgInviteRequestV1Opts) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", fmt.Errorf("models.ApproveOrgInviteRequestV1: failed to validate input: %w", err)
	}
	token, err := common.GenerateRandomString(inviteTokenLength)
	if err != nil {
		return "", fmt.Errorf("models.ApproveOrgInviteRequestV1: failed to generate invite token: %w", err)
	}
	if err := executeMysqlUpdate(mysqlQueryInput{
		Db: opts.Db,
		Stmt: `
			UPDATE org_members SET
				invite_status = ?,
				invite_token = ?,
				invited_by = ?
				WHERE org_id = ?
					AND id = ?
					AND invite_status = ?`,
		Args: []any{
			InviteStatusApproved,
			token,
			opts.ApproverId,
			opts.OrgId,
			opts.MemberId,
			InviteStatusRequested,
		},
		FnSource:     "models.ApproveOrgInviteRequestV1",
		RowsAffected: oneRowAffected,
	}); err != nil {
		if errors.Is(err, ErrorRowsAffectedCheckFailed) {
			return "", fmt.Errorf("models.ApproveOrgInviteRequestV1: %w", ErrorNotFound)
		}
		return "", err
	}
	return token, nil
}

type DeleteOrgInviteRequestV1Opts struct {
	Db *sql.DB

	OrgId    string
	MemberId string
}

func (o DeleteOrgInviteRequestV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.OrgId == "" || o.MemberId == "" {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// DeleteOrgInviteRequestV1 rejects a join request by removing the
// membership row. Only rows still in a request or approved state can
// be removed through this path.
func DeleteOrgInviteRequestV1(opts DeleteOrgInviteRequestV1Opts) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("models.DeleteOrgInviteRequestV1: failed to validate input: %w", err)
	}
	if err := executeMysqlDelete(mysqlQueryInput{
		Db: opts.Db,
		Stmt: `
			DELETE FROM org_members
				WHERE org_id = ?
					AND id = ?
					AND invite_status IN (?, ?)`,
		Args: []any{
			opts.OrgId,
			opts.MemberId,
			InviteStatusRequested,
			InviteStatusApproved,
		},
		FnSource:     "models.DeleteOrgInviteRequestV1",
		RowsAffected: oneRowAffected,
	}); err != nil {
		if errors.Is(err, ErrorRowsAffectedCheckFailed) {
			return fmt.Errorf("models.DeleteOrgInviteRequestV1: %w", ErrorNotFound)
		}
		return err
	}
	return nil
}

type AcceptOrgInviteV1Opts struct {
	Db *sql.DB

	OrgId    string
	MemberId string
	UserId   string
}

func (o AcceptOrgInviteV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.OrgId == "" || o.MemberId == "" || o.UserId == "" {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// AcceptOrgInviteV1 activates an approved invite: the accepting user
// is bound to the membership and the invite token is cleared.
func AcceptOrgInviteV1(opts AcceptOrgInviteV1Opts) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("models.AcceptOrgInviteV1: failed to validate input: %w", err)
	}
	if err := executeMysqlUpdate(mysqlQueryInput{
		Db: opts.Db,
		Stmt: `
			UPDATE org_members SET
				invite_status = ?,
				invite_token = NULL,
				user_id = ?,
				joined_at = NOW()
				WHERE org_id = ?
					AND id = ?
					AND invite_status = ?`,
		Args: []any{
			InviteStatusAccepted,
			opts.UserId,
			opts.OrgId,
			opts.MemberId,
			InviteStatusApproved,
		},
		FnSource:     "models.AcceptOrgInviteV1",
		RowsAffected: oneRowAffected,
	}); err != nil {
		if errors.Is(err, ErrorRowsAffectedCheckFailed) {
			return fmt.Errorf("models.AcceptOrgInviteV1: %w", ErrorNotFound)
		}
		return err
	}
	return nil
}
