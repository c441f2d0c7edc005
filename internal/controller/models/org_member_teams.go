package models

import (
	"database/sql"
	"errors"
	"fmt"
)

type ListOrgMemberTeamsV1Opts struct {
	Db *sql.DB

	MemberId string
}

func (o ListOrgMemberTeamsV1Opts) Validate() error {
	errs := []error{}
	if o.Db == nil {
		errs = append(errs, errorNoDatabaseConnection)
	}
	if o.MemberId == "" {
		errs = append(errs, errorInputValidationFailed)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ListOrgMemberTeamsV1 returns the slugs of the teams the member is
// assigned to.
func ListOrgMemberTeamsV1(opts ListOrgMemberTeamsV1Opts) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("models.ListOrgMemberTeamsV1: failed to validate input: %w", err)
	}
	teams := []string{}
	if err := executeMysqlSelects(mysqlQueryInput{
		Db: opts.Db,
		Stmt: `
			SELECT org_teams.slug
				FROM org_member_teams
					JOIN org_teams ON org_teams.id = org_member_teams.team_id
				WHERE org_member_teams.member_id = ?
				ORDER BY org_teams.slug ASC`,
		Args:     []any{opts.MemberId},
		FnSource: "models.ListOrgMemberTeamsV1",
		ProcessRows: func(rows *sql.Rows) error {
			var slug string
			if err := rows.Scan(&slug); err != nil {
				return err
			}
			teams = append(teams, slug)
			return nil
		},
	}); err != nil {
		return nil, err
	}
	return teams, nil
}

type ReplaceOrgMemberTeamsV1Opts struct {
	Db *sql.DB

	OrgId    string
	MemberId string
	Teams    []string
}

func (o ReplaceOrgMemberTeamsV1Opts) Validate() error {
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

// ReplaceOrgMemberTeamsV1 swaps the member's team assignments for the
// given slugs. An unknown slug fails the whole operation with
// ErrorNotFound before any assignment changes.
func ReplaceOrgMemberTeamsV1(opts ReplaceOrgMemberTeamsV1Opts) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("models.ReplaceOrgMemberTeamsV1: failed to validate input: %w", err)
	}
	teamIds := []string{}
	for _, slug := range opts.Teams {
		var teamId string
		if err := executeMysqlSelect(mysqlQueryInput{
			Db: opts.Db,
			Stmt: `
				SELECT id
					FROM org_teams
					WHERE org_id = ?
						AND slug = ?`,
			Args:     []any{opts.OrgId, slug},
			FnSource: "models.ReplaceOrgMemberTeamsV1",
			ProcessRow: func(row *sql.Row) error {
				return row.Scan(&teamId)
			},
		}); err != nil {
			return err
		}
		teamIds = append(teamIds, teamId)
	}
	if err := executeMysqlDelete(mysqlQueryInput{
		Db:       opts.Db,
		Stmt:     `DELETE FROM org_member_teams WHERE member_id = ?`,
		Args:     []any{opts.MemberId},
		FnSource: "models.ReplaceOrgMemberTeamsV1",
	}); err != nil {
		return err
	}
	for _, teamId := range teamIds {
		if err := executeMysqlInsert(mysqlQueryInput{
			Db:           opts.Db,
			Stmt:         `INSERT INTO org_member_teams(member_id, team_id) VALUES (?, ?)`,
			Args:         []any{opts.MemberId, teamId},
			FnSource:     "models.ReplaceOrgMemberTeamsV1",
			RowsAffected: oneRowAffected,
		}); err != nil {
			return err
		}
	}
	return nil
}
