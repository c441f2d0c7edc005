package controller

import (
	"fmt"
	"net/http"
	"time"
)

type OrgMember struct {
	Id           string     `json:"id"`
	OrgId        string     `json:"orgId"`
	UserId       *string    `json:"userId"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	InviteStatus string     `json:"inviteStatus"`
	InvitedBy    *string    `json:"invitedBy"`
	JoinedAt     *time.Time `json:"joinedAt"`
}

type OrgInviteRequest struct {
	Member OrgMember `json:"member"`
	Teams  []string  `json:"teams"`
}

// GetOrgInviteRequestV1 retrieves an invite request's membership
// record and suggested team assignments.
func (c Client) GetOrgInviteRequestV1(orgId, memberId string) (*OrgInviteRequest, error) {
	var output OrgInviteRequest
	path := fmt.Sprintf("/api/v1/orgs/%s/invite-requests/%s", orgId, memberId)
	if _, err := c.doRequest(http.MethodGet, path, nil, &output); err != nil {
		return nil, err
	}
	return &output, nil
}

type UpdateOrgInviteRequestV1Input struct {
	Role    *string  `json:"role"`
	Teams   []string `json:"teams"`
	Approve bool     `json:"approve"`
}

// UpdateOrgInviteRequestV1 partially updates an invite request's
// suggested role and teams, and optionally approves it.
func (c Client) UpdateOrgInviteRequestV1(orgId, memberId string, input UpdateOrgInviteRequestV1Input) (*OrgInviteRequest, error) {
	var output OrgInviteRequest
	path := fmt.Sprintf("/api/v1/orgs/%s/invite-requests/%s", orgId, memberId)
	if _, err := c.doRequest(http.MethodPut, path, input, &output); err != nil {
		return nil, err
	}
	return &output, nil
}

// DeleteOrgInviteRequestV1 rejects an invite request.
func (c Client) DeleteOrgInviteRequestV1(orgId, memberId string) error {
	path := fmt.Sprintf("/api/v1/orgs/%s/invite-requests/%s", orgId, memberId)
	if _, err := c.doRequest(http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	return nil
}
