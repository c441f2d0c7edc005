package models

import "time"

const (
	// OrgMemberRoleMember has read access to org resources
	OrgMemberRoleMember = "member"
	// OrgMemberRoleManager can modify org resources and invite members
	OrgMemberRoleManager = "manager"
	// OrgMemberRoleAdmin has full control including member administration
	OrgMemberRoleAdmin = "admin"
)

const (
	// InviteStatusNone marks an ordinary membership with no invite in
	// flight
	InviteStatusNone = "none"
	// InviteStatusRequested marks a self-service join request awaiting
	// approval by an org admin
	InviteStatusRequested = "requested"
	// InviteStatusApproved marks an approved request whose invite was
	// sent but not yet accepted
	InviteStatusApproved = "approved"
	// InviteStatusAccepted marks a completed invite; the member is
	// active
	InviteStatusAccepted = "accepted"
)

type OrgMember struct {
	Id            string     `json:"id"`
	OrgId         string     `json:"orgId"`
	UserId        *string    `json:"userId"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	InviteStatus  string     `json:"inviteStatus"`
	InviteToken   *string    `json:"-"`
	InvitedBy     *string    `json:"invitedBy"`
	JoinedAt      *time.Time `json:"joinedAt"`
	CreatedAt     *time.Time `json:"createdAt"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt"`
}

// ScopesForRole maps a member role to the org scopes it grants.
func ScopesForRole(role string) []string {
	switch role {
	case OrgMemberRoleAdmin:
		return []string{"member:read", "member:write", "member:admin"}
	case OrgMemberRoleManager:
		return []string{"member:read", "member:write"}
	default:
		return []string{"member:read"}
	}
}

// HasScope reports whether the role grants the given scope.
func HasScope(role, scope string) bool {
	for _, granted := range ScopesForRole(role) {
		if granted == scope {
			return true
		}
	}
	return false
}
