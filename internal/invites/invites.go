// Package invites handles organization invites that get parked while
// the invited user completes a required second-factor enrollment, and
// their best-effort resumption afterwards.
package invites

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"vigil/internal/cache"
	"vigil/internal/common"
)

var ErrorMemberNotFound = errors.New("member_not_found")

const pendingInviteTtl = 24 * time.Hour

// PendingInvite is the invite parked against a session until the user
// finishes enrolling a second factor.
type PendingInvite struct {
	OrgId    string `json:"orgId"`
	MemberId string `json:"memberId"`
	UserId   string `json:"userId"`
	Token    string `json:"token"`
}

// MemberStore is the slice of membership storage that resumption
// needs: look up the parked invite's member and accept it.
type MemberStore interface {
	// GetInviteToken returns the current invite token for the member,
	// or ErrorMemberNotFound when the membership no longer exists.
	GetInviteToken(ctx context.Context, orgId, memberId string) (string, error)
	AcceptInvite(ctx context.Context, orgId, memberId, userId string) error
}

// Store parks pending invites against session keys.
type Store struct {
	Cache  cache.Cache
	Prefix string
}

func (s Store) key(sessionKey string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "pending-invite"
	}
	return strings.Join([]string{prefix, sessionKey}, ":")
}

func (s Store) Park(sessionKey string, invite PendingInvite) error {
	data, err := json.Marshal(invite)
	if err != nil {
		return fmt.Errorf("failed to marshal pending invite: %w", err)
	}
	if err := s.Cache.Set(s.key(sessionKey), string(data), pendingInviteTtl); err != nil {
		return fmt.Errorf("failed to park pending invite: %w", err)
	}
	return nil
}

// Peek returns the parked invite for the session, or nil when there
// is none.
func (s Store) Peek(sessionKey string) (*PendingInvite, error) {
	data, err := s.Cache.Get(s.key(sessionKey))
	if err != nil {
		if errors.Is(err, cache.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve pending invite: %w", err)
	}
	var invite PendingInvite
	if err := json.Unmarshal([]byte(data), &invite); err != nil {
		return nil, fmt.Errorf("failed to parse pending invite: %w", err)
	}
	return &invite, nil
}

func (s Store) Drop(sessionKey string) error {
	return s.Cache.Del(s.key(sessionKey))
}

// Resumer continues a parked invite after enrollment. Resumption never
// fails the caller's flow over a stale invite: a membership that was
// deleted or re-invited in the meantime just gets the parked state
// cleaned up.
type Resumer struct {
	Pending     Store
	Members     MemberStore
	ServiceLogs chan<- common.ServiceLog
}

func (r Resumer) Resume(ctx context.Context, sessionKey string) error {
	invite, err := r.Pending.Peek(sessionKey)
	if err != nil {
		return err
	}
	if invite == nil {
		return nil
	}
	token, err := r.Members.GetInviteToken(ctx, invite.OrgId, invite.MemberId)
	if err != nil {
		if errors.Is(err, ErrorMemberNotFound) {
			r.drop(sessionKey)
			return nil
		}
		// transient failure: the parked invite stays for a later retry
		return fmt.Errorf("failed to look up invited member: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(invite.Token)) != 1 {
		// the invite was re-issued since parking, this one is dead
		r.drop(sessionKey)
		return nil
	}
	if err := r.Members.AcceptInvite(ctx, invite.OrgId, invite.MemberId, invite.UserId); err != nil {
		return fmt.Errorf("failed to accept invite: %w", err)
	}
	r.drop(sessionKey)
	return nil
}

func (r Resumer) drop(sessionKey string) {
	if err := r.Pending.Drop(sessionKey); err != nil && r.ServiceLogs != nil {
		r.ServiceLogs <- common.ServiceLogf(common.LogLevelWarn, "failed to drop pending invite for session[%s]: %s", sessionKey, err)
	}
}
