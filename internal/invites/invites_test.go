package invites

import (
	"context"
	"errors"
	"testing"
	"vigil/internal/cache"
)

type fakeMembers struct {
	token     string
	missing   bool
	tokenErr  error
	acceptErr error
	accepted  []string
}

func (m *fakeMembers) GetInviteToken(ctx context.Context, orgId, memberId string) (string, error) {
	if m.tokenErr != nil {
		return "", m.tokenErr
	}
	if m.missing {
		return "", ErrorMemberNotFound
	}
	return m.token, nil
}

func (m *fakeMembers) AcceptInvite(ctx context.Context, orgId, memberId, userId string) error {
	if m.acceptErr != nil {
		return m.acceptErr
	}
	m.accepted = append(m.accepted, memberId)
	return nil
}

func newResumer(members *fakeMembers) (Resumer, Store) {
	pending := Store{Cache: cache.NewMemory()}
	return Resumer{Pending: pending, Members: members}, pending
}

func TestResumeAcceptsValidInvite(t *testing.T) {
	members := &fakeMembers{token: "token-1"}
	resumer, pending := newResumer(members)
	pending.Park("session-1", PendingInvite{
		OrgId:    "org-1",
		MemberId: "member-1",
		UserId:   "user-1",
		Token:    "token-1",
	})
	if err := resumer.Resume(context.Background(), "session-1"); err != nil {
		t.Fatalf("failed to resume: %s", err)
	}
	if len(members.accepted) != 1 || members.accepted[0] != "member-1" {
		t.Error("expected the invite to be accepted")
	}
	invite, err := pending.Peek("session-1")
	if err != nil {
		t.Fatalf("failed to peek: %s", err)
	}
	if invite != nil {
		t.Error("expected the parked invite to be dropped")
	}
}

func TestResumeWithoutParkedInvite(t *testing.T) {
	members := &fakeMembers{token: "token-1"}
	resumer, _ := newResumer(members)
	if err := resumer.Resume(context.Background(), "session-1"); err != nil {
		t.Fatalf("expected a no-op, got %s", err)
	}
	if len(members.accepted) != 0 {
		t.Error("expected no acceptance")
	}
}

func TestResumeCleansUpDeletedMember(t *testing.T) {
	members := &fakeMembers{missing: true}
	resumer, pending := newResumer(members)
	pending.Park("session-1", PendingInvite{OrgId: "org-1", MemberId: "member-1", Token: "token-1"})
	if err := resumer.Resume(context.Background(), "session-1"); err != nil {
		t.Fatalf("expected a silent cleanup, got %s", err)
	}
	invite, _ := pending.Peek("session-1")
	if invite != nil {
		t.Error("expected the stale invite to be dropped")
	}
}

func TestResumeKeepsParkedInviteOnLookupFailure(t *testing.T) {
	members := &fakeMembers{tokenErr: errors.New("connection_reset")}
	resumer, pending := newResumer(members)
	pending.Park("session-1", PendingInvite{OrgId: "org-1", MemberId: "member-1", Token: "token-1"})
	if err := resumer.Resume(context.Background(), "session-1"); err == nil {
		t.Fatal("expected the transient failure to surface")
	}
	if len(members.accepted) != 0 {
		t.Error("expected no acceptance")
	}
	invite, err := pending.Peek("session-1")
	if err != nil {
		t.Fatalf("failed to peek: %s", err)
	}
	if invite == nil {
		t.Error("expected the parked invite to survive a transient lookup failure")
	}
}

func TestResumeKeepsParkedInviteOnAcceptFailure(t *testing.T) {
	members := &fakeMembers{token: "token-1", acceptErr: errors.New("connection_reset")}
	resumer, pending := newResumer(members)
	pending.Park("session-1", PendingInvite{OrgId: "org-1", MemberId: "member-1", Token: "token-1"})
	if err := resumer.Resume(context.Background(), "session-1"); err == nil {
		t.Fatal("expected the transient failure to surface")
	}
	invite, _ := pending.Peek("session-1")
	if invite == nil {
		t.Error("expected the parked invite to survive a transient accept failure")
	}
}

func TestResumeRejectsRotatedToken(t *testing.T) {
	members := &fakeMembers{token: "token-2"}
	resumer, pending := newResumer(members)
	pending.Park("session-1", PendingInvite{OrgId: "org-1", MemberId: "member-1", Token: "token-1"})
	if err := resumer.Resume(context.Background(), "session-1"); err != nil {
		t.Fatalf("expected a silent drop, got %s", err)
	}
	if len(members.accepted) != 0 {
		t.Error("expected no acceptance with a stale token")
	}
	invite, _ := pending.Peek("session-1")
	if invite != nil {
		t.Error("expected the stale invite to be dropped")
	}
}
