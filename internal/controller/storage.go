package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"vigil/internal/audit"
	"vigil/internal/controller/models"
	"vigil/internal/events"
	"vigil/internal/invites"
	"vigil/internal/mfa"
)

// mfaStore adapts the models layer to the enrollment service's storage
// interface.
type mfaStore struct{}

func (s mfaStore) ListAuthenticators(ctx context.Context, userId string) ([]mfa.Authenticator, error) {
	records, err := models.ListUserAuthenticatorsV1(models.ListUserAuthenticatorsV1Opts{
		Db:     db,
		UserId: userId,
	})
	if err != nil {
		return nil, err
	}
	authenticators := []mfa.Authenticator{}
	for _, record := range records {
		authenticators = append(authenticators, fromAuthenticatorModel(record))
	}
	return authenticators, nil
}

func (s mfaStore) CreateAuthenticator(ctx context.Context, authenticator mfa.Authenticator) error {
	err := models.CreateUserAuthenticatorV1(models.CreateUserAuthenticatorV1Opts{
		Db:          db,
		Id:          authenticator.Id,
		UserId:      authenticator.UserId,
		Kind:        string(authenticator.Kind),
		Secret:      nullableString(authenticator.Secret),
		PhoneNumber: nullableString(authenticator.PhoneNumber),
		Credential:  authenticator.Credential,
		DeviceName:  nullableString(authenticator.DeviceName),
		VerifiedAt:  authenticator.VerifiedAt,
	})
	if err != nil {
		// a concurrent enrollment won the unique key on (user, kind)
		// between the admission read and this insert
		if errors.Is(err, models.ErrorDuplicateEntry) {
			return mfa.ErrorAlreadyEnrolled
		}
		return err
	}
	return nil
}

func (s mfaStore) RotateAuthenticator(ctx context.Context, authenticator mfa.Authenticator) error {
	return models.RotateUserAuthenticatorV1(models.RotateUserAuthenticatorV1Opts{
		Db:          db,
		Id:          authenticator.Id,
		UserId:      authenticator.UserId,
		Secret:      nullableString(authenticator.Secret),
		PhoneNumber: nullableString(authenticator.PhoneNumber),
		Credential:  authenticator.Credential,
		DeviceName:  nullableString(authenticator.DeviceName),
		VerifiedAt:  authenticator.VerifiedAt,
	})
}

func (s mfaStore) ReplaceRecoveryCodes(ctx context.Context, userId string, codes []string) error {
	return models.ReplaceUserRecoveryCodesV1(models.ReplaceUserRecoveryCodesV1Opts{
		Db:     db,
		UserId: userId,
		Codes:  codes,
	})
}

func (s mfaStore) ClearLostPasswordRequests(ctx context.Context, userId string) error {
	return models.ClearUserPasswordResetsV1(models.ClearUserPasswordResetsV1Opts{
		Db:     db,
		UserId: userId,
	})
}

func fromAuthenticatorModel(record models.UserAuthenticator) mfa.Authenticator {
	authenticator := mfa.Authenticator{
		Id:         record.Id,
		UserId:     record.UserId,
		Kind:       mfa.Kind(record.Kind),
		Credential: record.Credential,
		VerifiedAt: record.VerifiedAt,
	}
	if record.Secret != nil {
		authenticator.Secret = *record.Secret
	}
	if record.PhoneNumber != nil {
		authenticator.PhoneNumber = *record.PhoneNumber
	}
	if record.DeviceName != nil {
		authenticator.DeviceName = *record.DeviceName
	}
	if record.CreatedAt != nil {
		authenticator.CreatedAt = *record.CreatedAt
	}
	return authenticator
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// sessionManager adapts the cache-backed session models to the
// enrollment service.
type sessionManager struct{}

func parseSessionKey(sessionKey string) (string, string, error) {
	parts := strings.SplitN(sessionKey, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid session key")
	}
	return parts[0], parts[1], nil
}

func (m sessionManager) RotateNonce(ctx context.Context, sessionKey string) error {
	userId, sessionId, err := parseSessionKey(sessionKey)
	if err != nil {
		return err
	}
	return models.RotateSessionNonceV1(models.RotateSessionNonceV1Opts{
		CachePrefix: sessionCachePrefix,
		UserId:      userId,
		SessionId:   sessionId,
	})
}

func (m sessionManager) MarkMfaSatisfied(ctx context.Context, sessionKey string, kind mfa.Kind) error {
	userId, sessionId, err := parseSessionKey(sessionKey)
	if err != nil {
		return err
	}
	return models.MarkSessionMfaV1(models.MarkSessionMfaV1Opts{
		CachePrefix: sessionCachePrefix,
		UserId:      userId,
		SessionId:   sessionId,
		Kind:        string(kind),
	})
}

// memberStore adapts the org membership models to invite resumption.
type memberStore struct{}

func (s memberStore) GetInviteToken(ctx context.Context, orgId, memberId string) (string, error) {
	member, err := models.GetOrgMemberV1(models.GetOrgMemberV1Opts{
		Db:       db,
		OrgId:    orgId,
		MemberId: &memberId,
	})
	if err != nil {
		if errors.Is(err, models.ErrorNotFound) {
			return "", invites.ErrorMemberNotFound
		}
		return "", err
	}
	if member.InviteToken == nil {
		return "", nil
	}
	return *member.InviteToken, nil
}

func (s memberStore) AcceptInvite(ctx context.Context, orgId, memberId, userId string) error {
	if err := models.AcceptOrgInviteV1(models.AcceptOrgInviteV1Opts{
		Db:       db,
		OrgId:    orgId,
		MemberId: memberId,
		UserId:   userId,
	}); err != nil {
		if errors.Is(err, models.ErrorNotFound) {
			return invites.ErrorMemberNotFound
		}
		return err
	}
	recordAudit(audit.LogEntry{
		EntityId:     orgId,
		EntityType:   audit.OrgEntity,
		Verb:         audit.Accept,
		ResourceId:   memberId,
		ResourceType: audit.OrgInviteResource,
		Status:       audit.Success,
		Data:         map[string]any{"userId": userId},
	})
	publishActivity(ctx, events.SecurityActivity{
		Type:   events.ActivityInviteAccept,
		UserId: userId,
		Data:   map[string]any{"orgId": orgId, "memberId": memberId},
	})
	return nil
}
