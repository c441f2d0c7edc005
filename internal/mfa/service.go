package mfa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"vigil/internal/auth"
	"vigil/internal/common"
	"vigil/internal/ratelimit"

	"github.com/google/uuid"
)

const (
	enrollAttemptLimit  int64 = 10
	enrollAttemptWindow       = 24 * time.Hour
)

// Store persists authenticators and the account records touched by a
// successful enrollment.
type Store interface {
	ListAuthenticators(ctx context.Context, userId string) ([]Authenticator, error)
	CreateAuthenticator(ctx context.Context, authenticator Authenticator) error
	// RotateAuthenticator replaces the secret material of an existing
	// enrollment, keeping its identifier.
	RotateAuthenticator(ctx context.Context, authenticator Authenticator) error
	ReplaceRecoveryCodes(ctx context.Context, userId string, codes []string) error
	ClearLostPasswordRequests(ctx context.Context, userId string) error
}

// SessionManager mutates the caller's session after an enrollment.
type SessionManager interface {
	RotateNonce(ctx context.Context, sessionKey string) error
	MarkMfaSatisfied(ctx context.Context, sessionKey string, kind Kind) error
}

// ActivityRecorder receives security-relevant events for the audit
// trail and user notifications.
type ActivityRecorder interface {
	RecordAuthenticatorAdded(ctx context.Context, userId string, kind Kind, deviceName string) error
}

// InviteResumer continues an organization invite that was parked while
// the user completed a required enrollment.
type InviteResumer interface {
	Resume(ctx context.Context, sessionKey string) error
}

type NewServiceOpts struct {
	Strategies  []Strategy
	Store       Store
	Sessions    SessionManager
	Activity    ActivityRecorder
	Invites     InviteResumer
	Limiter     ratelimit.Limiter
	ServiceLogs chan<- common.ServiceLog
}

type Service struct {
	strategies  map[Kind]Strategy
	store       Store
	sessions    SessionManager
	activity    ActivityRecorder
	invites     InviteResumer
	limiter     ratelimit.Limiter
	serviceLogs chan<- common.ServiceLog
}

func NewService(opts NewServiceOpts) *Service {
	strategies := map[Kind]Strategy{}
	for _, strategy := range opts.Strategies {
		strategies[strategy.Kind()] = strategy
	}
	return &Service{
		strategies:  strategies,
		store:       opts.Store,
		sessions:    opts.Sessions,
		activity:    opts.Activity,
		invites:     opts.Invites,
		limiter:     opts.Limiter,
		serviceLogs: opts.ServiceLogs,
	}
}

type BeginEnrollmentInput struct {
	UserId      string
	Email       string
	PhoneNumber string
	Kind        Kind
	SessionKey  string
}

type BeginEnrollmentOutput struct {
	Kind            Kind
	Status          EnrollmentStatus
	Secret          string
	ProvisioningUri string
	QrCode          string
	Challenge       json.RawMessage
	PhoneNumber     string
	Fields          []FormField
}

// BeginEnrollment prepares the enrollment form for an interface:
// resolves what the attempt means for the user's existing enrollments
// and produces the strategy-specific payload (totp seed, webauthn
// challenge, sms form).
func (s *Service) BeginEnrollment(ctx context.Context, input BeginEnrollmentInput) (*BeginEnrollmentOutput, error) {
	strategy, existing, status, err := s.admit(ctx, input.UserId, input.Kind)
	if err != nil {
		return nil, err
	}
	prepared, err := strategy.Prepare(ctx, PrepareInput{
		UserId:      input.UserId,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		SessionKey:  input.SessionKey,
		Credentials: serializedCredentials(existing),
	})
	if err != nil {
		return nil, err
	}
	return &BeginEnrollmentOutput{
		Kind:            input.Kind,
		Status:          status,
		Secret:          prepared.Secret,
		ProvisioningUri: prepared.ProvisioningUri,
		QrCode:          prepared.QrCode,
		Challenge:       prepared.Challenge,
		PhoneNumber:     prepared.PhoneNumber,
		Fields:          prepared.Fields,
	}, nil
}

type CompleteEnrollmentInput struct {
	UserId      string
	Email       string
	Kind        Kind
	SessionKey  string
	Secret      string
	Otp         string
	PhoneNumber string
	DeviceName  string
	Response    []byte
}

type CompleteEnrollmentOutput struct {
	Status EnrollmentStatus
	// Pending indicates an out-of-band code was sent and the caller
	// must resubmit with it; nothing was persisted.
	Pending       bool
	Authenticator *Authenticator
	RecoveryCodes []string
}

// CompleteEnrollment validates the submitted proof of possession,
// persists the authenticator, and runs the follow-up account hygiene:
// recovery codes on first enrollment, session nonce rotation, clearing
// of pending lost-password requests, the security activity record, and
// resumption of any parked organization invite.
func (s *Service) CompleteEnrollment(ctx context.Context, input CompleteEnrollmentInput) (*CompleteEnrollmentOutput, error) {
	if err := s.consumeAttempt(input.UserId, input.Kind); err != nil {
		return nil, err
	}
	strategy, existing, status, err := s.admit(ctx, input.UserId, input.Kind)
	if err != nil {
		return nil, err
	}
	material, err := strategy.Validate(ctx, ValidateInput{
		UserId:      input.UserId,
		Email:       input.Email,
		SessionKey:  input.SessionKey,
		Secret:      input.Secret,
		Otp:         input.Otp,
		PhoneNumber: input.PhoneNumber,
		DeviceName:  input.DeviceName,
		Response:    input.Response,
		Credentials: serializedCredentials(existing),
	})
	if err != nil {
		return nil, err
	}
	if material.Pending {
		return &CompleteEnrollmentOutput{Status: status, Pending: true}, nil
	}
	authenticator, err := s.commit(ctx, input, status, existing, material)
	if err != nil {
		return nil, err
	}
	output := &CompleteEnrollmentOutput{
		Status:        status,
		Authenticator: authenticator,
	}
	if status == EnrollmentStatusNone {
		hadAny, err := s.hasAnyAuthenticator(ctx, input.UserId, authenticator.Id)
		if err == nil && !hadAny {
			output.RecoveryCodes = s.issueRecoveryCodes(ctx, input.UserId)
		}
	}
	s.runSideEffects(ctx, input, authenticator)
	return output, nil
}

// Interfaces lists every registered strategy's form metadata.
func (s *Service) Interfaces() []BeginEnrollmentOutput {
	outputs := []BeginEnrollmentOutput{}
	for _, kind := range []Kind{KindTotp, KindSms, KindWebauthn} {
		strategy, ok := s.strategies[kind]
		if !ok {
			continue
		}
		outputs = append(outputs, BeginEnrollmentOutput{
			Kind:   kind,
			Fields: strategy.FormFields(),
		})
	}
	return outputs
}

// consumeAttempt counts one submission against the user's enrollment
// budget. Form fetches never consume it: only CompleteEnrollment calls
// this, so a user can always still submit after browsing interfaces.
func (s *Service) consumeAttempt(userId string, kind Kind) error {
	isLimited, err := s.limiter.IsLimited(
		fmt.Sprintf("auth:authenticator-enroll:%s:%s", userId, kind),
		enrollAttemptLimit,
		enrollAttemptWindow,
	)
	if err != nil {
		return fmt.Errorf("failed to evaluate enroll limit: %w", err)
	}
	if isLimited {
		return ErrorRateLimited
	}
	return nil
}

// admit runs the checks shared by both enrollment verbs: interface
// existence, the new-enrollment gate, and the resolution against
// existing enrollments.
func (s *Service) admit(ctx context.Context, userId string, kind Kind) (Strategy, []Authenticator, EnrollmentStatus, error) {
	strategy, ok := s.strategies[kind]
	if !ok {
		return nil, nil, "", ErrorUnknownInterface
	}
	if strategy.Capabilities().DisallowNewEnrollment {
		return nil, nil, "", ErrorNewEnrollmentDisallowed
	}
	authenticators, err := s.store.ListAuthenticators(ctx, userId)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to list authenticators: %w", err)
	}
	existing := []Authenticator{}
	for _, authenticator := range authenticators {
		if authenticator.Kind == kind {
			existing = append(existing, authenticator)
		}
	}
	status, err := ResolveEnrollment(len(existing) > 0, strategy.Capabilities())
	if err != nil {
		return nil, nil, "", err
	}
	return strategy, existing, status, nil
}

func (s *Service) commit(ctx context.Context, input CompleteEnrollmentInput, status EnrollmentStatus, existing []Authenticator, material *Material) (*Authenticator, error) {
	now := time.Now()
	authenticator := Authenticator{
		UserId:      input.UserId,
		Kind:        input.Kind,
		Secret:      material.Secret,
		PhoneNumber: material.PhoneNumber,
		Credential:  material.Credential,
		DeviceName:  material.DeviceName,
		CreatedAt:   now,
		VerifiedAt:  &now,
	}
	if status == EnrollmentStatusRotation {
		authenticator.Id = existing[0].Id
		authenticator.CreatedAt = existing[0].CreatedAt
		if err := s.store.RotateAuthenticator(ctx, authenticator); err != nil {
			return nil, fmt.Errorf("failed to rotate authenticator: %w", err)
		}
		return &authenticator, nil
	}
	authenticator.Id = uuid.NewString()
	if err := s.store.CreateAuthenticator(ctx, authenticator); err != nil {
		// a concurrent submission can create the record after admit
		// resolved this one as a fresh enrollment
		if errors.Is(err, ErrorAlreadyEnrolled) {
			return nil, ErrorAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}
	return &authenticator, nil
}

func (s *Service) hasAnyAuthenticator(ctx context.Context, userId, excludeId string) (bool, error) {
	authenticators, err := s.store.ListAuthenticators(ctx, userId)
	if err != nil {
		return false, err
	}
	for _, authenticator := range authenticators {
		if authenticator.Id != excludeId {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) issueRecoveryCodes(ctx context.Context, userId string) []string {
	codes, err := auth.GenerateRecoveryCodes(auth.RecoveryCodeCount)
	if err != nil {
		s.warnf("failed to generate recovery codes for user[%s]: %s", userId, err)
		return nil
	}
	if err := s.store.ReplaceRecoveryCodes(ctx, userId, codes); err != nil {
		s.warnf("failed to store recovery codes for user[%s]: %s", userId, err)
		return nil
	}
	return codes
}

// runSideEffects performs the post-enrollment hygiene. None of these
// can fail the enrollment itself; failures are logged and dropped.
func (s *Service) runSideEffects(ctx context.Context, input CompleteEnrollmentInput, authenticator *Authenticator) {
	if err := s.store.ClearLostPasswordRequests(ctx, input.UserId); err != nil {
		s.warnf("failed to clear lost password requests for user[%s]: %s", input.UserId, err)
	}
	if s.sessions != nil && input.SessionKey != "" {
		if err := s.sessions.RotateNonce(ctx, input.SessionKey); err != nil {
			s.warnf("failed to rotate session nonce for user[%s]: %s", input.UserId, err)
		}
		if err := s.sessions.MarkMfaSatisfied(ctx, input.SessionKey, input.Kind); err != nil {
			s.warnf("failed to mark session mfa for user[%s]: %s", input.UserId, err)
		}
	}
	if s.activity != nil {
		if err := s.activity.RecordAuthenticatorAdded(ctx, input.UserId, input.Kind, authenticator.DeviceName); err != nil {
			s.warnf("failed to record security activity for user[%s]: %s", input.UserId, err)
		}
	}
	if s.invites != nil && input.SessionKey != "" {
		if err := s.invites.Resume(ctx, input.SessionKey); err != nil {
			s.warnf("failed to resume pending invite for user[%s]: %s", input.UserId, err)
		}
	}
}

func (s *Service) warnf(text string, args ...any) {
	if s.serviceLogs == nil {
		return
	}
	s.serviceLogs <- common.ServiceLogf(common.LogLevelWarn, text, args...)
}

func serializedCredentials(authenticators []Authenticator) [][]byte {
	credentials := [][]byte{}
	for _, authenticator := range authenticators {
		if len(authenticator.Credential) > 0 {
			credentials = append(credentials, authenticator.Credential)
		}
	}
	return credentials
}
