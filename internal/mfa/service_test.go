package mfa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"vigil/internal/auth"
	"vigil/internal/cache"
	"vigil/internal/challenges"
	"vigil/internal/common"
	"vigil/internal/ratelimit"
)

type fakeStore struct {
	authenticators []Authenticator
	recoveryCodes  []string
	rotations      int
	clearedLost    bool
	listErr        error
	createErr      error
}

func (s *fakeStore) ListAuthenticators(ctx context.Context, userId string) ([]Authenticator, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	matched := []Authenticator{}
	for _, authenticator := range s.authenticators {
		if authenticator.UserId == userId {
			matched = append(matched, authenticator)
		}
	}
	return matched, nil
}

func (s *fakeStore) CreateAuthenticator(ctx context.Context, authenticator Authenticator) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.authenticators = append(s.authenticators, authenticator)
	return nil
}

func (s *fakeStore) RotateAuthenticator(ctx context.Context, authenticator Authenticator) error {
	for i, existing := range s.authenticators {
		if existing.Id == authenticator.Id {
			s.authenticators[i] = authenticator
			s.rotations++
			return nil
		}
	}
	return errors.New("authenticator_not_found")
}

func (s *fakeStore) ReplaceRecoveryCodes(ctx context.Context, userId string, codes []string) error {
	s.recoveryCodes = codes
	return nil
}

func (s *fakeStore) ClearLostPasswordRequests(ctx context.Context, userId string) error {
	s.clearedLost = true
	return nil
}

type fakeSessions struct {
	noncesRotated int
	mfaMarked     []Kind
}

func (s *fakeSessions) RotateNonce(ctx context.Context, sessionKey string) error {
	s.noncesRotated++
	return nil
}

func (s *fakeSessions) MarkMfaSatisfied(ctx context.Context, sessionKey string, kind Kind) error {
	s.mfaMarked = append(s.mfaMarked, kind)
	return nil
}

type fakeActivity struct {
	recorded []Kind
}

func (a *fakeActivity) RecordAuthenticatorAdded(ctx context.Context, userId string, kind Kind, deviceName string) error {
	a.recorded = append(a.recorded, kind)
	return nil
}

type fakeResumer struct {
	err     error
	resumed int
}

func (r *fakeResumer) Resume(ctx context.Context, sessionKey string) error {
	r.resumed++
	return r.err
}

type recordingSmsSender struct {
	lastMessage string
	err         error
}

func (s *recordingSmsSender) Send(ctx context.Context, phoneNumber, message string) error {
	if s.err != nil {
		return s.err
	}
	s.lastMessage = message
	return nil
}

type testHarness struct {
	service  *Service
	store    *fakeStore
	sessions *fakeSessions
	activity *fakeActivity
	resumer  *fakeResumer
	sender   *recordingSmsSender
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	memory := cache.NewMemory()
	limiter := ratelimit.Limiter{Cache: memory, Prefix: "rl"}
	relyingParty, err := auth.NewWebauthn(auth.NewWebauthnOpts{
		RpId:          "localhost",
		RpDisplayName: "vigil",
		RpOrigins:     []string{"https://localhost"},
	})
	if err != nil {
		t.Fatalf("failed to create relying party: %s", err)
	}
	harness := &testHarness{
		store:    &fakeStore{},
		sessions: &fakeSessions{},
		activity: &fakeActivity{},
		resumer:  &fakeResumer{},
		sender:   &recordingSmsSender{},
	}
	harness.service = NewService(NewServiceOpts{
		Strategies: []Strategy{
			TotpStrategy{Issuer: "vigil"},
			SmsStrategy{Cache: memory, Sender: harness.sender, Limiter: limiter},
			WebauthnStrategy{
				Webauthn:   relyingParty,
				Challenges: challenges.Store{Cache: memory, Prefix: "webauthn-register"},
			},
		},
		Store:       harness.store,
		Sessions:    harness.sessions,
		Activity:    harness.activity,
		Invites:     harness.resumer,
		Limiter:     limiter,
		ServiceLogs: common.GetNoopServiceLog(),
	})
	return harness
}

func TestBeginEnrollmentTotpFresh(t *testing.T) {
	harness := newTestHarness(t)
	output, err := harness.service.BeginEnrollment(context.Background(), BeginEnrollmentInput{
		UserId:     "user-1",
		Email:      "user@example.com",
		Kind:       KindTotp,
		SessionKey: "session-1",
	})
	if err != nil {
		t.Fatalf("failed to begin enrollment: %s", err)
	}
	if output.Status != EnrollmentStatusNone {
		t.Errorf("expected status none, got %s", output.Status)
	}
	if output.Secret == "" {
		t.Error("expected a totp secret")
	}
	if !strings.HasPrefix(output.ProvisioningUri, "otpauth://totp/") {
		t.Errorf("unexpected provisioning uri: %s", output.ProvisioningUri)
	}
	if output.QrCode == "" {
		t.Error("expected a qr code")
	}
}

func TestBeginEnrollmentUnknownInterface(t *testing.T) {
	harness := newTestHarness(t)
	_, err := harness.service.BeginEnrollment(context.Background(), BeginEnrollmentInput{
		UserId: "user-1",
		Kind:   Kind("carrier-pigeon"),
	})
	if !errors.Is(err, ErrorUnknownInterface) {
		t.Errorf("expected ErrorUnknownInterface, got %v", err)
	}
}

func TestCompleteEnrollmentTotpFresh(t *testing.T) {
	harness := newTestHarness(t)
	secret, err := auth.CreateTotpSeed("vigil", "user@example.com")
	if err != nil {
		t.Fatalf("failed to create seed: %s", err)
	}
	token, err := auth.GenerateTotpToken(secret)
	if err != nil {
		t.Fatalf("failed to generate token: %s", err)
	}
	output, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId:     "user-1",
		Email:      "user@example.com",
		Kind:       KindTotp,
		SessionKey: "session-1",
		Secret:     secret,
		Otp:        token,
	})
	if err != nil {
		t.Fatalf("failed to complete enrollment: %s", err)
	}
	if output.Status != EnrollmentStatusNone {
		t.Errorf("expected status none, got %s", output.Status)
	}
	if output.Authenticator == nil || output.Authenticator.Secret != secret {
		t.Error("expected the authenticator to carry the verified secret")
	}
	if len(harness.store.authenticators) != 1 {
		t.Fatalf("expected one persisted authenticator, got %d", len(harness.store.authenticators))
	}
	if len(output.RecoveryCodes) != auth.RecoveryCodeCount {
		t.Errorf("expected %d recovery codes on first enrollment, got %d", auth.RecoveryCodeCount, len(output.RecoveryCodes))
	}
	if !harness.store.clearedLost {
		t.Error("expected lost password requests to be cleared")
	}
	if harness.sessions.noncesRotated != 1 {
		t.Error("expected the session nonce to rotate")
	}
	if len(harness.activity.recorded) != 1 || harness.activity.recorded[0] != KindTotp {
		t.Error("expected a security activity record for the totp enrollment")
	}
	if harness.resumer.resumed != 1 {
		t.Error("expected a pending invite resumption attempt")
	}
}

func TestCompleteEnrollmentTotpInvalidOtp(t *testing.T) {
	harness := newTestHarness(t)
	secret, _ := auth.CreateTotpSeed("vigil", "user@example.com")
	_, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId: "user-1",
		Email:  "user@example.com",
		Kind:   KindTotp,
		Secret: secret,
		Otp:    "000000",
	})
	if !errors.Is(err, ErrorInvalidOtp) {
		t.Errorf("expected ErrorInvalidOtp, got %v", err)
	}
	if len(harness.store.authenticators) != 0 {
		t.Error("expected nothing to be persisted")
	}
}

func TestCompleteEnrollmentTotpRotationKeepsId(t *testing.T) {
	harness := newTestHarness(t)
	harness.store.authenticators = []Authenticator{
		{Id: "authenticator-1", UserId: "user-1", Kind: KindTotp, Secret: "old-secret"},
	}
	secret, _ := auth.CreateTotpSeed("vigil", "user@example.com")
	token, _ := auth.GenerateTotpToken(secret)
	output, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId: "user-1",
		Email:  "user@example.com",
		Kind:   KindTotp,
		Secret: secret,
		Otp:    token,
	})
	if err != nil {
		t.Fatalf("failed to complete enrollment: %s", err)
	}
	if output.Status != EnrollmentStatusRotation {
		t.Errorf("expected status rotation, got %s", output.Status)
	}
	if output.Authenticator.Id != "authenticator-1" {
		t.Errorf("expected the rotated authenticator to keep its id, got %s", output.Authenticator.Id)
	}
	if harness.store.rotations != 1 || len(harness.store.authenticators) != 1 {
		t.Error("expected an in-place rotation, not a new record")
	}
	if harness.store.authenticators[0].Secret != secret {
		t.Error("expected the rotated record to carry the new secret")
	}
	if len(output.RecoveryCodes) != 0 {
		t.Error("expected no recovery codes on rotation")
	}
}

func TestCompleteEnrollmentSmsSendThenVerify(t *testing.T) {
	harness := newTestHarness(t)
	first, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId:      "user-1",
		Email:       "user@example.com",
		Kind:        KindSms,
		PhoneNumber: "+15551230000",
	})
	if err != nil {
		t.Fatalf("failed to trigger sms delivery: %s", err)
	}
	if !first.Pending {
		t.Fatal("expected the first submission to be pending delivery")
	}
	if len(harness.store.authenticators) != 0 {
		t.Fatal("expected nothing to be persisted while pending")
	}
	parts := strings.Fields(harness.sender.lastMessage)
	code := parts[len(parts)-1]
	second, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId:      "user-1",
		Email:       "user@example.com",
		Kind:        KindSms,
		PhoneNumber: "+15551230000",
		Otp:         code,
	})
	if err != nil {
		t.Fatalf("failed to verify sms otp: %s", err)
	}
	if second.Pending {
		t.Error("expected the second submission to complete")
	}
	if len(harness.store.authenticators) != 1 || harness.store.authenticators[0].PhoneNumber != "+15551230000" {
		t.Error("expected a persisted sms authenticator with the phone number")
	}
}

func TestCompleteEnrollmentSmsWithoutPhoneNumber(t *testing.T) {
	harness := newTestHarness(t)
	_, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId: "user-1",
		Email:  "user@example.com",
		Kind:   KindSms,
	})
	if !errors.Is(err, ErrorPhoneNumberRequired) {
		t.Errorf("expected ErrorPhoneNumberRequired, got %v", err)
	}
}

func TestCompleteEnrollmentSmsSendFailure(t *testing.T) {
	harness := newTestHarness(t)
	harness.sender.err = errors.New("gateway_down")
	_, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId:      "user-1",
		Email:       "user@example.com",
		Kind:        KindSms,
		PhoneNumber: "+15551230000",
	})
	if !errors.Is(err, ErrorSmsSendFailed) {
		t.Errorf("expected ErrorSmsSendFailed, got %v", err)
	}
}

func TestCompleteEnrollmentWebauthnMissingState(t *testing.T) {
	harness := newTestHarness(t)
	_, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId:     "user-1",
		Email:      "user@example.com",
		Kind:       KindWebauthn,
		SessionKey: "session-1",
		Response:   []byte(`{"id":"bogus"}`),
	})
	if !errors.Is(err, ErrorInvalidAuthState) {
		t.Errorf("expected ErrorInvalidAuthState, got %v", err)
	}
}

func TestCompleteEnrollmentWebauthnBadAttestation(t *testing.T) {
	harness := newTestHarness(t)
	if _, err := harness.service.BeginEnrollment(context.Background(), BeginEnrollmentInput{
		UserId:     "user-1",
		Email:      "user@example.com",
		Kind:       KindWebauthn,
		SessionKey: "session-1",
	}); err != nil {
		t.Fatalf("failed to begin enrollment: %s", err)
	}
	_, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId:     "user-1",
		Email:      "user@example.com",
		Kind:       KindWebauthn,
		SessionKey: "session-1",
		Response:   []byte(`{"id":"bogus","type":"public-key"}`),
	})
	if !errors.Is(err, ErrorInvalidAttestation) {
		t.Errorf("expected ErrorInvalidAttestation for an unverifiable response, got %v", err)
	}
	if len(harness.store.authenticators) != 0 {
		t.Error("expected nothing to be persisted")
	}
}

func TestEnrollmentAttemptRateLimit(t *testing.T) {
	harness := newTestHarness(t)
	secret, _ := auth.CreateTotpSeed("vigil", "user@example.com")
	for i := 0; i < 10; i++ {
		_, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
			UserId: "user-1",
			Email:  "user@example.com",
			Kind:   KindTotp,
			Secret: secret,
			Otp:    "000000",
		})
		if !errors.Is(err, ErrorInvalidOtp) {
			t.Fatalf("attempt %d: expected ErrorInvalidOtp, got %v", i+1, err)
		}
	}
	token, _ := auth.GenerateTotpToken(secret)
	_, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId: "user-1",
		Email:  "user@example.com",
		Kind:   KindTotp,
		Secret: secret,
		Otp:    token,
	})
	if !errors.Is(err, ErrorRateLimited) {
		t.Errorf("expected the 11th submission to be rate limited even with a valid code, got %v", err)
	}
	if len(harness.store.authenticators) != 0 {
		t.Error("expected nothing to be persisted")
	}
}

func TestBeginEnrollmentDoesNotConsumeAttemptBudget(t *testing.T) {
	harness := newTestHarness(t)
	for i := 0; i < 10; i++ {
		if _, err := harness.service.BeginEnrollment(context.Background(), BeginEnrollmentInput{
			UserId:     "user-1",
			Email:      "user@example.com",
			Kind:       KindTotp,
			SessionKey: "session-1",
		}); err != nil {
			t.Fatalf("fetch %d: failed to begin enrollment: %s", i+1, err)
		}
	}
	secret, _ := auth.CreateTotpSeed("vigil", "user@example.com")
	token, _ := auth.GenerateTotpToken(secret)
	output, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId: "user-1",
		Email:  "user@example.com",
		Kind:   KindTotp,
		Secret: secret,
		Otp:    token,
	})
	if err != nil {
		t.Fatalf("expected the first submission to be admitted after form fetches only, got %s", err)
	}
	if output.Authenticator == nil || len(harness.store.authenticators) != 1 {
		t.Error("expected the enrollment to persist")
	}
}

func TestCompleteEnrollmentDuplicateRaceAtCommit(t *testing.T) {
	harness := newTestHarness(t)
	harness.store.createErr = ErrorAlreadyEnrolled
	secret, _ := auth.CreateTotpSeed("vigil", "user@example.com")
	token, _ := auth.GenerateTotpToken(secret)
	_, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId:     "user-1",
		Email:      "user@example.com",
		Kind:       KindTotp,
		SessionKey: "session-1",
		Secret:     secret,
		Otp:        token,
	})
	if !errors.Is(err, ErrorAlreadyEnrolled) {
		t.Errorf("expected ErrorAlreadyEnrolled when a concurrent enrollment wins the insert, got %v", err)
	}
	if harness.sessions.noncesRotated != 0 || len(harness.activity.recorded) != 0 {
		t.Error("expected no side effects for the losing submission")
	}
}

func TestCompleteEnrollmentInviteResumptionFailureIsSwallowed(t *testing.T) {
	harness := newTestHarness(t)
	harness.resumer.err = fmt.Errorf("invite gone")
	secret, _ := auth.CreateTotpSeed("vigil", "user@example.com")
	token, _ := auth.GenerateTotpToken(secret)
	_, err := harness.service.CompleteEnrollment(context.Background(), CompleteEnrollmentInput{
		UserId:     "user-1",
		Email:      "user@example.com",
		Kind:       KindTotp,
		SessionKey: "session-1",
		Secret:     secret,
		Otp:        token,
	})
	if err != nil {
		t.Fatalf("expected enrollment to succeed despite resumption failure, got %s", err)
	}
	if harness.resumer.resumed != 1 {
		t.Error("expected a resumption attempt")
	}
}

func TestInterfacesListsClosedSet(t *testing.T) {
	harness := newTestHarness(t)
	interfaces := harness.service.Interfaces()
	if len(interfaces) != 3 {
		t.Fatalf("expected 3 interfaces, got %d", len(interfaces))
	}
	expected := []Kind{KindTotp, KindSms, KindWebauthn}
	for i, entry := range interfaces {
		if entry.Kind != expected[i] {
			t.Errorf("expected interface %s at position %d, got %s", expected[i], i, entry.Kind)
		}
	}
}
