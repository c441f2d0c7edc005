package mfa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"vigil/internal/auth"
	"vigil/internal/challenges"

	"github.com/go-webauthn/webauthn/webauthn"
)

// WebauthnStrategy enrolls hardware security keys and platform
// authenticators. Users can hold several in parallel, so enrollment
// never rotates an existing credential.
type WebauthnStrategy struct {
	Webauthn   *auth.Webauthn
	Challenges challenges.Store
}

func (s WebauthnStrategy) Kind() Kind {
	return KindWebauthn
}

func (s WebauthnStrategy) Capabilities() Capabilities {
	return Capabilities{AllowMultiEnrollment: true}
}

func (s WebauthnStrategy) FormFields() []FormField {
	return []FormField{
		{Name: "device_name", Label: "Device name", Type: "string", Required: false},
		{Name: "response", Label: "Attestation response", Type: "object", Required: true},
	}
}

func (s WebauthnStrategy) user(userId, email string, serialized [][]byte) (auth.WebauthnUser, error) {
	credentials := make([]webauthn.Credential, 0, len(serialized))
	for _, raw := range serialized {
		var credential webauthn.Credential
		if err := json.Unmarshal(raw, &credential); err != nil {
			return auth.WebauthnUser{}, fmt.Errorf("failed to parse stored credential: %w", err)
		}
		credentials = append(credentials, credential)
	}
	return auth.WebauthnUser{
		Id:          []byte(userId),
		Name:        email,
		DisplayName: email,
		Credentials: credentials,
	}, nil
}

func (s WebauthnStrategy) Prepare(ctx context.Context, input PrepareInput) (*Prepared, error) {
	user, err := s.user(input.UserId, input.Email, input.Credentials)
	if err != nil {
		return nil, err
	}
	creation, state, err := s.Webauthn.BeginRegistration(user)
	if err != nil {
		return nil, fmt.Errorf("failed to begin registration: %w", err)
	}
	if err := s.Challenges.Put(input.SessionKey, state); err != nil {
		return nil, err
	}
	return &Prepared{
		Challenge: creation,
		Fields:    s.FormFields(),
	}, nil
}

func (s WebauthnStrategy) Validate(ctx context.Context, input ValidateInput) (*Material, error) {
	if len(input.Response) == 0 {
		return nil, ErrorInvalidAuthState
	}
	state, err := s.Challenges.Take(input.SessionKey)
	if err != nil {
		if errors.Is(err, challenges.ErrorNoChallenge) {
			return nil, ErrorInvalidAuthState
		}
		return nil, err
	}
	user, err := s.user(input.UserId, input.Email, input.Credentials)
	if err != nil {
		return nil, err
	}
	// the challenge state existed, so a failure here means the
	// response itself did not verify
	credential, err := s.Webauthn.FinishRegistration(user, state, input.Response)
	if err != nil {
		return nil, ErrorInvalidAttestation
	}
	serialized, err := json.Marshal(credential)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize credential: %w", err)
	}
	deviceName := input.DeviceName
	if deviceName == "" {
		deviceName = GenerateDeviceName()
	}
	return &Material{Credential: serialized, DeviceName: deviceName}, nil
}
