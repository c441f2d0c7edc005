package auth

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

// WebauthnUser adapts a vigil user to the relying-party library's view
// of an account during a registration ceremony.
type WebauthnUser struct {
	Id          []byte
	Name        string
	DisplayName string
	Credentials []webauthn.Credential
}

func (u WebauthnUser) WebAuthnID() []byte {
	return u.Id
}

func (u WebauthnUser) WebAuthnName() string {
	return u.Name
}

func (u WebauthnUser) WebAuthnDisplayName() string {
	return u.DisplayName
}

func (u WebauthnUser) WebAuthnCredentials() []webauthn.Credential {
	return u.Credentials
}

type NewWebauthnOpts struct {
	RpId          string
	RpDisplayName string
	RpOrigins     []string
}

type Webauthn struct {
	relyingParty *webauthn.WebAuthn
}

func NewWebauthn(opts NewWebauthnOpts) (*Webauthn, error) {
	relyingParty, err := webauthn.New(&webauthn.Config{
		RPDisplayName: opts.RpDisplayName,
		RPID:          opts.RpId,
		RPOrigins:     opts.RpOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialise webauthn relying party: %w", err)
	}
	return &Webauthn{relyingParty: relyingParty}, nil
}

// BeginRegistration starts a registration ceremony and returns the
// publicKeyCredentialCreationOptions payload for the client together
// with the serialized server-side state that must survive until
// FinishRegistration.
func (w *Webauthn) BeginRegistration(user WebauthnUser) (creationData []byte, state []byte, err error) {
	exclusions := make([]protocol.CredentialDescriptor, 0, len(user.Credentials))
	for _, credential := range user.Credentials {
		exclusions = append(exclusions, credential.Descriptor())
	}
	creation, sessionData, err := w.relyingParty.BeginRegistration(
		user,
		webauthn.WithExclusions(exclusions),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin webauthn registration: %w", err)
	}
	creationData, err = json.Marshal(creation)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal creation options: %w", err)
	}
	state, err = json.Marshal(sessionData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal registration state: %w", err)
	}
	return creationData, state, nil
}

// FinishRegistration verifies the client's attestation response
// against the state issued by BeginRegistration and returns the new
// credential on success.
func (w *Webauthn) FinishRegistration(user WebauthnUser, state []byte, response []byte) (*webauthn.Credential, error) {
	var sessionData webauthn.SessionData
	if err := json.Unmarshal(state, &sessionData); err != nil {
		return nil, fmt.Errorf("failed to parse registration state: %w", err)
	}
	parsedResponse, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(response))
	if err != nil {
		return nil, fmt.Errorf("failed to parse attestation response: %w", err)
	}
	credential, err := w.relyingParty.CreateCredential(user, sessionData, parsedResponse)
	if err != nil {
		return nil, fmt.Errorf("failed to verify attestation: %w", err)
	}
	return credential, nil
}
