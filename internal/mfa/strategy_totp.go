package mfa

import (
	"context"
	"fmt"
	"vigil/internal/auth"
)

// TotpStrategy enrolls time-based one-time-password apps. The secret
// never touches server-side storage until the user proves possession
// by echoing it back with a valid code.
type TotpStrategy struct {
	Issuer string
}

func (s TotpStrategy) Kind() Kind {
	return KindTotp
}

func (s TotpStrategy) Capabilities() Capabilities {
	return Capabilities{AllowRotationInPlace: true}
}

func (s TotpStrategy) FormFields() []FormField {
	return []FormField{
		{Name: "otp", Label: "Authenticator code", Type: "string", Required: true},
	}
}

func (s TotpStrategy) Prepare(ctx context.Context, input PrepareInput) (*Prepared, error) {
	secret, err := auth.CreateTotpSeed(s.Issuer, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to create totp seed: %w", err)
	}
	uriOpts := auth.GetTotpProvisioningUriOpts{
		Issuer:    s.Issuer,
		AccountId: input.Email,
		Secret:    secret,
	}
	qrCode, err := auth.GetTotpQrCode(uriOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return &Prepared{
		Secret:          secret,
		ProvisioningUri: auth.GetTotpProvisioningUri(uriOpts),
		QrCode:          qrCode,
		Fields:          s.FormFields(),
	}, nil
}

func (s TotpStrategy) Validate(ctx context.Context, input ValidateInput) (*Material, error) {
	if input.Secret == "" || input.Otp == "" {
		return nil, ErrorInvalidOtp
	}
	isValid, err := auth.ValidateTotpToken(input.Secret, input.Otp)
	if err != nil {
		return nil, fmt.Errorf("failed to validate totp token: %w", err)
	}
	if !isValid {
		return nil, ErrorInvalidOtp
	}
	return &Material{Secret: input.Secret}, nil
}
