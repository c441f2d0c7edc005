package mfa

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vigil/internal/auth"
	"vigil/internal/cache"
	"vigil/internal/ratelimit"
)

const (
	smsSendLimit  int64 = 3
	smsSendWindow       = 5 * time.Minute
)

// SmsStrategy enrolls a phone number as a second factor. Enrollment is
// a two-step exchange: a submission without a code triggers delivery,
// the follow-up submission with the received code completes it.
type SmsStrategy struct {
	Cache   cache.Cache
	Sender  auth.SmsSender
	Limiter ratelimit.Limiter
}

func (s SmsStrategy) Kind() Kind {
	return KindSms
}

func (s SmsStrategy) Capabilities() Capabilities {
	return Capabilities{AllowRotationInPlace: true}
}

func (s SmsStrategy) FormFields() []FormField {
	return []FormField{
		{Name: "phone_number", Label: "Phone number", Type: "string", Required: true},
		{Name: "otp", Label: "Verification code", Type: "string", Required: false},
	}
}

func (s SmsStrategy) Prepare(ctx context.Context, input PrepareInput) (*Prepared, error) {
	return &Prepared{
		PhoneNumber: input.PhoneNumber,
		Fields:      s.FormFields(),
	}, nil
}

func (s SmsStrategy) Validate(ctx context.Context, input ValidateInput) (*Material, error) {
	if input.PhoneNumber == "" {
		return nil, ErrorPhoneNumberRequired
	}
	if input.Otp == "" {
		return s.sendOtp(ctx, input)
	}
	if err := auth.VerifySmsOtp(s.Cache, input.UserId, input.PhoneNumber, input.Otp); err != nil {
		if errors.Is(err, auth.ErrorOtpMismatch) || errors.Is(err, auth.ErrorOtpNotIssued) {
			return nil, ErrorInvalidOtp
		}
		return nil, fmt.Errorf("failed to verify sms otp: %w", err)
	}
	return &Material{PhoneNumber: input.PhoneNumber}, nil
}

func (s SmsStrategy) sendOtp(ctx context.Context, input ValidateInput) (*Material, error) {
	isLimited, err := s.Limiter.IsLimited(fmt.Sprintf("sms-enroll:%s", input.UserId), smsSendLimit, smsSendWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate sms send limit: %w", err)
	}
	if isLimited {
		return nil, ErrorSmsRateLimited
	}
	code, err := auth.IssueSmsOtp(s.Cache, input.UserId, input.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to issue sms otp: %w", err)
	}
	message := fmt.Sprintf("Your verification code is %s", code)
	if err := s.Sender.Send(ctx, input.PhoneNumber, message); err != nil {
		return nil, ErrorSmsSendFailed
	}
	return &Material{PhoneNumber: input.PhoneNumber, Pending: true}, nil
}
