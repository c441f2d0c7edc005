package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"vigil/internal/cache"
	"vigil/internal/common"
)

const (
	smsOtpLength = 6
	SmsOtpTtl    = 10 * time.Minute
)

// SmsSender delivers a one-time code to a phone number. The transport
// (gateway provider) lives outside this codebase.
type SmsSender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// LogSmsSender writes the message to the service log instead of
// sending it; the default when no gateway is configured.
type LogSmsSender struct {
	ServiceLogs chan<- common.ServiceLog
}

func (s LogSmsSender) Send(ctx context.Context, phoneNumber, message string) error {
	if s.ServiceLogs == nil {
		return ErrorSmsUnavailable
	}
	s.ServiceLogs <- common.ServiceLogf(common.LogLevelWarn, "sms gateway not configured, message for phone[%s]: %s", phoneNumber, message)
	return nil
}

func smsOtpKey(userId, phoneNumber string) string {
	return strings.Join([]string{"sms-otp", userId, phoneNumber}, ":")
}

// IssueSmsOtp creates a numeric one-time code for the given
// user/phone pair and stores it with a TTL. The previous code for the
// same pair, if any, is replaced.
func IssueSmsOtp(store cache.Cache, userId, phoneNumber string) (string, error) {
	code, err := common.GenerateRandomDigits(smsOtpLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate sms otp: %w", err)
	}
	if err := store.Set(smsOtpKey(userId, phoneNumber), code, SmsOtpTtl); err != nil {
		return "", fmt.Errorf("failed to store sms otp: %w", err)
	}
	return code, nil
}

// VerifySmsOtp checks a submitted code against the stored one and
// consumes it on success.
func VerifySmsOtp(store cache.Cache, userId, phoneNumber, code string) error {
	expected, err := store.Get(smsOtpKey(userId, phoneNumber))
	if err != nil {
		if errors.Is(err, cache.ErrorNotFound) {
			return ErrorOtpNotIssued
		}
		return fmt.Errorf("failed to retrieve sms otp: %w", err)
	}
	if expected != code {
		return ErrorOtpMismatch
	}
	if err := store.Del(smsOtpKey(userId, phoneNumber)); err != nil {
		return fmt.Errorf("failed to consume sms otp: %w", err)
	}
	return nil
}
