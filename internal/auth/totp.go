package auth

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
)

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    6,
	Algorithm: otp.AlgorithmSHA1,
}

func CreateTotpSeed(issuer, accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

func ValidateTotpToken(secret string, token string) (bool, error) {
	return totp.ValidateCustom(token, secret, time.Now().UTC(), totpOpts)
}

// GenerateTotpToken returns the code valid for the current period;
// used by tests and the local code generator helper.
func GenerateTotpToken(secret string) (string, error) {
	return totp.GenerateCodeCustom(secret, time.Now().UTC(), totpOpts)
}

type GetTotpProvisioningUriOpts struct {
	Issuer    string
	AccountId string
	Secret    string
}

// GetTotpProvisioningUri returns the otpauth:// URI that authenticator
// apps consume.
func GetTotpProvisioningUri(opts GetTotpProvisioningUriOpts) string {
	label := url.PathEscape(fmt.Sprintf("%s:%s", opts.Issuer, opts.AccountId))
	q := url.Values{}
	q.Set("secret", strings.ToUpper(opts.Secret)) // most apps expect uppercase
	q.Set("issuer", opts.Issuer)
	q.Set("algorithm", totpOpts.Algorithm.String())
	q.Set("digits", fmt.Sprintf("%d", totpOpts.Digits))
	q.Set("period", fmt.Sprintf("%d", totpOpts.Period))
	return fmt.Sprintf("otpauth://totp/%s?%s", label, q.Encode())
}

// GetTotpQrCode renders the provisioning URI as a base64-encoded PNG
// suitable for embedding in a data URL.
func GetTotpQrCode(opts GetTotpProvisioningUriOpts) (string, error) {
	png, err := qrcode.Encode(GetTotpProvisioningUri(opts), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to create qr code: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
