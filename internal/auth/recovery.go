package auth

import (
	"fmt"
	"strings"
	"vigil/internal/common"
)

const (
	RecoveryCodeCount  = 10
	recoveryCodeLength = 8
)

// GenerateRecoveryCodes returns a fresh set of single-use backup codes
// in the XXXX-XXXX format shown to users exactly once.
func GenerateRecoveryCodes(count int) ([]string, error) {
	if count <= 0 {
		count = RecoveryCodeCount
	}
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		raw, err := common.GenerateRandomString(recoveryCodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate recovery code: %w", err)
		}
		raw = strings.ToUpper(raw)
		codes = append(codes, fmt.Sprintf("%s-%s", raw[:recoveryCodeLength/2], raw[recoveryCodeLength/2:]))
	}
	return codes, nil
}
