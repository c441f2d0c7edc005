package mfa

import (
	"errors"
	"testing"
)

func TestResolveEnrollment(t *testing.T) {
	cases := []struct {
		name         string
		isEnrolled   bool
		capabilities Capabilities
		status       EnrollmentStatus
		err          error
	}{
		{
			name:   "fresh enrollment",
			status: EnrollmentStatusNone,
		},
		{
			name:         "fresh enrollment ignores capabilities",
			capabilities: Capabilities{AllowMultiEnrollment: true},
			status:       EnrollmentStatusNone,
		},
		{
			name:         "enrolled with multi support",
			isEnrolled:   true,
			capabilities: Capabilities{AllowMultiEnrollment: true},
			status:       EnrollmentStatusMulti,
		},
		{
			name:         "enrolled with rotation support",
			isEnrolled:   true,
			capabilities: Capabilities{AllowRotationInPlace: true},
			status:       EnrollmentStatusRotation,
		},
		{
			name:       "enrolled without either",
			isEnrolled: true,
			err:        ErrorAlreadyEnrolled,
		},
		{
			name:         "multi wins over rotation",
			isEnrolled:   true,
			capabilities: Capabilities{AllowMultiEnrollment: true, AllowRotationInPlace: true},
			status:       EnrollmentStatusMulti,
		},
	}
	for _, testcase := range cases {
		t.Run(testcase.name, func(t *testing.T) {
			status, err := ResolveEnrollment(testcase.isEnrolled, testcase.capabilities)
			if !errors.Is(err, testcase.err) {
				t.Fatalf("expected error %v, got %v", testcase.err, err)
			}
			if status != testcase.status {
				t.Errorf("expected status %s, got %s", testcase.status, status)
			}
		})
	}
}
