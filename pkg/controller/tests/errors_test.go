package tests

import (
	"testing"
	intController "vigil/internal/controller"
	"vigil/internal/mfa"
	pkgController "vigil/pkg/controller"
)

func validateSimilarity(name string, i, j error, t *testing.T) {
	if i.Error() != j.Error() {
		t.Errorf("expected %s to be consistent across pkg/controller and internal/controller", name)
	}
}

func TestControllerErrors(t *testing.T) {
	validateSimilarity("ErrorAuthRequired", pkgController.ErrorAuthRequired, intController.ErrorAuthRequired, t)
	validateSimilarity("ErrorInvalidInput", pkgController.ErrorInvalidInput, intController.ErrorInvalidInput, t)
	validateSimilarity("ErrorInvalidCredentials", pkgController.ErrorInvalidCredentials, intController.ErrorInvalidCredentials, t)
	validateSimilarity("ErrorDatabaseIssue", pkgController.ErrorDatabaseIssue, intController.ErrorDatabaseIssue, t)
	validateSimilarity("ErrorAlreadyEnrolled", pkgController.ErrorAlreadyEnrolled, intController.ErrorAlreadyEnrolled, t)
	validateSimilarity("ErrorUnknownInterface", pkgController.ErrorUnknownInterface, intController.ErrorUnknownInterface, t)
	validateSimilarity("ErrorEnrollmentForbidden", pkgController.ErrorEnrollmentForbidden, intController.ErrorEnrollmentForbidden, t)
	validateSimilarity("ErrorRateLimited", pkgController.ErrorRateLimited, intController.ErrorRateLimited, t)
	validateSimilarity("ErrorSmsDeliveryFailed", pkgController.ErrorSmsDeliveryFailed, intController.ErrorSmsDeliveryFailed, t)
	validateSimilarity("ErrorInsufficientScope", pkgController.ErrorInsufficientScope, intController.ErrorInsufficientScope, t)
	validateSimilarity("ErrorMemberNotFound", pkgController.ErrorMemberNotFound, intController.ErrorMemberNotFound, t)
	validateSimilarity("ErrorGeneric", pkgController.ErrorGeneric, intController.ErrorGeneric, t)
}

func TestMfaKinds(t *testing.T) {
	if pkgController.MfaKindTotp != string(mfa.KindTotp) {
		t.Errorf("expected MfaKindTotp to be consistent across pkg/controller and internal/mfa")
	}
	if pkgController.MfaKindSms != string(mfa.KindSms) {
		t.Errorf("expected MfaKindSms to be consistent across pkg/controller and internal/mfa")
	}
	if pkgController.MfaKindWebauthn != string(mfa.KindWebauthn) {
		t.Errorf("expected MfaKindWebauthn to be consistent across pkg/controller and internal/mfa")
	}
}
