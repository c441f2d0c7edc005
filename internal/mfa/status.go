package mfa

// ResolveEnrollment decides what an enrollment attempt means for an
// interface given whether the user already has it enrolled. Both the
// describe and complete paths go through this single decision so they
// cannot disagree.
func ResolveEnrollment(isEnrolled bool, capabilities Capabilities) (EnrollmentStatus, error) {
	if !isEnrolled {
		return EnrollmentStatusNone, nil
	}
	if capabilities.AllowMultiEnrollment {
		return EnrollmentStatusMulti, nil
	}
	if capabilities.AllowRotationInPlace {
		return EnrollmentStatusRotation, nil
	}
	return "", ErrorAlreadyEnrolled
}
