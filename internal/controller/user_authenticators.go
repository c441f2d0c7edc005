package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"vigil/internal/common"
	"vigil/internal/controller/models"
	"vigil/internal/mfa"
	"vigil/internal/validate"

	"github.com/gorilla/mux"
)

func registerUserRoutes(opts RouteRegistrationOpts) {
	v1 := opts.Router.PathPrefix("/v1/users").Subrouter()
	v1.Use(getRouteAuther(opts.ServiceLogs))

	v1.HandleFunc("/{userId}/authenticators", handleListUserAuthenticatorsV1).Methods(http.MethodGet)
	v1.HandleFunc("/{userId}/authenticators/interfaces", handleListEnrollmentInterfacesV1).Methods(http.MethodGet)
	v1.HandleFunc("/{userId}/authenticators/{interfaceId}/enroll", handleGetEnrollmentV1).Methods(http.MethodGet)
	v1.HandleFunc("/{userId}/authenticators/{interfaceId}/enroll", handleCompleteEnrollmentV1).Methods(http.MethodPost)
}

// resolveTargetUser maps the `userId` path segment to the effective
// user, allowing `me` as an alias. Acting on another user's
// authenticators is not allowed.
func resolveTargetUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := r.Context().Value(authRequestContext).(identity)
	vars := mux.Vars(r)
	userId := vars["userId"]
	if userId == "me" || userId == caller.UserId {
		return caller.UserId, true
	}
	common.SendHttpFailResponse(w, r, http.StatusForbidden, detailsEnrollOnBehalf, ErrorEnrollmentForbidden)
	return "", false
}

// sendEnrollmentError converts enrollment service errors into their
// fixed status codes and constant details messages.
func sendEnrollmentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, mfa.ErrorUnknownInterface):
		common.SendHttpFailResponse(w, r, http.StatusNotFound, detailsUnknownInterface, ErrorUnknownInterface)
	case errors.Is(err, mfa.ErrorNewEnrollmentDisallowed):
		common.SendHttpFailResponse(w, r, http.StatusForbidden, detailsNewEnrollmentDisallowed, ErrorEnrollmentForbidden)
	case errors.Is(err, mfa.ErrorAlreadyEnrolled):
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, detailsAlreadyEnrolled, ErrorAlreadyEnrolled)
	case errors.Is(err, mfa.ErrorInvalidOtp):
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, detailsInvalidOtp, ErrorInvalidInput)
	case errors.Is(err, mfa.ErrorInvalidAuthState):
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, detailsInvalidAuthState, ErrorInvalidInput)
	case errors.Is(err, mfa.ErrorInvalidAttestation):
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, detailsInvalidAttestation, ErrorInvalidCredentials)
	case errors.Is(err, mfa.ErrorPhoneNumberRequired):
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, detailsPhoneNumberRequired, ErrorInvalidInput)
	case errors.Is(err, mfa.ErrorRateLimited), errors.Is(err, mfa.ErrorSmsRateLimited):
		common.SendHttpFailResponse(w, r, http.StatusTooManyRequests, detailsRateLimited, ErrorRateLimited)
	case errors.Is(err, mfa.ErrorSmsSendFailed):
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, detailsSmsSendFailed, ErrorSmsDeliveryFailed)
	default:
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to process enrollment", ErrorGeneric)
	}
}

// handleListUserAuthenticatorsV1 lists the caller's verified
// authenticators with secret material redacted.
func handleListUserAuthenticatorsV1(w http.ResponseWriter, r *http.Request) {
	userId, ok := resolveTargetUser(w, r)
	if !ok {
		return
	}
	authenticators, err := models.ListUserAuthenticatorsV1(models.ListUserAuthenticatorsV1Opts{
		Db:     db,
		UserId: userId,
	})
	if err != nil {
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to list authenticators", ErrorDatabaseIssue)
		return
	}
	common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", authenticators.GetRedacted())
}

type handleListEnrollmentInterfacesV1Output struct {
	Kind   string          `json:"kind"`
	Fields []mfa.FormField `json:"fields"`
}

// handleListEnrollmentInterfacesV1 lists the second-factor interfaces
// available for enrollment together with their form metadata.
func handleListEnrollmentInterfacesV1(w http.ResponseWriter, r *http.Request) {
	if _, ok := resolveTargetUser(w, r); !ok {
		return
	}
	output := []handleListEnrollmentInterfacesV1Output{}
	for _, entry := range mfaService.Interfaces() {
		output = append(output, handleListEnrollmentInterfacesV1Output{
			Kind:   string(entry.Kind),
			Fields: entry.Fields,
		})
	}
	common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", output)
}

type handleGetEnrollmentV1Output struct {
	Kind            string          `json:"kind"`
	Status          string          `json:"status"`
	Secret          string          `json:"secret,omitempty"`
	ProvisioningUri string          `json:"provisioningUri,omitempty"`
	QrCode          string          `json:"qrCode,omitempty"`
	Challenge       json.RawMessage `json:"challenge,omitempty"`
	PhoneNumber     string          `json:"phoneNumber,omitempty"`
	Fields          []mfa.FormField `json:"fields"`
}

// handleGetEnrollmentV1 returns the enrollment form for an interface:
// form-field metadata plus kind-specific material (totp seed and qr
// code, webauthn challenge).
func handleGetEnrollmentV1(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)
	caller := r.Context().Value(authRequestContext).(identity)
	userId, ok := resolveTargetUser(w, r)
	if !ok {
		return
	}
	interfaceId := mux.Vars(r)["interfaceId"]

	user, err := models.GetUserV1(models.GetUserV1Opts{Db: db, Id: &userId})
	if err != nil {
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to retrieve user", ErrorDatabaseIssue)
		return
	}
	phoneNumber := ""
	if user.PhoneNumber != nil {
		phoneNumber = *user.PhoneNumber
	}

	enrollment, err := mfaService.BeginEnrollment(r.Context(), mfa.BeginEnrollmentInput{
		UserId:      userId,
		Email:       user.Email,
		PhoneNumber: phoneNumber,
		Kind:        mfa.Kind(interfaceId),
		SessionKey:  caller.SessionKey(),
	})
	if err != nil {
		sendEnrollmentError(w, r, err)
		return
	}
	log(common.LogLevelDebug, fmt.Sprintf("prepared enrollment[%s] for user[%s] with status[%s]", interfaceId, userId, enrollment.Status))

	common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", handleGetEnrollmentV1Output{
		Kind:            string(enrollment.Kind),
		Status:          string(enrollment.Status),
		Secret:          enrollment.Secret,
		ProvisioningUri: enrollment.ProvisioningUri,
		QrCode:          enrollment.QrCode,
		Challenge:       enrollment.Challenge,
		PhoneNumber:     enrollment.PhoneNumber,
		Fields:          enrollment.Fields,
	})
}

type handleCompleteEnrollmentV1Input struct {
	// Secret is the totp seed the user proved possession of
	Secret string `json:"secret"`

	// Otp is the one-time code from the authenticator app or sms
	Otp string `json:"otp"`

	// PhoneNumber receives the sms verification code
	PhoneNumber string `json:"phoneNumber"`

	// DeviceName labels a webauthn credential
	DeviceName string `json:"deviceName"`

	// Response is the webauthn attestation response
	Response json.RawMessage `json:"response"`
}

// handleCompleteEnrollmentV1 validates the submitted proof and
// persists the authenticator. Responds 204 both on a completed
// enrollment and on the sms send step.
func handleCompleteEnrollmentV1(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)
	caller := r.Context().Value(authRequestContext).(identity)
	userId, ok := resolveTargetUser(w, r)
	if !ok {
		return
	}
	interfaceId := mux.Vars(r)["interfaceId"]

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to read request body", ErrorInvalidInput)
		return
	}
	var input handleCompleteEnrollmentV1Input
	if len(requestBody) > 0 {
		if err := json.Unmarshal(requestBody, &input); err != nil {
			common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to parse request body", ErrorInvalidInput)
			return
		}
	}
	if input.PhoneNumber != "" {
		if err := validate.PhoneNumber(input.PhoneNumber); err != nil {
			common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to receive a valid phone number", ErrorInvalidInput)
			return
		}
	}

	output, err := mfaService.CompleteEnrollment(r.Context(), mfa.CompleteEnrollmentInput{
		UserId:      userId,
		Email:       caller.Username,
		Kind:        mfa.Kind(interfaceId),
		SessionKey:  caller.SessionKey(),
		Secret:      input.Secret,
		Otp:         input.Otp,
		PhoneNumber: input.PhoneNumber,
		DeviceName:  input.DeviceName,
		Response:    input.Response,
	})
	if err != nil {
		sendEnrollmentError(w, r, err)
		return
	}
	if output.Pending {
		log(common.LogLevelDebug, fmt.Sprintf("sent enrollment code for user[%s] interface[%s]", userId, interfaceId))
	} else {
		log(common.LogLevelInfo, fmt.Sprintf("user[%s] enrolled authenticator[%s] via interface[%s]", userId, output.Authenticator.Id, interfaceId))
	}

	common.SendHttpSuccessResponse(w, r, http.StatusNoContent, "ok")
}
