package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"vigil/internal/audit"
	"vigil/internal/auth"
	"vigil/internal/common"
	"vigil/internal/controller/models"
)

const sessionTtl = 12 * time.Hour

func registerSessionRoutes(opts RouteRegistrationOpts) {
	v1 := opts.Router.PathPrefix("/v1/session").Subrouter()

	v1.HandleFunc("", handleCreateSessionV1).Methods(http.MethodPost)
	v1.HandleFunc("", handleGetSessionV1).Methods(http.MethodGet)
	v1.HandleFunc("", handleDeleteSessionV1).Methods(http.MethodDelete)
}

type handleCreateSessionV1Input struct {
	// Email is the user's email address
	Email string `json:"email"`

	// Password is the user's password
	Password string `json:"password"`
}

type handleCreateSessionV1Output struct {
	SessionToken string `json:"sessionToken"`
	ExpiresAt    string `json:"expiresAt"`
}

// handleCreateSessionV1 authenticates the submitted credentials and
// issues a bearer token for subsequent requests.
func handleCreateSessionV1(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)
	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to read request body", ErrorInvalidInput)
		return
	}
	var input handleCreateSessionV1Input
	if err := json.Unmarshal(requestBody, &input); err != nil {
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to parse request body", ErrorInvalidInput)
		return
	}
	log(common.LogLevelDebug, "successfully parsed body into expected input class")

	if input.Email == "" || input.Password == "" {
		common.SendHttpFailResponse(w, r, http.StatusBadRequest, "failed to receive credentials", ErrorInvalidInput)
		return
	}

	user, err := models.GetUserV1(models.GetUserV1Opts{Db: db, Email: &input.Email})
	if err != nil {
		if errors.Is(err, models.ErrorNotFound) {
			common.SendHttpFailResponse(w, r, http.StatusUnauthorized, "failed to create session", ErrorInvalidCredentials)
			return
		}
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to retrieve user", ErrorDatabaseIssue)
		return
	}
	if user.PasswordHash == nil || !auth.ValidatePassword(input.Password, *user.PasswordHash) {
		recordAudit(audit.LogEntry{
			EntityId:     user.Id,
			EntityType:   audit.UserEntity,
			Verb:         audit.Create,
			ResourceType: audit.SessionResource,
			Status:       audit.Failed,
			SrcIp:        &r.RemoteAddr,
		})
		common.SendHttpFailResponse(w, r, http.StatusUnauthorized, "failed to create session", ErrorInvalidCredentials)
		return
	}

	sessionToken, session, err := models.CreateSessionV1(models.CreateSessionV1Opts{
		CachePrefix: sessionCachePrefix,
		UserId:      user.Id,
		Username:    user.Email,
		Ttl:         sessionTtl,
	})
	if err != nil {
		common.SendHttpFailResponse(w, r, http.StatusInternalServerError, "failed to create session", ErrorGeneric)
		return
	}
	log(common.LogLevelDebug, fmt.Sprintf("successfully issued session[%s] for user[%s]", session.Id, user.Id))
	recordAudit(audit.LogEntry{
		EntityId:     user.Id,
		EntityType:   audit.UserEntity,
		Verb:         audit.Create,
		ResourceId:   session.Id,
		ResourceType: audit.SessionResource,
		Status:       audit.Success,
		SrcIp:        &r.RemoteAddr,
	})

	common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", handleCreateSessionV1Output{
		SessionToken: sessionToken,
		ExpiresAt:    session.ExpiresAt.Format(time.RFC3339),
	})
}

// handleGetSessionV1 returns information about the caller's current
// session.
func handleGetSessionV1(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)

	authorizationHeader := r.Header.Get("Authorization")
	if strings.Index(authorizationHeader, "Bearer ") != 0 {
		common.SendHttpFailResponse(w, r, http.StatusUnauthorized, "failed to receive a valid authorization header", ErrorAuthRequired)
		return
	}
	authorizationToken := strings.TrimPrefix(authorizationHeader, "Bearer ")

	sessionInfo, err := models.GetSessionV1(models.GetSessionV1Opts{
		BearerToken: authorizationToken,
		CachePrefix: sessionCachePrefix,
	})
	if err != nil {
		common.SendHttpFailResponse(w, r, http.StatusUnauthorized, "failed to retrieve session details", ErrorAuthRequired)
		return
	}
	log(common.LogLevelDebug, fmt.Sprintf("session[%s] is valid until %s", sessionInfo.Id, sessionInfo.ExpiresAt.Format(time.RFC3339)))

	common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", sessionInfo)
}

type handleDeleteSessionV1Output struct {
	SessionId    string `json:"sessionId"`
	IsSuccessful bool   `json:"isSuccessful"`
}

// handleDeleteSessionV1 logs the current user out.
func handleDeleteSessionV1(w http.ResponseWriter, r *http.Request) {
	log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)
	authorizationHeader := r.Header.Get("Authorization")
	if strings.Index(authorizationHeader, "Bearer ") != 0 {
		common.SendHttpFailResponse(w, r, http.StatusUnauthorized, "failed to receive a valid authorization header", ErrorAuthRequired)
		return
	}
	authorizationToken := strings.TrimPrefix(authorizationHeader, "Bearer ")

	sessionId, err := models.DeleteSessionV1(models.DeleteSessionV1Opts{
		BearerToken: authorizationToken,
		CachePrefix: sessionCachePrefix,
	})
	if err != nil {
		log(common.LogLevelWarn, fmt.Sprintf("failed to delete session: %s", err))
		common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", handleDeleteSessionV1Output{
			SessionId:    "",
			IsSuccessful: false,
		})
		return
	}
	log(common.LogLevelDebug, fmt.Sprintf("session[%s] has been deleted", sessionId))
	common.SendHttpSuccessResponse(w, r, http.StatusOK, "ok", handleDeleteSessionV1Output{
		SessionId:    sessionId,
		IsSuccessful: true,
	})
}
