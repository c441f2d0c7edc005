package controller

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"vigil/internal/common"
	"vigil/internal/controller/models"
)

const authRequestContext common.HttpContextKey = "controller-auth"

type identity struct {
	// SourceIp is the IP address that the request came from
	SourceIp string `json:"sourceIp"`

	// UserAgent is the user agent of the request
	UserAgent string `json:"userAgent"`

	// UserId is the ID of the current caller
	UserId string `json:"userId"`

	// Username is the email of the current caller
	Username string `json:"username"`

	// SessionId identifies the caller's session record in the cache
	SessionId string `json:"sessionId"`

	// MfaVerified lists the second-factor kinds this session satisfied
	MfaVerified []string `json:"mfaVerified"`
}

// SessionKey addresses the caller's session for nonce rotation and
// invite resumption.
func (i identity) SessionKey() string {
	return strings.Join([]string{i.UserId, i.SessionId}, ":")
}

func getRouteAuther(serviceLogs chan<- common.ServiceLog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := r.Context().Value(common.HttpContextLogger).(common.HttpRequestLogger)
			serviceLogs <- common.ServiceLogf(common.LogLevelTrace, "auth middleware is executing")
			authorizationHeader := r.Header.Get("Authorization")
			if strings.Index(authorizationHeader, "Bearer ") != 0 {
				common.SendHttpFailResponse(w, r, http.StatusUnauthorized, "failed to receive an authorization header", ErrorAuthRequired)
				return
			}
			authorizationToken := strings.TrimPrefix(authorizationHeader, "Bearer ")
			session, err := models.GetSessionV1(models.GetSessionV1Opts{
				BearerToken: authorizationToken,
				CachePrefix: sessionCachePrefix,
			})
			if err != nil {
				common.SendHttpFailResponse(w, r, http.StatusUnauthorized, "failed to retrieve session", ErrorAuthRequired)
				return
			}
			log(common.LogLevelInfo, fmt.Sprintf("processing request from user[%s]", session.UserId))
			identityInstance := identity{
				SourceIp:    r.RemoteAddr,
				UserAgent:   r.UserAgent(),
				UserId:      session.UserId,
				Username:    session.Username,
				SessionId:   session.Id,
				MfaVerified: session.MfaVerified,
			}
			authContext := context.WithValue(r.Context(), authRequestContext, identityInstance)
			next.ServeHTTP(w, r.WithContext(authContext))
		})
	}
}
