package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"vigil/internal/auth"
	"vigil/internal/cache"
	"vigil/internal/common"

	"github.com/google/uuid"
)

var sessionSigningToken string

func SetSessionSigningToken(token string) {
	sessionSigningToken = token
}

var ErrorSessionNotFound = errors.New("session_not_found")

// Session is the cache-backed record behind a bearer token. The nonce
// changes on security-relevant events without invalidating the token
// itself; MfaVerified lists the second-factor kinds satisfied in this
// session.
type Session struct {
	Id          string    `json:"id"`
	UserId      string    `json:"userId"`
	Username    string    `json:"username"`
	Nonce       string    `json:"nonce"`
	MfaVerified []string  `json:"mfaVerified"`
	StartedAt   time.Time `json:"startedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Key returns the identifier used to address this session in the
// cache, minus the prefix.
func (s Session) Key() string {
	return strings.Join([]string{s.UserId, s.Id}, ":")
}

func sessionCacheKey(prefix, userId, sessionId string) string {
	return strings.Join([]string{prefix, userId, sessionId}, ":")
}

func storeSession(prefix string, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrorSessionNotFound
	}
	return cache.Get().Set(sessionCacheKey(prefix, session.UserId, session.Id), string(data), ttl)
}

func loadSession(prefix, userId, sessionId string) (*Session, error) {
	data, err := cache.Get().Get(sessionCacheKey(prefix, userId, sessionId))
	if err != nil {
		if errors.Is(err, cache.ErrorNotFound) {
			return nil, ErrorSessionNotFound
		}
		return nil, fmt.Errorf("failed to retrieve session from cache: %w", err)
	}
	session := Session{}
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &session, nil
}

type CreateSessionV1Opts struct {
	CachePrefix string
	UserId      string
	Username    string
	Ttl         time.Duration
}

// CreateSessionV1 mints a signed bearer token and stores the matching
// session record in the cache.
func CreateSessionV1(opts CreateSessionV1Opts) (string, *Session, error) {
	sessionId := uuid.NewString()
	nonce, err := common.GenerateRandomString(32)
	if err != nil {
		return "", nil, fmt.Errorf("models.CreateSessionV1: failed to generate nonce: %w", err)
	}
	now := time.Now()
	session := &Session{
		Id:          sessionId,
		UserId:      opts.UserId,
		Username:    opts.Username,
		Nonce:       nonce,
		MfaVerified: []string{},
		StartedAt:   now,
		ExpiresAt:   now.Add(opts.Ttl),
	}
	token, err := auth.GenerateJwt(auth.GenerateJwtOpts{
		Audience: "vigil/controller",
		Id:       sessionId,
		Issuer:   "vigil",
		Secret:   sessionSigningToken,
		Subject:  opts.UserId,
		Ttl:      opts.Ttl,
		UserId:   opts.UserId,
		Username: opts.Username,
	})
	if err != nil {
		return "", nil, fmt.Errorf("models.CreateSessionV1: failed to sign token: %w", err)
	}
	if err := storeSession(opts.CachePrefix, session); err != nil {
		return "", nil, fmt.Errorf("models.CreateSessionV1: failed to store session: %w", err)
	}
	return token, session, nil
}

type GetSessionV1Opts struct {
	BearerToken string
	CachePrefix string
}

// GetSessionV1 validates a bearer token and resolves its live session
// record. A token whose session was evicted from the cache is invalid
// even when the signature still verifies.
func GetSessionV1(opts GetSessionV1Opts) (*Session, error) {
	claims, err := auth.ValidateJWT(sessionSigningToken, opts.BearerToken)
	if err != nil {
		return nil, fmt.Errorf("models.GetSessionV1: failed to validate token: %w", err)
	}
	session, err := loadSession(opts.CachePrefix, claims.UserID, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("models.GetSessionV1: %w", err)
	}
	if session.Id != claims.ID {
		return nil, fmt.Errorf("models.GetSessionV1: %w", ErrorSessionNotFound)
	}
	return session, nil
}

type DeleteSessionV1Opts struct {
	BearerToken string
	CachePrefix string
}

// DeleteSessionV1 logs the bearer out by evicting the session record.
// Returns the id of the deleted session.
func DeleteSessionV1(opts DeleteSessionV1Opts) (string, error) {
	session, err := GetSessionV1(GetSessionV1Opts{
		BearerToken: opts.BearerToken,
		CachePrefix: opts.CachePrefix,
	})
	if err != nil {
		return "", err
	}
	if err := cache.Get().Del(sessionCacheKey(opts.CachePrefix, session.UserId, session.Id)); err != nil {
		return "", fmt.Errorf("models.DeleteSessionV1: failed to evict session: %w", err)
	}
	return session.Id, nil
}

type RotateSessionNonceV1Opts struct {
	CachePrefix string
	UserId      string
	SessionId   string
}

// RotateSessionNonceV1 replaces the session nonce in place, keeping
// the session valid.
func RotateSessionNonceV1(opts RotateSessionNonceV1Opts) error {
	session, err := loadSession(opts.CachePrefix, opts.UserId, opts.SessionId)
	if err != nil {
		return fmt.Errorf("models.RotateSessionNonceV1: %w", err)
	}
	nonce, err := common.GenerateRandomString(32)
	if err != nil {
		return fmt.Errorf("models.RotateSessionNonceV1: failed to generate nonce: %w", err)
	}
	session.Nonce = nonce
	if err := storeSession(opts.CachePrefix, session); err != nil {
		return fmt.Errorf("models.RotateSessionNonceV1: failed to store session: %w", err)
	}
	return nil
}

type MarkSessionMfaV1Opts struct {
	CachePrefix string
	UserId      string
	SessionId   string
	Kind        string
}

// MarkSessionMfaV1 records that the session satisfied the given
// second-factor kind.
func MarkSessionMfaV1(opts MarkSessionMfaV1Opts) error {
	session, err := loadSession(opts.CachePrefix, opts.UserId, opts.SessionId)
	if err != nil {
		return fmt.Errorf("models.MarkSessionMfaV1: %w", err)
	}
	for _, kind := range session.MfaVerified {
		if kind == opts.Kind {
			return nil
		}
	}
	session.MfaVerified = append(session.MfaVerified, opts.Kind)
	if err := storeSession(opts.CachePrefix, session); err != nil {
		return fmt.Errorf("models.MarkSessionMfaV1: failed to store session: %w", err)
	}
	return nil
}
