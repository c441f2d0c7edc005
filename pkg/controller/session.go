package controller

import (
	"net/http"
	"time"
)

type CreateSessionV1Input struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateSessionV1Output struct {
	SessionToken string `json:"sessionToken"`
	ExpiresAt    string `json:"expiresAt"`
}

// CreateSessionV1 exchanges credentials for a bearer token.
func (c Client) CreateSessionV1(input CreateSessionV1Input) (*CreateSessionV1Output, error) {
	var output CreateSessionV1Output
	if _, err := c.doRequest(http.MethodPost, "/api/v1/session", input, &output); err != nil {
		return nil, err
	}
	return &output, nil
}

type GetSessionV1Output struct {
	Id          string    `json:"id"`
	UserId      string    `json:"userId"`
	Username    string    `json:"username"`
	MfaVerified []string  `json:"mfaVerified"`
	StartedAt   time.Time `json:"startedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// GetSessionV1 returns the caller's current session.
func (c Client) GetSessionV1() (*GetSessionV1Output, error) {
	var output GetSessionV1Output
	if _, err := c.doRequest(http.MethodGet, "/api/v1/session", nil, &output); err != nil {
		return nil, err
	}
	return &output, nil
}

type DeleteSessionV1Output struct {
	SessionId    string `json:"sessionId"`
	IsSuccessful bool   `json:"isSuccessful"`
}

// DeleteSessionV1 logs the caller out.
func (c Client) DeleteSessionV1() (*DeleteSessionV1Output, error) {
	var output DeleteSessionV1Output
	if _, err := c.doRequest(http.MethodDelete, "/api/v1/session", nil, &output); err != nil {
		return nil, err
	}
	return &output, nil
}
