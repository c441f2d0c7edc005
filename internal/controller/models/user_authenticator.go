package models

import "time"

type UserAuthenticators []UserAuthenticator

func (a UserAuthenticators) GetRedacted() UserAuthenticators {
	output := UserAuthenticators{}
	for _, authenticator := range a {
		output = append(output, authenticator.GetRedacted())
	}
	return output
}

type UserAuthenticator struct {
	Id          string     `json:"id"`
	UserId      string     `json:"userId"`
	Kind        string     `json:"kind"`
	Secret      *string    `json:"secret"`
	PhoneNumber *string    `json:"phoneNumber"`
	Credential  []byte     `json:"credential"`
	DeviceName  *string    `json:"deviceName"`
	CreatedAt   *time.Time `json:"createdAt"`
	VerifiedAt  *time.Time `json:"verifiedAt"`
}

func (a UserAuthenticator) GetRedacted() UserAuthenticator {
	b := a
	b.Secret = nil
	b.Credential = nil
	return b
}
