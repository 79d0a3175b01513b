package entity

import (
	"fmt"
	"strings"
)

// ExternalIdentity is the normalized profile an identity provider returns for an
// access token. It is consumed once per login and never stored directly.
type ExternalIdentity struct {
	Provider    string
	ExternalID  string
	DisplayName string
	Email       string
	AvatarURL   string
}

// EmailOrPlaceholder returns the provider email, or "<externalId>@<domain>" when the
// provider did not share one, so every account has a non-empty email.
func (i ExternalIdentity) EmailOrPlaceholder(domain string) string {
	if email := strings.TrimSpace(i.Email); email != "" {
		return email
	}
	return fmt.Sprintf("%s@%s", i.ExternalID, domain)
}

// NewUser builds the account row for a first login. ID and CreatedAt are left for
// the repository to assign.
func (i ExternalIdentity) NewUser(emailDomain string) *User {
	return &User{
		ExternalID:  i.ExternalID,
		Provider:    i.Provider,
		Email:       i.EmailOrPlaceholder(emailDomain),
		DisplayName: i.DisplayName,
		AvatarURL:   i.AvatarURL,
	}
}
