package core

import (
	"encoding/base64"
	"fmt"
)

// AuthType represents the type of authentication.
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "apikey"
)

// AuthTypeNames returns display names for auth types.
var AuthTypeNames = map[AuthType]string{
	AuthTypeNone:   "No Auth",
	AuthTypeBasic:  "Basic Auth",
	AuthTypeBearer: "Bearer Token",
	AuthTypeAPIKey: "API Key",
}

// AuthConfig holds authentication configuration. Exactly one variant is
// active at a time, selected by Type.
type AuthConfig struct {
	Type string `json:"type" yaml:"type"`

	// bearer
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// basic
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// apikey
	HeaderName  string `json:"headerName,omitempty" yaml:"headerName,omitempty"`
	HeaderValue string `json:"headerValue,omitempty" yaml:"headerValue,omitempty"`
}

// NewBasicAuth creates a basic auth configuration.
func NewBasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: string(AuthTypeBasic), Username: username, Password: password}
}

// NewBearerAuth creates a bearer token auth configuration.
func NewBearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: string(AuthTypeBearer), Token: token}
}

// NewAPIKeyAuth creates an API key auth configuration.
func NewAPIKeyAuth(headerName, headerValue string) *AuthConfig {
	return &AuthConfig{Type: string(AuthTypeAPIKey), HeaderName: headerName, HeaderValue: headerValue}
}

// GetAuthType returns the auth type as an AuthType enum.
func (a *AuthConfig) GetAuthType() AuthType {
	if a == nil || a.Type == "" {
		return AuthTypeNone
	}
	return AuthType(a.Type)
}

// IsConfigured returns true if authentication is configured (not none/empty).
func (a *AuthConfig) IsConfigured() bool {
	if a == nil {
		return false
	}
	switch a.GetAuthType() {
	case AuthTypeBasic, AuthTypeBearer, AuthTypeAPIKey:
		return true
	}
	return false
}

// ApplyToHeaders sets the headers implied by this configuration. A per-variant
// single header is written, overwriting any user-supplied Authorization.
func (a *AuthConfig) ApplyToHeaders(headers map[string]string) {
	if !a.IsConfigured() {
		return
	}

	switch a.GetAuthType() {
	case AuthTypeBasic:
		credentials := base64.StdEncoding.EncodeToString(
			[]byte(a.Username + ":" + a.Password),
		)
		headers["Authorization"] = "Basic " + credentials

	case AuthTypeBearer:
		headers["Authorization"] = "Bearer " + a.Token

	case AuthTypeAPIKey:
		if a.HeaderName != "" {
			headers[a.HeaderName] = a.HeaderValue
		}
	}
}

// Validate checks if the auth configuration is valid.
func (a *AuthConfig) Validate() error {
	if a == nil {
		return nil
	}

	switch a.GetAuthType() {
	case AuthTypeNone:
		return nil

	case AuthTypeBasic:
		if a.Username == "" {
			return fmt.Errorf("basic auth requires username")
		}
		// Password can be empty

	case AuthTypeBearer:
		if a.Token == "" {
			return fmt.Errorf("bearer auth requires token")
		}

	case AuthTypeAPIKey:
		if a.HeaderName == "" {
			return fmt.Errorf("API key auth requires header name")
		}
	}

	return nil
}

// Clone creates a copy of the auth config.
func (a *AuthConfig) Clone() *AuthConfig {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// DisplayName returns a human-readable name for the auth type.
func (a *AuthConfig) DisplayName() string {
	if name, ok := AuthTypeNames[a.GetAuthType()]; ok {
		return name
	}
	return string(a.GetAuthType())
}

// Summary returns a brief summary of the auth configuration.
func (a *AuthConfig) Summary() string {
	if !a.IsConfigured() {
		return "No authentication"
	}

	switch a.GetAuthType() {
	case AuthTypeBasic:
		return fmt.Sprintf("Basic: %s", a.Username)
	case AuthTypeBearer:
		if len(a.Token) > 20 {
			return fmt.Sprintf("Bearer: %s...%s", a.Token[:8], a.Token[len(a.Token)-4:])
		}
		return "Bearer: ****"
	case AuthTypeAPIKey:
		return fmt.Sprintf("API Key: %s", a.HeaderName)
	default:
		return a.DisplayName()
	}
}
