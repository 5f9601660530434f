package utils

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AuthResult is the outcome of checking an Authorization header.
type AuthResult int

const (
	AuthMissing AuthResult = iota
	AuthInvalid
	AuthAuthenticated
)

func (r AuthResult) String() string {
	switch r {
	case AuthAuthenticated:
		return "authenticated"
	case AuthInvalid:
		return "invalid"
	default:
		return "missing"
	}
}

const basicScheme = "Basic "

// BasicCredentials is the single identity accepted by the inbound endpoint.
// When PasswordHash is set it takes precedence over Password.
type BasicCredentials struct {
	Username     string
	Password     string
	PasswordHash string
}

// ParseBasicAuthorization decodes "Basic base64(user:pass)".
// The pair is split at the first colon so passwords may contain colons.
// An empty username or password counts as no credentials at all.
func ParseBasicAuthorization(header string) (username string, password string, ok bool) {
	if !strings.HasPrefix(header, basicScheme) {
		return "", "", false
	}
	encoded := strings.TrimSpace(header[len(basicScheme):])
	if encoded == "" {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return "", "", false
		}
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found || username == "" || password == "" {
		return "", "", false
	}
	return username, password, true
}

// VerifyBasicAuth classifies the header against the expected credentials.
// An absent or malformed header is AuthMissing, a well-formed wrong pair is AuthInvalid.
func VerifyBasicAuth(header string, expected BasicCredentials) AuthResult {
	username, password, ok := ParseBasicAuthorization(header)
	if !ok {
		return AuthMissing
	}

	userOk := subtle.ConstantTimeCompare([]byte(username), []byte(expected.Username)) == 1
	var passOk bool
	if expected.PasswordHash != "" {
		passOk = ComparePassword(expected.PasswordHash, password) == nil
	} else {
		passOk = subtle.ConstantTimeCompare([]byte(password), []byte(expected.Password)) == 1
	}
	if userOk && passOk {
		return AuthAuthenticated
	}
	return AuthInvalid
}

func HashPassword(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
}

func ComparePassword(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
