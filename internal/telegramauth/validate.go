// Package telegramauth implements the Telegram Mini-App session boundary:
// HMAC-SHA256 verification of the WebApp initData blob and issuance of signed
// session tokens for validated users. The ledger core is identity-agnostic;
// this package only establishes who is calling.
package telegramauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
)

// Common validation errors
var (
	ErrMissingHash  = errors.New("init data has no hash parameter")
	ErrMissingUser  = errors.New("init data has no user parameter")
	ErrBadSignature = errors.New("init data signature mismatch")
)

// ErrMalformedInitData indicates init data that could not be parsed
type ErrMalformedInitData struct {
	Err error
}

func (e ErrMalformedInitData) Error() string {
	return "malformed init data: " + e.Err.Error()
}

func (e ErrMalformedInitData) Unwrap() error {
	return e.Err
}

// Is implements the errors.Is interface for ErrMalformedInitData
func (e ErrMalformedInitData) Is(target error) bool {
	_, ok := target.(ErrMalformedInitData)
	return ok
}

// User is the identity Telegram embeds in validated init data
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// ValidateInitData verifies a Telegram WebApp initData blob against the bot
// token and returns the embedded user on success.
//
// Verification follows the Telegram Mini-App protocol: the hash parameter is
// removed, the remaining key/value pairs are sorted by key and joined as
// "key=value" lines, and the result is signed with
// HMAC-SHA256(HMAC-SHA256("WebAppData", botToken), canonical). The lowercase
// hex signature must equal the supplied hash byte for byte.
func ValidateInitData(initData, botToken string) (*User, error) {
	params, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrMalformedInitData{Err: err}
	}

	suppliedHash := params.Get("hash")
	if suppliedHash == "" {
		return nil, ErrMissingHash
	}
	params.Del("hash")

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params.Get(k))
	}
	canonical := strings.Join(pairs, "\n")

	secretKey := hmacSHA256([]byte("WebAppData"), []byte(botToken))
	signature := hex.EncodeToString(hmacSHA256(secretKey, []byte(canonical)))

	if !hmac.Equal([]byte(signature), []byte(suppliedHash)) {
		return nil, ErrBadSignature
	}

	userJSON := params.Get("user")
	if userJSON == "" {
		return nil, ErrMissingUser
	}
	var user User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return nil, ErrMalformedInitData{Err: err}
	}

	return &user, nil
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}
