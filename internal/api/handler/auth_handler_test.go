package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerai/merchant-ledger/internal/telegramauth"
)

const testBotToken = "7000000001:AAFakeBotTokenForTestingOnly_abcdefg"

func signedInitData(t *testing.T, botToken, userJSON string) string {
	t.Helper()

	canonical := "auth_date=1716922846\nuser=" + userJSON

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	sig := hmac.New(sha256.New, secret.Sum(nil))
	sig.Write([]byte(canonical))

	values := url.Values{}
	values.Set("auth_date", "1716922846")
	values.Set("user", userJSON)
	values.Set("hash", hex.EncodeToString(sig.Sum(nil)))
	return values.Encode()
}

func newAuthHandler() *AuthHandler {
	sessions := telegramauth.NewSessionManager("test-signing-secret", time.Hour)
	return NewAuthHandler(testHandlerLogger(), testBotToken, sessions)
}

func TestAuthHandler_Authenticate(t *testing.T) {
	userJSON := `{"id":99281932,"first_name":"Andrew","username":"rogue"}`

	t.Run("Success", func(t *testing.T) {
		handler := newAuthHandler()
		router := setupTestRouter()
		router.POST("/auth/telegram", handler.Authenticate)

		jsonBody, _ := json.Marshal(TelegramAuthRequest{
			InitData: signedInitData(t, testBotToken, userJSON),
		})
		req, _ := http.NewRequest(http.MethodPost, "/auth/telegram", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp TelegramAuthResponse
		decodeData(t, rr.Body.Bytes(), &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, int64(99281932), resp.User.TelegramID)
		assert.Equal(t, "rogue", resp.User.Username)

		// The issued token must verify against the same session manager config.
		sessions := telegramauth.NewSessionManager("test-signing-secret", time.Hour)
		claims, err := sessions.Verify(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(99281932), claims.TelegramID)
	})

	t.Run("BadSignature", func(t *testing.T) {
		handler := newAuthHandler()
		router := setupTestRouter()
		router.POST("/auth/telegram", handler.Authenticate)

		jsonBody, _ := json.Marshal(TelegramAuthRequest{
			InitData: signedInitData(t, "7000000002:AADifferentToken", userJSON),
		})
		req, _ := http.NewRequest(http.MethodPost, "/auth/telegram", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, rr.Body.Bytes()).Code)
	})

	t.Run("MalformedInitData", func(t *testing.T) {
		handler := newAuthHandler()
		router := setupTestRouter()
		router.POST("/auth/telegram", handler.Authenticate)

		jsonBody, _ := json.Marshal(TelegramAuthRequest{InitData: "user=x"})
		req, _ := http.NewRequest(http.MethodPost, "/auth/telegram", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("MissingInitData", func(t *testing.T) {
		handler := newAuthHandler()
		router := setupTestRouter()
		router.POST("/auth/telegram", handler.Authenticate)

		req, _ := http.NewRequest(http.MethodPost, "/auth/telegram", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
