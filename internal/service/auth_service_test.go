package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/jwt"
	"github.com/yunuszade97-del/treadsbot/internal/repository"
	"github.com/yunuszade97-del/treadsbot/internal/testutil"
)

const testBotToken = "123456:TEST-BOT-TOKEN"

func signTelegramAuth(req *dto.TelegramAuthRequest, botToken string) {
	fields := map[string]string{
		"id":        fmt.Sprintf("%d", req.ID),
		"auth_date": fmt.Sprintf("%d", req.AuthDate),
	}
	if req.FirstName != "" {
		fields["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		fields["last_name"] = req.LastName
	}
	if req.Username != "" {
		fields["username"] = req.Username
	}
	if req.PhotoURL != "" {
		fields["photo_url"] = req.PhotoURL
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}

	secretKey := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secretKey[:])
	mac.Write([]byte(strings.Join(pairs, "\n")))
	req.Hash = hex.EncodeToString(mac.Sum(nil))
}

func setupAuthService(t *testing.T) (*AuthService, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	userRepo := repository.NewUserRepository(db)

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key",
			ExpireHours: 24,
		},
		Telegram: config.TelegramConfig{
			Token: testBotToken,
		},
		Limits: config.LimitsConfig{
			DailyFreeLimit: 5,
		},
	}

	usage := NewUsageService(userRepo, cfg)
	svc := NewAuthService(userRepo, usage, cfg)

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return svc, cleanup
}

func TestAuthService_TelegramLogin_Success(t *testing.T) {
	svc, cleanup := setupAuthService(t)
	defer cleanup()

	req := &dto.TelegramAuthRequest{
		ID:        900100,
		FirstName: "Иван",
		Username:  "ivan_blog",
		AuthDate:  time.Now().Unix(),
	}
	signTelegramAuth(req, testBotToken)

	resp, err := svc.TelegramLogin(req)

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(900100), resp.User.TelegramID)
	assert.False(t, resp.User.IsPro)

	// Issued token must carry both IDs
	claims, err := jwt.ParseToken(resp.Token, "test-secret-key")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, int64(900100), claims.TelegramID)
}

func TestAuthService_TelegramLogin_CreatesUserOnce(t *testing.T) {
	svc, cleanup := setupAuthService(t)
	defer cleanup()

	req := &dto.TelegramAuthRequest{
		ID:       900200,
		AuthDate: time.Now().Unix(),
	}
	signTelegramAuth(req, testBotToken)

	first, err := svc.TelegramLogin(req)
	require.NoError(t, err)

	second, err := svc.TelegramLogin(req)
	require.NoError(t, err)

	// Repeated logins map to the same user row
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestAuthService_TelegramLogin_BadHash(t *testing.T) {
	svc, cleanup := setupAuthService(t)
	defer cleanup()

	req := &dto.TelegramAuthRequest{
		ID:       900300,
		AuthDate: time.Now().Unix(),
		Hash:     "deadbeef",
	}

	resp, err := svc.TelegramLogin(req)

	assert.ErrorIs(t, err, ErrInvalidAuthData)
	assert.Nil(t, resp)
}

func TestAuthService_TelegramLogin_TamperedField(t *testing.T) {
	svc, cleanup := setupAuthService(t)
	defer cleanup()

	req := &dto.TelegramAuthRequest{
		ID:        900400,
		FirstName: "Иван",
		AuthDate:  time.Now().Unix(),
	}
	signTelegramAuth(req, testBotToken)
	req.FirstName = "Пётр"

	resp, err := svc.TelegramLogin(req)

	assert.ErrorIs(t, err, ErrInvalidAuthData)
	assert.Nil(t, resp)
}

func TestAuthService_TelegramLogin_Expired(t *testing.T) {
	svc, cleanup := setupAuthService(t)
	defer cleanup()

	req := &dto.TelegramAuthRequest{
		ID:       900500,
		AuthDate: time.Now().Add(-48 * time.Hour).Unix(),
	}
	signTelegramAuth(req, testBotToken)

	resp, err := svc.TelegramLogin(req)

	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.Nil(t, resp)
}

func TestVerifyTelegramAuth(t *testing.T) {
	t.Run("valid signature", func(t *testing.T) {
		req := &dto.TelegramAuthRequest{
			ID:        1,
			FirstName: "Test",
			LastName:  "User",
			Username:  "testuser",
			PhotoURL:  "https://t.me/i/userpic/320/test.jpg",
			AuthDate:  1700000000,
		}
		signTelegramAuth(req, testBotToken)

		assert.True(t, VerifyTelegramAuth(req, testBotToken))
	})

	t.Run("wrong bot token", func(t *testing.T) {
		req := &dto.TelegramAuthRequest{
			ID:       1,
			AuthDate: 1700000000,
		}
		signTelegramAuth(req, testBotToken)

		assert.False(t, VerifyTelegramAuth(req, "другой-токен"))
	})

	t.Run("empty hash", func(t *testing.T) {
		req := &dto.TelegramAuthRequest{ID: 1, AuthDate: 1700000000}

		assert.False(t, VerifyTelegramAuth(req, testBotToken))
	})

	t.Run("empty bot token", func(t *testing.T) {
		req := &dto.TelegramAuthRequest{ID: 1, AuthDate: 1700000000, Hash: "abc"}

		assert.False(t, VerifyTelegramAuth(req, ""))
	})
}
