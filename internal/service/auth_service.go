package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/model/dto"
	"github.com/yunuszade97-del/treadsbot/internal/pkg/jwt"
	"github.com/yunuszade97-del/treadsbot/internal/repository"
)

var (
	ErrInvalidAuthData = errors.New("认证数据无效")
	ErrAuthExpired     = errors.New("认证数据已过期")
)

// authTTL Telegram 登录数据的有效期
const authTTL = 24 * time.Hour

type AuthService struct {
	userRepo *repository.UserRepository
	usage    *UsageService
	cfg      *config.Config
	now      func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, usage *UsageService, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		usage:    usage,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetClock 仅供测试使用
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// TelegramLogin 校验 Telegram Login Widget 数据并签发令牌
func (s *AuthService) TelegramLogin(req *dto.TelegramAuthRequest) (*dto.AuthResponse, error) {
	if !VerifyTelegramAuth(req, s.cfg.Telegram.Token) {
		return nil, ErrInvalidAuthData
	}

	authTime := time.Unix(req.AuthDate, 0)
	if s.now().Sub(authTime) > authTTL {
		return nil, ErrAuthExpired
	}

	user, err := s.usage.GetOrCreateUser(req.ID)
	if err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, user.TelegramID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

// VerifyTelegramAuth 按照 Telegram Login Widget 的签名算法校验数据，
// 密钥为 bot token 的 SHA256 摘要
func VerifyTelegramAuth(req *dto.TelegramAuthRequest, botToken string) bool {
	if req.Hash == "" || botToken == "" {
		return false
	}

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
	dataCheckString := strings.Join(pairs, "\n")

	secretKey := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secretKey[:])
	mac.Write([]byte(dataCheckString))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(req.Hash))
}
