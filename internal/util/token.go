package util

import (
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/gbif/occurrence-annotation/dao/model"
	"github.com/gbif/occurrence-annotation/pkg/config"
)

type (
	JWTClaims struct {
		Username string     `json:"un"`
		Role     model.Role `json:"ro"`
		jwt.RegisteredClaims
	}
	JWTMessage struct {
		Username string     `json:"username"`
		Role     model.Role `json:"role"` // Role on the platform (guest, user, admin)
	}
)

type TokenManager struct {
	secretKey       string
	accessTokenTTL  int
	refreshTokenTTL int
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		auth := config.GetConfig().Auth
		tokenMgr = NewTokenManager(auth.AccessTokenSecret,
			auth.AccessTokenExpiryHour,
			auth.RefreshTokenExpiryHour,
		)
	})
	return tokenMgr
}

func NewTokenManager(secretKey string, accessTokenTTL, refreshTokenTTL int) *TokenManager {
	return &TokenManager{
		secretKey,
		accessTokenTTL,
		refreshTokenTTL,
	}
}

func (tm *TokenManager) createToken(msg *JWTMessage, ttl int) (string, error) {
	expiresAt := time.Now().Add(time.Hour * time.Duration(ttl))

	claims := &JWTClaims{
		Username: msg.Username,
		Role:     msg.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secretKey))
}

// CreateTokens creates a new access token and a new refresh token.
func (tm *TokenManager) CreateTokens(msg *JWTMessage) (accessToken, refreshToken string, err error) {
	accessToken, err = tm.createToken(msg, tm.accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = tm.createToken(msg, tm.refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (tm *TokenManager) CheckToken(requestToken string) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(tm.secretKey), nil
	})
	return JWTMessage{
		Username: claims.Username,
		Role:     claims.Role,
	}, err
}
