package jwt

import (
	"errors"
	"fmt"
	"time"

	"foodies-api/domain"
	"foodies-api/internal/utils"

	"github.com/golang-jwt/jwt/v4"
)

type (
	JWTService interface {
		GenerateTokenUser(userID string) (string, error)
		ValidateTokenUser(token string) (*jwt.Token, error)
		GetUserIDByToken(token string) (string, error)
	}

	jwtUserClaim struct {
		ID string `json:"id"`
		jwt.RegisteredClaims
	}

	jwtService struct {
		secretKey string
		issuer    string
		ttl       time.Duration
		now       func() time.Time
	}
)

func NewJWTService() JWTService {
	cfg := utils.Get()
	return NewJWTServiceWithSecret(cfg.JWTSecret, cfg.JWTTTL)
}

func NewJWTServiceWithSecret(secret string, ttl time.Duration) JWTService {
	return &jwtService{
		secretKey: secret,
		issuer:    "FOODIES",
		ttl:       ttl,
		now:       time.Now,
	}
}

func (j *jwtService) GenerateTokenUser(userID string) (string, error) {
	now := j.now()
	claims := jwtUserClaim{
		userID,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

func (j *jwtService) parseToken(t_ *jwt.Token) (any, error) {
	if _, ok := t_.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t_.Header["alg"])
	}
	return []byte(j.secretKey), nil
}

func (j *jwtService) ValidateTokenUser(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &jwtUserClaim{}, j.parseToken)
}

func (j *jwtService) GetUserIDByToken(token string) (string, error) {
	t_Token, err := j.ValidateTokenUser(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrTokenInvalid
	}
	if !t_Token.Valid {
		return "", domain.ErrTokenInvalid
	}

	claims, ok := t_Token.Claims.(*jwtUserClaim)
	if !ok || claims.ID == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.ID, nil
}
