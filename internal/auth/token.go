package auth

import (
	"time"

	"github.com/Akshaygupta0409/school-payments-microservice/internal/models"
	"github.com/golang-jwt/jwt/v4"
)

const tokenDuration = 24 * time.Hour

// Token issues and verifies HS256 bearer tokens
type Token struct {
	key []byte
}

// NewAuthToken creates new Token instance with signing key
func NewAuthToken(key []byte) *Token {
	return &Token{key: key}
}

type authClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// CreateToken creates signed token for user
func (t *Token) CreateToken(user *models.User) (string, error) {
	claims := authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(t.key)
}

// VerifyToken verifies token string and returns its payload
func (t *Token) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	claims := authClaims{}

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	return &models.TokenPayload{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}, nil
}
