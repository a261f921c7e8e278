package jwthandling

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Information a server user token encodes
type ServerUserClaims struct {
	UserID  int64  `json:"user_id,omitempty"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

func GenerateNewServerUserToken(expiresIn time.Duration, userID int64, email string, isAdmin bool, secretKey string) (tokenString string, err error) {
	claims := ServerUserClaims{
		userID,
		email,
		isAdmin,
		jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err = token.SignedString([]byte(secretKey))
	return
}

func ValidateServerUserToken(tokenString string, secretKey string) (claims *ServerUserClaims, valid bool, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServerUserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if token == nil {
		return
	}
	claims, valid = token.Claims.(*ServerUserClaims)
	valid = valid && token.Valid
	return
}
