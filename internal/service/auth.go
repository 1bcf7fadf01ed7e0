package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mediamorph/mediamorph/internal/model"
)

// SessionCookieName is the cookie the identity provider sets after sign-in.
const SessionCookieName = "__session"

// AuthService verifies the identity provider's session tokens. Session
// issuance, sign-in and sign-up all happen at the provider; this service
// only checks the HS256 signature against the shared secret and extracts
// the subject.
type AuthService struct {
	jwtSecret    string
	isProduction bool
}

func NewAuthService(jwtSecret string, isProduction bool) *AuthService {
	return &AuthService{
		jwtSecret:    jwtSecret,
		isProduction: isProduction,
	}
}

// VerifySession validates a session token and returns the caller identity.
func (s *AuthService) VerifySession(tokenString string) (*model.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return &model.Identity{UserID: sub}, nil
}

// ClearSessionCookie expires the session cookie, used when a stale or
// tampered token is presented.
func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
