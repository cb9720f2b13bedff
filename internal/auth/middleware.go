package auth

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "usermgmt/internal/errors"
)

const (
	// CookieName is the cookie holding the signed session token.
	CookieName = "um_session"

	tokenContextKey     = "session_token"
	sessionIDContextKey = "session_id"
)

// Middleware verifies the session cookie with echo-jwt and issues a fresh
// session when the cookie is missing, expired or forged.
func (s *JWTService) Middleware() echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:    s.secret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		TokenLookup:   "cookie:" + CookieName,
		ContextKey:    tokenContextKey,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(SessionClaims)
		},
		ErrorHandler: func(echo.Context, error) error {
			return nil
		},
		ContinueOnIgnoredError: true,
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(s.ensureSession(next))
	}
}

func (s *JWTService) ensureSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token, ok := c.Get(tokenContextKey).(*jwt.Token); ok && token.Valid {
			if claims, ok := token.Claims.(*SessionClaims); ok && claims.Subject != "" {
				c.Set(sessionIDContextKey, claims.Subject)
				return next(c)
			}
		}

		sessionID, token, err := s.IssueSession()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, apperrors.ErrorResponse{
				Error: "failed to start session",
				Code:  "SESSION_FAILED",
			})
		}
		c.SetCookie(&http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  s.now().Add(s.ttl),
		})
		c.Set(sessionIDContextKey, sessionID)
		return next(c)
	}
}

// SessionID returns the session id placed on the context by Middleware.
func SessionID(c echo.Context) (string, error) {
	id, ok := c.Get(sessionIDContextKey).(string)
	if !ok || id == "" {
		return "", apperrors.ErrInvalidSession
	}
	return id, nil
}
