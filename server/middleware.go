package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/existflow/neocount/internal/auth"
	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/store"
	"github.com/labstack/echo/v4"
)

// requestLogger logs every request and its outcome
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		logger.Debug("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("remote", req.RemoteAddr))

		err := next(c)

		res := c.Response()
		logger.Info("HTTP Response",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()))

		return err
	}
}

// authMiddleware verifies the identity provider's access token and stores the
// user's event store on the context
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := ""

		if s.opts.RequireAuth {
			token := bearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization required"})
			}

			claims, err := auth.ParseClaims(token, s.opts.JWTSecret)
			if err != nil {
				logger.Debug("Rejected token", logger.F("error", err.Error()))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			if !claims.ExpiresAt.IsZero() && time.Now().After(claims.ExpiresAt) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token expired"})
			}
			userID = claims.Subject
		}

		st, err := s.opts.Stores(userID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		}

		c.Set("user_id", userID)
		c.Set("store", st)
		return next(c)
	}
}

// bearerToken reads the Authorization header, or the access_token query
// parameter browsers use for websocket upgrades
func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get("Authorization")
	if h != "" {
		token := strings.TrimPrefix(h, "Bearer ")
		if token == h {
			return ""
		}
		return token
	}
	return c.QueryParam("access_token")
}

func storeOf(c echo.Context) store.Store {
	st, _ := c.Get("store").(store.Store)
	return st
}
