package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// withRequestID tags every request with an id, reusing the caller's when present.
func withRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func withRequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"request_id", c.GetString(ContextKeyRequestID),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}

// withBearerJWT rejects requests without a valid HS256 token signed with secret.
func withBearerJWT(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderAuthorization)
		if !strings.HasPrefix(raw, BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: HTTPErrorUnauthorizedText})
			return
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(raw, BearerPrefix), claims,
			func(*jwt.Token) (any, error) { return secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil || !token.Valid {
			log.Warn("rejected bearer token", "request_id", c.GetString(ContextKeyRequestID), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: HTTPErrorUnauthorizedText})
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Next()
	}
}
