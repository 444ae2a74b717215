package api

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	PasswordHeader = "X-GhostDeal-Password"
	SessionHeader  = "X-GhostDeal-Session"
	sessionCookie  = "ghostdeal_session"
	sessionKey     = "session_id"
	sessionMaxAge  = 7 * 24 * 60 * 60
)

// PasswordGate rejects requests without the shared dashboard password
func PasswordGate(password string) gin.HandlerFunc {
	want := []byte(password)
	return func(c *gin.Context) {
		got := c.GetHeader(PasswordHeader)
		if got == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				got = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			apiErr := NewUnauthorizedError("invalid or missing password")
			c.AbortWithStatusJSON(apiErr.Status(), apiErr)
			return
		}
		c.Next()
	}
}

// Session attaches a session id from the header or cookie, issuing one if absent
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				id = cookie
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetCookie(sessionCookie, id, sessionMaxAge, "/", "", false, true)
		}
		c.Header(SessionHeader, id)
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
