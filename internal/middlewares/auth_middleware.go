package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey = "userID"
	roleKey   = "role"

	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// AuthMiddleware accepts an HS256 token from the access_token cookie or an
// Authorization: Bearer header and stores the user_id and role claims.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := tokenFromRequest(c)
		if accessToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			c.Abort()
			return
		}

		if secret == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		var userID uint64
		switch v := claims["user_id"].(type) {
		case float64:
			if v < 0 {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
				c.Abort()
				return
			}
			userID = uint64(v)
		case string:
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
				c.Abort()
				return
			}
			userID = n
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)
		if role == "" {
			role = RoleUser
		}

		c.Set(userIDKey, uint(userID))
		c.Set(roleKey, role)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie("access_token"); err == nil && cookie != "" {
		return cookie
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// UserIDFromContext returns the id set by AuthMiddleware.
func UserIDFromContext(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
