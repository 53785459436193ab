package auth

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdf-to-sound-api/internal/logs"
	"pdf-to-sound-api/internal/middlewares"
)

type AuthController struct {
	AuthService  AuthServicePort
	LS           LogServicePort
	SecureCookie bool
}

func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.RepeatPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrPasswordMismatch.Error(), "repeatPassword": ErrPasswordMismatch.Error()})
		return
	}

	user, err := ac.AuthService.Register(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "userExists": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := ac.AuthService.IssueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ac.audit(c, "SIGNUP", fmt.Sprintf("Account created with email %s", user.Email), user.ID)

	ac.setTokenCookie(c, token, 0)
	c.JSON(http.StatusCreated, gin.H{"access_token": token})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.AuthService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := ac.AuthService.IssueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ac.audit(c, "LOGIN", fmt.Sprintf("User logged in with email: %s", user.Email), user.ID)

	ac.setTokenCookie(c, token, 0)
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (ac *AuthController) Logout(c *gin.Context) {
	ac.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := ac.AuthService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) setTokenCookie(c *gin.Context, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if ac.SecureCookie {
		sameSite = http.SameSiteNoneMode // required for cross-site cookies
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "access_token",
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   ac.SecureCookie,
		SameSite: sameSite,
		MaxAge:   maxAge,
	})
}

func (ac *AuthController) audit(c *gin.Context, action, message string, userID uint) {
	if ac.LS == nil {
		return
	}
	entry := logs.SystemLog{
		Level:   logs.LevelInfo,
		Service: "auth",
		Action:  action,
		Message: message,
		UserID:  &userID,
	}
	if id := middlewares.RequestIDFromContext(c); id != "" {
		entry.RequestID = &id
	}
	if err := ac.LS.Log(entry, nil); err != nil {
		log.Printf("Failed to insert log: %v", err)
	}
}
