package controllers

import (
	"fmt"
	"net/http"
	"time"
	"tripcost-api/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthController implements the session gate: one shared access password,
// no per-user identity. A successful login creates a server-side session,
// bootstraps its saved-trip list and returns a JWT bound to that session.
type AuthController struct {
	sessions     *services.SessionService
	workflow     *services.TripWorkflow
	passwordHash []byte
	jwtSecret    string
}

func NewAuthController(sessions *services.SessionService, workflow *services.TripWorkflow, accessPassword, jwtSecret string) *AuthController {
	hash, err := bcrypt.GenerateFromPassword([]byte(accessPassword), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Failed to hash access password: %v\n", err)
	}

	return &AuthController{
		sessions:     sessions,
		workflow:     workflow,
		passwordHash: hash,
		jwtSecret:    jwtSecret,
	}
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string                `json:"token"`
	State services.SessionState `json:"state"`
}

func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword(ac.passwordHash, []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	session := ac.sessions.Create()

	// A failed bootstrap does not fail the login: the session starts with
	// an empty list and the store error surfaced in its state.
	if err := ac.workflow.Bootstrap(c.Request.Context(), session); err != nil {
		fmt.Printf("Bootstrap failed for session %s: %v\n", session.ID, err)
	}

	token, err := ac.generateJWT(session.ID)
	if err != nil {
		ac.sessions.Remove(session.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		State: ac.workflow.State(session),
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	session := SessionFrom(c)
	ac.sessions.Remove(session.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (ac *AuthController) generateJWT(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(ac.jwtSecret))
}
