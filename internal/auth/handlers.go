package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	repo   *Repo
	issuer *TokenIssuer
}

// Register mounts the public auth routes on rg. The /me route carries its
// own Required middleware because the group itself is unauthenticated.
func Register(rg *gin.RouterGroup, repo *Repo, issuer *TokenIssuer, loginLimiter gin.HandlerFunc) {
	h := &Handler{repo: repo, issuer: issuer}

	rg.POST("/signup", h.signup)
	if loginLimiter != nil {
		rg.POST("/login", loginLimiter, h.login)
	} else {
		rg.POST("/login", h.login)
	}
	rg.GET("/me", Required(issuer), h.me)
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email and password are required."})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("signup: hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Name, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "An account with this email already exists."})
			return
		}
		log.Printf("signup: create consultant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		log.Printf("signup: issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrConsultantNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
			return
		}
		log.Printf("login: load consultant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		log.Printf("login: issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) me(c *gin.Context) {
	claims := CurrentUser(c)

	profile, err := h.repo.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrConsultantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Consultant not found"})
			return
		}
		log.Printf("me: load profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
