package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"osoulapi/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Role      string `json:"role"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func (s *Server) signToken(u models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    u.ID,
		"email": u.Email,
		"role":  u.Role,
		"exp":   time.Now().Add(s.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.JWTSecret)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "email and password are required")
		return
	}

	var user models.User
	err := s.db.Where("LOWER(email) = ? AND is_active = ?", strings.ToLower(req.Email), true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		s.storeError(c, "login", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.signToken(user)
	if err != nil {
		s.storeError(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "email, password (min 6), firstName and lastName are required")
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleViewer
	}
	if !models.ValidRole(role) {
		fail(c, http.StatusBadRequest, "invalid role")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.storeError(c, "register", err)
		return
	}
	user := models.User{
		Email:     strings.ToLower(req.Email),
		Password:  string(hashed),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		IsActive:  true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			fail(c, http.StatusConflict, "email already registered")
			return
		}
		s.storeError(c, "register", err)
		return
	}

	token, err := s.signToken(user)
	if err != nil {
		s.storeError(c, "register", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": s.currentUser(c)})
}

func (s *Server) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "currentPassword and newPassword (min 6) are required")
		return
	}
	user := s.currentUser(c)
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		fail(c, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.storeError(c, "changePassword", err)
		return
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("password", string(hashed)).Error; err != nil {
		s.storeError(c, "changePassword", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// authRequired validates the bearer token and reloads the user row, so a
// deactivated account loses access immediately rather than at token expiry.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			fail(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.cfg.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			fail(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			fail(c, http.StatusUnauthorized, "invalid token claims")
			c.Abort()
			return
		}
		idF, ok := claims["id"].(float64)
		if !ok {
			fail(c, http.StatusUnauthorized, "invalid token claims")
			c.Abort()
			return
		}

		var user models.User
		err = s.db.Where("id = ? AND is_active = ?", uint(idF), true).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusUnauthorized, "account disabled or removed")
			c.Abort()
			return
		}
		if err != nil {
			s.storeError(c, "authRequired", err)
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

func (s *Server) requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := s.currentUser(c)
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		fail(c, http.StatusForbidden, "insufficient permissions")
		c.Abort()
	}
}
