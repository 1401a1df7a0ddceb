package handlers

import (
	"net/http"
	"strings"

	"restaurant-api/config"
	"restaurant-api/middleware"
	"restaurant-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	PhoneNumber string `json:"phoneNumber"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userBody(user *models.User) gin.H {
	return gin.H{
		"id":          user.ID,
		"name":        user.Name,
		"email":       user.Email,
		"role":        user.Role,
		"phoneNumber": user.PhoneNumber,
		"points":      user.Points,
	}
}

// createUser hashes the password and inserts the user; the returned status is
// the HTTP code to send on failure
func createUser(name, email, password, phone string, role models.UserRole) (*models.User, int, string) {
	email = strings.ToLower(strings.TrimSpace(email))

	// Check email uniqueness
	var existing models.User
	if result := config.DB.Where("email = ?", email).First(&existing); result.Error == nil {
		return nil, http.StatusConflict, "Email already registered"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, http.StatusInternalServerError, "Failed to hash password"
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		PhoneNumber:  phone,
		Points:       0,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		return nil, http.StatusInternalServerError, "Failed to create user"
	}
	return &user, 0, ""
}

// Register creates a customer account with zero loyalty points
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, status, msg := createUser(req.Name, req.Email, req.Password, req.PhoneNumber, models.RoleUser)
	if user == nil {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user":    userBody(user),
	})
}

// Login authenticates a user and returns a JWT
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := middleware.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userBody(&user),
	})
}

// GetProfile returns the authenticated user's profile with their saved card
func GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	body := gin.H{"user": user}
	var card models.CardDetails
	if err := config.DB.First(&card, "user_id = ?", userID).Error; err == nil {
		body["cardDetails"] = card
	}
	c.JSON(http.StatusOK, body)
}

type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
	PhotoURL    *string `json:"photoURL"`
}

// UpdateProfile changes the editable profile fields that are present in the body
func UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name cannot be empty"})
			return
		}
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.PhotoURL != nil {
		allowed, err := deps.State.PhotoUploadAllowed(c.Request.Context(), middleware.ClientID(c))
		if err != nil {
			internalError(c, "Failed to read photo permission", err)
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Photo upload permission has not been granted"})
			return
		}
		updates["photo_url"] = *req.PhotoURL
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if len(updates) > 0 {
		if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
			internalError(c, "Failed to update profile", err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}
