package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"claims-management-server/database"
	"claims-management-server/models"
	"claims-management-server/utils"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	Role  string      `json:"role"`
	User  models.User `json:"user"`
}

// RegisterAuthRoutes registers the authentication routes.
func RegisterAuthRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	auth.POST("/login", login)
}

func login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Email y contraseña son obligatorios")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		abortDetail(c, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	if !user.IsActive || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		abortDetail(c, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role), user.Email)
	if err != nil {
		log.WithError(err).Error("failed to generate token")
		abortDetail(c, http.StatusInternalServerError, "No se pudo generar el token")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		Role:  string(user.Role),
		User:  user,
	})
}
