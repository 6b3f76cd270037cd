package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"claims-management-server/database"
	"claims-management-server/middleware"
	"claims-management-server/models"
	"claims-management-server/utils"
)

// RegisterClientRoutes registers the admin-only client CRUD.
func RegisterClientRoutes(router *gin.RouterGroup) {
	clients := router.Group("/clients")
	clients.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		clients.GET("", listClients)
		clients.GET("/:id", getClient)
		clients.POST("", createClient)
		clients.PUT("/:id", updateClient)
		clients.DELETE("/:id", deleteClient)
	}
}

func findClient(c *gin.Context) (*models.User, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	var user models.User
	err := database.DB.Where("role = ?", models.RoleClient).First(&user, id).Error
	if err != nil {
		notFound(c)
		return nil, false
	}
	return &user, true
}

func listClients(c *gin.Context) {
	var clients []models.User
	err := database.DB.WithContext(c.Request.Context()).
		Where("role = ? AND is_active = ?", models.RoleClient, true).
		Order("email ASC").
		Find(&clients).Error
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudieron obtener los clientes")
		return
	}
	c.JSON(http.StatusOK, clients)
}

func getClient(c *gin.Context) {
	client, ok := findClient(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client)
}

func createClient(c *gin.Context) {
	var req models.ClientCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Empresa, email y contraseña son obligatorios")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo procesar la contraseña")
		return
	}

	company := strings.TrimSpace(req.CompanyName)
	client := models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleClient,
		CompanyName:  &company,
		IsActive:     true,
	}
	if err := database.DB.Create(&client).Error; err != nil {
		if isUniqueViolation(err) {
			abortDetail(c, http.StatusBadRequest, "Ya existe un usuario con ese email")
			return
		}
		log.WithError(err).Error("failed to create client")
		abortDetail(c, http.StatusInternalServerError, "No se pudo crear el cliente")
		return
	}
	c.JSON(http.StatusCreated, client)
}

func updateClient(c *gin.Context) {
	client, ok := findClient(c)
	if !ok {
		return
	}

	var req models.ClientUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Datos inválidos")
		return
	}

	if req.CompanyName != nil {
		company := strings.TrimSpace(*req.CompanyName)
		client.CompanyName = &company
	}
	if req.FullName != nil {
		client.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			abortDetail(c, http.StatusInternalServerError, "No se pudo procesar la contraseña")
			return
		}
		client.PasswordHash = hash
	}

	if err := database.DB.Save(client).Error; err != nil {
		if isUniqueViolation(err) {
			abortDetail(c, http.StatusBadRequest, "Ya existe un usuario con ese email")
			return
		}
		abortDetail(c, http.StatusInternalServerError, "No se pudo actualizar el cliente")
		return
	}
	c.JSON(http.StatusOK, client)
}

func deleteClient(c *gin.Context) {
	client, ok := findClient(c)
	if !ok {
		return
	}
	if err := database.DB.Model(client).Update("is_active", false).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo eliminar el cliente")
		return
	}
	c.Status(http.StatusNoContent)
}
