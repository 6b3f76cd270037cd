package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"claims-management-server/database"
	"claims-management-server/middleware"
	"claims-management-server/models"
)

// RegisterProjectRoutes registers project CRUD. Clients see only their own
// projects; mutation is admin-only.
func RegisterProjectRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", listProjects)
		projects.GET("/:id", getProject)
	}

	adminProjects := router.Group("/projects")
	adminProjects.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		adminProjects.POST("", createProject)
		adminProjects.PUT("/:id", updateProject)
		adminProjects.DELETE("/:id", deleteProject)
	}
}

func listProjects(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	query := database.DB.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("created_at DESC")

	if user.IsClient() {
		query = query.Where("client_id = ?", user.ID)
	} else if clientID, ok := queryID(c, "client_id"); !ok {
		return
	} else if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudieron obtener los proyectos")
		return
	}
	c.JSON(http.StatusOK, projects)
}

func getProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil || !project.IsActive {
		notFound(c)
		return
	}

	user, _ := middleware.CurrentUser(c)
	if user.IsClient() && project.ClientID != user.ID {
		abortDetail(c, http.StatusForbidden, "No tenés permisos para ver este proyecto")
		return
	}
	c.JSON(http.StatusOK, project)
}

func createProject(c *gin.Context) {
	var req models.ProjectCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Nombre, tipo y cliente son obligatorios")
		return
	}

	var client models.User
	err := database.DB.Where("role = ? AND is_active = ?", models.RoleClient, true).First(&client, req.ClientID).Error
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "Cliente no encontrado o inactivo")
		return
	}

	project := models.Project{
		Name:        strings.TrimSpace(req.Name),
		ProjectType: strings.TrimSpace(req.ProjectType),
		ClientID:    req.ClientID,
		IsActive:    true,
	}
	if err := database.DB.Create(&project).Error; err != nil {
		log.WithError(err).Error("failed to create project")
		abortDetail(c, http.StatusInternalServerError, "No se pudo crear el proyecto")
		return
	}
	c.JSON(http.StatusCreated, project)
}

func updateProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil || !project.IsActive {
		notFound(c)
		return
	}

	var req models.ProjectUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Datos inválidos")
		return
	}
	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.ProjectType != nil {
		project.ProjectType = strings.TrimSpace(*req.ProjectType)
	}
	if req.ClientID != nil {
		var client models.User
		err := database.DB.Where("role = ? AND is_active = ?", models.RoleClient, true).First(&client, *req.ClientID).Error
		if err != nil {
			abortDetail(c, http.StatusBadRequest, "Cliente no encontrado o inactivo")
			return
		}
		project.ClientID = *req.ClientID
	}

	if err := database.DB.Save(&project).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo actualizar el proyecto")
		return
	}
	c.JSON(http.StatusOK, project)
}

func deleteProject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil || !project.IsActive {
		notFound(c)
		return
	}
	if err := database.DB.Model(&project).Update("is_active", false).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo eliminar el proyecto")
		return
	}
	c.Status(http.StatusNoContent)
}
