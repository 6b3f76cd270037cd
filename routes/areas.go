package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"claims-management-server/database"
	"claims-management-server/middleware"
	"claims-management-server/models"
)

// RegisterAreaRoutes registers area and sub-area CRUD. Listing is open to
// staff; mutation is admin-only.
func RegisterAreaRoutes(router *gin.RouterGroup) {
	areas := router.Group("/areas")
	areas.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleEmployee))
	{
		areas.GET("", listAreas)
		areas.GET("/:id", getArea)
	}

	adminAreas := router.Group("/areas")
	adminAreas.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		adminAreas.POST("", createArea)
		adminAreas.PUT("/:id", updateArea)
		adminAreas.DELETE("/:id", deleteArea)

		adminAreas.POST("/:id/sub-areas", createSubArea)
		adminAreas.PUT("/:id/sub-areas/:subID", updateSubArea)
		adminAreas.DELETE("/:id/sub-areas/:subID", deleteSubArea)
	}
}

func listAreas(c *gin.Context) {
	var areas []models.Area
	err := database.DB.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Preload("SubAreas", "is_active = ?", true).
		Order("name ASC").
		Find(&areas).Error
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudieron obtener las áreas")
		return
	}
	c.JSON(http.StatusOK, areas)
}

func getArea(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var area models.Area
	err := database.DB.Preload("SubAreas", "is_active = ?", true).First(&area, id).Error
	if err != nil || !area.IsActive {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, area)
}

func createArea(c *gin.Context) {
	var req models.AreaCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "El nombre del área es obligatorio")
		return
	}

	area := models.Area{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if err := database.DB.Create(&area).Error; err != nil {
		if isUniqueViolation(err) {
			abortDetail(c, http.StatusBadRequest, "Ya existe un área con ese nombre")
			return
		}
		log.WithError(err).Error("failed to create area")
		abortDetail(c, http.StatusInternalServerError, "No se pudo crear el área")
		return
	}
	c.JSON(http.StatusCreated, area)
}

func updateArea(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var area models.Area
	if err := database.DB.First(&area, id).Error; err != nil {
		notFound(c)
		return
	}

	var req models.AreaUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Datos inválidos")
		return
	}
	if req.Name != nil {
		area.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		area.Description = strings.TrimSpace(*req.Description)
	}

	if err := database.DB.Save(&area).Error; err != nil {
		if isUniqueViolation(err) {
			abortDetail(c, http.StatusBadRequest, "Ya existe un área con ese nombre")
			return
		}
		abortDetail(c, http.StatusInternalServerError, "No se pudo actualizar el área")
		return
	}
	c.JSON(http.StatusOK, area)
}

func deleteArea(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var area models.Area
	if err := database.DB.First(&area, id).Error; err != nil {
		notFound(c)
		return
	}

	// Business rule: an area with active employees cannot be removed.
	var employeeCount int64
	database.DB.Model(&models.User{}).
		Where("role = ? AND area_id = ? AND is_active = ?", models.RoleEmployee, id, true).
		Count(&employeeCount)
	if employeeCount > 0 {
		abortDetail(c, http.StatusBadRequest, "El área tiene empleados activos asociados y no puede eliminarse")
		return
	}

	if err := database.DB.Model(&area).Update("is_active", false).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo eliminar el área")
		return
	}
	c.Status(http.StatusNoContent)
}

func createSubArea(c *gin.Context) {
	areaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var area models.Area
	if err := database.DB.First(&area, areaID).Error; err != nil || !area.IsActive {
		notFound(c)
		return
	}

	var req models.SubAreaCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "El nombre de la sub-área es obligatorio")
		return
	}

	subArea := models.SubArea{
		AreaID:   areaID,
		Name:     strings.TrimSpace(req.Name),
		IsActive: true,
	}
	if err := database.DB.Create(&subArea).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo crear la sub-área")
		return
	}
	c.JSON(http.StatusCreated, subArea)
}

func updateSubArea(c *gin.Context) {
	areaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	subID, ok := paramID(c, "subID")
	if !ok {
		return
	}
	var subArea models.SubArea
	if err := database.DB.Where("area_id = ?", areaID).First(&subArea, subID).Error; err != nil {
		notFound(c)
		return
	}

	var req models.SubAreaCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "El nombre de la sub-área es obligatorio")
		return
	}
	subArea.Name = strings.TrimSpace(req.Name)

	if err := database.DB.Save(&subArea).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo actualizar la sub-área")
		return
	}
	c.JSON(http.StatusOK, subArea)
}

func deleteSubArea(c *gin.Context) {
	areaID, ok := paramID(c, "id")
	if !ok {
		return
	}
	subID, ok := paramID(c, "subID")
	if !ok {
		return
	}
	var subArea models.SubArea
	if err := database.DB.Where("area_id = ?", areaID).First(&subArea, subID).Error; err != nil {
		notFound(c)
		return
	}

	if err := database.DB.Model(&subArea).Update("is_active", false).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo eliminar la sub-área")
		return
	}
	c.Status(http.StatusNoContent)
}
