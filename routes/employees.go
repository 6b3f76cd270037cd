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

// RegisterEmployeeRoutes registers the admin-only employee CRUD.
func RegisterEmployeeRoutes(router *gin.RouterGroup) {
	employees := router.Group("/employees")
	employees.Use(middleware.RequireRoles(models.RoleAdmin))
	{
		employees.GET("", listEmployees)
		employees.GET("/:id", getEmployee)
		employees.POST("", createEmployee)
		employees.PUT("/:id", updateEmployee)
		employees.DELETE("/:id", deleteEmployee)
	}
}

func findEmployee(c *gin.Context) (*models.User, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	var user models.User
	err := database.DB.Preload("Area").Where("role = ?", models.RoleEmployee).First(&user, id).Error
	if err != nil {
		notFound(c)
		return nil, false
	}
	return &user, true
}

func listEmployees(c *gin.Context) {
	var employees []models.User
	err := database.DB.WithContext(c.Request.Context()).
		Where("role = ? AND is_active = ?", models.RoleEmployee, true).
		Preload("Area").
		Order("email ASC").
		Find(&employees).Error
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudieron obtener los empleados")
		return
	}
	c.JSON(http.StatusOK, employees)
}

func getEmployee(c *gin.Context) {
	employee, ok := findEmployee(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, employee)
}

func createEmployee(c *gin.Context) {
	var req models.EmployeeCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Nombre, email, contraseña y área son obligatorios")
		return
	}

	var area models.Area
	if err := database.DB.First(&area, req.AreaID).Error; err != nil || !area.IsActive {
		abortDetail(c, http.StatusBadRequest, "Área no encontrada o inactiva")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo procesar la contraseña")
		return
	}

	employee := models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleEmployee,
		AreaID:       &req.AreaID,
		IsActive:     true,
	}
	if err := database.DB.Create(&employee).Error; err != nil {
		if isUniqueViolation(err) {
			abortDetail(c, http.StatusBadRequest, "Ya existe un usuario con ese email")
			return
		}
		log.WithError(err).Error("failed to create employee")
		abortDetail(c, http.StatusInternalServerError, "No se pudo crear el empleado")
		return
	}
	c.JSON(http.StatusCreated, employee)
}

func updateEmployee(c *gin.Context) {
	employee, ok := findEmployee(c)
	if !ok {
		return
	}

	var req models.EmployeeUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Datos inválidos")
		return
	}

	if req.FullName != nil {
		employee.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		employee.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			abortDetail(c, http.StatusInternalServerError, "No se pudo procesar la contraseña")
			return
		}
		employee.PasswordHash = hash
	}
	if req.AreaID != nil {
		var area models.Area
		if err := database.DB.First(&area, *req.AreaID).Error; err != nil || !area.IsActive {
			abortDetail(c, http.StatusBadRequest, "Área no encontrada o inactiva")
			return
		}
		employee.AreaID = req.AreaID
	}

	if err := database.DB.Save(employee).Error; err != nil {
		if isUniqueViolation(err) {
			abortDetail(c, http.StatusBadRequest, "Ya existe un usuario con ese email")
			return
		}
		abortDetail(c, http.StatusInternalServerError, "No se pudo actualizar el empleado")
		return
	}
	c.JSON(http.StatusOK, employee)
}

func deleteEmployee(c *gin.Context) {
	employee, ok := findEmployee(c)
	if !ok {
		return
	}
	if err := database.DB.Model(employee).Update("is_active", false).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo eliminar el empleado")
		return
	}
	c.Status(http.StatusNoContent)
}
