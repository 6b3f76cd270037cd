package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"claims-management-server/database"
	"claims-management-server/middleware"
	"claims-management-server/models"
	"claims-management-server/services"
	"claims-management-server/utils"
)

// RegisterClaimRoutes registers the claim intake, listing and triage routes.
func RegisterClaimRoutes(router *gin.RouterGroup) {
	claims := router.Group("/claims")
	{
		claims.GET("", listClaims)
		claims.GET("/:id", getClaim)
		claims.POST("", createClaim)
	}

	staffClaims := router.Group("/claims")
	staffClaims.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleEmployee))
	{
		staffClaims.PUT("/:id", updateClaim)
	}
}

// claimView hides internal-only fields from the client role. Sub-area is
// internal classification and never leaves the staff surface.
func claimView(claim models.Claim, role models.UserRole) models.Claim {
	if role == models.RoleClient {
		claim.SubArea = nil
	}
	return claim
}

func claimViews(claims []models.Claim, role models.UserRole) []models.Claim {
	views := make([]models.Claim, len(claims))
	for i, claim := range claims {
		views[i] = claimView(claim, role)
	}
	return views
}

// loadClaim fetches a claim and enforces the client-ownership rule.
func loadClaim(c *gin.Context) (*models.Claim, *models.User, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, nil, false
	}
	user, _ := middleware.CurrentUser(c)

	var claim models.Claim
	err := database.DB.Preload("Area").Preload("Project").First(&claim, id).Error
	if err != nil {
		if isNotFound(err) {
			notFound(c)
		} else {
			abortDetail(c, http.StatusInternalServerError, "No se pudo obtener el reclamo")
		}
		return nil, nil, false
	}
	if user.IsClient() && claim.CreatedBy != user.ID {
		abortDetail(c, http.StatusForbidden, "No tenés permisos para ver este reclamo")
		return nil, nil, false
	}
	return &claim, &user, true
}

func listClaims(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	query := database.DB.WithContext(c.Request.Context()).
		Preload("Area").Preload("Project").
		Order("created_at DESC")

	if user.IsClient() {
		query = query.Where("created_by = ?", user.ID)
	} else if clientID, ok := queryID(c, "client_id"); !ok {
		return
	} else if clientID != nil {
		query = query.Where("created_by = ?", *clientID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var claims []models.Claim
	if err := query.Find(&claims).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudieron obtener los reclamos")
		return
	}
	c.JSON(http.StatusOK, claimViews(claims, user.Role))
}

func getClaim(c *gin.Context) {
	claim, user, ok := loadClaim(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, claimView(*claim, user.Role))
}

// createClaim handles the client intake form, JSON or multipart with an
// optional attachment.
func createClaim(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if !user.IsClient() {
		abortDetail(c, http.StatusForbidden, "Solo clientes pueden crear reclamos")
		return
	}

	var req models.ClaimCreate
	if err := c.ShouldBind(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Proyecto, tipo, urgencia y descripción son obligatorios")
		return
	}
	if !models.ClaimPriority(req.Urgency).IsValid() {
		abortDetail(c, http.StatusBadRequest, "Urgencia inválida")
		return
	}
	if !models.IsValidSeverity(req.Severity) {
		abortDetail(c, http.StatusBadRequest, "Nivel de criticidad inválido")
		return
	}

	var project models.Project
	if err := database.DB.First(&project, req.ProjectID).Error; err != nil || !project.IsActive {
		abortDetail(c, http.StatusBadRequest, "Proyecto no encontrado o inactivo")
		return
	}
	if project.ClientID != user.ID {
		abortDetail(c, http.StatusForbidden, "El proyecto no pertenece al cliente")
		return
	}

	claim := models.Claim{
		ProjectID:   req.ProjectID,
		ClaimType:   strings.TrimSpace(req.ClaimType),
		Urgency:     req.Urgency,
		Severity:    req.Severity,
		Description: strings.TrimSpace(req.Description),
		Status:      models.StatusIngresado,
		Priority:    models.PriorityMedia,
		CreatedBy:   user.ID,
		Version:     1,
	}

	if header, err := c.FormFile("attachment"); err == nil && header != nil {
		if err := utils.ValidateAttachment(header); err != nil {
			abortDetail(c, http.StatusBadRequest, err.Error())
			return
		}
		url, err := utils.UploadAttachment(c.Request.Context(), fmt.Sprintf("client-%d", user.ID), header)
		if err != nil {
			if errors.Is(err, utils.ErrUploaderNotConfigured) {
				abortDetail(c, http.StatusInternalServerError, "La carga de archivos no está configurada")
				return
			}
			log.WithError(err).Error("attachment upload failed")
			abortDetail(c, http.StatusInternalServerError, "No se pudo subir el archivo adjunto")
			return
		}
		name := header.Filename
		claim.AttachmentURL = &url
		claim.AttachmentName = &name
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&claim).Error; err != nil {
			return err
		}
		return appendEvent(tx, claim.ID, &user.ID, user.Role, services.EventDraft{
			Action:     models.ActionCreated,
			Visibility: models.VisibilityPublic,
			Details:    models.CreatedDetails{Status: models.StatusIngresado},
		})
	})
	if err != nil {
		log.WithError(err).Error("failed to create claim")
		abortDetail(c, http.StatusInternalServerError, "No se pudo crear el reclamo")
		return
	}
	c.JSON(http.StatusCreated, claimView(claim, user.Role))
}

// updateClaim applies the "Gestionar Reclamo" combined edit through the
// lifecycle engine. Validation is all-or-nothing: nothing persists unless
// every requested change passes.
func updateClaim(c *gin.Context) {
	claim, user, ok := loadClaim(c)
	if !ok {
		return
	}

	var req models.ClaimManagementUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "Datos inválidos")
		return
	}

	if req.Version != nil && *req.Version != claim.Version {
		abortDetail(c, http.StatusConflict, "El reclamo fue modificado por otro usuario; actualizá y volvé a intentar")
		return
	}

	if req.AreaID != nil {
		var area models.Area
		if err := database.DB.First(&area, *req.AreaID).Error; err != nil || !area.IsActive {
			abortDetail(c, http.StatusBadRequest, "Área no encontrada o inactiva")
			return
		}
	}

	update, verr := services.ComposeManagementUpdate(claim, &req, &user.ID)
	if verr != nil {
		abortDetail(c, http.StatusBadRequest, verr.Message)
		return
	}
	if update.IsEmpty() {
		c.JSON(http.StatusOK, claimView(*claim, user.Role))
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Claim{}).
			Where("id = ? AND version = ?", claim.ID, claim.Version).
			Updates(update.Fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errVersionConflict
		}
		for _, draft := range update.Events {
			if err := appendEvent(tx, claim.ID, &user.ID, user.Role, draft); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errVersionConflict) {
			abortDetail(c, http.StatusConflict, "El reclamo fue modificado por otro usuario; actualizá y volvé a intentar")
			return
		}
		log.WithError(err).WithField("claim_id", claim.ID).Error("failed to update claim")
		abortDetail(c, http.StatusInternalServerError, "No se pudo actualizar el reclamo")
		return
	}

	var updated models.Claim
	if err := database.DB.Preload("Area").Preload("Project").First(&updated, claim.ID).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "Reclamo no encontrado al actualizar")
		return
	}

	notifyClaimUpdated(updated.ID)
	c.JSON(http.StatusOK, claimView(updated, user.Role))
}

var errVersionConflict = errors.New("claim version conflict")

// appendEvent persists one audit event draft with the acting user attached.
func appendEvent(tx *gorm.DB, claimID uint, actorID *uint, actorRole models.UserRole, draft services.EventDraft) error {
	role := string(actorRole)
	event, err := models.NewClaimEvent(claimID, actorID, &role, draft.Action, draft.Visibility, draft.Details)
	if err != nil {
		return err
	}
	return tx.Create(&event).Error
}
