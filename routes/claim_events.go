package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"claims-management-server/database"
	"claims-management-server/middleware"
	"claims-management-server/models"
	"claims-management-server/services"
)

// RegisterClaimEventRoutes registers the timeline, internal chat, action log
// and client feedback routes, all scoped under a claim.
func RegisterClaimEventRoutes(router *gin.RouterGroup) {
	claims := router.Group("/claims")
	{
		claims.GET("/:id/timeline", getClaimTimeline)
		claims.POST("/:id/feedback", createClaimFeedback)
		claims.GET("/:id/feedback-messages", listFeedbackMessages)
		claims.POST("/:id/feedback-messages", createFeedbackMessage)
	}

	staff := router.Group("/claims")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleEmployee))
	{
		staff.GET("/:id/chat", getClaimChat)
		staff.POST("/:id/comments", createClaimComment)
		staff.POST("/:id/actions", createClaimAction)
	}
}

func loadClaimEvents(claimID uint) ([]models.ClaimEvent, error) {
	var events []models.ClaimEvent
	err := database.DB.
		Where("claim_id = ?", claimID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

// getClaimTimeline serves the audit history. Clients always get the public
// projection; staff get the internal one unless they ask for the public
// preview with ?public=1.
func getClaimTimeline(c *gin.Context) {
	claim, user, ok := loadClaim(c)
	if !ok {
		return
	}

	audience := services.AudienceInternal
	if user.IsClient() || c.Query("public") == "1" {
		audience = services.AudiencePublic
	}

	events, err := loadClaimEvents(claim.ID)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo obtener el historial")
		return
	}

	projector := services.NewTimelineProjector(services.NewGormNameResolver(database.DB))
	entries, err := projector.Project(events, audience)
	if err != nil {
		log.WithError(err).WithField("claim_id", claim.ID).Error("timeline projection failed")
		abortDetail(c, http.StatusInternalServerError, "No se pudo obtener el historial")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// getClaimChat serves the internal comment thread. Staff only; comments never
// reach the timeline or the client.
func getClaimChat(c *gin.Context) {
	claim, _, ok := loadClaim(c)
	if !ok {
		return
	}

	events, err := loadClaimEvents(claim.ID)
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudieron obtener los comentarios")
		return
	}

	projector := services.NewTimelineProjector(services.NewGormNameResolver(database.DB))
	entries, err := projector.ProjectChat(events)
	if err != nil {
		log.WithError(err).WithField("claim_id", claim.ID).Error("chat projection failed")
		abortDetail(c, http.StatusInternalServerError, "No se pudieron obtener los comentarios")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func createClaimComment(c *gin.Context) {
	claim, user, ok := loadClaim(c)
	if !ok {
		return
	}

	var req models.ClaimCommentCreate
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Comment) == "" {
		abortDetail(c, http.StatusBadRequest, "El comentario es obligatorio")
		return
	}

	role := string(user.Role)
	event, err := models.NewClaimEvent(claim.ID, &user.ID, &role, models.ActionComment, models.VisibilityInternal, models.CommentDetails{
		Comment: strings.TrimSpace(req.Comment),
	})
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo registrar el comentario")
		return
	}
	if err := database.DB.Create(&event).Error; err != nil {
		log.WithError(err).WithField("claim_id", claim.ID).Error("failed to store comment")
		abortDetail(c, http.StatusInternalServerError, "No se pudo registrar el comentario")
		return
	}

	projector := services.NewTimelineProjector(services.NewGormNameResolver(database.DB))
	entries, err := projector.ProjectChat([]models.ClaimEvent{event})
	if err != nil || len(entries) == 0 {
		abortDetail(c, http.StatusInternalServerError, "No se pudo registrar el comentario")
		return
	}

	broadcastChatEntry(claim.ID, entries[0])
	c.JSON(http.StatusCreated, entries[0])
}

// createClaimAction records a free-form work note on the internal timeline.
func createClaimAction(c *gin.Context) {
	claim, user, ok := loadClaim(c)
	if !ok {
		return
	}
	if !services.CanMutate(claim) {
		abortDetail(c, http.StatusBadRequest, "El reclamo está resuelto y no admite cambios")
		return
	}

	var req models.ClaimActionCreate
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ActionDescription) == "" {
		abortDetail(c, http.StatusBadRequest, "La descripción de la acción es obligatoria")
		return
	}

	role := string(user.Role)
	event, err := models.NewClaimEvent(claim.ID, &user.ID, &role, models.ActionLogged, models.VisibilityInternal, models.ActionLoggedDetails{
		ActionDescription: strings.TrimSpace(req.ActionDescription),
	})
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudo registrar la acción")
		return
	}
	if err := database.DB.Create(&event).Error; err != nil {
		log.WithError(err).WithField("claim_id", claim.ID).Error("failed to store action")
		abortDetail(c, http.StatusInternalServerError, "No se pudo registrar la acción")
		return
	}
	c.JSON(http.StatusCreated, event)
}

// createClaimFeedback records the client's one-shot feedback and rating on a
// resolved claim.
func createClaimFeedback(c *gin.Context) {
	claim, user, ok := loadClaim(c)
	if !ok {
		return
	}
	if !user.IsClient() {
		abortDetail(c, http.StatusForbidden, "Solo el cliente puede calificar el reclamo")
		return
	}
	if !claim.IsResolved() {
		abortDetail(c, http.StatusBadRequest, "Solo se puede calificar un reclamo resuelto")
		return
	}
	if claim.HasFeedback() {
		abortDetail(c, http.StatusBadRequest, "El reclamo ya fue calificado")
		return
	}

	var req models.ClaimFeedbackCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusBadRequest, "La retroalimentación y una calificación de 1 a 5 son obligatorias")
		return
	}
	feedback := strings.TrimSpace(req.Feedback)
	if feedback == "" {
		abortDetail(c, http.StatusBadRequest, "La retroalimentación y una calificación de 1 a 5 son obligatorias")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Claim{}).
			Where("id = ? AND client_feedback IS NULL AND client_rating IS NULL", claim.ID).
			Updates(map[string]any{
				"client_feedback": feedback,
				"client_rating":   req.Rating,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errFeedbackExists
		}
		if err := appendEvent(tx, claim.ID, &user.ID, user.Role, services.EventDraft{
			Action:     models.ActionClientFeedback,
			Visibility: models.VisibilityPublic,
			Details:    models.ClientFeedbackDetails{Feedback: feedback, Rating: req.Rating},
		}); err != nil {
			return err
		}
		return appendEvent(tx, claim.ID, &user.ID, user.Role, services.EventDraft{
			Action:     models.ActionClientRating,
			Visibility: models.VisibilityPublic,
			Details:    models.ClientRatingDetails{Rating: req.Rating},
		})
	})
	if err != nil {
		if errors.Is(err, errFeedbackExists) {
			abortDetail(c, http.StatusBadRequest, "El reclamo ya fue calificado")
			return
		}
		log.WithError(err).WithField("claim_id", claim.ID).Error("failed to store feedback")
		abortDetail(c, http.StatusInternalServerError, "No se pudo registrar la retroalimentación")
		return
	}

	var updated models.Claim
	if err := database.DB.Preload("Area").Preload("Project").First(&updated, claim.ID).Error; err != nil {
		abortDetail(c, http.StatusInternalServerError, "Reclamo no encontrado al actualizar")
		return
	}
	c.JSON(http.StatusCreated, claimView(updated, user.Role))
}

var errFeedbackExists = errors.New("claim already has feedback")

func listFeedbackMessages(c *gin.Context) {
	claim, _, ok := loadClaim(c)
	if !ok {
		return
	}

	var messages []models.FeedbackMessage
	err := database.DB.
		Where("claim_id = ?", claim.ID).
		Preload("Author").
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		abortDetail(c, http.StatusInternalServerError, "No se pudieron obtener los mensajes")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// createFeedbackMessage posts to the post-resolution conversation. Client
// messages also land on the public timeline as client comments.
func createFeedbackMessage(c *gin.Context) {
	claim, user, ok := loadClaim(c)
	if !ok {
		return
	}
	if !claim.IsResolved() {
		abortDetail(c, http.StatusBadRequest, "La conversación se habilita al resolver el reclamo")
		return
	}

	var req models.FeedbackMessageCreate
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		abortDetail(c, http.StatusBadRequest, "El mensaje es obligatorio")
		return
	}

	message := models.FeedbackMessage{
		ClaimID:  claim.ID,
		AuthorID: user.ID,
		Message:  strings.TrimSpace(req.Message),
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		if !user.IsClient() {
			return nil
		}
		return appendEvent(tx, claim.ID, &user.ID, user.Role, services.EventDraft{
			Action:     models.ActionClientComment,
			Visibility: models.VisibilityPublic,
			Details:    models.ClientCommentDetails{Comment: message.Message},
		})
	})
	if err != nil {
		log.WithError(err).WithField("claim_id", claim.ID).Error("failed to store feedback message")
		abortDetail(c, http.StatusInternalServerError, "No se pudo registrar el mensaje")
		return
	}

	database.DB.Preload("Author").First(&message, message.ID)
	c.JSON(http.StatusCreated, message)
}
