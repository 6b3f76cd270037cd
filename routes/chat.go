package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"claims-management-server/database"
	"claims-management-server/models"
	"claims-management-server/services"
	"claims-management-server/utils"
	ws "claims-management-server/websocket"
)

var chatHub *ws.Hub

// SetChatHub wires the websocket hub the chat routes broadcast through.
// Called once from main before the router starts serving.
func SetChatHub(hub *ws.Hub) {
	chatHub = hub
}

// RegisterChatRoutes registers the live chat socket. Browsers cannot set an
// Authorization header on a websocket handshake, so the token travels as a
// query parameter instead.
func RegisterChatRoutes(router *gin.RouterGroup) {
	router.GET("/claims/:id/chat/ws", serveClaimChat)
}

func serveClaimChat(c *gin.Context) {
	claimID, ok := paramID(c, "id")
	if !ok {
		return
	}

	token := c.Query("token")
	if token == "" {
		abortDetail(c, http.StatusUnauthorized, "Token no proporcionado")
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		abortDetail(c, http.StatusUnauthorized, "Token inválido o expirado")
		return
	}

	var user models.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
		abortDetail(c, http.StatusUnauthorized, "Usuario no encontrado o inactivo")
		return
	}
	if user.IsClient() {
		abortDetail(c, http.StatusForbidden, "El chat interno es solo para el personal")
		return
	}

	var claim models.Claim
	if err := database.DB.First(&claim, claimID).Error; err != nil {
		notFound(c)
		return
	}

	if err := ws.Serve(chatHub, c.Writer, c.Request, user.ID, string(user.Role), claim.ID); err != nil {
		log.WithError(err).WithField("claim_id", claim.ID).Error("websocket upgrade failed")
	}
}

// broadcastChatEntry pushes a freshly stored comment to everyone watching the
// claim's chat room.
func broadcastChatEntry(claimID uint, entry services.TimelineEntry) {
	if chatHub == nil {
		return
	}
	chatHub.Broadcast(&ws.Message{
		Type:      "comment",
		ClaimID:   claimID,
		Data:      entry,
		Timestamp: time.Now().UTC(),
	})
}

// notifyClaimUpdated tells open chat rooms that the claim changed so panels
// can refresh the header and timeline.
func notifyClaimUpdated(claimID uint) {
	if chatHub == nil {
		return
	}
	chatHub.Broadcast(&ws.Message{
		Type:      "claim_updated",
		ClaimID:   claimID,
		Timestamp: time.Now().UTC(),
	})
}
