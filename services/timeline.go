package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"claims-management-server/models"
)

// Audience selects which projection of the timeline a reader gets.
type Audience string

const (
	AudienceInternal Audience = "internal"
	AudiencePublic   Audience = "public"
)

// NameResolver turns stored ids into display names when projecting events.
type NameResolver interface {
	AreaName(id uint) (string, bool)
	UserName(id uint) (string, bool)
}

// TimelineEntry is one display-ready event. For the public audience the
// actor fields and internal detail fields are absent by construction, not
// merely hidden by the client.
type TimelineEntry struct {
	ID         uint                   `json:"id"`
	ClaimID    uint                   `json:"claim_id"`
	Action     models.EventAction     `json:"action"`
	Visibility models.EventVisibility `json:"visibility"`
	CreatedAt  time.Time              `json:"created_at"`
	ActorID    *uint                  `json:"actor_id,omitempty"`
	ActorName  *string                `json:"actor_name,omitempty"`
	ActorRole  *string                `json:"actor_role,omitempty"`
	Details    any                    `json:"details"`
	Display    Display                `json:"display"`
}

// Display is the formatted rendering of an event.
type Display struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extra       string `json:"extra,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Rating      int    `json:"rating,omitempty"`
}

// AreaChangedView is the serialized detail of a derivation. The public
// projection carries only the destination area and the reason.
type AreaChangedView struct {
	FromAreaName *string `json:"from_area_name,omitempty"`
	ToAreaName   *string `json:"to_area_name,omitempty"`
	Reason       string  `json:"reason,omitempty"`
	EmployeeName *string `json:"employee_name,omitempty"`
}

// SubAreaChangedView is the serialized detail of a sub-area edit.
type SubAreaChangedView struct {
	From         *string `json:"from"`
	To           *string `json:"to"`
	EmployeeName *string `json:"employee_name,omitempty"`
}

// TimelineProjector turns raw claim events into audience-scoped entries.
type TimelineProjector struct {
	Resolver NameResolver
}

func NewTimelineProjector(resolver NameResolver) *TimelineProjector {
	return &TimelineProjector{Resolver: resolver}
}

// FilterForAudience drops what the audience must not see. Comments never
// appear in the main timeline: the public never sees them and the internal
// view serves them through the chat channel instead.
func (p *TimelineProjector) FilterForAudience(events []models.ClaimEvent, audience Audience) []models.ClaimEvent {
	filtered := make([]models.ClaimEvent, 0, len(events))
	for _, ev := range events {
		if ev.Action == models.ActionComment {
			continue
		}
		if audience == AudiencePublic && ev.Visibility != models.VisibilityPublic {
			continue
		}
		filtered = append(filtered, ev)
	}
	return filtered
}

// ChatEvents keeps only the internal chat messages.
func (p *TimelineProjector) ChatEvents(events []models.ClaimEvent) []models.ClaimEvent {
	chat := make([]models.ClaimEvent, 0)
	for _, ev := range events {
		if ev.Action == models.ActionComment {
			chat = append(chat, ev)
		}
	}
	return chat
}

// Project filters, redacts, enriches and formats events for the audience.
// Events are kept in the order received; the backend query orders them by
// created_at ascending.
func (p *TimelineProjector) Project(events []models.ClaimEvent, audience Audience) ([]TimelineEntry, error) {
	filtered := p.FilterForAudience(events, audience)
	entries := make([]TimelineEntry, 0, len(filtered))
	for _, ev := range filtered {
		entry, err := p.projectEvent(ev, audience)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ProjectChat renders the internal chat channel. Never served to clients.
func (p *TimelineProjector) ProjectChat(events []models.ClaimEvent) ([]TimelineEntry, error) {
	chat := p.ChatEvents(events)
	entries := make([]TimelineEntry, 0, len(chat))
	for _, ev := range chat {
		entry, err := p.projectEvent(ev, AudienceInternal)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (p *TimelineProjector) projectEvent(ev models.ClaimEvent, audience Audience) (TimelineEntry, error) {
	decoded, err := ev.DecodeDetails()
	if err != nil {
		return TimelineEntry{}, fmt.Errorf("decode details of event %d: %w", ev.ID, err)
	}

	entry := TimelineEntry{
		ID:         ev.ID,
		ClaimID:    ev.ClaimID,
		Action:     ev.Action,
		Visibility: ev.Visibility,
		CreatedAt:  ev.CreatedAt,
	}

	if audience == AudienceInternal {
		entry.ActorID = ev.ActorID
		entry.ActorRole = ev.ActorRole
		if ev.ActorID != nil {
			if name, ok := p.userName(*ev.ActorID); ok {
				entry.ActorName = &name
			}
		}
	}

	entry.Details = p.detailView(decoded, audience)
	entry.Display = p.format(ev.Action, entry.Details, audience)
	return entry, nil
}

// detailView maps the stored detail payload to what the audience may see.
// Redaction happens here, before anything is serialized.
func (p *TimelineProjector) detailView(decoded any, audience Audience) any {
	switch d := decoded.(type) {
	case *models.AreaChangedDetails:
		view := AreaChangedView{Reason: d.Reason}
		if d.ToAreaID != nil {
			if name, ok := p.areaName(*d.ToAreaID); ok {
				view.ToAreaName = &name
			}
		}
		if audience == AudiencePublic {
			return view
		}
		if d.FromAreaID != nil {
			if name, ok := p.areaName(*d.FromAreaID); ok {
				view.FromAreaName = &name
			}
		}
		if d.EmployeeID != nil {
			if name, ok := p.userName(*d.EmployeeID); ok {
				view.EmployeeName = &name
			}
		}
		return view
	case *models.SubAreaChangedDetails:
		view := SubAreaChangedView{From: d.From, To: d.To}
		if audience == AudiencePublic {
			return view
		}
		if d.EmployeeID != nil {
			if name, ok := p.userName(*d.EmployeeID); ok {
				view.EmployeeName = &name
			}
		}
		return view
	default:
		return decoded
	}
}

// format is total over the event kinds; unknown kinds fall back to the raw
// action name. Strings are the product copy the panels render.
func (p *TimelineProjector) format(action models.EventAction, details any, audience Audience) Display {
	switch action {
	case models.ActionCreated:
		return Display{
			Title:       "Reclamo creado",
			Description: "El reclamo fue registrado en el sistema",
		}
	case models.ActionStatusChanged:
		d, ok := details.(*models.StatusChangedDetails)
		if !ok {
			break
		}
		return Display{
			Title:       "Cambio de estado",
			Description: fmt.Sprintf("%s → %s", d.From, d.To),
		}
	case models.ActionAreaChanged:
		d, ok := details.(AreaChangedView)
		if !ok {
			break
		}
		if audience == AudiencePublic {
			display := Display{Title: "Reclamo derivado", Description: "Derivado a nueva área", Reason: d.Reason}
			if d.ToAreaName != nil {
				display.Description = fmt.Sprintf("Asignado al área: %s", *d.ToAreaName)
			}
			return display
		}
		display := Display{
			Title:       "Derivación de área",
			Description: fmt.Sprintf("%s → %s", areaLabel(d.FromAreaName), areaLabel(d.ToAreaName)),
			Reason:      d.Reason,
		}
		if d.EmployeeName != nil {
			display.Extra = fmt.Sprintf("Derivado por: %s", *d.EmployeeName)
		}
		return display
	case models.ActionPriorityChanged:
		d, ok := details.(*models.PriorityChangedDetails)
		if !ok {
			break
		}
		return Display{
			Title:       "Cambio de prioridad",
			Description: fmt.Sprintf("%s → %s", d.From, d.To),
		}
	case models.ActionSubAreaChanged:
		d, ok := details.(SubAreaChangedView)
		if !ok {
			break
		}
		display := Display{
			Title:       "Cambio de sub-área",
			Description: fmt.Sprintf("%s → %s", subAreaLabel(d.From), subAreaLabel(d.To)),
		}
		if d.EmployeeName != nil {
			display.Extra = fmt.Sprintf("Cambiado por: %s", *d.EmployeeName)
		}
		return display
	case models.ActionLogged:
		d, ok := details.(*models.ActionLoggedDetails)
		if !ok {
			break
		}
		return Display{
			Title:       "Acción realizada",
			Description: d.ActionDescription,
		}
	case models.ActionComment:
		d, ok := details.(*models.CommentDetails)
		if !ok {
			break
		}
		return Display{
			Title:       "Comentario interno",
			Description: d.Comment,
		}
	case models.ActionClientFeedback:
		d, ok := details.(*models.ClientFeedbackDetails)
		if !ok {
			break
		}
		return Display{
			Title:       "Retroalimentación del cliente",
			Description: d.Feedback,
			Rating:      d.Rating,
		}
	case models.ActionClientRating:
		d, ok := details.(*models.ClientRatingDetails)
		if !ok {
			break
		}
		return Display{
			Title:       "Calificación del cliente",
			Description: fmt.Sprintf("Calificación: %d estrellas", d.Rating),
			Rating:      d.Rating,
		}
	case models.ActionClientComment:
		d, ok := details.(*models.ClientCommentDetails)
		if !ok {
			break
		}
		return Display{
			Title:       "Comentario del cliente",
			Description: d.Comment,
		}
	}
	return Display{Title: string(action), Description: ""}
}

func (p *TimelineProjector) areaName(id uint) (string, bool) {
	if p.Resolver == nil {
		return "", false
	}
	return p.Resolver.AreaName(id)
}

func (p *TimelineProjector) userName(id uint) (string, bool) {
	if p.Resolver == nil {
		return "", false
	}
	return p.Resolver.UserName(id)
}

func areaLabel(name *string) string {
	if name == nil {
		return "Sin área"
	}
	return *name
}

func subAreaLabel(value *string) string {
	if value == nil || *value == "" {
		return "—"
	}
	return *value
}

// GormNameResolver resolves names from the database with a per-projection
// cache, so repeated actors and areas cost one query each.
type GormNameResolver struct {
	db        *gorm.DB
	areaCache map[uint]*string
	userCache map[uint]*string
}

func NewGormNameResolver(db *gorm.DB) *GormNameResolver {
	return &GormNameResolver{
		db:        db,
		areaCache: map[uint]*string{},
		userCache: map[uint]*string{},
	}
}

func (r *GormNameResolver) AreaName(id uint) (string, bool) {
	if cached, ok := r.areaCache[id]; ok {
		if cached == nil {
			return "", false
		}
		return *cached, true
	}
	var area models.Area
	if err := r.db.Select("id", "name").First(&area, id).Error; err != nil {
		r.areaCache[id] = nil
		return "", false
	}
	r.areaCache[id] = &area.Name
	return area.Name, true
}

func (r *GormNameResolver) UserName(id uint) (string, bool) {
	if cached, ok := r.userCache[id]; ok {
		if cached == nil {
			return "", false
		}
		return *cached, true
	}
	var user models.User
	if err := r.db.Select("id", "full_name", "email").First(&user, id).Error; err != nil {
		r.userCache[id] = nil
		return "", false
	}
	name := user.DisplayName()
	r.userCache[id] = &name
	return name, true
}
