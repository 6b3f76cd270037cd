package services

import (
	"strings"
	"testing"
	"time"

	"claims-management-server/models"
)

// stubResolver backs the projector with fixed names, no database.
type stubResolver struct {
	areas map[uint]string
	users map[uint]string
}

func (r *stubResolver) AreaName(id uint) (string, bool) {
	name, ok := r.areas[id]
	return name, ok
}

func (r *stubResolver) UserName(id uint) (string, bool) {
	name, ok := r.users[id]
	return name, ok
}

func newTestProjector() *TimelineProjector {
	return NewTimelineProjector(&stubResolver{
		areas: map[uint]string{1: "Soporte", 2: "Infraestructura"},
		users: map[uint]string{7: "Ana Pérez", 8: "Juan Gómez"},
	})
}

func mustEvent(t *testing.T, action models.EventAction, visibility models.EventVisibility, actorID uint, details any) models.ClaimEvent {
	t.Helper()
	role := "employee"
	event, err := models.NewClaimEvent(10, &actorID, &role, action, visibility, details)
	if err != nil {
		t.Fatalf("failed to build event: %v", err)
	}
	event.ID = uint(time.Now().UnixNano() % 1000)
	return event
}

func sampleEvents(t *testing.T) []models.ClaimEvent {
	t.Helper()
	return []models.ClaimEvent{
		mustEvent(t, models.ActionCreated, models.VisibilityPublic, 7,
			models.CreatedDetails{Status: models.StatusIngresado}),
		mustEvent(t, models.ActionStatusChanged, models.VisibilityPublic, 7,
			models.StatusChangedDetails{From: models.StatusIngresado, To: models.StatusEnProceso}),
		mustEvent(t, models.ActionPriorityChanged, models.VisibilityInternal, 7,
			models.PriorityChangedDetails{From: models.PriorityMedia, To: models.PriorityAlta}),
		mustEvent(t, models.ActionAreaChanged, models.VisibilityPublic, 7,
			models.AreaChangedDetails{FromAreaID: uintPtr(1), ToAreaID: uintPtr(2), Reason: "Requiere infraestructura", EmployeeID: uintPtr(7)}),
		mustEvent(t, models.ActionComment, models.VisibilityInternal, 8,
			models.CommentDetails{Comment: "Revisé los logs del servidor"}),
		mustEvent(t, models.ActionLogged, models.VisibilityInternal, 8,
			models.ActionLoggedDetails{ActionDescription: "Se escaló al proveedor"}),
	}
}

func TestProjectPublicAudience(t *testing.T) {
	projector := newTestProjector()

	entries, err := projector.Project(sampleEvents(t), AudiencePublic)
	if err != nil {
		t.Fatalf("projection failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 public entries, got %d", len(entries))
	}

	for _, entry := range entries {
		if entry.Action == models.ActionComment {
			t.Fatal("comments must never appear on the public timeline")
		}
		if entry.Visibility != models.VisibilityPublic {
			t.Fatalf("internal event %q leaked to the public timeline", entry.Action)
		}
		if entry.ActorID != nil || entry.ActorName != nil || entry.ActorRole != nil {
			t.Fatalf("actor identity leaked on public entry %q", entry.Action)
		}
	}
}

func TestProjectPublicRedactsDerivation(t *testing.T) {
	projector := newTestProjector()

	entries, err := projector.Project(sampleEvents(t), AudiencePublic)
	if err != nil {
		t.Fatalf("projection failed: %v", err)
	}

	var derivation *TimelineEntry
	for i := range entries {
		if entries[i].Action == models.ActionAreaChanged {
			derivation = &entries[i]
		}
	}
	if derivation == nil {
		t.Fatal("expected the derivation on the public timeline")
	}

	view, ok := derivation.Details.(AreaChangedView)
	if !ok {
		t.Fatalf("unexpected details type %T", derivation.Details)
	}
	if view.FromAreaName != nil {
		t.Fatal("previous area must be redacted from the public view")
	}
	if view.EmployeeName != nil {
		t.Fatal("employee identity must be redacted from the public view")
	}
	if view.ToAreaName == nil || *view.ToAreaName != "Infraestructura" {
		t.Fatalf("expected destination area name, got %v", view.ToAreaName)
	}
	if derivation.Display.Title != "Reclamo derivado" {
		t.Fatalf("unexpected public title %q", derivation.Display.Title)
	}
	if derivation.Display.Reason != "Requiere infraestructura" {
		t.Fatalf("expected reason on public display, got %q", derivation.Display.Reason)
	}
}

func TestProjectInternalAudience(t *testing.T) {
	projector := newTestProjector()

	entries, err := projector.Project(sampleEvents(t), AudienceInternal)
	if err != nil {
		t.Fatalf("projection failed: %v", err)
	}
	// Everything except the comment, which lives on the chat channel.
	if len(entries) != 5 {
		t.Fatalf("expected 5 internal entries, got %d", len(entries))
	}

	for _, entry := range entries {
		if entry.Action == models.ActionComment {
			t.Fatal("comments belong to the chat channel, not the timeline")
		}
		if entry.ActorName == nil {
			t.Fatalf("expected resolved actor name on internal entry %q", entry.Action)
		}
	}

	for _, entry := range entries {
		if entry.Action != models.ActionAreaChanged {
			continue
		}
		view := entry.Details.(AreaChangedView)
		if view.FromAreaName == nil || *view.FromAreaName != "Soporte" {
			t.Fatalf("expected previous area on internal view, got %v", view.FromAreaName)
		}
		if view.EmployeeName == nil || *view.EmployeeName != "Ana Pérez" {
			t.Fatalf("expected employee name on internal view, got %v", view.EmployeeName)
		}
		if entry.Display.Extra != "Derivado por: Ana Pérez" {
			t.Fatalf("unexpected extra %q", entry.Display.Extra)
		}
	}
}

func TestProjectChatOnlyComments(t *testing.T) {
	projector := newTestProjector()

	entries, err := projector.ProjectChat(sampleEvents(t))
	if err != nil {
		t.Fatalf("chat projection failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 chat entry, got %d", len(entries))
	}
	if entries[0].Action != models.ActionComment {
		t.Fatalf("expected a comment, got %q", entries[0].Action)
	}
	if entries[0].Display.Description != "Revisé los logs del servidor" {
		t.Fatalf("unexpected comment body %q", entries[0].Display.Description)
	}
	if entries[0].ActorName == nil || *entries[0].ActorName != "Juan Gómez" {
		t.Fatalf("expected chat author name, got %v", entries[0].ActorName)
	}
}

func TestFormatStatusChange(t *testing.T) {
	projector := newTestProjector()
	events := []models.ClaimEvent{
		mustEvent(t, models.ActionStatusChanged, models.VisibilityPublic, 7,
			models.StatusChangedDetails{From: models.StatusIngresado, To: models.StatusEnProceso}),
	}

	entries, err := projector.Project(events, AudiencePublic)
	if err != nil {
		t.Fatalf("projection failed: %v", err)
	}
	desc := entries[0].Display.Description
	from := strings.Index(desc, string(models.StatusIngresado))
	to := strings.Index(desc, string(models.StatusEnProceso))
	if from == -1 || to == -1 || from > to {
		t.Fatalf("expected %q before %q in %q", models.StatusIngresado, models.StatusEnProceso, desc)
	}
}

func TestFormatUnknownActionFallsBack(t *testing.T) {
	projector := newTestProjector()
	events := []models.ClaimEvent{
		mustEvent(t, models.EventAction("legacy_import"), models.VisibilityInternal, 7,
			map[string]any{"source": "migración"}),
	}

	entries, err := projector.Project(events, AudienceInternal)
	if err != nil {
		t.Fatalf("projection failed: %v", err)
	}
	if entries[0].Display.Title != "legacy_import" {
		t.Fatalf("expected raw action as fallback title, got %q", entries[0].Display.Title)
	}
}

func TestFeedbackEventsArePublic(t *testing.T) {
	projector := newTestProjector()
	role := "client"
	actorID := uint(20)

	feedback, err := models.NewClaimEvent(10, &actorID, &role, models.ActionClientFeedback, models.VisibilityPublic,
		models.ClientFeedbackDetails{Feedback: "Excelente atención", Rating: 5})
	if err != nil {
		t.Fatalf("failed to build event: %v", err)
	}
	rating, err := models.NewClaimEvent(10, &actorID, &role, models.ActionClientRating, models.VisibilityPublic,
		models.ClientRatingDetails{Rating: 5})
	if err != nil {
		t.Fatalf("failed to build event: %v", err)
	}

	entries, err := projector.Project([]models.ClaimEvent{feedback, rating}, AudiencePublic)
	if err != nil {
		t.Fatalf("projection failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected both feedback events, got %d", len(entries))
	}
	if entries[0].Display.Rating != 5 || entries[1].Display.Rating != 5 {
		t.Fatalf("expected rating 5 on both displays, got %d and %d", entries[0].Display.Rating, entries[1].Display.Rating)
	}
	if entries[1].Display.Description != "Calificación: 5 estrellas" {
		t.Fatalf("unexpected rating copy %q", entries[1].Display.Description)
	}
}
