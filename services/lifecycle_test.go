package services

import (
	"testing"

	"claims-management-server/models"
)

func uintPtr(v uint) *uint { return &v }

func strPtr(v string) *string { return &v }

func statusPtr(s models.ClaimStatus) *models.ClaimStatus { return &s }

func priorityPtr(p models.ClaimPriority) *models.ClaimPriority { return &p }

func newTestClaim() *models.Claim {
	return &models.Claim{
		ID:       1,
		Status:   models.StatusIngresado,
		Priority: models.PriorityMedia,
		Version:  1,
	}
}

func TestProposeStatusChange(t *testing.T) {
	tests := []struct {
		name       string
		status     models.ClaimStatus
		newStatus  models.ClaimStatus
		resolution string
		wantKind   ValidationKind
		wantEvents int
	}{
		{
			name:       "ingresado to en proceso",
			status:     models.StatusIngresado,
			newStatus:  models.StatusEnProceso,
			wantEvents: 1,
		},
		{
			name:       "en proceso to resuelto with description",
			status:     models.StatusEnProceso,
			newStatus:  models.StatusResuelto,
			resolution: "Se reinició el servicio",
			wantEvents: 1,
		},
		{
			name:       "skip directly to resuelto",
			status:     models.StatusIngresado,
			newStatus:  models.StatusResuelto,
			resolution: "Resuelto en primera revisión",
			wantEvents: 1,
		},
		{
			name:      "resolving without description",
			status:    models.StatusEnProceso,
			newStatus: models.StatusResuelto,
			wantKind:  KindMissingResolution,
		},
		{
			name:      "backwards transition",
			status:    models.StatusEnProceso,
			newStatus: models.StatusIngresado,
			wantKind:  KindInvalidStatusTransition,
		},
		{
			name:      "unknown status",
			status:    models.StatusIngresado,
			newStatus: models.ClaimStatus("Cerrado"),
			wantKind:  KindInvalidStatus,
		},
		{
			name:       "same status is a no-op",
			status:     models.StatusEnProceso,
			newStatus:  models.StatusEnProceso,
			wantEvents: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claim := newTestClaim()
			claim.Status = tt.status

			update, verr := ProposeStatusChange(claim, tt.newStatus, tt.resolution)
			if tt.wantKind != "" {
				if verr == nil {
					t.Fatalf("expected validation error %q, got none", tt.wantKind)
				}
				if verr.Kind != tt.wantKind {
					t.Fatalf("expected kind %q, got %q", tt.wantKind, verr.Kind)
				}
				return
			}
			if verr != nil {
				t.Fatalf("unexpected validation error: %v", verr)
			}
			if len(update.Events) != tt.wantEvents {
				t.Fatalf("expected %d events, got %d", tt.wantEvents, len(update.Events))
			}
		})
	}
}

func TestProposeStatusChangeResolutionPayload(t *testing.T) {
	claim := newTestClaim()
	claim.Status = models.StatusEnProceso

	update, verr := ProposeStatusChange(claim, models.StatusResuelto, "  Se corrigió la configuración  ")
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if got := update.Fields["resolution_description"]; got != "Se corrigió la configuración" {
		t.Fatalf("expected trimmed resolution description, got %q", got)
	}
	if _, ok := update.Fields["resolved_at"]; !ok {
		t.Fatal("expected resolved_at to be set")
	}
	if update.Events[0].Visibility != models.VisibilityPublic {
		t.Fatal("status changes must be public events")
	}
}

func TestResolvedClaimRejectsEveryProposal(t *testing.T) {
	resolved := newTestClaim()
	resolved.Status = models.StatusResuelto

	proposals := []struct {
		name string
		run  func() *ValidationError
	}{
		{"status", func() *ValidationError {
			_, verr := ProposeStatusChange(resolved, models.StatusEnProceso, "")
			return verr
		}},
		{"priority", func() *ValidationError {
			_, verr := ProposePriorityChange(resolved, models.PriorityAlta)
			return verr
		}},
		{"area", func() *ValidationError {
			_, verr := ProposeAreaChange(resolved, uintPtr(2), "motivo", uintPtr(9))
			return verr
		}},
		{"sub-area", func() *ValidationError {
			_, verr := ProposeSubAreaChange(resolved, strPtr("Infraestructura"), uintPtr(9))
			return verr
		}},
		{"composite", func() *ValidationError {
			_, verr := ComposeManagementUpdate(resolved, &models.ClaimManagementUpdate{
				Priority: priorityPtr(models.PriorityBaja),
			}, uintPtr(9))
			return verr
		}},
	}

	for _, p := range proposals {
		t.Run(p.name, func(t *testing.T) {
			verr := p.run()
			if verr == nil {
				t.Fatal("expected a validation error on a resolved claim")
			}
			if verr.Kind != KindClaimResolved {
				t.Fatalf("expected kind %q, got %q", KindClaimResolved, verr.Kind)
			}
		})
	}
}

func TestProposePriorityChange(t *testing.T) {
	claim := newTestClaim()

	update, verr := ProposePriorityChange(claim, models.PriorityAlta)
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if update.Fields["priority"] != models.PriorityAlta {
		t.Fatalf("expected priority field, got %v", update.Fields)
	}
	if update.Events[0].Visibility != models.VisibilityInternal {
		t.Fatal("priority changes must stay internal")
	}

	if _, verr := ProposePriorityChange(claim, models.ClaimPriority("Urgente")); verr == nil || verr.Kind != KindInvalidPriority {
		t.Fatalf("expected invalid-priority error, got %v", verr)
	}

	noop, verr := ProposePriorityChange(claim, models.PriorityMedia)
	if verr != nil || !noop.IsEmpty() {
		t.Fatalf("same priority should be a no-op, got %v %v", noop, verr)
	}
}

func TestProposeAreaChange(t *testing.T) {
	t.Run("first assignment needs no reason", func(t *testing.T) {
		claim := newTestClaim()

		update, verr := ProposeAreaChange(claim, uintPtr(3), "", uintPtr(7))
		if verr != nil {
			t.Fatalf("unexpected validation error: %v", verr)
		}
		if len(update.Events) != 1 {
			t.Fatalf("expected one event, got %d", len(update.Events))
		}
		if update.Events[0].Visibility != models.VisibilityPublic {
			t.Fatal("derivations must be public events")
		}
	})

	t.Run("rederivation requires a reason", func(t *testing.T) {
		claim := newTestClaim()
		claim.AreaID = uintPtr(3)

		_, verr := ProposeAreaChange(claim, uintPtr(4), "   ", uintPtr(7))
		if verr == nil || verr.Kind != KindMissingDerivationReason {
			t.Fatalf("expected missing-derivation-reason error, got %v", verr)
		}
	})

	t.Run("rederivation with reason passes", func(t *testing.T) {
		claim := newTestClaim()
		claim.AreaID = uintPtr(3)

		update, verr := ProposeAreaChange(claim, uintPtr(4), "Corresponde a otra área", uintPtr(7))
		if verr != nil {
			t.Fatalf("unexpected validation error: %v", verr)
		}
		details, ok := update.Events[0].Details.(models.AreaChangedDetails)
		if !ok {
			t.Fatalf("unexpected details type %T", update.Events[0].Details)
		}
		if details.Reason != "Corresponde a otra área" {
			t.Fatalf("expected reason on details, got %q", details.Reason)
		}
		if details.FromAreaID == nil || *details.FromAreaID != 3 {
			t.Fatalf("expected from_area_id 3, got %v", details.FromAreaID)
		}
	})

	t.Run("same area is a no-op", func(t *testing.T) {
		claim := newTestClaim()
		claim.AreaID = uintPtr(3)

		update, verr := ProposeAreaChange(claim, uintPtr(3), "", uintPtr(7))
		if verr != nil || !update.IsEmpty() {
			t.Fatalf("same area should be a no-op, got %v %v", update, verr)
		}
	})
}

func TestProposeSubAreaChange(t *testing.T) {
	claim := newTestClaim()

	update, verr := ProposeSubAreaChange(claim, strPtr("Redes"), uintPtr(7))
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if update.Events[0].Visibility != models.VisibilityInternal {
		t.Fatal("sub-area changes must stay internal")
	}

	claim.SubArea = strPtr("Redes")
	noop, verr := ProposeSubAreaChange(claim, strPtr("Redes"), uintPtr(7))
	if verr != nil || !noop.IsEmpty() {
		t.Fatalf("same sub-area should be a no-op, got %v %v", noop, verr)
	}
}

func TestComposeManagementUpdate(t *testing.T) {
	t.Run("combined edit merges fields and events", func(t *testing.T) {
		claim := newTestClaim()

		update, verr := ComposeManagementUpdate(claim, &models.ClaimManagementUpdate{
			Status:   statusPtr(models.StatusEnProceso),
			Priority: priorityPtr(models.PriorityAlta),
			AreaID:   uintPtr(2),
			SubArea:  strPtr("Base de datos"),
		}, uintPtr(5))
		if verr != nil {
			t.Fatalf("unexpected validation error: %v", verr)
		}
		if len(update.Events) != 4 {
			t.Fatalf("expected 4 events, got %d", len(update.Events))
		}
		if update.Fields["version"] != claim.Version+1 {
			t.Fatalf("expected version bump to %d, got %v", claim.Version+1, update.Fields["version"])
		}
	})

	t.Run("one failing part rejects the whole edit", func(t *testing.T) {
		claim := newTestClaim()
		claim.AreaID = uintPtr(1)

		_, verr := ComposeManagementUpdate(claim, &models.ClaimManagementUpdate{
			Priority: priorityPtr(models.PriorityAlta),
			AreaID:   uintPtr(2),
		}, uintPtr(5))
		if verr == nil || verr.Kind != KindMissingDerivationReason {
			t.Fatalf("expected missing-derivation-reason error, got %v", verr)
		}
	})

	t.Run("clear area unassigns", func(t *testing.T) {
		claim := newTestClaim()
		claim.AreaID = uintPtr(1)

		update, verr := ComposeManagementUpdate(claim, &models.ClaimManagementUpdate{
			ClearArea: true,
			Reason:    "Fuera de alcance del área",
		}, uintPtr(5))
		if verr != nil {
			t.Fatalf("unexpected validation error: %v", verr)
		}
		if got, ok := update.Fields["area_id"]; !ok || got != (*uint)(nil) {
			t.Fatalf("expected area_id nil, got %v", got)
		}
	})

	t.Run("empty request changes nothing", func(t *testing.T) {
		claim := newTestClaim()

		update, verr := ComposeManagementUpdate(claim, &models.ClaimManagementUpdate{}, uintPtr(5))
		if verr != nil {
			t.Fatalf("unexpected validation error: %v", verr)
		}
		if !update.IsEmpty() {
			t.Fatalf("expected empty update, got %v", update.Fields)
		}
		if _, ok := update.Fields["version"]; ok {
			t.Fatal("no-op edit must not bump the version")
		}
	})
}
