package services

import (
	"strings"
	"time"

	"claims-management-server/models"
)

// The lifecycle engine validates requested field changes against a claim
// snapshot and, when they pass, produces the column updates plus the audit
// event drafts the mutation must append. It holds no state and performs no
// I/O; callers persist the result.

type ValidationKind string

const (
	KindClaimResolved           ValidationKind = "claim-resolved"
	KindMissingResolution       ValidationKind = "missing-resolution"
	KindMissingDerivationReason ValidationKind = "missing-derivation-reason"
	KindInvalidStatus           ValidationKind = "invalid-status"
	KindInvalidStatusTransition ValidationKind = "invalid-status-transition"
	KindInvalidPriority         ValidationKind = "invalid-priority"
)

// ValidationError is a locally detected precondition failure. Message carries
// the product copy shown to the user.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(kind ValidationKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}

// EventDraft is an audit event pending persistence. Actor identity is filled
// in by the caller when the draft is written.
type EventDraft struct {
	Action     models.EventAction
	Visibility models.EventVisibility
	Details    any
}

// ClaimUpdate is the outcome of a successful proposal: the minimal column
// update set and the events it must append, applied together or not at all.
type ClaimUpdate struct {
	Fields map[string]any
	Events []EventDraft
}

func newClaimUpdate() *ClaimUpdate {
	return &ClaimUpdate{Fields: map[string]any{}}
}

// IsEmpty reports whether the proposal changes nothing.
func (u *ClaimUpdate) IsEmpty() bool {
	return len(u.Fields) == 0 && len(u.Events) == 0
}

func (u *ClaimUpdate) merge(other *ClaimUpdate) {
	for k, v := range other.Fields {
		u.Fields[k] = v
	}
	u.Events = append(u.Events, other.Events...)
}

// CanMutate gates every edit control: a resolved claim is immutable.
func CanMutate(claim *models.Claim) bool {
	return !claim.IsResolved()
}

// statusRank orders the lifecycle; transitions may only move forward.
func statusRank(s models.ClaimStatus) int {
	switch s {
	case models.StatusIngresado:
		return 0
	case models.StatusEnProceso:
		return 1
	case models.StatusResuelto:
		return 2
	default:
		return -1
	}
}

// ProposeStatusChange validates a status transition. Moving into Resuelto
// requires a non-empty resolution description.
func ProposeStatusChange(claim *models.Claim, newStatus models.ClaimStatus, resolutionDescription string) (*ClaimUpdate, *ValidationError) {
	if !CanMutate(claim) {
		return nil, newValidationError(KindClaimResolved, "El reclamo está resuelto y no admite cambios")
	}
	if !newStatus.IsValid() {
		return nil, newValidationError(KindInvalidStatus, "Estado inválido")
	}

	update := newClaimUpdate()
	if newStatus == claim.Status {
		return update, nil
	}

	if newStatus == models.StatusResuelto && strings.TrimSpace(resolutionDescription) == "" {
		return nil, newValidationError(KindMissingResolution, "La resolución requiere una descripción")
	}
	if statusRank(newStatus) < statusRank(claim.Status) {
		return nil, newValidationError(KindInvalidStatusTransition, "Transición de estado no permitida")
	}

	update.Fields["status"] = newStatus
	if newStatus == models.StatusResuelto {
		update.Fields["resolution_description"] = strings.TrimSpace(resolutionDescription)
		update.Fields["resolved_at"] = time.Now().UTC()
	}
	update.Events = append(update.Events, EventDraft{
		Action:     models.ActionStatusChanged,
		Visibility: models.VisibilityPublic,
		Details:    models.StatusChangedDetails{From: claim.Status, To: newStatus},
	})
	return update, nil
}

// ProposePriorityChange validates a priority edit. Priority is internal
// triage state, so the event stays internal.
func ProposePriorityChange(claim *models.Claim, newPriority models.ClaimPriority) (*ClaimUpdate, *ValidationError) {
	if !CanMutate(claim) {
		return nil, newValidationError(KindClaimResolved, "El reclamo está resuelto y no admite cambios")
	}
	if !newPriority.IsValid() {
		return nil, newValidationError(KindInvalidPriority, "Prioridad inválida")
	}

	update := newClaimUpdate()
	if newPriority == claim.Priority {
		return update, nil
	}

	update.Fields["priority"] = newPriority
	update.Events = append(update.Events, EventDraft{
		Action:     models.ActionPriorityChanged,
		Visibility: models.VisibilityInternal,
		Details:    models.PriorityChangedDetails{From: claim.Priority, To: newPriority},
	})
	return update, nil
}

// ProposeAreaChange validates a derivation. Replacing a previously assigned
// area with a different one requires a stated reason; the first assignment
// does not.
func ProposeAreaChange(claim *models.Claim, newAreaID *uint, reason string, actorID *uint) (*ClaimUpdate, *ValidationError) {
	if !CanMutate(claim) {
		return nil, newValidationError(KindClaimResolved, "El reclamo está resuelto y no admite cambios")
	}

	update := newClaimUpdate()
	if sameArea(claim.AreaID, newAreaID) {
		return update, nil
	}

	reason = strings.TrimSpace(reason)
	if claim.AreaID != nil && reason == "" {
		return nil, newValidationError(KindMissingDerivationReason, "La derivación requiere motivo")
	}

	update.Fields["area_id"] = newAreaID
	update.Events = append(update.Events, EventDraft{
		Action:     models.ActionAreaChanged,
		Visibility: models.VisibilityPublic,
		Details: models.AreaChangedDetails{
			FromAreaID: claim.AreaID,
			ToAreaID:   newAreaID,
			Reason:     reason,
			EmployeeID: actorID,
		},
	})
	return update, nil
}

// ProposeSubAreaChange validates a sub-area edit. Sub-area is internal-only
// classification, so no reason is required and the event stays internal.
func ProposeSubAreaChange(claim *models.Claim, newSubArea *string, actorID *uint) (*ClaimUpdate, *ValidationError) {
	if !CanMutate(claim) {
		return nil, newValidationError(KindClaimResolved, "El reclamo está resuelto y no admite cambios")
	}

	update := newClaimUpdate()
	if sameSubArea(claim.SubArea, newSubArea) {
		return update, nil
	}

	update.Fields["sub_area"] = newSubArea
	update.Events = append(update.Events, EventDraft{
		Action:     models.ActionSubAreaChanged,
		Visibility: models.VisibilityInternal,
		Details: models.SubAreaChangedDetails{
			From:       claim.SubArea,
			To:         newSubArea,
			EmployeeID: actorID,
		},
	})
	return update, nil
}

// ComposeManagementUpdate combines status, priority, area and sub-area edits
// into a single update, the "Gestionar Reclamo" form. If any sub-validation
// fails, the whole composite fails and nothing is submitted.
func ComposeManagementUpdate(claim *models.Claim, req *models.ClaimManagementUpdate, actorID *uint) (*ClaimUpdate, *ValidationError) {
	if !CanMutate(claim) {
		return nil, newValidationError(KindClaimResolved, "El reclamo está resuelto y no admite cambios")
	}

	update := newClaimUpdate()

	if req.Status != nil {
		part, verr := ProposeStatusChange(claim, *req.Status, req.ResolutionDescription)
		if verr != nil {
			return nil, verr
		}
		update.merge(part)
	}

	if req.Priority != nil {
		part, verr := ProposePriorityChange(claim, *req.Priority)
		if verr != nil {
			return nil, verr
		}
		update.merge(part)
	}

	if req.AreaID != nil || req.ClearArea {
		target := req.AreaID
		if req.ClearArea {
			target = nil
		}
		part, verr := ProposeAreaChange(claim, target, req.Reason, actorID)
		if verr != nil {
			return nil, verr
		}
		update.merge(part)
	}

	if req.SubArea != nil {
		part, verr := ProposeSubAreaChange(claim, req.SubArea, actorID)
		if verr != nil {
			return nil, verr
		}
		update.merge(part)
	}

	if !update.IsEmpty() {
		update.Fields["version"] = claim.Version + 1
	}
	return update, nil
}

func sameArea(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameSubArea(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
