// Package workflow owns the order status state machine: the fixed
// transition table, the role gates on it, and the per-item approval and
// purchasing rules nested inside an order. Everything here is a pure
// function of the order snapshot it is given; persistence and
// notification dispatch belong to the callers.
package workflow

import (
	"fmt"
	"strings"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
)

// TransitionPayload carries the optional inputs a transition may require.
type TransitionPayload struct {
	RejectionReason string `json:"rejection_reason"`
	PurchasingNotes string `json:"purchasing_notes"`
}

// StatusChanged is emitted once per successful transition and is the
// sole input to notification dispatch.
type StatusChanged struct {
	OrderID uint
	From    models.OrderStatus
	To      models.OrderStatus
	ActorID uint
}

// transitionRule is one row of the workflow table: who may move an order
// from one status to the next, and what the move requires.
type transitionRule struct {
	from  models.OrderStatus
	to    models.OrderStatus
	roles []models.Role
	check func(order *models.Order, payload TransitionPayload) error
}

var adminRoles = []models.Role{models.RoleAdmin, models.RoleSubAdmin}

// transitionTable is the complete workflow. Any (role, from, to)
// combination not listed here is rejected.
var transitionTable = []transitionRule{
	{
		from:  models.StatusOrderCreated,
		to:    models.StatusEngineeringReviewed,
		roles: []models.Role{models.RoleEngineering},
	},
	{
		// Triggered explicitly by the admin read path, see MarkUnderReview.
		from:  models.StatusEngineeringReviewed,
		to:    models.StatusUnderAdminReview,
		roles: adminRoles,
	},
	{
		from:  models.StatusUnderAdminReview,
		to:    models.StatusOwnerApproved,
		roles: adminRoles,
		check: checkAllItemsDecided,
	},
	{
		from:  models.StatusUnderAdminReview,
		to:    models.StatusOwnerRejected,
		roles: adminRoles,
		check: checkRejectionReason,
	},
	{
		from:  models.StatusOwnerApproved,
		to:    models.StatusPurchasingInProgress,
		roles: []models.Role{models.RolePurchasing},
	},
	{
		from:  models.StatusPurchasingInProgress,
		to:    models.StatusOrderClosed,
		roles: []models.Role{models.RolePurchasing},
	},
}

// checkAllItemsDecided enforces the approval completeness invariant: an
// order may only be approved once every item carries an admin decision.
func checkAllItemsDecided(order *models.Order, _ TransitionPayload) error {
	for i := range order.Items {
		if order.Items[i].ApprovedByAdmin == nil {
			return fmt.Errorf("item %q has no admin decision yet", order.Items[i].Title)
		}
	}
	return nil
}

func checkRejectionReason(_ *models.Order, payload TransitionPayload) error {
	if strings.TrimSpace(payload.RejectionReason) == "" {
		return fmt.Errorf("rejection_reason required")
	}
	return nil
}

func findRule(from, to models.OrderStatus) *transitionRule {
	for i := range transitionTable {
		if transitionTable[i].from == from && transitionTable[i].to == to {
			return &transitionTable[i]
		}
	}
	return nil
}

func roleAllowed(rule *transitionRule, role models.Role) bool {
	for _, r := range rule.roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsTransitionAllowed reports whether the workflow table permits the
// move, including its payload preconditions.
func IsTransitionAllowed(role models.Role, order *models.Order, to models.OrderStatus, payload TransitionPayload) bool {
	rule := findRule(order.Status, to)
	if rule == nil || !roleAllowed(rule, role) {
		return false
	}
	if rule.check != nil && rule.check(order, payload) != nil {
		return false
	}
	return true
}

// ApplyTransition validates the requested transition against the table
// and, if legal, mutates the order snapshot and returns the resulting
// StatusChanged event. On any failure the order is left untouched.
func ApplyTransition(order *models.Order, to models.OrderStatus, role models.Role, actorID uint, payload TransitionPayload) (*StatusChanged, error) {
	from := order.Status

	if !to.IsValid() {
		return nil, &InvalidTransitionError{From: from, To: to, Reason: "unknown status"}
	}

	if from.IsTerminal() {
		return nil, &InvalidTransitionError{From: from, To: to,
			Reason: fmt.Sprintf("%q is a terminal status", from)}
	}

	rule := findRule(from, to)
	if rule == nil {
		return nil, &InvalidTransitionError{From: from, To: to,
			Reason: fmt.Sprintf("no transition from %q to %q", from, to)}
	}

	if !roleAllowed(rule, role) {
		return nil, &InvalidTransitionError{From: from, To: to,
			Reason: fmt.Sprintf("role %q may not perform this transition", role)}
	}

	if rule.check != nil {
		if err := rule.check(order, payload); err != nil {
			return nil, &InvalidTransitionError{From: from, To: to, Reason: err.Error()}
		}
	}

	// Validation is complete; apply the transition.
	order.Status = to
	order.UpdatedByID = &actorID
	switch to {
	case models.StatusOwnerRejected:
		reason := strings.TrimSpace(payload.RejectionReason)
		order.RejectionReason = &reason
	case models.StatusOrderClosed:
		if notes := strings.TrimSpace(payload.PurchasingNotes); notes != "" {
			order.PurchasingNotes = &notes
		}
	}

	return &StatusChanged{OrderID: order.ID, From: from, To: to, ActorID: actorID}, nil
}
