package workflow

import "github.com/AbdelrhmanRafat/fast-track-procurement-api/models"

// AdminDecision is one entry of an updateAdminChecked call. A nil
// Approved clears a previous decision.
type AdminDecision struct {
	ItemID   uint  `json:"item_id"`
	Approved *bool `json:"approved"`
}

// ApplyAdminDecisions records the admin's per-item approval decisions on
// the order snapshot. Partial coverage is legal (the rejection path only
// needs some items marked false); once every item carries a decision the
// order's admin_checked flag flips to true. The order status itself is
// never touched here - approval is a separate, explicit transition.
func ApplyAdminDecisions(order *models.Order, role models.Role, decisions []AdminDecision) ([]*models.OrderItem, error) {
	if !role.IsAdmin() {
		return nil, &ForbiddenError{Role: role, Reason: "only admins may record item decisions"}
	}
	if len(decisions) == 0 {
		return nil, &ValidationError{Reason: "at least one decision is required"}
	}

	byID := make(map[uint]*models.OrderItem, len(order.Items))
	for i := range order.Items {
		byID[order.Items[i].ID] = &order.Items[i]
	}

	updated := make([]*models.OrderItem, 0, len(decisions))
	for _, decision := range decisions {
		item, ok := byID[decision.ItemID]
		if !ok {
			return nil, &NotFoundError{Resource: "order item", ID: decision.ItemID}
		}
		item.ApprovedByAdmin = decision.Approved
		updated = append(updated, item)
	}

	allDecided := true
	for i := range order.Items {
		if order.Items[i].ApprovedByAdmin == nil {
			allDecided = false
			break
		}
	}
	if allDecided {
		checked := true
		order.AdminChecked = &checked
	}

	return updated, nil
}

// CanSetItemStatus gates the per-item purchase-status mutation. Admins
// hold the full-access override regardless of order status; Purchasing
// may only act once the order has been approved and until it closes.
func CanSetItemStatus(role models.Role, status models.OrderStatus) bool {
	if role.IsAdmin() {
		return true
	}
	if role == models.RolePurchasing {
		return status == models.StatusOwnerApproved || status == models.StatusPurchasingInProgress
	}
	return false
}

// CanEditOrder gates title/notes/item edits. Admins may edit in any
// status; Engineering and Site only while the order sits in its initial
// status.
func CanEditOrder(role models.Role, status models.OrderStatus) bool {
	if role.IsAdmin() {
		return true
	}
	if role == models.RoleEngineering || role == models.RoleSite {
		return status == models.StatusOrderCreated
	}
	return false
}

// CanCreateOrder reports whether the role may open new orders.
func CanCreateOrder(role models.Role) bool {
	switch role {
	case models.RoleAdmin, models.RoleSubAdmin, models.RoleEngineering, models.RoleSite:
		return true
	}
	return false
}

// CanDeleteOrder reports whether the role may delete orders. Deletion is
// a backend operation outside the state machine, gated to admins.
func CanDeleteOrder(role models.Role) bool {
	return role.IsAdmin()
}
