package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/services"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/workflow"
)

// CreateOrderItemRequest is one line item of a new order
type CreateOrderItemRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	Title      string                   `json:"title" binding:"required"`
	OrderNotes string                   `json:"order_notes"`
	Items      []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// TransitionRequest represents the request body for a status transition
type TransitionRequest struct {
	Status          models.OrderStatus `json:"status" binding:"required"`
	RejectionReason string             `json:"rejection_reason"`
	PurchasingNotes string             `json:"purchasing_notes"`
}

// UpdateOrderItemRequest is one item entry of an order update. An entry
// with an ID updates that item, an entry with Delete removes it, and an
// entry without an ID creates a new item.
type UpdateOrderItemRequest struct {
	ID          *uint   `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Delete      bool    `json:"delete"`
}

// UpdateOrderRequest represents the request body for editing an order
type UpdateOrderRequest struct {
	Title      *string                  `json:"title"`
	OrderNotes *string                  `json:"order_notes"`
	Items      []UpdateOrderItemRequest `json:"items"`
}

// loadOrder fetches an order with its associations, writing the 404
// response itself when the id is unknown.
func loadOrder(c *gin.Context, id string) *models.Order {
	db := config.GetDB()
	var order models.Order
	err := db.Preload("Items").Preload("Items.Attachments").
		Preload("CreatedBy").Preload("UpdatedBy").
		First(&order, "id = ?", id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return nil
	}
	return &order
}

// canViewOrder mirrors the list filtering: admins see everything,
// Engineering/Site see their own orders, Purchasing sees orders from
// approval onward.
func canViewOrder(user *models.User, order *models.Order) bool {
	switch {
	case user.Role.IsAdmin():
		return true
	case user.Role == models.RolePurchasing:
		return order.Status == models.StatusOwnerApproved ||
			order.Status == models.StatusPurchasingInProgress ||
			order.Status == models.StatusOrderClosed
	default:
		return order.CreatedByID == user.ID
	}
}

// CreateOrder handles POST /api/v1/orders - opens a new purchase order
func CreateOrder(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	if !workflow.CanCreateOrder(user.Role) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Purchasing users cannot create orders",
			},
		})
		return
	}

	// Parse request body
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	// Create the order with its items
	order := models.Order{
		Title:       req.Title,
		OrderNotes:  req.OrderNotes,
		Status:      models.StatusOrderCreated,
		CreatedByID: user.ID,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			Title:       item.Title,
			Description: item.Description,
		})
	}

	db := config.GetDB()
	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	// Load the relationships to return complete data
	if err := db.Preload("Items").Preload("CreatedBy").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	// Tell Engineering a new order is waiting for review
	services.GetNotificationService().DispatchStatusChange(c.Request.Context(), &workflow.StatusChanged{
		OrderID: order.ID,
		From:    models.StatusOrderCreated,
		To:      models.StatusOrderCreated,
		ActorID: user.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - lists orders visible to the
// caller's role
func ListOrders(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	db := config.GetDB()
	query := db.Preload("Items").Preload("Items.Attachments").Preload("CreatedBy")

	switch {
	case user.Role.IsAdmin():
		// Admins see everything
	case user.Role == models.RolePurchasing:
		query = query.Where("status IN ?", []models.OrderStatus{
			models.StatusOwnerApproved,
			models.StatusPurchasingInProgress,
			models.StatusOrderClosed,
		})
	default:
		query = query.Where("created_by_id = ?", user.ID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - fetches one order. When an
// admin opens an order that Engineering has reviewed, the read path
// explicitly moves it under admin review (the transition goes through
// the normal workflow table rather than happening as a hidden side
// effect of the query).
func GetOrder(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	order := loadOrder(c, c.Param("id"))
	if order == nil {
		return
	}

	if !canViewOrder(user, order) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to view this order",
			},
		})
		return
	}

	if user.Role.IsAdmin() && order.Status == models.StatusEngineeringReviewed {
		if err := markUnderReview(c, user, order); err != nil {
			respondWorkflowError(c, err)
			return
		}
	}

	attachPresignedURLs(order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// markUnderReview performs the explicit EngineeringReviewed ->
// UnderAdminReview transition on behalf of the admin read path.
func markUnderReview(c *gin.Context, user *models.User, order *models.Order) error {
	event, err := workflow.ApplyTransition(order, models.StatusUnderAdminReview, user.Role, user.ID, workflow.TransitionPayload{})
	if err != nil {
		return err
	}

	db := config.GetDB()
	if err := db.Omit(clause.Associations).Save(order).Error; err != nil {
		return err
	}

	services.GetNotificationService().DispatchStatusChange(c.Request.Context(), event)
	return nil
}

// TransitionOrderStatus handles PATCH /api/v1/orders/:id/status - moves
// an order through the workflow
func TransitionOrderStatus(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	order := loadOrder(c, c.Param("id"))
	if order == nil {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	payload := workflow.TransitionPayload{
		RejectionReason: req.RejectionReason,
		PurchasingNotes: req.PurchasingNotes,
	}

	event, err := workflow.ApplyTransition(order, req.Status, user.Role, user.ID, payload)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	db := config.GetDB()
	if err := db.Omit(clause.Associations).Save(order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save order",
			},
		})
		return
	}

	services.GetNotificationService().DispatchStatusChange(c.Request.Context(), event)
	attachPresignedURLs(order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// UpdateOrder handles PUT /api/v1/orders/:id - edits title, notes and
// items within the role's edit window
func UpdateOrder(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	order := loadOrder(c, c.Param("id"))
	if order == nil {
		return
	}

	if !workflow.CanEditOrder(user.Role, order.Status) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Order can no longer be edited by your role",
			},
		})
		return
	}

	// Creators only, unless the caller has the admin override
	if !user.Role.IsAdmin() && order.CreatedByID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to edit this order",
			},
		})
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	itemsByID := make(map[uint]*models.OrderItem, len(order.Items))
	for i := range order.Items {
		itemsByID[order.Items[i].ID] = &order.Items[i]
	}

	// The whole edit applies atomically or not at all.
	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		remaining := len(order.Items)

		for _, entry := range req.Items {
			switch {
			case entry.Delete:
				if entry.ID == nil {
					return &workflow.ValidationError{Reason: "item id required for delete"}
				}
				item, ok := itemsByID[*entry.ID]
				if !ok {
					return &workflow.NotFoundError{Resource: "order item", ID: *entry.ID}
				}
				if remaining <= 1 {
					return &workflow.ValidationError{Reason: "an order must keep at least one item"}
				}
				if err := tx.Delete(item).Error; err != nil {
					return err
				}
				remaining--

			case entry.ID != nil:
				item, ok := itemsByID[*entry.ID]
				if !ok {
					return &workflow.NotFoundError{Resource: "order item", ID: *entry.ID}
				}
				if entry.Title != nil {
					if *entry.Title == "" {
						return &workflow.ValidationError{Reason: "item title cannot be empty"}
					}
					item.Title = *entry.Title
				}
				if entry.Description != nil {
					item.Description = *entry.Description
				}
				if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
					return err
				}

			default:
				if entry.Title == nil || *entry.Title == "" {
					return &workflow.ValidationError{Reason: "item title is required"}
				}
				newItem := models.OrderItem{OrderID: order.ID, Title: *entry.Title}
				if entry.Description != nil {
					newItem.Description = *entry.Description
				}
				if err := tx.Create(&newItem).Error; err != nil {
					return err
				}
				remaining++
			}
		}

		if req.Title != nil {
			if *req.Title == "" {
				return &workflow.ValidationError{Reason: "order title cannot be empty"}
			}
			order.Title = *req.Title
		}
		if req.OrderNotes != nil {
			order.OrderNotes = *req.OrderNotes
		}
		order.UpdatedByID = &user.ID

		return tx.Omit(clause.Associations).Save(order).Error
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	updated := loadOrder(c, c.Param("id"))
	if updated == nil {
		return
	}
	attachPresignedURLs(updated)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id - admin-only removal,
// outside the state machine
func DeleteOrder(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	if !workflow.CanDeleteOrder(user.Role) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can delete orders",
			},
		})
		return
	}

	order := loadOrder(c, c.Param("id"))
	if order == nil {
		return
	}

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}
