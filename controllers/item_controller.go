package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/workflow"
)

// AdminCheckedRequest represents the request body for recording admin
// decisions on an order's items
type AdminCheckedRequest struct {
	Decisions []workflow.AdminDecision `json:"decisions" binding:"required,min=1"`
}

// UpdateItemStatusRequest represents the request body for setting an
// item's purchase status. A null purchase_status resets the item to
// pending.
type UpdateItemStatusRequest struct {
	PurchaseStatus models.PurchaseStatus `json:"purchase_status"`
	ItemNotes      string                `json:"item_notes"`
}

// UpdateAdminChecked handles POST /api/v1/orders/:id/admin-checked -
// records per-item approval decisions. The order's status is not
// touched here; approving the order is a separate transition call.
func UpdateAdminChecked(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	order := loadOrder(c, c.Param("id"))
	if order == nil {
		return
	}

	var req AdminCheckedRequest
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

	updated, err := workflow.ApplyAdminDecisions(order, user.Role, req.Decisions)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, item := range updated {
			// Select forces the write even when the decision is nil
			if err := tx.Model(item).Select("approved_by_admin").
				Updates(models.OrderItem{ApprovedByAdmin: item.ApprovedByAdmin}).Error; err != nil {
				return err
			}
		}
		if order.AdminChecked != nil {
			if err := tx.Model(order).Select("admin_checked").
				Updates(models.Order{AdminChecked: order.AdminChecked}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save decisions",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order":         order,
			"updated_items": updated,
		},
	})
}

// UpdateItemStatus handles PATCH /api/v1/items/:id/status - sets an
// item's purchase status and notes. Admins hold the full-access
// override; Purchasing may only act between approval and close.
func UpdateItemStatus(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	db := config.GetDB()
	var item models.OrderItem
	if err := db.Preload("Order").First(&item, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ITEM_NOT_FOUND",
				"message": "Order item not found",
			},
		})
		return
	}

	if !workflow.CanSetItemStatus(user.Role, item.Order.Status) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Your role cannot set the purchase status in the order's current state",
			},
		})
		return
	}

	var req UpdateItemStatusRequest
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

	item.PurchaseStatus = req.PurchaseStatus
	item.ItemNotes = req.ItemNotes

	// Select forces the NULL write when the item goes back to pending
	if err := db.Model(&item).Select("purchase_status", "item_notes").
		Updates(models.OrderItem{PurchaseStatus: req.PurchaseStatus, ItemNotes: req.ItemNotes}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save item status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    item,
	})
}
