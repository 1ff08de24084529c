package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/services"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/utils"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/workflow"
)

// UploadItemAttachments handles POST /api/v1/items/:id/attachments -
// uploads up to five image/PDF files for one order item
func UploadItemAttachments(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	db := config.GetDB()
	var item models.OrderItem
	if err := db.Preload("Order").Preload("Attachments").First(&item, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ITEM_NOT_FOUND",
				"message": "Order item not found",
			},
		})
		return
	}

	// Attachments follow the same edit window as the rest of the order
	if !workflow.CanEditOrder(user.Role, item.Order.Status) ||
		(!user.Role.IsAdmin() && item.Order.CreatedByID != user.ID) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to attach files to this item",
			},
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid multipart form",
				"details": err.Error(),
			},
		})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "At least one file is required",
			},
		})
		return
	}

	// Enforce the per-item cap across existing and new files
	if len(item.Attachments)+len(files) > utils.MaxAttachmentsPerItem {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "An item cannot carry more than 5 attachments",
			},
		})
		return
	}

	// Validate every file before uploading any of them
	for _, fileHeader := range files {
		if err := utils.ValidateAttachmentFile(fileHeader); err != nil {
			uploadErr := err.(*utils.FileUploadError)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
	}

	s3 := services.GetS3Service()
	created := make([]models.Attachment, 0, len(files))
	for _, fileHeader := range files {
		s3Key, err := s3.UploadFile(fileHeader)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "S3_ERROR",
					"message": "Failed to upload file",
				},
			})
			return
		}

		attachment := models.Attachment{
			OrderItemID: item.ID,
			FileName:    fileHeader.Filename,
			ContentType: utils.AttachmentContentType(fileHeader.Filename),
			S3Key:       s3Key,
		}
		if err := db.Create(&attachment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to save attachment",
				},
			})
			return
		}

		if url, err := s3.GetPresignedURL(attachment.S3Key); err == nil {
			attachment.URL = url
		}
		created = append(created, attachment)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    created,
	})
}

// DeleteAttachment handles DELETE /api/v1/attachments/:id - removes the
// database row and the stored S3 object
func DeleteAttachment(c *gin.Context) {
	user := getCurrentUser(c)
	if user == nil {
		return
	}

	db := config.GetDB()
	var attachment models.Attachment
	if err := db.Preload("OrderItem").Preload("OrderItem.Order").
		First(&attachment, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ATTACHMENT_NOT_FOUND",
				"message": "Attachment not found",
			},
		})
		return
	}

	if !user.Role.IsAdmin() && attachment.OrderItem.Order.CreatedByID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have permission to delete this attachment",
			},
		})
		return
	}

	if err := services.GetS3Service().DeleteFile(attachment.S3Key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "S3_ERROR",
				"message": "Failed to delete stored file",
			},
		})
		return
	}

	if err := db.Delete(&attachment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete attachment",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}
