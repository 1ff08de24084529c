package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AbdelrhmanRafat/fast-track-procurement-api/config"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/middleware"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/models"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/services"
	"github.com/AbdelrhmanRafat/fast-track-procurement-api/workflow"
)

// getCurrentUser resolves the authenticated user's database row. On
// failure it writes the error response and returns nil, so handlers can
// simply bail out.
func getCurrentUser(c *gin.Context) *models.User {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil
	}

	return &user
}

// respondWorkflowError maps the workflow error taxonomy onto the HTTP
// envelope so callers always see the literal precondition that failed.
func respondWorkflowError(c *gin.Context, err error) {
	var invalidTransition *workflow.InvalidTransitionError
	var forbidden *workflow.ForbiddenError
	var notFound *workflow.NotFoundError
	var validation *workflow.ValidationError

	switch {
	case errors.As(err, &invalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":           "INVALID_TRANSITION",
				"message":        invalidTransition.Reason,
				"current_status": invalidTransition.From.Literal(),
				"target_status":  invalidTransition.To.Literal(),
			},
		})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": forbidden.Reason,
			},
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": notFound.Error(),
			},
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": validation.Reason,
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": err.Error(),
			},
		})
	}
}

// attachPresignedURLs fills the computed URL field on every attachment
// of every item. Presign failures leave the URL empty rather than
// failing the read.
func attachPresignedURLs(order *models.Order) {
	s3 := services.GetS3Service()
	if s3 == nil {
		return
	}
	for i := range order.Items {
		for j := range order.Items[i].Attachments {
			url, err := s3.GetPresignedURL(order.Items[i].Attachments[j].S3Key)
			if err == nil {
				order.Items[i].Attachments[j].URL = url
			}
		}
	}
}
