package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
	// MaxAttachmentsPerItem caps how many files a single order item may carry
	MaxAttachmentsPerItem = 5
)

// allowedContentTypes maps the accepted attachment extensions (images
// and PDF) to the content type uploaded to S3
var allowedContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateAttachmentFile validates the uploaded file format and size.
// Only images and PDF documents are accepted.
func ValidateAttachmentFile(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedContentTypes[ext]; !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only image and PDF files are allowed",
		}
	}

	return nil
}

// AttachmentContentType returns the content type for an accepted file
// name, or an empty string when the extension is not allowed.
func AttachmentContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedContentTypes[ext]
}
