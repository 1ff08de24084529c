package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAttachmentFile(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		size         int64
		expectedCode string
	}{
		{"png is accepted", "site-photo.png", 1024, ""},
		{"jpeg is accepted", "delivery.JPEG", 2048, ""},
		{"pdf is accepted", "invoice.pdf", 4096, ""},
		{"webp is accepted", "pano.webp", 512, ""},
		{"spreadsheet is rejected", "quotes.xlsx", 1024, "INVALID_FILE_FORMAT"},
		{"executable is rejected", "setup.exe", 1024, "INVALID_FILE_FORMAT"},
		{"no extension is rejected", "README", 10, "INVALID_FILE_FORMAT"},
		{"oversized file is rejected", "huge.pdf", MaxFileSize + 1, "FILE_TOO_LARGE"},
		{"exactly at the cap is accepted", "cap.pdf", MaxFileSize, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := &multipart.FileHeader{Filename: tt.filename, Size: tt.size}
			err := ValidateAttachmentFile(header)

			if tt.expectedCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			uploadErr, ok := err.(*FileUploadError)
			require.True(t, ok)
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
			assert.Equal(t, uploadErr.Message, uploadErr.Error())
		})
	}
}

func TestAttachmentContentType(t *testing.T) {
	assert.Equal(t, "image/png", AttachmentContentType("photo.png"))
	assert.Equal(t, "image/jpeg", AttachmentContentType("photo.JPG"))
	assert.Equal(t, "image/jpeg", AttachmentContentType("photo.jpeg"))
	assert.Equal(t, "application/pdf", AttachmentContentType("doc.pdf"))
	assert.Equal(t, "", AttachmentContentType("archive.zip"))
	assert.Equal(t, "", AttachmentContentType("noext"))
}
