package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/selhani/parfumo-backend/internal/errors"
	"github.com/selhani/parfumo-backend/internal/middleware"
	"github.com/selhani/parfumo-backend/internal/storage"
)

type UploadController struct {
	storage *storage.ImageStorage
}

func NewUploadController(storage *storage.ImageStorage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
	Folder      string `json:"folder"`
}

// PresignUpload hands out a presigned PUT URL for a product or brand image
// POST /api/v1/admin/uploads/presign
func (ctrl *UploadController) PresignUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid upload request")
		return
	}

	if err := ctrl.storage.ValidateImage(req.ContentType, req.Size); err != nil {
		if req.Size > storage.MaxImageSize {
			apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Image exceeds the size limit")
			return
		}
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG, WEBP and AVIF images are accepted")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = storage.FolderProducts
	}

	upload, err := ctrl.storage.PresignUpload(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to presign upload", err, map[string]interface{}{
			"filename": req.Filename,
			"folder":   folder,
		})
		apperrors.InternalError(c, "Failed to prepare upload")
		return
	}

	log.Info("Presigned upload issued", map[string]interface{}{
		"key":    upload.Key,
		"folder": folder,
	})

	c.JSON(http.StatusOK, upload)
}
