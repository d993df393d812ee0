package http

import (
	"net/http"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/uploads"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

type uploadHandler struct {
	uploadUC uploads.UseCase
	logger   logger.Logger
}

func NewUploadHandler(uploadUC uploads.UseCase, logger logger.Logger) uploads.Handler {
	return &uploadHandler{uploadUC: uploadUC, logger: logger}
}

func (h *uploadHandler) StartUpload() echo.HandlerFunc {
	return func(c echo.Context) error {
		kind, ok := models.ParseProcessingKind(c.Param("kind"))
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid upload kind"})
		}
		input := &models.StartUploadInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		session, err := h.uploadUC.StartUpload(c.Request().Context(), c.Param("container_id"), kind, input)
		if err != nil {
			h.logger.Errorf("StartUpload RequestID: %s, error: %v", utils.GetRequestID(c), err)
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, session)
	}
}

func (h *uploadHandler) CompleteUpload() echo.HandlerFunc {
	return func(c echo.Context) error {
		kind, ok := models.ParseProcessingKind(c.Param("kind"))
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid upload kind"})
		}
		container, err := h.uploadUC.CompleteUpload(c.Request().Context(), c.Param("container_id"), kind)
		if err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, container)
	}
}

func (h *uploadHandler) Cancel() echo.HandlerFunc {
	return func(c echo.Context) error {
		kind, ok := models.ParseProcessingKind(c.Param("kind"))
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid upload kind"})
		}
		container, err := h.uploadUC.Cancel(c.Request().Context(), c.Param("container_id"), kind)
		if err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, container)
	}
}
