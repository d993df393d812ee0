package http

import (
	"net/http"

	"github.com/amankumarsingh77/video-containers/internal/containers"
	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

type containerHandler struct {
	containerUC containers.UseCase
	logger      logger.Logger
}

func NewContainerHandler(containerUC containers.UseCase, logger logger.Logger) containers.Handler {
	return &containerHandler{
		containerUC: containerUC,
		logger:      logger,
	}
}

func (h *containerHandler) Create() echo.HandlerFunc {
	return func(c echo.Context) error {
		container, err := h.containerUC.Create(c.Request().Context())
		if err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusCreated, container)
	}
}

func (h *containerHandler) Get() echo.HandlerFunc {
	return func(c echo.Context) error {
		container, err := h.containerUC.Get(c.Request().Context(), c.Param("container_id"))
		if err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, container)
	}
}

func (h *containerHandler) Delete() echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := h.containerUC.Delete(c.Request().Context(), c.Param("container_id")); err != nil {
			h.logger.Errorf("Delete RequestID: %s, error: %v", utils.GetRequestID(c), err)
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Container deleted successfully"})
	}
}

func (h *containerHandler) UpdateTrack() echo.HandlerFunc {
	return func(c echo.Context) error {
		kind, ok := models.ParseTrackKind(c.Param("kind"))
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid track kind"})
		}
		input := &models.TrackUpdate{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		container, err := h.containerUC.UpdateTrack(c.Request().Context(), c.Param("container_id"), kind, c.Param("dirname"), input)
		if err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, container)
	}
}

func (h *containerHandler) DeleteTrack() echo.HandlerFunc {
	return func(c echo.Context) error {
		kind, ok := models.ParseTrackKind(c.Param("kind"))
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid track kind"})
		}
		container, err := h.containerUC.DeleteTrack(c.Request().Context(), c.Param("container_id"), kind, c.Param("dirname"))
		if err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, container)
	}
}

func (h *containerHandler) DropStaging() echo.HandlerFunc {
	return func(c echo.Context) error {
		kind, ok := models.ParseTrackKind(c.Param("kind"))
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid track kind"})
		}
		container, err := h.containerUC.DropStaging(c.Request().Context(), c.Param("container_id"), kind, c.Param("dirname"))
		if err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, container)
	}
}

func (h *containerHandler) Commit() echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := h.containerUC.Commit(c.Request().Context(), c.Param("container_id"))
		if err != nil {
			h.logger.Errorf("Commit RequestID: %s, error: %v", utils.GetRequestID(c), err)
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, result)
	}
}

func (h *containerHandler) SaveStaging() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.StagingSnapshot{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		result, err := h.containerUC.SaveStaging(c.Request().Context(), c.Param("container_id"), input)
		if err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, result)
	}
}
