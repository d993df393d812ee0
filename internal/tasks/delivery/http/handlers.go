package http

import (
	"net/http"

	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

type taskHandler struct {
	taskUC tasks.UseCase
	logger logger.Logger
}

func NewTaskHandler(taskUC tasks.UseCase, logger logger.Logger) tasks.Handler {
	return &taskHandler{taskUC: taskUC, logger: logger}
}

type processRequest struct {
	ID string `json:"id" validate:"required"`
}

func (h *taskHandler) ListDue() echo.HandlerFunc {
	return func(c echo.Context) error {
		kind, ok := models.ParseTaskKind(c.Param("kind"))
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid task kind"})
		}
		limit, err := utils.GetLimitFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		due, err := h.taskUC.ListDue(c.Request().Context(), kind, limit)
		if err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"tasks": due})
	}
}

func (h *taskHandler) Process() echo.HandlerFunc {
	return func(c echo.Context) error {
		kind, ok := models.ParseTaskKind(c.Param("kind"))
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid task kind"})
		}
		input := &processRequest{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		if err := utils.ValidateStruct(c.Request().Context(), input); err != nil {
			return c.JSON(httperrors.ErrorResponse(err))
		}
		if err := h.taskUC.Process(c.Request().Context(), kind, input.ID); err != nil {
			h.logger.Errorf("Process RequestID: %s, %s %s error: %v", utils.GetRequestID(c), kind, input.ID, err)
			return c.JSON(httperrors.ErrorResponse(err))
		}
		return c.NoContent(http.StatusNoContent)
	}
}
