package http

import (
	"github.com/amankumarsingh77/video-containers/internal/middleware"
	"github.com/amankumarsingh77/video-containers/internal/tasks"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

func MapTaskRoutes(taskGroup *echo.Group, h tasks.Handler, mw *middleware.MiddlewareManager) {
	taskGroup.Use(mw.AuthJWTMiddleware(), mw.RoleBasedAuthMiddleware(utils.WorkerRole))
	taskGroup.GET("/:kind", h.ListDue())
	taskGroup.POST("/:kind/process", h.Process())
}
