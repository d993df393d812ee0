package http

import (
	"github.com/amankumarsingh77/video-containers/internal/middleware"
	"github.com/amankumarsingh77/video-containers/internal/uploads"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

func MapUploadRoutes(uploadGroup *echo.Group, h uploads.Handler, mw *middleware.MiddlewareManager) {
	uploadGroup.Use(mw.AuthJWTMiddleware(), mw.RoleBasedAuthMiddleware(utils.AccountRole))
	uploadGroup.POST("/:container_id/:kind", h.StartUpload())
	uploadGroup.POST("/:container_id/:kind/complete", h.CompleteUpload())
	uploadGroup.DELETE("/:container_id/:kind", h.Cancel())
}
