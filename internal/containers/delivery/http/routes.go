package http

import (
	"github.com/amankumarsingh77/video-containers/internal/containers"
	"github.com/amankumarsingh77/video-containers/internal/middleware"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

func MapContainerRoutes(containerGroup *echo.Group, h containers.Handler, mw *middleware.MiddlewareManager) {
	containerGroup.Use(mw.AuthJWTMiddleware(), mw.RoleBasedAuthMiddleware(utils.AccountRole))
	containerGroup.POST("", h.Create())
	containerGroup.GET("/:container_id", h.Get())
	containerGroup.DELETE("/:container_id", h.Delete())
	containerGroup.POST("/:container_id/commit", h.Commit())
	containerGroup.PUT("/:container_id/staging", h.SaveStaging())
	containerGroup.PUT("/:container_id/tracks/:kind/:dirname", h.UpdateTrack())
	containerGroup.DELETE("/:container_id/tracks/:kind/:dirname", h.DeleteTrack())
	containerGroup.DELETE("/:container_id/tracks/:kind/:dirname/staging", h.DropStaging())
}
