package server

import (
	"net/http"

	containerHttp "github.com/amankumarsingh77/video-containers/internal/containers/delivery/http"
	containerUsecase "github.com/amankumarsingh77/video-containers/internal/containers/usecase"
	"github.com/amankumarsingh77/video-containers/internal/middleware"
	taskHttp "github.com/amankumarsingh77/video-containers/internal/tasks/delivery/http"
	uploadHttp "github.com/amankumarsingh77/video-containers/internal/uploads/delivery/http"
	uploadUsecase "github.com/amankumarsingh77/video-containers/internal/uploads/usecase"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	b := NewBackend(s.cfg, s.db, s.redisClient, s.s3Client, s.minioClient, s.usageProducer, s.logger)

	containerUC := containerUsecase.NewContainerUseCase(s.cfg, b.Store, b.Now, s.logger)
	uploadUC := uploadUsecase.NewUploadUseCase(
		b.Store,
		b.Primary,
		b.Now,
		s.logger,
		uploadUsecase.NewMediaPolicy(s.cfg.Upload),
		uploadUsecase.NewSubtitlePolicy(s.cfg.Upload),
	)

	containerHandlers := containerHttp.NewContainerHandler(containerUC, s.logger)
	uploadHandlers := uploadHttp.NewUploadHandler(uploadUC, s.logger)
	taskHandlers := taskHttp.NewTaskHandler(b.TaskUC, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, []string{"*"}, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	containerGroup := v1.Group("/containers")
	uploadGroup := v1.Group("/uploads")
	taskGroup := v1.Group("/tasks")

	containerHttp.MapContainerRoutes(containerGroup, containerHandlers, mw)
	uploadHttp.MapUploadRoutes(uploadGroup, uploadHandlers, mw)
	taskHttp.MapTaskRoutes(taskGroup, taskHandlers, mw)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
