package uploads

import "github.com/labstack/echo/v4"

type Handler interface {
	StartUpload() echo.HandlerFunc
	CompleteUpload() echo.HandlerFunc
	Cancel() echo.HandlerFunc
}
