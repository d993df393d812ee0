package containers

import "github.com/labstack/echo/v4"

type Handler interface {
	Create() echo.HandlerFunc
	Get() echo.HandlerFunc
	Delete() echo.HandlerFunc
	UpdateTrack() echo.HandlerFunc
	DeleteTrack() echo.HandlerFunc
	DropStaging() echo.HandlerFunc
	Commit() echo.HandlerFunc
	SaveStaging() echo.HandlerFunc
}
