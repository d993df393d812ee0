package tasks

import "github.com/labstack/echo/v4"

type Handler interface {
	ListDue() echo.HandlerFunc
	Process() echo.HandlerFunc
}
