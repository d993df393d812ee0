package utils

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// GetLimitFromCtx reads the "limit" query param used by the due-task listings.
func GetLimitFromCtx(ctx echo.Context) (int, error) {
	query := ctx.QueryParam("limit")
	if query == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(query)
	if err != nil {
		return 0, fmt.Errorf("invalid limit: %w", err)
	}
	if limit < 1 {
		return defaultLimit, nil
	}
	if limit > maxLimit {
		return maxLimit, nil
	}
	return limit, nil
}
