package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

func TestAuthAndRoles(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{JwtSecretKey: "secret"}}
	mw := NewMiddlewareManager(cfg, []string{"*"}, logger.NewNopLogger())

	accountToken, err := utils.GenerateJWTToken("acc-1", utils.AccountRole, "secret")
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	workerToken, err := utils.GenerateJWTToken("", utils.WorkerRole, "secret")
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	forged, err := utils.GenerateJWTToken("acc-1", utils.WorkerRole, "other")
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}

	var seen *utils.Principal
	handler := mw.AuthJWTMiddleware()(mw.RoleBasedAuthMiddleware(utils.WorkerRole)(func(c echo.Context) error {
		seen, _ = utils.GetPrincipalFromCtx(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + forged, want: http.StatusUnauthorized},
		{name: "account role", header: "Bearer " + accountToken, want: http.StatusForbidden},
		{name: "worker role", header: "Bearer " + workerToken, want: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			if err := handler(e.NewContext(req, rec)); err != nil {
				t.Fatalf("handler: %v", err)
			}
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if seen == nil || seen.Role != utils.WorkerRole {
		t.Fatalf("principal = %+v, want worker", seen)
	}
}
