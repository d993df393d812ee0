package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/containers/usecase"
	"github.com/amankumarsingh77/video-containers/internal/middleware"
	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store/memstore"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

const secret = "secret"

func newRouter(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{JwtSecretKey: secret},
		Container: config.ContainerConfig{MaxAudioTracks: 2, MaxSubtitleTracks: 2},
	}
	log := logger.NewNopLogger()
	uc := usecase.NewContainerUseCase(cfg, memstore.New(nil), time.Now, log)
	e := echo.New()
	MapContainerRoutes(e.Group("/containers"), NewContainerHandler(uc, log), middleware.NewMiddlewareManager(cfg, []string{"*"}, log))
	return e
}

func token(t *testing.T, accountID string) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken(accountID, utils.AccountRole, secret)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	return "Bearer " + tok
}

func do(e *echo.Echo, method, path, auth string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	body := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec.Code, body
}

func TestContainerRoutes(t *testing.T) {
	e := newRouter(t)
	owner := token(t, "acc-1")

	code, body := do(e, http.MethodPost, "/containers", owner)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, body %v", code, body)
	}
	id, _ := body["containerId"].(string)
	if id == "" {
		t.Fatalf("create returned no containerId: %v", body)
	}

	code, body = do(e, http.MethodPost, "/containers/"+id+"/commit", owner)
	if code != http.StatusOK {
		t.Fatalf("commit status = %d, body %v", code, body)
	}
	if body["success"] != false || body["error"] != string(models.NoVideoTrack) {
		t.Fatalf("commit body = %v", body)
	}

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{name: "owner reads", method: http.MethodGet, path: "/containers/" + id, auth: owner, want: http.StatusOK},
		{name: "no token", method: http.MethodGet, path: "/containers/" + id, want: http.StatusUnauthorized},
		{name: "other account", method: http.MethodGet, path: "/containers/" + id, auth: token(t, "acc-2"), want: http.StatusNotFound},
		{name: "unknown container", method: http.MethodGet, path: "/containers/missing", auth: owner, want: http.StatusNotFound},
		{name: "unknown track kind", method: http.MethodDelete, path: "/containers/" + id + "/tracks/bogus/v1", auth: owner, want: http.StatusBadRequest},
		{name: "unknown track", method: http.MethodDelete, path: "/containers/" + id + "/tracks/video/v1", auth: owner, want: http.StatusNotFound},
		{name: "delete", method: http.MethodDelete, path: "/containers/" + id, auth: owner, want: http.StatusOK},
		{name: "delete again", method: http.MethodDelete, path: "/containers/" + id, auth: owner, want: http.StatusOK},
		{name: "read after delete", method: http.MethodGet, path: "/containers/" + id, auth: owner, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		if code, body := do(e, tt.method, tt.path, tt.auth); code != tt.want {
			t.Fatalf("%s: status = %d, want %d, body %v", tt.name, code, tt.want, body)
		}
	}
}
