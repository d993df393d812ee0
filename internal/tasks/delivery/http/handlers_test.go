package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/amankumarsingh77/video-containers/internal/config"
	"github.com/amankumarsingh77/video-containers/internal/middleware"
	"github.com/amankumarsingh77/video-containers/internal/models"
	"github.com/amankumarsingh77/video-containers/internal/store"
	"github.com/amankumarsingh77/video-containers/internal/store/memstore"
	"github.com/amankumarsingh77/video-containers/internal/tasks/usecase"
	"github.com/amankumarsingh77/video-containers/pkg/httperrors"
	"github.com/amankumarsingh77/video-containers/pkg/logger"
	"github.com/amankumarsingh77/video-containers/pkg/utils"
	"github.com/labstack/echo/v4"
)

const secret = "secret"

type recordingProcessor struct {
	processed []string
}

func (p *recordingProcessor) Kind() models.TaskKind {
	return models.TaskDeleteKey
}

func (p *recordingProcessor) Process(_ context.Context, id string) error {
	if id == "missing" {
		return httperrors.NewNotFoundError(fmt.Sprintf("task %s", id))
	}
	p.processed = append(p.processed, id)
	return nil
}

func newRouter(t *testing.T) (*echo.Echo, *recordingProcessor) {
	t.Helper()
	cfg := &config.Config{Server: config.ServerConfig{JwtSecretKey: secret}}
	now := time.Now()
	st := memstore.New(nil)
	err := st.InTx(context.Background(), func(tx store.Tx) error {
		for _, id := range []string{"acc/c-1/1", "acc/c-1/2"} {
			task, err := models.NewTask(models.TaskDeleteKey, id, models.DeleteKeyPayload{}, now.Add(-time.Minute).UnixMilli())
			if err != nil {
				return err
			}
			if err = tx.InsertTask(context.Background(), task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	log := logger.NewNopLogger()
	p := &recordingProcessor{}
	uc := usecase.NewTaskUseCase(st, func() time.Time { return now }, log, p)
	e := echo.New()
	MapTaskRoutes(e.Group("/tasks"), NewTaskHandler(uc, log), middleware.NewMiddlewareManager(cfg, []string{"*"}, log))
	return e, p
}

func token(t *testing.T, role utils.Role) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken("acc-1", role, secret)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	return "Bearer " + tok
}

func do(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTaskRoutes(t *testing.T) {
	e, p := newRouter(t)
	worker := token(t, utils.WorkerRole)

	rec := do(e, http.MethodGet, "/tasks/delete_key?limit=1", worker, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body)
	}
	var listed struct {
		Tasks []*models.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(listed.Tasks) != 1 || listed.Tasks[0].ID != "acc/c-1/1" {
		t.Fatalf("listed = %+v", listed.Tasks)
	}

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		body   string
		want   int
	}{
		{name: "no token", method: http.MethodGet, path: "/tasks/delete_key", want: http.StatusUnauthorized},
		{name: "account token", method: http.MethodGet, path: "/tasks/delete_key", auth: token(t, utils.AccountRole), want: http.StatusForbidden},
		{name: "unknown kind", method: http.MethodGet, path: "/tasks/bogus", auth: worker, want: http.StatusBadRequest},
		{name: "kind without processor", method: http.MethodGet, path: "/tasks/formatting", auth: worker, want: http.StatusBadRequest},
		{name: "bad limit", method: http.MethodGet, path: "/tasks/delete_key?limit=x", auth: worker, want: http.StatusBadRequest},
		{name: "process", method: http.MethodPost, path: "/tasks/delete_key/process", auth: worker, body: `{"id":"acc/c-1/2"}`, want: http.StatusNoContent},
		{name: "process without id", method: http.MethodPost, path: "/tasks/delete_key/process", auth: worker, body: `{}`, want: http.StatusBadRequest},
		{name: "process missing task", method: http.MethodPost, path: "/tasks/delete_key/process", auth: worker, body: `{"id":"missing"}`, want: http.StatusNotFound},
		{name: "process as account", method: http.MethodPost, path: "/tasks/delete_key/process", auth: token(t, utils.AccountRole), body: `{"id":"acc/c-1/1"}`, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		if rec := do(e, tt.method, tt.path, tt.auth, tt.body); rec.Code != tt.want {
			t.Fatalf("%s: status = %d, want %d, body %s", tt.name, rec.Code, tt.want, rec.Body)
		}
	}
	if !reflect.DeepEqual(p.processed, []string{"acc/c-1/2"}) {
		t.Fatalf("processed = %v", p.processed)
	}
}
