package httperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorResponse(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", NewNotFoundError("container abc not found"), http.StatusNotFound, "container abc not found"},
		{"bad request", NewBadRequestError("track was never committed"), http.StatusBadRequest, "track was never committed"},
		{"conflict", NewConflictError("upload session changed"), http.StatusConflict, "upload session changed"},
		{"wrapped conflict", fmt.Errorf("StartUpload: %w", NewConflictError("moved")), http.StatusConflict, "StartUpload: moved"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrInternal.Error()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			status, body := ErrorResponse(c.err)
			if status != c.wantStatus {
				t.Fatalf("status = %d; want %d", status, c.wantStatus)
			}
			if body["error"] != c.wantMsg {
				t.Fatalf("message = %q; want %q", body["error"], c.wantMsg)
			}
		})
	}
}

func TestPredicates(t *testing.T) {
	if !IsNotFound(fmt.Errorf("outer: %w", NewNotFoundError("x"))) {
		t.Fatalf("expected wrapped not found to match")
	}
	if IsConflict(NewBadRequestError("x")) {
		t.Fatalf("bad request must not match conflict")
	}
}
