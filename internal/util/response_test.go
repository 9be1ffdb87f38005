package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizhub_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

func respond(t *testing.T, err error) (int, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondError(c, err)

	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return w.Code, body
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"quiz not found", ErrQuizNotFound, http.StatusNotFound},
		{"quiz not available", ErrQuizNotAvailable, http.StatusNotFound},
		{"user not found", ErrUserNotFound, http.StatusNotFound},
		{"permission denied", ErrPermissionDenied, http.StatusForbidden},
		{"attempt limit", ErrAttemptLimitExceeded, http.StatusForbidden},
		{"no questions", ErrQuizHasNoQuestions, http.StatusUnprocessableEntity},
		{"email registered", ErrEmailRegistered, http.StatusBadRequest},
		{"self demotion", ErrSelfDemotion, http.StatusBadRequest},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"validation", NewValidationError("points", "points must be at least 1"), http.StatusBadRequest},
		{"storage", &StorageError{Err: errors.New("connection reset")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		code, body := respond(t, tc.err)
		if code != tc.want {
			t.Errorf("%s: got HTTP %d, want %d", tc.name, code, tc.want)
		}
		if body.Code != tc.want {
			t.Errorf("%s: envelope code %d, want %d", tc.name, body.Code, tc.want)
		}
	}
}

func TestRespondErrorHidesQuizExistence(t *testing.T) {
	_, notFound := respond(t, ErrQuizNotFound)
	_, notAvailable := respond(t, ErrQuizNotAvailable)

	// An inactive quiz must be indistinguishable from a missing one.
	if notFound.Message != notAvailable.Message {
		t.Fatalf("messages differ: %q vs %q", notFound.Message, notAvailable.Message)
	}
}

func TestRespondErrorHidesStorageDetails(t *testing.T) {
	_, body := respond(t, &StorageError{Err: errors.New("dsn=root:hunter2@tcp(db)/quizhub")})
	if body.Message != "Temporary storage failure, please retry" {
		t.Fatalf("storage error leaked internals: %q", body.Message)
	}
}
