package problem

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/crud-api/internal/http/middleware"
)

func newEnvelope(t *testing.T, debug bool) (*Envelope, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	return New(log, debug), &logs
}

func decodeDetails(t *testing.T, rec *httptest.ResponseRecorder) Details {
	t.Helper()
	var d Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	return d
}

func failing(err error) HandlerFunc {
	return func(http.ResponseWriter, *http.Request) error { return err }
}

func TestHandle_ReturnedErrorInProduction(t *testing.T) {
	env, logs := newEnvelope(t, false)
	fault := errors.New("FindAll: dial tcp: connection refused")

	rec := httptest.NewRecorder()
	env.Handle(failing(fault)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))

	d := decodeDetails(t, rec)
	assert.Equal(t, Details{
		Status:   http.StatusInternalServerError,
		Title:    Title,
		Detail:   GenericDetail,
		Instance: "/students",
	}, d)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, logs.String(), "connection refused", "fault must still be logged")
}

func TestHandle_ReturnedErrorInDevelopment(t *testing.T) {
	env, _ := newEnvelope(t, true)

	rec := httptest.NewRecorder()
	env.Handle(failing(errors.New("boom"))).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/3", nil))

	d := decodeDetails(t, rec)
	assert.Equal(t, "boom", d.Detail)
	assert.Equal(t, "/products/3", d.Instance)
}

func TestHandle_NilErrorPassesThrough(t *testing.T) {
	env, logs := newEnvelope(t, false)

	rec := httptest.NewRecorder()
	env.Handle(func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/students/1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, logs.String())
}

func TestRecover_Panic(t *testing.T) {
	tests := []struct {
		name       string
		debug      bool
		wantDetail func(t *testing.T, detail string)
	}{
		{"production hides panic", false, func(t *testing.T, detail string) {
			assert.Equal(t, GenericDetail, detail)
		}},
		{"development shows panic and stack", true, func(t *testing.T, detail string) {
			assert.Contains(t, detail, "panic: nil map write")
			assert.Contains(t, detail, "goroutine")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, logs := newEnvelope(t, tt.debug)
			h := env.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("nil map write")
			}))

			rec := httptest.NewRecorder()
			require.NotPanics(t, func() {
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/students", nil))
			})

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			d := decodeDetails(t, rec)
			assert.Equal(t, "/students", d.Instance)
			tt.wantDetail(t, d.Detail)
			assert.Contains(t, logs.String(), "unhandled fault")
		})
	}
}

func TestRecover_AbortHandlerIsRepanicked(t *testing.T) {
	env, _ := newEnvelope(t, false)
	h := env.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestHandle_ResponseAlreadyStarted(t *testing.T) {
	env, logs := newEnvelope(t, true)

	// AccessLog wraps the writer so the envelope can tell a response is
	// already in flight.
	h := middleware.AccessLog(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(
		env.Handle(func(w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[`))
			return errors.New("stream broke")
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `[`, rec.Body.String())
	assert.Contains(t, logs.String(), "stream broke")
}
