package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	Data string `json:"data"`
}

func TestReadJSON(t *testing.T) {
	t.Run("ok ignora campos desconocidos", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"data":"x","extra":1}`))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		var p payload
		assert.True(t, ReadJSON(w, r, &p))
		assert.Equal(t, "x", p.Data)
	})

	t.Run("content-type incorrecto", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "text/plain")
		w := httptest.NewRecorder()
		assert.False(t, ReadJSON(w, r, &payload{}))
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("json roto", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"data":`))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")
		w := httptest.NewRecorder()
		assert.False(t, ReadJSON(w, r, &payload{}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_JSON")
	})

	t.Run("body demasiado grande", func(t *testing.T) {
		big := `{"data":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		assert.False(t, ReadJSON(w, r, &payload{}))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
