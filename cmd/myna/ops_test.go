package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/casualjim/myna"
	"github.com/casualjim/myna/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type stubModel struct{}

func (stubModel) Name() string                { return "stub-model" }
func (stubModel) Provider() provider.Provider { return nil }

func TestOpsServer(t *testing.T) {
	sess := myna.New(myna.Model(stubModel{}), myna.Name("myna"))
	srv := newOpsServer("myna", sess)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("healthz", func(t *testing.T) {
		w := get("/healthz")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","bot":"myna"}`, w.Body.String())
	})

	t.Run("settings snapshot", func(t *testing.T) {
		w := get("/v1/settings")
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		assert.InDelta(t, 0.7, gjson.Get(body, "temperature").Float(), 1e-9)
		assert.EqualValues(t, 1000, gjson.Get(body, "max_tokens").Int())
		assert.False(t, gjson.Get(body, "stop_sequences").Exists(), "unset knobs stay out of the payload")
	})

	t.Run("settings schema", func(t *testing.T) {
		w := get("/v1/settings/schema")
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		assert.True(t, gjson.Get(body, "properties.temperature").Exists())
		assert.True(t, gjson.Get(body, "properties.stop_sequences").Exists())
		assert.False(t, gjson.Get(body, "additionalProperties").Bool())
	})
}
