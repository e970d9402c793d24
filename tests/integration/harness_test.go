package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/app"
	"github.com/labmanager/labmanager-api/config"
	"github.com/labmanager/labmanager-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminEmail    = "recepcao@lab.test"
	adminPassword = "protese-2024"
)

// labHarness runs a complete application over an in-memory database
type labHarness struct {
	t      *testing.T
	cfg    *config.Config
	lab    *app.App
	router *gin.Engine
}

func newLabHarness(t *testing.T) *labHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(t)

	cfg := testutil.TestConfig()
	cfg.AdminEmail = adminEmail
	cfg.AdminPassword = adminPassword

	lab, err := app.New(cfg, testutil.NewTestDB(t), zap.NewNop(), app.Options{})
	require.NoError(t, err)
	require.NoError(t, lab.Start(context.Background()))
	t.Cleanup(lab.Close)

	return &labHarness{t: t, cfg: cfg, lab: lab, router: lab.Router()}
}

// do sends a request to the router and decodes the JSON response
func (h *labHarness) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	h.t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(h.t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if json.Valid(w.Body.Bytes()) {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w.Code, response
}

// login signs the seeded admin in and returns the session token
func (h *labHarness) login() string {
	h.t.Helper()
	code, response := h.do(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    adminEmail,
		"password": adminPassword,
	})
	require.Equal(h.t, http.StatusOK, code)
	return response["data"].(map[string]interface{})["token"].(string)
}

func data(response map[string]interface{}) map[string]interface{} {
	d, _ := response["data"].(map[string]interface{})
	return d
}

func errorCode(response map[string]interface{}) string {
	e, _ := response["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}
