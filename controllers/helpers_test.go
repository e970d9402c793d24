package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/models"
	"github.com/labmanager/labmanager-api/store"
	"github.com/labmanager/labmanager-api/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	orders   *store.OrderStore
	dentists *store.DentistStore
	logger   *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	logger := zap.NewNop()
	return &testEnv{
		db:       db,
		orders:   store.NewOrderStore(db, nil, logger),
		dentists: store.NewDentistStore(db, nil, logger),
		logger:   logger,
	}
}

func (e *testEnv) seedOrder(t *testing.T, o models.Order) models.Order {
	t.Helper()
	if o.Status == "" {
		o.Status = models.StatusInProduction
	}
	require.NoError(t, e.db.Create(&o).Error)
	return o
}

func (e *testEnv) seedDentist(t *testing.T, d models.Dentist) models.Dentist {
	t.Helper()
	require.NoError(t, e.db.Create(&d).Error)
	return d
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// performRequest sends a JSON request and decodes the JSON response envelope
func performRequest(t *testing.T, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if json.Valid(w.Body.Bytes()) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func errorCode(response map[string]interface{}) string {
	errObj, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func queryEscape(s string) string {
	return url.QueryEscape(s)
}
