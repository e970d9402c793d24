package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/models"
	"github.com/labmanager/labmanager-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func setupOrderRouter(env *testEnv) *gin.Engine {
	h := NewOrderController(env.orders, env.dentists, env.logger)
	h.now = func() time.Time { return fixedNow }

	router := gin.New()
	router.Use(testutil.MockAuthMiddleware("1", "admin@lab.com"))
	router.GET("/orders", h.ListOrders)
	router.GET("/orders/:id", h.GetOrder)
	router.POST("/orders", h.CreateOrder)
	router.PUT("/orders/:id", h.UpdateOrder)
	router.PATCH("/orders/:id/ready", h.MarkReady)
	router.DELETE("/orders/:id", h.DeleteOrder)
	router.GET("/orders/:id/form", h.EditOrderForm)
	router.GET("/forms/orders", h.NewOrderForm)
	router.POST("/forms/orders/service", h.SelectService)
	return router
}

func TestCreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "Successfully create order from catalog",
			requestBody: map[string]interface{}{
				"dentist_name":   "Dr. Ana",
				"patient_name":   "Maria Silva",
				"service_select": "Protese Total",
				"delivery_date":  "2024-03-15",
				"value":          "500,50",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "Maria Silva", data["patient_name"])
				assert.Equal(t, "Protese Total", data["service_type"])
				assert.Equal(t, 500.5, data["value"])
				assert.Equal(t, "em_producao", data["status"])
				assert.Equal(t, false, data["paid"])

				next := response["next_form"].(map[string]interface{})
				assert.Equal(t, "create", next["mode"])
				assert.Equal(t, "", next["patient_name"])
			},
		},
		{
			name: "Manual service text is stored as typed",
			requestBody: map[string]interface{}{
				"patient_name":   "João",
				"service_select": "OUTRO",
				"manual_service": true,
				"service_manual": "Reembasamento",
				"value":          120,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "Reembasamento", data["service_type"])
				assert.Equal(t, float64(120), data["value"])
			},
		},
		{
			name: "Unparseable value is stored as zero",
			requestBody: map[string]interface{}{
				"patient_name":   "Pedro",
				"service_select": "Conserto",
				"value":          "abc",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(0), data["value"])
			},
		},
		{
			name: "Fail with empty manual service",
			requestBody: map[string]interface{}{
				"patient_name":   "Pedro",
				"service_select": "OUTRO",
				"manual_service": true,
				"service_manual": "   ",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with malformed delivery date",
			requestBody: map[string]interface{}{
				"patient_name":   "Pedro",
				"service_select": "Conserto",
				"delivery_date":  "15/03/2024",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with negative value",
			requestBody: map[string]interface{}{
				"patient_name":   "Pedro",
				"service_select": "Conserto",
				"value":          -10,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			router := setupOrderRouter(env)

			w, response := performRequest(t, router, http.MethodPost, "/orders", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				assert.Equal(t, tt.expectedError, errorCode(response))

				var count int64
				env.db.Model(&models.Order{}).Count(&count)
				assert.Zero(t, count, "a rejected form must not write anything")
				return
			}
			assert.True(t, response["success"].(bool))
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestCreateOrderStampsCreatedAt(t *testing.T) {
	env := newTestEnv(t)
	router := setupOrderRouter(env)

	w, _ := performRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"patient_name":   "Maria",
		"service_select": "Conserto",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var stored models.Order
	require.NoError(t, env.db.First(&stored).Error)
	assert.True(t, stored.CreatedAt.Equal(fixedNow))
}

func TestUpdateOrder(t *testing.T) {
	env := newTestEnv(t)
	router := setupOrderRouter(env)

	created := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	order := env.seedOrder(t, models.Order{
		PatientName:  "Maria",
		ServiceType:  "Conserto",
		DeliveryDate: "2024-03-15",
		Value:        money("100"),
		Status:       models.StatusReady,
		CreatedAt:    created,
	})

	w, response := performRequest(t, router, http.MethodPut, "/orders/"+itoa(order.ID), map[string]interface{}{
		"patient_name":   "Maria Souza",
		"service_select": "Protocolo",
		"delivery_date":  "2024-03-20",
		"value":          "1234,50",
		"paid":           true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, response["editing"])
	assert.Equal(t, "create", response["next_form"].(map[string]interface{})["mode"])

	var stored models.Order
	require.NoError(t, env.db.First(&stored, order.ID).Error)
	assert.Equal(t, "Maria Souza", stored.PatientName)
	assert.Equal(t, "Protocolo", stored.ServiceType)
	assert.True(t, stored.Paid)
	assert.Equal(t, models.StatusReady, stored.Status, "an empty status keeps the stored one")
	assert.True(t, stored.CreatedAt.Equal(created), "editing keeps the creation timestamp")
}

func TestUpdateOrderNotFound(t *testing.T) {
	env := newTestEnv(t)
	router := setupOrderRouter(env)

	w, response := performRequest(t, router, http.MethodPut, "/orders/99", map[string]interface{}{
		"patient_name":   "Maria",
		"service_select": "Conserto",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(response))
}

func TestMarkReady(t *testing.T) {
	env := newTestEnv(t)
	router := setupOrderRouter(env)
	order := env.seedOrder(t, models.Order{PatientName: "Maria", ServiceType: "Conserto", DeliveryDate: "2024-03-01", Value: money("80")})

	w, response := performRequest(t, router, http.MethodPatch, "/orders/"+itoa(order.ID)+"/ready", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pronto", response["data"].(map[string]interface{})["status"])

	var stored models.Order
	require.NoError(t, env.db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusReady, stored.Status)
	assert.Equal(t, "2024-03-01", stored.DeliveryDate)
	assert.True(t, stored.Value.Equal(money("80")))
}

func TestDeleteOrder(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedError  string
		expectDeleted  bool
	}{
		{
			name:           "Declined without confirmation",
			query:          "",
			expectedStatus: http.StatusPreconditionRequired,
			expectedError:  "CONFIRMATION_REQUIRED",
		},
		{
			name:           "Declined with confirm=false",
			query:          "?confirm=false",
			expectedStatus: http.StatusPreconditionRequired,
			expectedError:  "CONFIRMATION_REQUIRED",
		},
		{
			name:           "Deleted when confirmed",
			query:          "?confirm=true",
			expectedStatus: http.StatusOK,
			expectDeleted:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			router := setupOrderRouter(env)
			order := env.seedOrder(t, models.Order{PatientName: "Maria", ServiceType: "Conserto"})

			w, response := performRequest(t, router, http.MethodDelete, "/orders/"+itoa(order.ID)+tt.query, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(response))
				assert.Equal(t, deleteOrderPrompt, response["error"].(map[string]interface{})["message"])
			}

			var count int64
			env.db.Model(&models.Order{}).Count(&count)
			if tt.expectDeleted {
				assert.Zero(t, count)
			} else {
				assert.Equal(t, int64(1), count)
			}
		})
	}
}

func TestInvalidOrderID(t *testing.T) {
	env := newTestEnv(t)
	router := setupOrderRouter(env)

	w, response := performRequest(t, router, http.MethodGet, "/orders/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(response))
}

func TestListOrdersByDeliveryDate(t *testing.T) {
	env := newTestEnv(t)
	router := setupOrderRouter(env)
	env.seedOrder(t, models.Order{PatientName: "B", ServiceType: "Conserto", DeliveryDate: "2024-03-20"})
	env.seedOrder(t, models.Order{PatientName: "A", ServiceType: "Conserto", DeliveryDate: "2024-03-05"})

	w, response := performRequest(t, router, http.MethodGet, "/orders", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := response["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "A", data[0].(map[string]interface{})["patient_name"])
	assert.Equal(t, "B", data[1].(map[string]interface{})["patient_name"])
}

func TestOrderForms(t *testing.T) {
	env := newTestEnv(t)
	router := setupOrderRouter(env)
	env.seedDentist(t, models.Dentist{Name: "Dr. Zeca"})
	env.seedDentist(t, models.Dentist{Name: "Dr. Ana"})
	order := env.seedOrder(t, models.Order{PatientName: "Maria", ServiceType: "Reembasamento"})

	t.Run("Blank form lists dentists by name and the catalog", func(t *testing.T) {
		w, response := performRequest(t, router, http.MethodGet, "/forms/orders", nil)

		require.Equal(t, http.StatusOK, w.Code)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, []interface{}{"Dr. Ana", "Dr. Zeca"}, data["dentists"])
		catalog := data["catalog"].([]interface{})
		assert.Equal(t, "OUTRO", catalog[len(catalog)-1])
		assert.Equal(t, "create", data["form"].(map[string]interface{})["mode"])
	})

	t.Run("Edit form switches to manual entry for services outside the catalog", func(t *testing.T) {
		w, response := performRequest(t, router, http.MethodGet, "/orders/"+itoa(order.ID)+"/form", nil)

		require.Equal(t, http.StatusOK, w.Code)
		form := response["data"].(map[string]interface{})["form"].(map[string]interface{})
		assert.Equal(t, "edit", form["mode"])
		assert.Equal(t, "OUTRO", form["service_select"])
		assert.Equal(t, true, form["manual_service"])
		assert.Equal(t, "Reembasamento", form["service_manual"])
	})

	t.Run("Selecting OUTRO clears the manual text", func(t *testing.T) {
		w, response := performRequest(t, router, http.MethodPost, "/forms/orders/service", map[string]interface{}{
			"form":   map[string]interface{}{"service_select": "Conserto", "service_manual": "old"},
			"option": "OUTRO",
		})

		require.Equal(t, http.StatusOK, w.Code)
		form := response["data"].(map[string]interface{})
		assert.Equal(t, true, form["manual_service"])
		assert.Equal(t, "", form["service_manual"])
	})

	t.Run("Selecting a catalog value turns manual entry off", func(t *testing.T) {
		w, response := performRequest(t, router, http.MethodPost, "/forms/orders/service", map[string]interface{}{
			"form":   map[string]interface{}{"service_select": "OUTRO", "manual_service": true},
			"option": "Protocolo",
		})

		require.Equal(t, http.StatusOK, w.Code)
		form := response["data"].(map[string]interface{})
		assert.Equal(t, false, form["manual_service"])
		assert.Equal(t, "Protocolo", form["service_select"])
	})
}
