package integration

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// OrderIntegrationTestSuite drives the order form and the board through the API
type OrderIntegrationTestSuite struct {
	suite.Suite
	h     *labHarness
	token string
}

// SetupTest builds a fresh application and signs in
func (suite *OrderIntegrationTestSuite) SetupTest() {
	suite.h = newLabHarness(suite.T())
	suite.token = suite.h.login()
}

func (suite *OrderIntegrationTestSuite) createOrder(body map[string]interface{}) string {
	code, response := suite.h.do(http.MethodPost, "/api/v1/orders", suite.token, body)
	suite.Require().Equal(http.StatusCreated, code, response)
	return strconv.Itoa(int(data(response)["id"].(float64)))
}

// board polls until the board shows count rows for the given query string
func (suite *OrderIntegrationTestSuite) board(query string, count int) map[string]interface{} {
	var view map[string]interface{}
	suite.Require().Eventually(func() bool {
		code, response := suite.h.do(http.MethodGet, "/api/v1/board"+query, suite.token, nil)
		if code != http.StatusOK {
			return false
		}
		view = data(response)
		return int(view["count"].(float64)) == count
	}, 2*time.Second, 10*time.Millisecond)
	return view
}

func today(offsetDays int) string {
	return time.Now().UTC().AddDate(0, 0, offsetDays).Format("2006-01-02")
}

// TestOrderWorkflow_CreateMarkReadyDelete follows an order from entry to removal
func (suite *OrderIntegrationTestSuite) TestOrderWorkflow_CreateMarkReadyDelete() {
	id := suite.createOrder(map[string]interface{}{
		"dentist_name":   "Dr. Ana",
		"patient_name":   "Maria Silva",
		"service_select": "Protese Total",
		"delivery_date":  today(-1),
		"value":          "500",
	})
	suite.createOrder(map[string]interface{}{
		"dentist_name":   "Dr. Zeca",
		"patient_name":   "João",
		"service_select": "Conserto",
		"delivery_date":  today(3),
		"value":          "100,50",
		"paid":           true,
	})

	view := suite.board("", 2)
	summary := view["summary"].(map[string]interface{})
	suite.Equal(100.5, summary["received"])
	suite.Equal(float64(500), summary["outstanding"])
	suite.Equal(float64(1), summary["late"])

	first := view["orders"].([]interface{})[0].(map[string]interface{})
	suite.Equal("Maria Silva", first["patient_name"])
	suite.Equal(true, first["late"])

	code, _ := suite.h.do(http.MethodPatch, "/api/v1/orders/"+id+"/ready", suite.token, nil)
	suite.Require().Equal(http.StatusOK, code)

	view = suite.board("?mode=completed", 1)
	suite.Equal(float64(0), view["summary"].(map[string]interface{})["late"], "a ready order is never late")
	suite.board("", 1)

	code, response := suite.h.do(http.MethodDelete, "/api/v1/orders/"+id, suite.token, nil)
	suite.Equal(http.StatusPreconditionRequired, code)
	suite.Equal("CONFIRMATION_REQUIRED", errorCode(response))
	suite.board("?mode=completed", 1)

	code, _ = suite.h.do(http.MethodDelete, "/api/v1/orders/"+id+"?confirm=true", suite.token, nil)
	suite.Require().Equal(http.StatusOK, code)
	suite.board("?mode=completed", 0)
}

// TestOrderWorkflow_EditKeepsCreation loads an order into the form and saves it back
func (suite *OrderIntegrationTestSuite) TestOrderWorkflow_EditKeepsCreation() {
	id := suite.createOrder(map[string]interface{}{
		"patient_name":   "Carla",
		"service_select": "OUTRO",
		"manual_service": true,
		"service_manual": "Reembasamento",
	})

	code, response := suite.h.do(http.MethodGet, "/api/v1/orders/"+id, suite.token, nil)
	suite.Require().Equal(http.StatusOK, code)
	createdAt := data(response)["created_at"]

	code, response = suite.h.do(http.MethodGet, "/api/v1/orders/"+id+"/form", suite.token, nil)
	suite.Require().Equal(http.StatusOK, code)
	form := data(response)["form"].(map[string]interface{})
	suite.Equal("edit", form["mode"])
	suite.Equal(true, form["manual_service"])
	suite.Equal("Reembasamento", form["service_manual"])

	form["notes"] = "Cor A2"
	form["status"] = "pronto"
	code, response = suite.h.do(http.MethodPut, "/api/v1/orders/"+id, suite.token, form)
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal(false, response["editing"])

	code, response = suite.h.do(http.MethodGet, "/api/v1/orders/"+id, suite.token, nil)
	suite.Require().Equal(http.StatusOK, code)
	order := data(response)
	suite.Equal("Cor A2", order["notes"])
	suite.Equal("pronto", order["status"])
	suite.Equal("Reembasamento", order["service_type"])
	suite.Equal(createdAt, order["created_at"])
}

// TestOrderWorkflow_InvalidSubmissionWritesNothing checks a blocked submit leaves the board alone
func (suite *OrderIntegrationTestSuite) TestOrderWorkflow_InvalidSubmissionWritesNothing() {
	code, response := suite.h.do(http.MethodPost, "/api/v1/orders", suite.token, map[string]interface{}{
		"patient_name":   "Carla",
		"service_select": "OUTRO",
		"manual_service": true,
	})

	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("VALIDATION_ERROR", errorCode(response))

	code, response = suite.h.do(http.MethodGet, "/api/v1/orders", suite.token, nil)
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal(float64(0), response["count"])
}

// TestDentistWorkflow_DirectoryFeedsOrderForm registers dentists and sees them in the form and shell
func (suite *OrderIntegrationTestSuite) TestDentistWorkflow_DirectoryFeedsOrderForm() {
	for _, name := range []string{"Dr. Zeca", "Dra. Ana"} {
		code, _ := suite.h.do(http.MethodPost, "/api/v1/dentists", suite.token, map[string]interface{}{
			"name":  name,
			"phone": "11987654321",
		})
		suite.Require().Equal(http.StatusCreated, code)
	}

	code, response := suite.h.do(http.MethodGet, "/api/v1/forms/orders", suite.token, nil)
	suite.Require().Equal(http.StatusOK, code)
	suite.Equal([]interface{}{"Dr. Zeca", "Dra. Ana"}, data(response)["dentists"])

	code, response = suite.h.do(http.MethodGet, "/api/v1/shell?page=dentistas", suite.token, nil)
	suite.Require().Equal(http.StatusOK, code)
	shell := data(response)
	suite.Equal("dentistas", shell["current"])
	pages := shell["pages"].([]interface{})
	suite.Equal(float64(2), pages[2].(map[string]interface{})["count"])
}

func TestOrderIntegrationSuite(t *testing.T) {
	suite.Run(t, new(OrderIntegrationTestSuite))
}
