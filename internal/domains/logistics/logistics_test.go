package logistics_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-supply-api/internal/domains/logistics"
	logisticsdomain "github.com/Apurer/go-gin-supply-api/internal/domains/logistics/domain"
	"github.com/Apurer/go-gin-supply-api/internal/platform/database/dbtest"
	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	require.NoError(t, db.Exec("INSERT INTO suppliers (name, active, verified) VALUES (?, ?, ?)", "Acme", true, true).Error)

	router := gin.New()
	router.Use(apperrors.DefaultResponder.ErrorHandler(nil))
	logistics.New(db).Register(router.Group("/api"))
	return router
}

func call(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestDeliveryVehicleLifecycle(t *testing.T) {
	router := setup(t)

	rec := call(router, http.MethodPost, "/api/delivery-vehicles",
		`{"supplierId":1,"vehicleType":"Truck","licensePlate":"ABC-123","capacity":1000,"lastInspectionDate":"2024-01-15"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var v logisticsdomain.DeliveryVehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, logisticsdomain.VehicleAvailable, v.Status)
	require.NotNil(t, v.LastInspectionDate)
	assert.Equal(t, "2024-01-15", *v.LastInspectionDate)

	path := fmt.Sprintf("/api/delivery-vehicles/%d", v.DeliveryVehicleID)
	rec = call(router, http.MethodPut, path, `{"status":"maintenance"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(router, http.MethodGet, path+"/availability", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var a logisticsdomain.Availability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.False(t, a.Available)
	assert.Equal(t, logisticsdomain.VehicleMaintenance, a.Status)

	rec = call(router, http.MethodPut, path, `{"status":"teleporting"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(router, http.MethodGet, "/api/delivery-vehicles/supplier/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var owned []logisticsdomain.DeliveryVehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &owned))
	assert.Len(t, owned, 1)

	rec = call(router, http.MethodPost, "/api/delivery-vehicles",
		`{"supplierId":1,"vehicleType":"Van","licensePlate":"ABC-123","capacity":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "license plates are unique")
}

func TestDeliveryStatusAction(t *testing.T) {
	router := setup(t)

	rec := call(router, http.MethodPost, "/api/deliveries",
		`{"supplierId":1,"deliveryDate":"2024-06-01","name":"Morning run","status":"scheduled"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var d logisticsdomain.Delivery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))

	path := fmt.Sprintf("/api/deliveries/%d/status", d.DeliveryID)
	rec = call(router, http.MethodPut, path, `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated logisticsdomain.Delivery
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.NotNil(t, updated.Status)
	assert.Equal(t, "delivered", *updated.Status)
	assert.Equal(t, d.Name, updated.Name)

	rec = call(router, http.MethodPut, path, `{"name":"renamed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(router, http.MethodPut, "/api/deliveries/404/status", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
