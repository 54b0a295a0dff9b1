package organization_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-supply-api/internal/domains/organization"
	orgdomain "github.com/Apurer/go-gin-supply-api/internal/domains/organization/domain"
	"github.com/Apurer/go-gin-supply-api/internal/platform/database/dbtest"
	"github.com/Apurer/go-gin-supply-api/internal/shared/crud"
	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	router := gin.New()
	router.Use(apperrors.DefaultResponder.ErrorHandler(nil))
	organization.New(db).Register(router.Group("/api"))
	return router, db
}

func call(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHeadquartersMetricsAndLabel(t *testing.T) {
	router, db := setup(t)

	rec := call(router, http.MethodPost, "/api/headquarters",
		`{"name":"Metrics Test HQ","address":"111 Metrics Street","email":"metrics@test.com","phone":"555-3333"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var hq orgdomain.Headquarters
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hq))
	base := fmt.Sprintf("/api/headquarters/%d", hq.HeadquartersID)

	rec = call(router, http.MethodGet, base+"/label", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"label":"New"}`, rec.Body.String())

	for i := 0; i < 2; i++ {
		rec = call(router, http.MethodPost, "/api/branches",
			fmt.Sprintf(`{"headquartersId":%d,"name":"Branch %d"}`, hq.HeadquartersID, i))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	for i := 0; i < 7; i++ {
		require.NoError(t, db.Exec("INSERT INTO orders (branch_id, name) VALUES (?, ?)", 1+i%2, "order").Error)
	}

	rec = call(router, http.MethodGet, base+"/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m orgdomain.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, int64(2), m.Branches)
	assert.Equal(t, int64(7), m.Orders)
	assert.Equal(t, 3.5, m.Average)
	assert.Equal(t, int64(55), m.Score)
	assert.NotEmpty(t, m.Display)

	rec = call(router, http.MethodGet, base+"/label", "")
	assert.JSONEq(t, `{"label":"Established"}`, rec.Body.String())

	rec = call(router, http.MethodGet, "/api/headquarters/999/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBranchesByHeadquarters(t *testing.T) {
	router, _ := setup(t)
	for _, name := range []string{"North", "South"} {
		rec := call(router, http.MethodPost, "/api/headquarters", fmt.Sprintf(`{"name":%q}`, name))
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	for _, hq := range []int{1, 2, 2} {
		rec := call(router, http.MethodPost, "/api/branches", fmt.Sprintf(`{"headquartersId":%d,"name":"b"}`, hq))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := call(router, http.MethodGet, "/api/branches/headquarters/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var branches []orgdomain.Branch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &branches))
	require.Len(t, branches, 2)
	assert.Less(t, branches[0].BranchID, branches[1].BranchID)

	rec = call(router, http.MethodDelete, "/api/headquarters/2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "branches still reference it")
}

type failingActivity struct{}

func (failingActivity) Counts(context.Context, int64) (int64, int64, error) {
	return 0, 0, apperrors.NewDatabase("Headquarters", 1, errors.New("timeout"))
}

func TestHeadquartersMetricsFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	require.NoError(t, db.Exec("INSERT INTO headquarters (name) VALUES (?)", "HQ").Error)

	entity := organization.HeadquartersEntity(failingActivity{})
	router := gin.New()
	router.Use(apperrors.DefaultResponder.ErrorHandler(nil))
	crud.NewHandler[orgdomain.Headquarters](crud.NewRepository(db, entity), entity).Register(router)

	rec := call(router, http.MethodGet, "/headquarters/1/metrics", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
