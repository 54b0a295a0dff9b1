package quote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	catalogdomain "github.com/Apurer/go-gin-supply-api/internal/domains/catalog/domain"
	apperrors "github.com/Apurer/go-gin-supply-api/internal/shared/errors"
)

type stubProducts struct {
	products map[int64]catalogdomain.Product
	err      error
	calls    int
}

func (s *stubProducts) FindByID(_ context.Context, id int64) (catalogdomain.Product, bool, error) {
	s.calls++
	if s.err != nil {
		return catalogdomain.Product{}, false, s.err
	}
	p, ok := s.products[id]
	return p, ok, nil
}

func serve(products ProductReader, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(apperrors.DefaultResponder.ErrorHandler(nil))
	NewHandler(products).Register(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cart/quote", strings.NewReader(body)))
	return rec
}

func TestQuote_LooksEachProductUpOnce(t *testing.T) {
	stub := &stubProducts{products: map[int64]catalogdomain.Product{1: {ProductID: 1, Price: 2.5}}}

	rec := serve(stub, `{"items":[{"productId":1,"quantity":2},{"productId":1,"quantity":1}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stub.calls)
	assert.Contains(t, rec.Body.String(), `"total":"7.5"`)
}

func TestQuote_EmptyCart(t *testing.T) {
	rec := serve(&stubProducts{}, `{"items":[]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lines":[],"missing":[],"total":"0"}`, rec.Body.String())
}

func TestQuote_StoreFailureIs500(t *testing.T) {
	rec := serve(&stubProducts{err: apperrors.NewDatabase("Product", 1, errors.New("down"))},
		`{"items":[{"productId":1,"quantity":1}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestQuote_RejectsMalformedItems(t *testing.T) {
	for _, body := range []string{
		`{"items":[{"productId":0,"quantity":1}]}`,
		`{"items":[{"productId":1,"quantity":-2}]}`,
		`not json`,
	} {
		rec := serve(&stubProducts{}, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}
