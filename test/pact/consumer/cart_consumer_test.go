//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-supply-api/internal/app/cartcli"
	pacttest "github.com/Apurer/go-gin-supply-api/test/pact"
)

func TestCartCLIContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateProductsExist).
		UponReceiving("a request for the product catalog").
		WithRequest("GET", "/api/products").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.ArrayMinLike(matchers.Map{
				"productId": matchers.Like(pacttest.ExampleProductID),
				"price":     matchers.Like(pacttest.ExamplePrice),
				"discount":  matchers.Like(pacttest.ExampleDiscount),
			}, 1))
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		products, err := cartcli.FetchProducts(ctx, newHTTPClient(config), baseURL(config))
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}
		if len(products) == 0 {
			return fmt.Errorf("expected at least one product")
		}
		p := products[0]
		if p.ProductID == 0 || p.Price == 0 || p.Discount == nil {
			return fmt.Errorf("product missing pricing fields: %+v", p)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestCartCLIContract_EmptyCatalog(t *testing.T) {
	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	pact.AddInteraction().
		Given(pacttest.StateNoProducts).
		UponReceiving("a request for an empty product catalog").
		WithRequest("GET", "/api/products").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody([]any{})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		products, err := cartcli.FetchProducts(ctx, newHTTPClient(config), baseURL(config))
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}
		if len(products) != 0 {
			return fmt.Errorf("expected no products, got %d", len(products))
		}
		return nil
	})
	require.NoError(t, err)
}

func baseURL(config pactconsumer.MockServerConfig) string {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, config.Port)
}

func newHTTPClient(config pactconsumer.MockServerConfig) *http.Client {
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &http.Client{Transport: transport, Timeout: 10 * time.Second}
}
