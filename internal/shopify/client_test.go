package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreateProduct(t *testing.T) {
	var gotToken, gotPath string
	var gotPayload productPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"product":{"id":9007199254,"title":"Tote Bag"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "shpat_token")
	shopifyID, err := client.CreateProduct(context.Background(), "Tote Bag", 29.9)
	require.NoError(t, err)

	assert.Equal(t, "9007199254", shopifyID)
	assert.Equal(t, "shpat_token", gotToken)
	assert.Equal(t, "/admin/api/"+apiVersion+"/products.json", gotPath)
	assert.Equal(t, "Tote Bag", gotPayload.Product.Title)
	require.Len(t, gotPayload.Product.Variants, 1)
	assert.Equal(t, "29.90", gotPayload.Product.Variants[0].Price)
}

func TestClientCreateProductErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"unprocessable"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "shpat_token")
	_, err := client.CreateProduct(context.Background(), "Tote Bag", 29.9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestNewClientNormalizesStoreURL(t *testing.T) {
	client := NewClient("my-store.myshopify.com/", "tok")
	assert.Equal(t, "https://my-store.myshopify.com", client.baseURL)
}
