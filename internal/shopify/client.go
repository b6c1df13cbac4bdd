// Package shopify talks to the Shopify admin REST API and verifies
// webhook signatures.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const apiVersion = "2023-10"

// Client is a minimal Shopify admin API client.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient constructs a Client. storeURL may omit the scheme.
func NewClient(storeURL, accessToken string) *Client {
	if storeURL != "" && !strings.HasPrefix(storeURL, "http") {
		storeURL = "https://" + storeURL
	}
	return &Client{
		baseURL:     strings.TrimSuffix(storeURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type productPayload struct {
	Product struct {
		Title    string `json:"title"`
		Variants []struct {
			Price string `json:"price"`
		} `json:"variants"`
	} `json:"product"`
}

type productResponse struct {
	Product struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"product"`
}

// CreateProduct creates the remote product and returns its Shopify id as a
// string, the form the webhook payloads and the products table use.
func (c *Client) CreateProduct(ctx context.Context, title string, price float64) (string, error) {
	var payload productPayload
	payload.Product.Title = title
	payload.Product.Variants = make([]struct {
		Price string `json:"price"`
	}, 1)
	payload.Product.Variants[0].Price = strconv.FormatFloat(price, 'f', 2, 64)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("shopify: marshal product: %w", err)
	}

	url := fmt.Sprintf("%s/admin/api/%s/products.json", c.baseURL, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("shopify: build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("shopify: create product: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return "", fmt.Errorf("shopify: create product: status %d: %s", res.StatusCode, detail)
	}

	var out productResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("shopify: decode response: %w", err)
	}
	return strconv.FormatInt(out.Product.ID, 10), nil
}
