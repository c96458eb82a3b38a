package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	pkgerrors "github.com/balonis/storefront/pkg/errors"
)

const (
	EndpointProducts         = "products/"
	EndpointFeaturedProducts = "products/featured/"
	EndpointCategories       = "products/categories/"
	EndpointColors           = "products/colors/"
	EndpointSources          = "products/sources/"
	EndpointGallery          = "gallery/"
	EndpointFeaturedGallery  = "gallery/featured/"
	EndpointReviews          = "gallery/reviews/"
	EndpointFeaturedReviews  = "gallery/reviews/featured/"

	defaultTimeout       = 10 * time.Second
	errorBodyReadLimit   = 512
	productDetailPattern = "products/%s/"
)

var errBaseURLRequired = errors.New("balonis api base url is required")

// RequestObserver receives the outcome of every backend call.
type RequestObserver interface {
	ObserveBackendRequest(endpoint string, duration time.Duration, err error)
}

// Client talks to the Balonis REST backend.
type Client struct {
	http     *resty.Client
	baseURL  string
	observer RequestObserver

	httpClient *http.Client
	timeout    time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the underlying transport client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every backend request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithObserver reports request durations and failures.
func WithObserver(observer RequestObserver) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// NewClient builds a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	client := &Client{
		baseURL: trimmed,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient != nil {
		client.http = resty.NewWithClient(client.httpClient)
	} else {
		client.http = resty.New()
	}
	client.http.
		SetBaseURL(client.baseURL).
		SetTimeout(client.timeout).
		SetHeader("Accept", "application/json")

	return client, nil
}

// Products lists products; only the provided query values are sent.
func (c *Client) Products(ctx context.Context, query url.Values) ([]Product, error) {
	return fetchListing[Product](ctx, c, EndpointProducts, query)
}

func (c *Client) FeaturedProducts(ctx context.Context) ([]Product, error) {
	return fetchListing[Product](ctx, c, EndpointFeaturedProducts, nil)
}

// AllProducts is the unfiltered listing used as the featured fallback.
func (c *Client) AllProducts(ctx context.Context) ([]Product, error) {
	return fetchListing[Product](ctx, c, EndpointProducts, nil)
}

// Product fetches a single product by slug.
func (c *Client) Product(ctx context.Context, slug string) (*Product, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	var product Product
	endpoint := fmt.Sprintf(productDetailPattern, url.PathEscape(trimmed))
	if err := c.get(ctx, endpoint, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	return fetchListing[Category](ctx, c, EndpointCategories, nil)
}

func (c *Client) Colors(ctx context.Context) ([]Color, error) {
	return fetchListing[Color](ctx, c, EndpointColors, nil)
}

func (c *Client) Sources(ctx context.Context) ([]Source, error) {
	return fetchListing[Source](ctx, c, EndpointSources, nil)
}

func (c *Client) GalleryImages(ctx context.Context) ([]GalleryImage, error) {
	return fetchListing[GalleryImage](ctx, c, EndpointGallery, nil)
}

func (c *Client) FeaturedGallery(ctx context.Context) ([]GalleryImage, error) {
	return fetchListing[GalleryImage](ctx, c, EndpointFeaturedGallery, nil)
}

func (c *Client) ClientReviews(ctx context.Context) ([]ClientReview, error) {
	return fetchListing[ClientReview](ctx, c, EndpointReviews, nil)
}

func (c *Client) FeaturedReviews(ctx context.Context) ([]ClientReview, error) {
	return fetchListing[ClientReview](ctx, c, EndpointFeaturedReviews, nil)
}

// Ping checks the backend through its cheapest listing.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Categories(ctx)
	return err
}

func fetchListing[T any](ctx context.Context, c *Client, endpoint string, query url.Values) ([]T, error) {
	var listing Listing[T]
	if err := c.get(ctx, endpoint, query, &listing); err != nil {
		return nil, err
	}
	return listing.Items(), nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, dest any) (err error) {
	if c == nil || c.http == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "balonis api client not configured")
	}

	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveBackendRequest(endpointLabel(endpoint), time.Since(start), err)
		}
	}()

	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(endpoint)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request "+endpoint)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "not found: "+endpoint)
	}
	if !resp.IsSuccess() {
		body := resp.Body()
		if len(body) > errorBodyReadLimit {
			body = body[:errorBodyReadLimit]
		}
		return pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode(), strings.TrimSpace(string(body))),
			"request "+endpoint+" failed",
		).WithDetails(map[string]any{"endpoint": endpoint, "status": resp.StatusCode()})
	}

	if err := json.Unmarshal(resp.Body(), dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+endpoint)
	}
	return nil
}

// endpointLabel keeps metric cardinality bounded for detail paths.
func endpointLabel(endpoint string) string {
	switch endpoint {
	case EndpointProducts, EndpointFeaturedProducts, EndpointCategories, EndpointColors,
		EndpointSources, EndpointGallery, EndpointFeaturedGallery, EndpointReviews, EndpointFeaturedReviews:
		return endpoint
	}
	if strings.HasPrefix(endpoint, "products/") {
		return "products/{slug}/"
	}
	return "other"
}
