package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Catalog client errors
var (
	// ErrBookNotFound means the catalog answered and the book is not there.
	ErrBookNotFound = errors.New("book not found in catalog")
	// ErrUnavailable covers transport failures, non-success responses and
	// malformed payloads from the catalog service.
	ErrUnavailable = errors.New("catalog unavailable")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Book is the catalog's view of a book, as returned by lookup
type Book struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	ISBN  string `json:"ISBN"`
}

// Client defines the catalog service client interface
type Client interface {
	LookupByISBN(ctx context.Context, isbn string) (*Book, error)
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient queries the remote catalog service over HTTP
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new catalog HTTP client. The timeout bounds the
// whole round-trip so a stuck catalog cannot hang loan issuance.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// LookupByISBN asks the catalog for the book with the given ISBN.
// Returns ErrBookNotFound when the catalog reports no match, and an error
// wrapping ErrUnavailable for every fault on the way there.
func (c *HTTPClient) LookupByISBN(ctx context.Context, isbn string) (*Book, error) {
	lookupURL := fmt.Sprintf("%s/books?ISBN=%s", c.baseURL, url.QueryEscape(isbn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var books []Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	if len(books) == 0 {
		return nil, ErrBookNotFound
	}

	return &books[0], nil
}
