package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"library-loans/internal/adapters/catalog"
	"library-loans/internal/adapters/persistence/models"
	"library-loans/internal/core/domain"
	"library-loans/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLoanRepo is an in-memory LoanRepository for handler tests.
type memoryLoanRepo struct {
	mu    sync.Mutex
	loans []*models.Loan
}

func loanFields(loan *models.Loan) map[string]string {
	return map[string]string{
		"memberName": loan.MemberName,
		"ISBN":       loan.ISBN,
		"title":      loan.Title,
		"bookID":     loan.BookID,
		"loanDate":   loan.LoanDate,
		"loanID":     loan.LoanID,
	}
}

func (r *memoryLoanRepo) Find(_ context.Context, filter map[string]string) ([]*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]*models.Loan, 0)
	for _, loan := range r.loans {
		fields := loanFields(loan)
		ok := true
		for key, want := range filter {
			if got, present := fields[key]; !present || got != want {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, loan)
		}
	}
	return matched, nil
}

func (r *memoryLoanRepo) FindByISBN(_ context.Context, isbn string) (*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, loan := range r.loans {
		if loan.ISBN == isbn {
			return loan, nil
		}
	}
	return nil, nil
}

func (r *memoryLoanRepo) FindByLoanID(_ context.Context, loanID string) (*models.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, loan := range r.loans {
		if loan.LoanID == loanID {
			return loan, nil
		}
	}
	return nil, nil
}

func (r *memoryLoanRepo) CountByMemberName(_ context.Context, memberName string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, loan := range r.loans {
		if loan.MemberName == memberName {
			count++
		}
	}
	return count, nil
}

func (r *memoryLoanRepo) Create(_ context.Context, loan *models.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.loans {
		if existing.ISBN == loan.ISBN || existing.LoanID == loan.LoanID {
			return domain.ErrDuplicateEntry
		}
	}
	r.loans = append(r.loans, loan)
	return nil
}

func (r *memoryLoanRepo) DeleteByLoanID(_ context.Context, loanID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, loan := range r.loans {
		if loan.LoanID == loanID {
			r.loans = append(r.loans[:i], r.loans[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// memoryReservationRepo is an in-memory ReservationRepository.
type memoryReservationRepo struct {
	mu       sync.Mutex
	reserved map[string]bool
}

func (r *memoryReservationRepo) Reserve(_ context.Context, loanID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reserved == nil {
		r.reserved = make(map[string]bool)
	}
	if r.reserved[loanID] {
		return domain.ErrDuplicateEntry
	}
	r.reserved[loanID] = true
	return nil
}

// stubCatalog serves a fixed set of books keyed by ISBN.
type stubCatalog struct {
	books map[string]catalog.Book
	err   error
}

func (c *stubCatalog) LookupByISBN(_ context.Context, isbn string) (*catalog.Book, error) {
	if c.err != nil {
		return nil, c.err
	}
	if book, ok := c.books[isbn]; ok {
		return &book, nil
	}
	return nil, catalog.ErrBookNotFound
}

func newTestApp(cat catalog.Client) *fiber.App {
	loanService := services.NewLoanService(
		&memoryLoanRepo{},
		services.NewLoanIDService(&memoryReservationRepo{}),
		cat,
	)
	handler := NewLoanHandler(loanService)

	app := fiber.New()
	loans := app.Group("/loans")
	loans.Get("/", handler.List)
	loans.Post("/", handler.Issue)
	loans.Get("/:id", handler.Get)
	loans.Delete("/:id", handler.Delete)
	return app
}

func defaultCatalog() *stubCatalog {
	return &stubCatalog{books: map[string]catalog.Book{
		"123": {ID: "b1", Title: "Dune", ISBN: "123"},
		"456": {ID: "b2", Title: "Hyperion", ISBN: "456"},
		"789": {ID: "b3", Title: "Foundation", ISBN: "789"},
	}}
}

func postLoan(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestIssueLoanSuccess(t *testing.T) {
	app := newTestApp(defaultCatalog())

	resp := postLoan(t, app, `{"memberName":"Alice","ISBN":"123","loanDate":"2024-01-01"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	loanID := body["You lent the book successfully!"]
	require.NotEmpty(t, loanID, "201 body must carry the loan id under the success key")

	// Round trip through GET.
	req := httptest.NewRequest(http.MethodGet, "/loans/"+loanID, nil)
	getResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, getResp.StatusCode)

	var loan map[string]string
	decodeBody(t, getResp, &loan)
	assert.Equal(t, map[string]string{
		"memberName": "Alice",
		"ISBN":       "123",
		"title":      "Dune",
		"bookID":     "b1",
		"loanDate":   "2024-01-01",
		"loanID":     loanID,
	}, loan)
}

func TestIssueLoanWrongContentType(t *testing.T) {
	app := newTestApp(defaultCatalog())

	req := httptest.NewRequest(http.MethodPost, "/loans", strings.NewReader("memberName=Alice"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Unsupported Media Type: Only JSON is supported.", body["error"])
}

func TestIssueLoanMalformedJSON(t *testing.T) {
	app := newTestApp(defaultCatalog())

	resp := postLoan(t, app, `{"memberName": "Alice",`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body, "Invalid JSON file")
}

func TestIssueLoanValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "missing fields",
			body:    `{"memberName":"Alice","ISBN":"123"}`,
			message: "Unprocessable entity: Missing required fields",
		},
		{
			name:    "empty fields",
			body:    `{"memberName":"   ","ISBN":"123","loanDate":"2024-01-01"}`,
			message: "Unprocessable entity: Empty fields are not accepted",
		},
		{
			name:    "invalid date",
			body:    `{"memberName":"Alice","ISBN":"123","loanDate":"24-1-1"}`,
			message: "Unprocessable entity: Invalid date format",
		},
		{
			name:    "book not in library",
			body:    `{"memberName":"Alice","ISBN":"000","loanDate":"2024-01-01"}`,
			message: "Book does not exist in the library",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(defaultCatalog())
			resp := postLoan(t, app, tt.body)
			assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

			var body map[string]string
			decodeBody(t, resp, &body)
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestIssueLoanBookAlreadyLent(t *testing.T) {
	app := newTestApp(defaultCatalog())

	resp := postLoan(t, app, `{"memberName":"Alice","ISBN":"123","loanDate":"2024-01-01"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postLoan(t, app, `{"memberName":"Bob","ISBN":"123","loanDate":"2024-01-02"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Error: Book already lent", body["message"])
}

func TestIssueLoanMemberLimit(t *testing.T) {
	app := newTestApp(defaultCatalog())

	for _, isbn := range []string{"123", "456"} {
		resp := postLoan(t, app, `{"memberName":"Alice","ISBN":"`+isbn+`","loanDate":"2024-01-01"}`)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp := postLoan(t, app, `{"memberName":"Alice","ISBN":"789","loanDate":"2024-01-01"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "You already lent 2 or more books!", body["message"])
}

func TestIssueLoanCatalogDown(t *testing.T) {
	app := newTestApp(&stubCatalog{err: catalog.ErrUnavailable})

	resp := postLoan(t, app, `{"memberName":"Alice","ISBN":"123","loanDate":"2024-01-01"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Contains(t, body["message"], "Error fetching book from library")
}

func TestListLoans(t *testing.T) {
	app := newTestApp(defaultCatalog())

	// Empty store renders an empty array, not null.
	req := httptest.NewRequest(http.MethodGet, "/loans", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))

	postLoan(t, app, `{"memberName":"Alice","ISBN":"123","loanDate":"2024-01-01"}`)
	postLoan(t, app, `{"memberName":"Bob","ISBN":"456","loanDate":"2024-02-02"}`)

	req = httptest.NewRequest(http.MethodGet, "/loans?memberName=Bob", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var loans []map[string]string
	decodeBody(t, resp, &loans)
	require.Len(t, loans, 1)
	assert.Equal(t, "Bob", loans[0]["memberName"])
	assert.NotContains(t, loans[0], "id", "internal storage key must not leak")
}

func TestGetLoanNotFound(t *testing.T) {
	app := newTestApp(defaultCatalog())

	req := httptest.NewRequest(http.MethodGet, "/loans/unknown-id", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "Loan not found", body["message"])
}

func TestDeleteLoan(t *testing.T) {
	app := newTestApp(defaultCatalog())

	resp := postLoan(t, app, `{"memberName":"Alice","ISBN":"123","loanDate":"2024-01-01"}`)
	var created map[string]string
	decodeBody(t, resp, &created)
	loanID := created["You lent the book successfully!"]

	req := httptest.NewRequest(http.MethodDelete, "/loans/"+loanID, nil)
	delResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, delResp.StatusCode)

	var body map[string]string
	decodeBody(t, delResp, &body)
	assert.Equal(t, "Loan successfully deleted", body["message"])
	assert.Equal(t, loanID, body["loanID"])

	// Deleting again is a 404, not a fault.
	req = httptest.NewRequest(http.MethodDelete, "/loans/"+loanID, nil)
	delResp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, delResp.StatusCode)

	// And the book can be lent again.
	resp = postLoan(t, app, `{"memberName":"Bob","ISBN":"123","loanDate":"2024-03-03"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
