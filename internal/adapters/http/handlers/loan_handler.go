package handlers

import (
	"errors"

	"library-loans/internal/adapters/catalog"
	"library-loans/internal/core/services"
	"library-loans/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// IssueLoanRequest represents an issue loan request. Pointer fields
// distinguish a key that is absent from one that is present but empty.
type IssueLoanRequest struct {
	MemberName *string `json:"memberName"`
	ISBN       *string `json:"ISBN"`
	LoanDate   *string `json:"loanDate"`
}

// Issue issues a new loan
// @Summary Issue a loan
// @Description Lend a book to a member
// @Tags Loans
// @Accept json
// @Produce json
// @Param body body IssueLoanRequest true "Loan data"
// @Success 201 {object} map[string]string
// @Failure 415 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /loans [post]
func (h *LoanHandler) Issue(c *fiber.Ctx) error {
	if !c.Is("json") {
		return response.UnsupportedMediaType(c)
	}

	var req IssueLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"Invalid JSON file": err.Error(),
		})
	}

	if req.MemberName == nil || req.ISBN == nil || req.LoanDate == nil {
		return response.UnprocessableEntity(c, "Unprocessable entity: Missing required fields")
	}

	input := services.IssueLoanInput{
		MemberName: *req.MemberName,
		ISBN:       *req.ISBN,
		LoanDate:   *req.LoanDate,
	}

	loan, err := h.loanService.Issue(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyFields):
			return response.UnprocessableEntity(c, "Unprocessable entity: Empty fields are not accepted")
		case errors.Is(err, services.ErrBookAlreadyLent):
			return response.UnprocessableEntity(c, "Error: Book already lent")
		case errors.Is(err, services.ErrBookNotInLibrary):
			return response.UnprocessableEntity(c, "Book does not exist in the library")
		case errors.Is(err, services.ErrMemberLoanLimitReached):
			return response.UnprocessableEntity(c, "You already lent 2 or more books!")
		case errors.Is(err, services.ErrInvalidDateFormat):
			return response.UnprocessableEntity(c, "Unprocessable entity: Invalid date format")
		case errors.Is(err, catalog.ErrUnavailable):
			return response.InternalServerError(c, "Error fetching book from library: "+err.Error())
		default:
			return response.InternalServerError(c, "Failed to issue loan")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"You lent the book successfully!": loan.LoanID,
	})
}

// List lists loans
// @Summary List loans
// @Description List all loans, optionally filtered by exact field values
// @Tags Loans
// @Accept json
// @Produce json
// @Param memberName query string false "Filter by member name"
// @Param ISBN query string false "Filter by ISBN"
// @Param loanID query string false "Filter by loan id"
// @Success 200 {array} models.Loan
// @Failure 500 {object} map[string]string
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	loans, err := h.loanService.List(c.Context(), c.Queries())
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return c.JSON(loans)
}

// Get fetches a single loan
// @Summary Get a loan
// @Description Get one loan by its loan id
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path string true "Loan id"
// @Success 200 {object} models.Loan
// @Failure 404 {object} map[string]string
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	loan, err := h.loanService.GetByLoanID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to fetch loan")
	}

	return c.JSON(loan)
}

// Delete removes a loan
// @Summary Delete a loan
// @Description Delete one loan by its loan id
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path string true "Loan id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /loans/{id} [delete]
func (h *LoanHandler) Delete(c *fiber.Ctx) error {
	loanID := c.Params("id")

	if err := h.loanService.DeleteByLoanID(c.Context(), loanID); err != nil {
		if errors.Is(err, services.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to delete loan")
	}

	return c.JSON(fiber.Map{
		"message": "Loan successfully deleted",
		"loanID":  loanID,
	})
}
