package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"library-loans/internal/adapters/catalog"
	"library-loans/internal/adapters/persistence/models"
	"library-loans/internal/adapters/persistence/repositories"
)

// memberLoanLimit is the maximum number of loans a member may have
// outstanding at the same time.
const memberLoanLimit = 2

// Loan service errors
var (
	ErrEmptyFields            = errors.New("empty fields are not accepted")
	ErrBookAlreadyLent        = errors.New("book already lent")
	ErrBookNotInLibrary       = errors.New("book does not exist in the library")
	ErrMemberLoanLimitReached = errors.New("member loan limit reached")
	ErrInvalidDateFormat      = errors.New("invalid loan date format")
	ErrLoanNotFound           = errors.New("loan not found")
)

// IssueLoanInput represents issue loan input
type IssueLoanInput struct {
	MemberName string
	ISBN       string
	LoanDate   string
}

// LoanService handles loan business logic
type LoanService struct {
	loanRepo      repositories.LoanRepository
	loanIDService *LoanIDService
	catalogClient catalog.Client
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	loanIDService *LoanIDService,
	catalogClient catalog.Client,
) *LoanService {
	return &LoanService{
		loanRepo:      loanRepo,
		loanIDService: loanIDService,
		catalogClient: catalogClient,
	}
}

// Issue runs the loan issuance workflow. Checks are fail-fast in a fixed
// order: empty fields, book already lent, catalog lookup, member limit, date
// format. Only then is an id reserved and the loan committed.
//
// The already-lent and limit checks are read-then-write, so two concurrent
// requests can both pass them; the unique index on loans.isbn is the backstop
// that turns the isbn race into an insert conflict here.
func (s *LoanService) Issue(ctx context.Context, input IssueLoanInput) (*models.Loan, error) {
	if strings.TrimSpace(input.MemberName) == "" ||
		strings.TrimSpace(input.ISBN) == "" ||
		strings.TrimSpace(input.LoanDate) == "" {
		return nil, ErrEmptyFields
	}

	existing, err := s.loanRepo.FindByISBN(ctx, input.ISBN)
	if err != nil {
		return nil, fmt.Errorf("checking outstanding loan: %w", err)
	}
	if existing != nil {
		return nil, ErrBookAlreadyLent
	}

	book, err := s.catalogClient.LookupByISBN(ctx, input.ISBN)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			return nil, ErrBookNotInLibrary
		}
		return nil, fmt.Errorf("fetching book from library: %w", err)
	}

	count, err := s.loanRepo.CountByMemberName(ctx, input.MemberName)
	if err != nil {
		return nil, fmt.Errorf("counting member loans: %w", err)
	}
	if count >= memberLoanLimit {
		return nil, ErrMemberLoanLimitReached
	}

	if !checkDateFormat(input.LoanDate) {
		return nil, ErrInvalidDateFormat
	}

	loanID, err := s.loanIDService.Reserve(ctx)
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		MemberName: input.MemberName,
		ISBN:       input.ISBN,
		Title:      book.Title,
		BookID:     book.ID,
		LoanDate:   input.LoanDate,
		LoanID:     loanID,
	}

	// A conflict here means a concurrent request won the isbn race after our
	// pre-check. The reserved id stays consumed; no loan is written.
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("storing loan: %w", err)
	}

	return loan, nil
}

// List returns all loans matching the filter exactly; an empty filter
// returns every loan.
func (s *LoanService) List(ctx context.Context, filter map[string]string) ([]*models.Loan, error) {
	loans, err := s.loanRepo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	return loans, nil
}

// GetByLoanID gets a loan by its loan identifier
func (s *LoanService) GetByLoanID(ctx context.Context, loanID string) (*models.Loan, error) {
	loan, err := s.loanRepo.FindByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("fetching loan: %w", err)
	}
	if loan == nil {
		return nil, ErrLoanNotFound
	}
	return loan, nil
}

// DeleteByLoanID removes a loan by its loan identifier. The identifier's
// reservation is kept, so the id can never be issued again.
func (s *LoanService) DeleteByLoanID(ctx context.Context, loanID string) error {
	removed, err := s.loanRepo.DeleteByLoanID(ctx, loanID)
	if err != nil {
		return fmt.Errorf("deleting loan: %w", err)
	}
	if removed == 0 {
		return ErrLoanNotFound
	}
	return nil
}

// checkDateFormat accepts exactly "YYYY" or "YYYY-MM-DD" shaped strings:
// four digits, or ten characters with digits in the year part and dashes at
// positions 4 and 7. Calendar validity is deliberately not checked.
func checkDateFormat(date string) bool {
	switch len(date) {
	case 4:
		return allDigits(date)
	case 10:
		return allDigits(date[:4]) && date[4] == '-' && date[7] == '-'
	default:
		return false
	}
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
