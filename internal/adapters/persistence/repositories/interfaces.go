package repositories

import (
	"context"

	"library-loans/internal/adapters/persistence/models"
)

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Find(ctx context.Context, filter map[string]string) ([]*models.Loan, error)
	FindByISBN(ctx context.Context, isbn string) (*models.Loan, error)
	FindByLoanID(ctx context.Context, loanID string) (*models.Loan, error)
	CountByMemberName(ctx context.Context, memberName string) (int64, error)
	Create(ctx context.Context, loan *models.Loan) error
	DeleteByLoanID(ctx context.Context, loanID string) (int64, error)
}

// ReservationRepository defines the reservation-set repository interface.
// Reserve is the atomic insert-if-absent that arbitrates loan id uniqueness;
// there is intentionally no delete.
type ReservationRepository interface {
	Reserve(ctx context.Context, loanID string) error
}

var (
	_ LoanRepository        = (*GormLoanRepository)(nil)
	_ ReservationRepository = (*GormReservationRepository)(nil)
)
