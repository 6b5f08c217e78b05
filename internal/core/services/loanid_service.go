package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"library-loans/internal/adapters/persistence/repositories"
	"library-loans/internal/core/domain"

	"github.com/google/uuid"
)

// maxReserveAttempts bounds the reservation loop. Random UUIDs collide so
// rarely that a second attempt is already unexpected; hitting the bound means
// something is badly wrong with the store or the id source.
const maxReserveAttempts = 1 << 20

// ErrIDSpaceExhausted is returned when reservation keeps colliding past the
// attempt bound.
var ErrIDSpaceExhausted = errors.New("could not reserve a unique loan id")

// LoanIDService reserves globally unique loan identifiers
type LoanIDService struct {
	reservationRepo repositories.ReservationRepository
}

// NewLoanIDService creates a new loan id service
func NewLoanIDService(reservationRepo repositories.ReservationRepository) *LoanIDService {
	return &LoanIDService{reservationRepo: reservationRepo}
}

// Reserve proposes random identifiers until one is atomically claimed in the
// reservation set. The claimed id is never released, even if the loan that
// uses it is later deleted.
func (s *LoanIDService) Reserve(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= maxReserveAttempts; attempt++ {
		loanID := uuid.NewString()

		err := s.reservationRepo.Reserve(ctx, loanID)
		if err == nil {
			return loanID, nil
		}
		if !errors.Is(err, domain.ErrDuplicateEntry) {
			return "", fmt.Errorf("reserving loan id: %w", err)
		}

		log.Printf("⚠️ Loan id collision on attempt %d, retrying", attempt)
	}

	log.Printf("❌ Loan id reservation gave up after %d attempts", maxReserveAttempts)
	return "", ErrIDSpaceExhausted
}
