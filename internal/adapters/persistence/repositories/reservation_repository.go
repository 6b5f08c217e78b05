package repositories

import (
	"context"
	"errors"

	"library-loans/internal/adapters/persistence/models"
	"library-loans/internal/core/domain"

	"gorm.io/gorm"
)

// GormReservationRepository handles reserved loan id data access
type GormReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// Reserve atomically claims a loan identifier. The primary key on loan_id
// makes the insert the single arbiter: if the id was ever claimed before,
// the insert fails and domain.ErrDuplicateEntry is returned.
func (r *GormReservationRepository) Reserve(ctx context.Context, loanID string) error {
	err := r.db.WithContext(ctx).Create(&models.ReservedLoanID{LoanID: loanID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateEntry
	}
	return err
}
