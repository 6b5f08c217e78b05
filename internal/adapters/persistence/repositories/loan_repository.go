package repositories

import (
	"context"
	"errors"

	"library-loans/internal/adapters/persistence/models"
	"library-loans/internal/core/domain"

	"gorm.io/gorm"
)

// filterColumns maps public JSON field names to loans table columns.
// Filtering on a name outside this map matches nothing.
var filterColumns = map[string]string{
	"memberName": "member_name",
	"ISBN":       "isbn",
	"title":      "title",
	"bookID":     "book_id",
	"loanDate":   "loan_date",
	"loanID":     "loan_id",
}

// GormLoanRepository handles loan data access
type GormLoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// Find returns all loans matching every key/value pair in filter exactly.
// An empty filter returns all loans. The returned slice is never nil.
func (r *GormLoanRepository) Find(ctx context.Context, filter map[string]string) ([]*models.Loan, error) {
	loans := make([]*models.Loan, 0)

	query := r.db.WithContext(ctx).Model(&models.Loan{})
	for field, value := range filter {
		column, ok := filterColumns[field]
		if !ok {
			// Unknown field: no stored loan can match it.
			return loans, nil
		}
		query = query.Where(column+" = ?", value)
	}

	err := query.Find(&loans).Error
	return loans, err
}

// FindByISBN gets the loan for an ISBN, or nil if the book is not lent
func (r *GormLoanRepository) FindByISBN(ctx context.Context, isbn string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindByLoanID gets a loan by its loan identifier, or nil if absent
func (r *GormLoanRepository) FindByLoanID(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// CountByMemberName counts outstanding loans for a member
func (r *GormLoanRepository) CountByMemberName(ctx context.Context, memberName string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("member_name = ?", memberName).
		Count(&count).Error
	return count, err
}

// Create inserts a new loan. A unique-index violation (isbn or loan_id) is
// reported as domain.ErrDuplicateEntry.
func (r *GormLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	err := r.db.WithContext(ctx).Create(loan).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateEntry
	}
	return err
}

// DeleteByLoanID removes a loan by its loan identifier and reports how many
// rows were removed. The identifier's reservation is left in place.
func (r *GormLoanRepository) DeleteByLoanID(ctx context.Context, loanID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Delete(&models.Loan{})
	return result.RowsAffected, result.Error
}
