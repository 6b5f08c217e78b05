package models

import (
	"time"

	"gorm.io/gorm"
)

// Loan represents the loans table. The JSON tags are the public wire shape;
// the internal primary key is never exposed.
type Loan struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	MemberName string `gorm:"size:255;not null;index" json:"memberName"`
	ISBN       string `gorm:"column:isbn;size:32;not null;uniqueIndex" json:"ISBN"`
	Title      string `gorm:"size:255;not null" json:"title"`
	BookID     string `gorm:"column:book_id;size:64;not null" json:"bookID"`
	LoanDate   string `gorm:"size:10;not null" json:"loanDate"`
	LoanID     string `gorm:"column:loan_id;size:36;not null;uniqueIndex" json:"loanID"`
}

func (Loan) TableName() string {
	return "loans"
}

// ReservedLoanID represents the reserved_loan_ids table. A row records that a
// candidate loan identifier has been claimed. Rows are never deleted: deleting
// a loan does not free its identifier for reuse.
type ReservedLoanID struct {
	LoanID    string    `gorm:"column:loan_id;primaryKey;size:36" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

func (ReservedLoanID) TableName() string {
	return "reserved_loan_ids"
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Loan{},
		&ReservedLoanID{},
	)
}
