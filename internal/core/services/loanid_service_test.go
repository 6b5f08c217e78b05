package services

import (
	"context"
	"errors"
	"testing"

	"library-loans/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collidingReservationRepo rejects the first n attempts as duplicates.
type collidingReservationRepo struct {
	collisions int
	attempts   int
	reserved   []string
}

func (r *collidingReservationRepo) Reserve(_ context.Context, loanID string) error {
	r.attempts++
	if r.attempts <= r.collisions {
		return domain.ErrDuplicateEntry
	}
	r.reserved = append(r.reserved, loanID)
	return nil
}

func TestReserveFirstAttempt(t *testing.T) {
	repo := &collidingReservationRepo{}
	svc := NewLoanIDService(repo)

	loanID, err := svc.Reserve(context.Background())
	require.NoError(t, err)
	assert.Len(t, loanID, 36, "expected a canonical uuid string")
	assert.Equal(t, []string{loanID}, repo.reserved)
}

func TestReserveRetriesOnCollision(t *testing.T) {
	repo := &collidingReservationRepo{collisions: 3}
	svc := NewLoanIDService(repo)

	loanID, err := svc.Reserve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, repo.attempts)
	assert.Equal(t, []string{loanID}, repo.reserved)
}

func TestReserveDistinctIDs(t *testing.T) {
	repo := &collidingReservationRepo{}
	svc := NewLoanIDService(repo)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		loanID, err := svc.Reserve(context.Background())
		require.NoError(t, err)
		assert.False(t, seen[loanID], "loan id %s issued twice", loanID)
		seen[loanID] = true
	}
}

// failingReservationRepo always fails with a non-duplicate error.
type failingReservationRepo struct {
	err error
}

func (r *failingReservationRepo) Reserve(_ context.Context, _ string) error {
	return r.err
}

func TestReserveStoreFault(t *testing.T) {
	storeErr := errors.New("connection lost")
	svc := NewLoanIDService(&failingReservationRepo{err: storeErr})

	_, err := svc.Reserve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrIDSpaceExhausted)
}
