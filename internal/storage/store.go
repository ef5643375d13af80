// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
	"github.com/koyostar/ItinaviCN-sub000/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested row does not exist.
// It is the ledger's NotFound kind so services classify both the same way.
var ErrNotFound = ledger.ErrNotFound

// ErrConflict is returned (wrapped) when a conditional write lost a race or
// hit a uniqueness constraint.
var ErrConflict = ledger.ErrConflict

// Store defines the persistence operations for trips and their ledgers.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	TripStore
	ExpenseStore
	ledger.SplitRepository

	// Close releases any resources held by the store.
	Close() error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// TripStore persists trips and memberships.
type TripStore interface {
	// CreateTrip inserts the trip and its creator as owner.
	// trip.ID and trip.CreatedAt are populated by the store.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip returns the trip with its Members.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// ListTripsForUser returns every trip userID belongs to, newest first.
	ListTripsForUser(ctx context.Context, userID string) ([]*models.Trip, error)

	// AddTripMember inserts or updates a membership.
	AddTripMember(ctx context.Context, member models.TripMember) error
}

// ExpenseStore persists expenses together with their split sets.
type ExpenseStore interface {
	// CreateExpense inserts the expense and its splits in one transaction.
	// expense.ID, CreatedAt and split IDs are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// UpdateExpense replaces the expense row and its split set atomically.
	// A split keeps its settled state when the same user stays with the
	// same amount.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes the expense and its splits.
	DeleteExpense(ctx context.Context, expenseID string) error
}
