package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koyostar/ItinaviCN-sub000/internal/models"
)

type tripRow struct {
	ID                  string `db:"id"`
	Name                string `db:"name"`
	DestinationCurrency string `db:"destination_currency"`
	CreatedBy           string `db:"created_by"`
	CreatedAt           int64  `db:"created_at"`
}

func (r tripRow) model() *models.Trip {
	return &models.Trip{
		ID:                  r.ID,
		Name:                r.Name,
		DestinationCurrency: r.DestinationCurrency,
		CreatedBy:           r.CreatedBy,
		CreatedAt:           r.CreatedAt,
	}
}

type memberRow struct {
	TripID string `db:"trip_id"`
	UserID string `db:"user_id"`
	Role   string `db:"role"`
}

// CreateTrip persists a new trip and registers its creator as owner.
func (s *Store) CreateTrip(ctx context.Context, trip *models.Trip) error {
	// Generate ID if not set
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}
	trip.DestinationCurrency = strings.ToUpper(trip.DestinationCurrency)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		s.rebind("INSERT INTO trips (id, name, destination_currency, created_by, created_at) VALUES (?, ?, ?, ?, ?)"),
		trip.ID, trip.Name, trip.DestinationCurrency, trip.CreatedBy, trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		s.rebind("INSERT INTO trip_members (trip_id, user_id, role) VALUES (?, ?, ?)"),
		trip.ID, trip.CreatedBy, string(models.RoleOwner),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	trip.Members = []models.TripMember{{TripID: trip.ID, UserID: trip.CreatedBy, Role: models.RoleOwner}}
	return nil
}

// GetTrip retrieves a trip by ID, including its members.
func (s *Store) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	var row tripRow
	err := s.db.GetContext(ctx, &row,
		s.rebind("SELECT id, name, destination_currency, created_by, created_at FROM trips WHERE id = ?"),
		tripID,
	)
	if isNoRows(err) {
		return nil, notFound("trip", tripID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	trip := row.model()

	var members []memberRow
	err = s.db.SelectContext(ctx, &members,
		s.rebind("SELECT trip_id, user_id, role FROM trip_members WHERE trip_id = ? ORDER BY user_id"),
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip members: %w", err)
	}
	for _, m := range members {
		trip.Members = append(trip.Members, models.TripMember{TripID: m.TripID, UserID: m.UserID, Role: models.MemberRole(m.Role)})
	}

	return trip, nil
}

// ListTripsForUser retrieves every trip the user is a member of.
func (s *Store) ListTripsForUser(ctx context.Context, userID string) ([]*models.Trip, error) {
	var rows []tripRow
	err := s.db.SelectContext(ctx, &rows,
		s.rebind(`SELECT t.id, t.name, t.destination_currency, t.created_by, t.created_at
		 FROM trips t JOIN trip_members m ON m.trip_id = t.id
		 WHERE m.user_id = ?
		 ORDER BY t.created_at DESC, t.id`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	trips := make([]*models.Trip, len(rows))
	for i, r := range rows {
		trips[i] = r.model()
	}
	return trips, nil
}

// AddTripMember inserts a membership or updates the member's role.
func (s *Store) AddTripMember(ctx context.Context, member models.TripMember) error {
	// Check if trip exists
	var exists int
	err := s.db.GetContext(ctx, &exists, s.rebind("SELECT 1 FROM trips WHERE id = ?"), member.TripID)
	if isNoRows(err) {
		return notFound("trip", member.TripID)
	}
	if err != nil {
		return fmt.Errorf("failed to check trip existence: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO trip_members (trip_id, user_id, role) VALUES (?, ?, ?)
		 ON CONFLICT (trip_id, user_id) DO UPDATE SET role = excluded.role`),
		member.TripID, member.UserID, string(member.Role),
	)
	if err != nil {
		return fmt.Errorf("failed to add trip member: %w", err)
	}
	return nil
}
