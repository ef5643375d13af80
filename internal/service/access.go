package service

import (
	"context"
	"fmt"

	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
	"github.com/koyostar/ItinaviCN-sub000/internal/models"
	"github.com/koyostar/ItinaviCN-sub000/internal/storage"
)

// memberTrip loads a trip and the caller's membership in it.
func memberTrip(ctx context.Context, trips storage.TripStore, tripID, userID string) (*models.Trip, models.TripMember, error) {
	if tripID == "" {
		return nil, models.TripMember{}, fmt.Errorf("%w: trip_id is required", ledger.ErrValidation)
	}
	trip, err := trips.GetTrip(ctx, tripID)
	if err != nil {
		return nil, models.TripMember{}, err
	}
	member, ok := trip.Member(userID)
	if !ok {
		return nil, models.TripMember{}, fmt.Errorf("%w: not a member of trip %s", ledger.ErrPermission, tripID)
	}
	return trip, member, nil
}

// editorTrip is memberTrip restricted to roles that may write expenses.
func editorTrip(ctx context.Context, trips storage.TripStore, tripID, userID string) (*models.Trip, error) {
	trip, member, err := memberTrip(ctx, trips, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanEditExpenses() {
		return nil, fmt.Errorf("%w: %s members cannot change expenses", ledger.ErrPermission, member.Role)
	}
	return trip, nil
}
