package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
	"github.com/koyostar/ItinaviCN-sub000/internal/models"
	"github.com/koyostar/ItinaviCN-sub000/internal/money"
	"github.com/koyostar/ItinaviCN-sub000/internal/storage"
	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
	"github.com/koyostar/ItinaviCN-sub000/pkg/api/apiconnect"
)

// TripService implements the Connect TripService.
type TripService struct {
	apiconnect.UnimplementedTripServiceHandler
	store storage.Store
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store) *TripService {
	return &TripService{store: store}
}

// CreateTrip creates a trip owned by the caller.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Msg.DestinationCurrency))
	if !money.ValidCurrency(currency) {
		return nil, invalidArgument(fmt.Sprintf("destination_currency %q is not an ISO 4217 code", req.Msg.DestinationCurrency))
	}

	trip := &models.Trip{Name: name, DestinationCurrency: currency, CreatedBy: userID}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		slog.Error("Failed to create trip", "error", err)
		return nil, connectError(err)
	}

	slog.Info("Trip created", "trip_id", trip.ID, "user_id", userID)
	return connect.NewResponse(&api.CreateTripResponse{Trip: s.describe(ctx, trip)}), nil
}

// GetTrip returns a trip the caller belongs to.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	trip, _, err := memberTrip(ctx, s.store, req.Msg.TripId, userID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetTripResponse{Trip: s.describe(ctx, trip)}), nil
}

// ListTrips returns every trip the caller belongs to.
func (s *TripService) ListTrips(ctx context.Context, req *connect.Request[api.ListTripsRequest]) (*connect.Response[api.ListTripsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	trips, err := s.store.ListTripsForUser(ctx, userID)
	if err != nil {
		slog.Error("Failed to list trips", "user_id", userID, "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Trip, len(trips))
	for i, t := range trips {
		out[i] = toAPITrip(t, nil)
	}
	return connect.NewResponse(&api.ListTripsResponse{Trips: out}), nil
}

// AddTripMember adds a user to the trip or changes their role. Owner only.
func (s *TripService) AddTripMember(ctx context.Context, req *connect.Request[api.AddTripMemberRequest]) (*connect.Response[api.AddTripMemberResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	_, member, err := memberTrip(ctx, s.store, req.Msg.TripId, userID)
	if err != nil {
		return nil, connectError(err)
	}
	if member.Role != models.RoleOwner {
		return nil, connectError(fmt.Errorf("%w: only the owner may manage members", ledger.ErrPermission))
	}

	role := models.MemberRole(req.Msg.Role)
	if role == "" {
		role = models.RoleEditor
	}
	if !role.Valid() || role == models.RoleOwner {
		return nil, invalidArgument(fmt.Sprintf("role %q must be editor or viewer", req.Msg.Role))
	}

	newMemberID, err := s.resolveUser(ctx, req.Msg.UserId, req.Msg.Email)
	if err != nil {
		return nil, err
	}
	if newMemberID == userID {
		return nil, invalidArgument("the owner's role cannot be changed")
	}

	if err := s.store.AddTripMember(ctx, models.TripMember{TripID: req.Msg.TripId, UserID: newMemberID, Role: role}); err != nil {
		slog.Error("Failed to add trip member", "trip_id", req.Msg.TripId, "error", err)
		return nil, connectError(err)
	}

	trip, err := s.store.GetTrip(ctx, req.Msg.TripId)
	if err != nil {
		return nil, connectError(err)
	}

	slog.Info("Trip member added",
		"trip_id", trip.ID,
		"member_id", newMemberID,
		"role", role,
		"actor_id", userID,
	)
	return connect.NewResponse(&api.AddTripMemberResponse{Trip: s.describe(ctx, trip)}), nil
}

func (s *TripService) resolveUser(ctx context.Context, userID, email string) (string, error) {
	switch {
	case userID != "":
		return userID, nil
	case email != "":
		user, err := s.store.GetUserByEmail(ctx, email)
		if errors.Is(err, storage.ErrNotFound) {
			return "", connect.NewError(connect.CodeNotFound, fmt.Errorf("no user registered with %s", email))
		}
		if err != nil {
			return "", connectError(err)
		}
		return user.ID, nil
	}
	return "", invalidArgument("user_id or email is required")
}

// describe converts a trip, attaching member display names when available.
func (s *TripService) describe(ctx context.Context, trip *models.Trip) *api.Trip {
	ids := make([]string, len(trip.Members))
	for i, m := range trip.Members {
		ids[i] = m.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Warn("Failed to load member names", "trip_id", trip.ID, "error", err)
	}
	return toAPITrip(trip, users)
}
