package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	api "github.com/koyostar/ItinaviCN-sub000/pkg/api"
)

func TestCreateTrip(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	resp, err := env.trips.CreateTrip(ctx, as("alice", &api.CreateTripRequest{
		Name:                "Chengdu",
		DestinationCurrency: "cny",
	}))
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	trip := resp.Msg.Trip
	if trip.Id == "" {
		t.Error("expected non-empty trip ID")
	}
	if trip.DestinationCurrency != "CNY" {
		t.Errorf("currency: expected 'CNY', got '%s'", trip.DestinationCurrency)
	}
	if len(trip.Members) != 1 || trip.Members[0].UserId != "alice" || trip.Members[0].Role != "owner" {
		t.Errorf("members: expected alice as owner, got %+v", trip.Members)
	}
	if trip.CreatedAt == nil {
		t.Error("expected CreatedAt")
	}

	tests := []struct {
		name string
		req  *api.CreateTripRequest
	}{
		{"missing name", &api.CreateTripRequest{Name: " ", DestinationCurrency: "CNY"}},
		{"bad currency", &api.CreateTripRequest{Name: "Trip", DestinationCurrency: "yuan"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.trips.CreateTrip(ctx, as("alice", tt.req))
			wantCode(t, err, connect.CodeInvalidArgument)
		})
	}

	_, err = env.trips.CreateTrip(ctx, connect.NewRequest(&api.CreateTripRequest{Name: "Anon", DestinationCurrency: "CNY"}))
	wantCode(t, err, connect.CodeUnauthenticated)
}

func TestTripMembership(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	tripID := env.newTrip(t, "alice", "bob")

	_, err := env.trips.AddTripMember(ctx, as("alice", &api.AddTripMemberRequest{TripId: tripID, UserId: "carol", Role: "viewer"}))
	if err != nil {
		t.Fatalf("AddTripMember failed: %v", err)
	}

	got, err := env.trips.GetTrip(ctx, as("carol", &api.GetTripRequest{TripId: tripID}))
	if err != nil {
		t.Fatalf("GetTrip as viewer failed: %v", err)
	}
	if len(got.Msg.Trip.Members) != 3 {
		t.Errorf("members: expected 3, got %d", len(got.Msg.Trip.Members))
	}

	list, err := env.trips.ListTrips(ctx, as("bob", &api.ListTripsRequest{}))
	if err != nil {
		t.Fatalf("ListTrips failed: %v", err)
	}
	if len(list.Msg.Trips) != 1 || list.Msg.Trips[0].Id != tripID {
		t.Errorf("ListTrips for bob = %+v", list.Msg.Trips)
	}

	t.Run("outsider cannot read", func(t *testing.T) {
		_, err := env.trips.GetTrip(ctx, as("mallory", &api.GetTripRequest{TripId: tripID}))
		wantCode(t, err, connect.CodePermissionDenied)
	})
	t.Run("editor cannot manage members", func(t *testing.T) {
		_, err := env.trips.AddTripMember(ctx, as("bob", &api.AddTripMemberRequest{TripId: tripID, UserId: "dave"}))
		wantCode(t, err, connect.CodePermissionDenied)
	})
	t.Run("owner role cannot be granted", func(t *testing.T) {
		_, err := env.trips.AddTripMember(ctx, as("alice", &api.AddTripMemberRequest{TripId: tripID, UserId: "dave", Role: "owner"}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})
	t.Run("unknown email", func(t *testing.T) {
		_, err := env.trips.AddTripMember(ctx, as("alice", &api.AddTripMemberRequest{TripId: tripID, Email: "ghost@example.com"}))
		wantCode(t, err, connect.CodeNotFound)
	})
	t.Run("missing trip", func(t *testing.T) {
		_, err := env.trips.GetTrip(ctx, as("alice", &api.GetTripRequest{TripId: "nope"}))
		wantCode(t, err, connect.CodeNotFound)
	})
}
