package api

import "google.golang.org/protobuf/types/known/timestamppb"

type Trip struct {
	Id                  string                 `json:"id"`
	Name                string                 `json:"name"`
	DestinationCurrency string                 `json:"destinationCurrency"`
	CreatedBy           string                 `json:"createdBy"`
	CreatedAt           *timestamppb.Timestamp `json:"createdAt,omitempty"`
	Members             []*TripMember          `json:"members,omitempty"`
}

type TripMember struct {
	UserId      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role"`
}

type CreateTripRequest struct {
	Name                string `json:"name"`
	DestinationCurrency string `json:"destinationCurrency"`
}

type CreateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type GetTripRequest struct {
	TripId string `json:"tripId"`
}

type GetTripResponse struct {
	Trip *Trip `json:"trip"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []*Trip `json:"trips"`
}

// AddTripMemberRequest names the new member by UserId or, failing that, Email.
type AddTripMemberRequest struct {
	TripId string `json:"tripId"`
	UserId string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
}

type AddTripMemberResponse struct {
	Trip *Trip `json:"trip"`
}
