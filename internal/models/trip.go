package models

// MemberRole controls what a trip member may do with the trip's expenses.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleEditor MemberRole = "editor"
	RoleViewer MemberRole = "viewer"
)

// Valid reports whether r is a known role.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanEditExpenses reports whether the role may create, edit or delete expenses.
func (r MemberRole) CanEditExpenses() bool {
	return r == RoleOwner || r == RoleEditor
}

// Trip is the container for itinerary, expenses and members.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	// Name is the display name (e.g., "Shanghai, spring").
	Name string

	// DestinationCurrency is the ISO 4217 code used to display ledger totals.
	// Expenses in other currencies are summed as-is; no conversion happens.
	DestinationCurrency string

	// CreatedBy is the user ID of the trip owner.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64

	// Members is populated by GetTrip; ListTrips leaves it empty.
	Members []TripMember
}

// TripMember links a user to a trip with a role.
type TripMember struct {
	TripID string
	UserID string
	Role   MemberRole
}

// Member returns the membership for userID, if any.
func (t *Trip) Member(userID string) (TripMember, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return TripMember{}, false
}
