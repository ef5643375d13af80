package ledger

import (
	"fmt"
	"math"

	"github.com/koyostar/ItinaviCN-sub000/internal/money"
)

// Allocation is one participant's share of an expense, in minor units.
type Allocation struct {
	UserID      string
	AmountMinor int64
}

// SplitMode is the allocation strategy the editor is working in.
type SplitMode string

const (
	ModeEven       SplitMode = "even"
	ModePercentage SplitMode = "percentage"
	ModeFixed      SplitMode = "fixed"
)

// Valid reports whether m is a known mode.
func (m SplitMode) Valid() bool {
	switch m {
	case ModeEven, ModePercentage, ModeFixed:
		return true
	}
	return false
}

// SplitEvenly divides total across participants in input order.
// Shares differ by at most one minor unit and sum exactly to total; the
// leftover units go to the earliest participants, one each.
func SplitEvenly(total int64, participantIDs []string) ([]Allocation, error) {
	if total < 0 {
		return nil, fmt.Errorf("%w: total %d is negative", ErrValidation, total)
	}
	if err := checkParticipants(participantIDs); err != nil {
		return nil, err
	}
	if len(participantIDs) == 0 {
		return []Allocation{}, nil
	}

	shares := spread(total, len(participantIDs))
	allocs := make([]Allocation, len(participantIDs))
	for i, id := range participantIDs {
		allocs[i] = Allocation{UserID: id, AmountMinor: shares[i]}
	}
	return allocs, nil
}

// ValidateAllocations checks an explicit split set against the expense total:
// unique non-empty users, non-negative amounts and an exact sum.
func ValidateAllocations(total int64, allocs []Allocation) error {
	if total < 0 {
		return fmt.Errorf("%w: total %d is negative", ErrValidation, total)
	}
	seen := make(map[string]bool, len(allocs))
	var sum int64
	for _, a := range allocs {
		if a.UserID == "" {
			return fmt.Errorf("%w: split without user", ErrValidation)
		}
		if seen[a.UserID] {
			return fmt.Errorf("%w: duplicate split for user %s", ErrValidation, a.UserID)
		}
		seen[a.UserID] = true
		if a.AmountMinor < 0 {
			return fmt.Errorf("%w: negative amount %d for user %s", ErrValidation, a.AmountMinor, a.UserID)
		}
		var err error
		if sum, err = money.Add(sum, a.AmountMinor); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if sum != total {
		return fmt.Errorf("%w: splits sum to %d, expense total is %d", ErrValidation, sum, total)
	}
	return nil
}

// spread divides amount (>= 0) into n shares that differ by at most one unit.
func spread(amount int64, n int) []int64 {
	shares := make([]int64, n)
	base := amount / int64(n)
	remainder := amount - base*int64(n)
	for i := range shares {
		shares[i] = base
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares
}

func checkParticipants(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty participant id", ErrValidation)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate participant %s", ErrValidation, id)
		}
		seen[id] = true
	}
	return nil
}

// Share is one participant's row in a SplitSession.
type Share struct {
	UserID      string
	AmountMinor int64

	// Percentage is a display value; AmountMinor is the source of truth.
	Percentage float64

	// Locked shares are skipped by redistribution.
	Locked bool
}

// SplitSession is the working state of one split-editing session.
// Every operation returns a new session and leaves the receiver untouched.
type SplitSession struct {
	TotalMinor int64
	Mode       SplitMode
	Shares     []Share
}

// NewSession starts an even split of total across participantIDs.
func NewSession(total int64, participantIDs []string) (SplitSession, error) {
	if total < 0 {
		return SplitSession{}, fmt.Errorf("%w: total %d is negative", ErrValidation, total)
	}
	if err := checkParticipants(participantIDs); err != nil {
		return SplitSession{}, err
	}
	s := SplitSession{TotalMinor: total, Mode: ModeEven, Shares: make([]Share, len(participantIDs))}
	for i, id := range participantIDs {
		s.Shares[i].UserID = id
	}
	return s.SplitEvenly()
}

func (s SplitSession) clone() SplitSession {
	c := s
	c.Shares = make([]Share, len(s.Shares))
	copy(c.Shares, s.Shares)
	return c
}

func (s SplitSession) index(userID string) int {
	for i, sh := range s.Shares {
		if sh.UserID == userID {
			return i
		}
	}
	return -1
}

func (s SplitSession) mustIndex(userID string) (int, error) {
	i := s.index(userID)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s is not a participant", ErrValidation, userID)
	}
	return i, nil
}

// ParticipantIDs returns the participants in session order.
func (s SplitSession) ParticipantIDs() []string {
	ids := make([]string, len(s.Shares))
	for i, sh := range s.Shares {
		ids[i] = sh.UserID
	}
	return ids
}

// Allocations returns the current amounts in session order.
func (s SplitSession) Allocations() []Allocation {
	allocs := make([]Allocation, len(s.Shares))
	for i, sh := range s.Shares {
		allocs[i] = Allocation{UserID: sh.UserID, AmountMinor: sh.AmountMinor}
	}
	return allocs
}

// Unassigned is the part of the total not allocated to anyone. It is
// non-zero when every share is locked and the locked amounts do not cover
// the total, or when shares were edited without a redistribution since.
func (s SplitSession) Unassigned() (int64, error) {
	assigned, err := s.assigned()
	if err != nil {
		return 0, err
	}
	return s.TotalMinor - assigned, nil
}

func (s SplitSession) assigned() (int64, error) {
	amounts := make([]int64, len(s.Shares))
	for i, sh := range s.Shares {
		amounts[i] = sh.AmountMinor
	}
	sum, err := money.Sum(amounts...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return sum, nil
}

// Validate reports whether the session can be committed as a split set.
func (s SplitSession) Validate() error {
	return ValidateAllocations(s.TotalMinor, s.Allocations())
}

// WellFormed checks a session received from outside: a known mode, a
// non-negative total, unique participants, shares within [0, total],
// percentages within [0, 100] and a share sum that fits in an int64.
// Unlike Validate it does not require the shares to add up.
func (s SplitSession) WellFormed() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: unknown split mode %q", ErrValidation, s.Mode)
	}
	if s.TotalMinor < 0 {
		return fmt.Errorf("%w: total %d is negative", ErrValidation, s.TotalMinor)
	}
	if err := checkParticipants(s.ParticipantIDs()); err != nil {
		return err
	}
	for _, sh := range s.Shares {
		if sh.AmountMinor < 0 || sh.AmountMinor > s.TotalMinor {
			return fmt.Errorf("%w: share %d for %s outside [0, %d]", ErrValidation, sh.AmountMinor, sh.UserID, s.TotalMinor)
		}
		if !validPercentage(sh.Percentage) {
			return fmt.Errorf("%w: percentage %v for %s outside [0, 100]", ErrValidation, sh.Percentage, sh.UserID)
		}
	}
	_, err := s.assigned()
	return err
}

func validPercentage(pct float64) bool {
	return !math.IsNaN(pct) && pct >= 0 && pct <= 100
}

// SplitEvenly resets every share to an even split and clears all locks.
func (s SplitSession) SplitEvenly() (SplitSession, error) {
	allocs, err := SplitEvenly(s.TotalMinor, s.ParticipantIDs())
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Mode = ModeEven
	for i, a := range allocs {
		next.Shares[i] = Share{
			UserID:      a.UserID,
			AmountMinor: a.AmountMinor,
			Percentage:  percentOf(a.AmountMinor, s.TotalMinor),
		}
	}
	return next, nil
}

// SetFixedAmount pins userID's share to amount and locks it.
func (s SplitSession) SetFixedAmount(userID string, amount int64) (SplitSession, error) {
	i, err := s.mustIndex(userID)
	if err != nil {
		return s, err
	}
	if amount < 0 || amount > s.TotalMinor {
		return s, fmt.Errorf("%w: amount %d outside [0, %d]", ErrValidation, amount, s.TotalMinor)
	}
	next := s.clone()
	next.Mode = ModeFixed
	next.Shares[i].AmountMinor = amount
	next.Shares[i].Percentage = percentOf(amount, s.TotalMinor)
	next.Shares[i].Locked = true
	return next, nil
}

// RedistributeUnlocked spreads whatever the locked shares leave over the
// unlocked ones. editedUserID, if it is still unlocked, is served last so
// the leftover units land on the other participants first.
// With no unlocked shares it is a no-op and the remainder stays unassigned.
func (s SplitSession) RedistributeUnlocked(editedUserID string) (SplitSession, error) {
	lockedTotal, err := s.lockedAmount()
	if err != nil {
		return s, err
	}
	order := s.unlockedOrder(editedUserID)
	if len(order) == 0 {
		return s.clone(), nil
	}
	remaining := s.TotalMinor - lockedTotal
	if remaining < 0 {
		return s, fmt.Errorf("%w: locked shares %d exceed total %d", ErrValidation, lockedTotal, s.TotalMinor)
	}

	next := s.clone()
	for k, amount := range spread(remaining, len(order)) {
		i := order[k]
		next.Shares[i].AmountMinor = amount
		next.Shares[i].Percentage = percentOf(amount, s.TotalMinor)
	}
	return next, nil
}

// SetPercentage pins userID's share to pct of the total and locks it.
func (s SplitSession) SetPercentage(userID string, pct float64) (SplitSession, error) {
	i, err := s.mustIndex(userID)
	if err != nil {
		return s, err
	}
	if !validPercentage(pct) {
		return s, fmt.Errorf("%w: percentage %v outside [0, 100]", ErrValidation, pct)
	}
	next := s.clone()
	next.Mode = ModePercentage
	next.Shares[i].Percentage = pct
	next.Shares[i].AmountMinor = amountFor(s.TotalMinor, pct)
	next.Shares[i].Locked = true
	return next, nil
}

// RedistributePercentages gives every unlocked share an equal part of what the
// locked percentages leave. Percentages are not corrected to reach exactly
// 100; the rounding drift on the derived amounts is absorbed by the unlocked
// shares (editedUserID last) so the amounts still sum to the total. Locked
// amounts that round to more than the total are rejected.
func (s SplitSession) RedistributePercentages(editedUserID string) (SplitSession, error) {
	var lockedPct float64
	for _, sh := range s.Shares {
		if sh.Locked {
			lockedPct += sh.Percentage
		}
	}
	order := s.unlockedOrder(editedUserID)
	if len(order) == 0 {
		return s.clone(), nil
	}
	remainingPct := 100 - lockedPct
	if remainingPct < -1e-9 {
		return s, fmt.Errorf("%w: locked percentages add up to %v", ErrValidation, lockedPct)
	}
	if remainingPct < 0 {
		remainingPct = 0
	}
	lockedTotal, err := s.lockedAmount()
	if err != nil {
		return s, err
	}
	if lockedTotal > s.TotalMinor {
		return s, fmt.Errorf("%w: locked shares %d exceed total %d", ErrValidation, lockedTotal, s.TotalMinor)
	}

	next := s.clone()
	per := remainingPct / float64(len(order))
	for _, i := range order {
		next.Shares[i].Percentage = per
		next.Shares[i].AmountMinor = amountFor(s.TotalMinor, per)
	}
	residual, err := next.Unassigned()
	if err != nil {
		return s, err
	}
	next.absorb(residual, order)
	return next, nil
}

// AddParticipant appends userID with a zero, unlocked share.
// Nothing is redistributed.
func (s SplitSession) AddParticipant(userID string) (SplitSession, error) {
	if userID == "" {
		return s, fmt.Errorf("%w: empty participant id", ErrValidation)
	}
	if s.index(userID) >= 0 {
		return s, fmt.Errorf("%w: %s is already a participant", ErrValidation, userID)
	}
	next := s.clone()
	next.Shares = append(next.Shares, Share{UserID: userID})
	return next, nil
}

// RemoveParticipant drops userID and its lock. Nothing is redistributed.
func (s SplitSession) RemoveParticipant(userID string) (SplitSession, error) {
	i, err := s.mustIndex(userID)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Shares = append(next.Shares[:i], next.Shares[i+1:]...)
	return next, nil
}

// ToggleLock flips userID's lock.
func (s SplitSession) ToggleLock(userID string) (SplitSession, error) {
	i, err := s.mustIndex(userID)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Shares[i].Locked = !next.Shares[i].Locked
	return next, nil
}

func (s SplitSession) lockedAmount() (int64, error) {
	var total int64
	for _, sh := range s.Shares {
		if !sh.Locked {
			continue
		}
		var err error
		if total, err = money.Add(total, sh.AmountMinor); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	return total, nil
}

// unlockedOrder lists unlocked share indexes in session order with
// editedUserID moved to the end.
func (s SplitSession) unlockedOrder(editedUserID string) []int {
	var order []int
	edited := -1
	for i, sh := range s.Shares {
		if sh.Locked {
			continue
		}
		if editedUserID != "" && sh.UserID == editedUserID {
			edited = i
			continue
		}
		order = append(order, i)
	}
	if edited >= 0 {
		order = append(order, edited)
	}
	return order
}

// absorb moves residual units onto the shares at idx as if handing them out
// one unit per share per pass in idx order, never taking a share below zero.
// The passes are computed in bulk, so the cost does not depend on residual.
func (s *SplitSession) absorb(residual int64, idx []int) {
	if len(idx) == 0 {
		return
	}
	if residual > 0 {
		for k, extra := range spread(residual, len(idx)) {
			s.Shares[idx[k]].AmountMinor += extra
		}
		return
	}
	for need := -residual; need > 0; {
		var live []int
		smallest := int64(math.MaxInt64)
		for _, i := range idx {
			if amount := s.Shares[i].AmountMinor; amount > 0 {
				live = append(live, i)
				smallest = min(smallest, amount)
			}
		}
		if len(live) == 0 {
			return
		}
		n := int64(len(live))
		if need/n >= smallest {
			// Whole passes until the smallest share runs dry.
			for _, i := range live {
				s.Shares[i].AmountMinor -= smallest
			}
			need -= smallest * n
			continue
		}
		for k, take := range spread(need, len(live)) {
			s.Shares[live[k]].AmountMinor -= take
		}
		return
	}
}

func percentOf(amount, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(amount) / float64(total) * 100
}

func amountFor(total int64, pct float64) int64 {
	return int64(math.Round(float64(total) * pct / 100))
}

// EditKind names an allocator edit event.
type EditKind string

const (
	EditSetEven       EditKind = "set-even"
	EditSetAmount     EditKind = "set-amount"
	EditSetPercentage EditKind = "set-percentage"
	EditToggleLock    EditKind = "toggle-lock"
	EditAdd           EditKind = "add"
	EditRemove        EditKind = "remove"

	// EditRedistribute is the blur/finalize step after an amount or
	// percentage edit; it dispatches on the session mode.
	EditRedistribute EditKind = "redistribute"
)

// EditEvent is one operator action applied to a SplitSession.
type EditEvent struct {
	Kind        EditKind
	UserID      string
	AmountMinor int64
	Percentage  float64
}

// Apply runs ev against the session.
func (s SplitSession) Apply(ev EditEvent) (SplitSession, error) {
	switch ev.Kind {
	case EditSetEven:
		return s.SplitEvenly()
	case EditSetAmount:
		return s.SetFixedAmount(ev.UserID, ev.AmountMinor)
	case EditSetPercentage:
		return s.SetPercentage(ev.UserID, ev.Percentage)
	case EditToggleLock:
		return s.ToggleLock(ev.UserID)
	case EditAdd:
		return s.AddParticipant(ev.UserID)
	case EditRemove:
		return s.RemoveParticipant(ev.UserID)
	case EditRedistribute:
		if s.Mode == ModePercentage {
			return s.RedistributePercentages(ev.UserID)
		}
		return s.RedistributeUnlocked(ev.UserID)
	default:
		return s, fmt.Errorf("%w: unknown edit %q", ErrValidation, ev.Kind)
	}
}
