// Package models defines the core domain records for Itinavi.
//
// # Records
//
//   - User: a registered account; trips, payers and split participants reference User IDs.
//   - Trip / TripMember: a trip and the people allowed to see or edit its ledger.
//   - Expense: one shared cost of a trip, paid (optionally) by one member.
//   - ExpenseSplit: one participant's owed share of an Expense.
//
// # Money
//
// Every amount is an int64 in minor currency units (cents for USD, yen for JPY).
// Nothing in this package or in the ledger uses floating point for money.
//
// # Design Principles
//
//  1. Plain values: no ORM tags, no pointers between records; relationships are ID strings.
//  2. Computed views (balances, settlements) live in the ledger package and are never stored.
package models
