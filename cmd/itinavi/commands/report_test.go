package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/koyostar/ItinaviCN-sub000/internal/models"
)

func TestWriteReport(t *testing.T) {
	trip := &models.Trip{ID: "t1", Name: "Chengdu", DestinationCurrency: "CNY"}
	expenses := []models.Expense{
		{
			ID: "e1", TripID: "t1", AmountTotalMinor: 900, CurrencyCode: "CNY", PaidByUserID: "alice",
			Splits: []models.ExpenseSplit{
				{ExpenseID: "e1", UserID: "alice", AmountOwedMinor: 300},
				{ExpenseID: "e1", UserID: "bob", AmountOwedMinor: 300},
				{ExpenseID: "e1", UserID: "carol", AmountOwedMinor: 300},
			},
		},
		{
			ID: "e2", TripID: "t1", AmountTotalMinor: 300, CurrencyCode: "CNY", PaidByUserID: "bob",
			Splits: []models.ExpenseSplit{
				{ExpenseID: "e2", UserID: "alice", AmountOwedMinor: 150},
				{ExpenseID: "e2", UserID: "bob", AmountOwedMinor: 150},
			},
		},
	}
	names := map[string]string{"alice": "Alice", "bob": "Bob"}

	tests := []struct {
		name    string
		userID  string
		want    []string
		notWant []string
	}{
		{
			name:   "all members",
			userID: "",
			want: []string{
				"Trip Chengdu (CNY), 2 expenses",
				"Bob Alice 3.00 CNY",
				"Alice Bob 1.50 CNY",
				"carol Alice 3.00 CNY",
				"Alice receive Bob",
				"Bob pay Alice",
			},
		},
		{
			name:    "one member",
			userID:  "bob",
			want:    []string{"Bob pay Alice 1.50 CNY"},
			notWant: []string{"receive"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeReport(&buf, trip, expenses, names, tt.userID); err != nil {
				t.Fatalf("writeReport failed: %v", err)
			}
			out := buf.String()
			flat := strings.Join(strings.Fields(out), " ")
			for _, s := range tt.want {
				if !strings.Contains(flat, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}
}
