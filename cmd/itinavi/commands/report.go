package commands

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
	"github.com/koyostar/ItinaviCN-sub000/internal/models"
	"github.com/koyostar/ItinaviCN-sub000/internal/money"
)

func reportCmd() *cobra.Command {
	var tripID, userID string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a trip's outstanding balances and settlements",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			trip, err := store.GetTrip(ctx, tripID)
			if err != nil {
				return err
			}
			expenses, err := store.ListTripExpenses(ctx, tripID)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(trip.Members))
			for _, m := range trip.Members {
				ids = append(ids, m.UserID)
			}
			users, err := store.GetUsersByIDs(ctx, ids)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(users))
			for id, u := range users {
				names[id] = u.DisplayName
			}
			return writeReport(cmd.OutOrStdout(), trip, expenses, names, userID)
		},
	}
	cmd.Flags().StringVar(&tripID, "trip", "", "trip ID")
	cmd.Flags().StringVar(&userID, "user", "", "only show this member's settlements")
	cmd.MarkFlagRequired("trip")
	return cmd
}

// writeReport prints the balance matrix followed by the netted settlements,
// either for every member or only for userID.
func writeReport(w io.Writer, trip *models.Trip, expenses []models.Expense, names map[string]string, userID string) error {
	name := func(id string) string {
		if n := names[id]; n != "" {
			return n
		}
		return id
	}
	currency := trip.DestinationCurrency
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Trip %s (%s), %d expenses\n\n", trip.Name, currency, len(expenses))

	matrix, err := ledger.BuildMatrix(expenses)
	if err != nil {
		return err
	}
	members := matrix.Members()
	fmt.Fprintln(tw, "DEBTOR\tCREDITOR\tAMOUNT")
	for _, debtor := range members {
		for _, creditor := range members {
			if amount := matrix.Get(debtor, creditor); amount > 0 {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name(debtor), name(creditor), money.Format(amount, currency))
			}
		}
	}

	all, err := ledger.ComputeAllSettlements(expenses)
	if err != nil {
		return err
	}
	var who []string
	if userID != "" {
		who = []string{userID}
	} else {
		for id := range all {
			who = append(who, id)
		}
		sort.Strings(who)
	}

	fmt.Fprintln(tw, "\nMEMBER\tACTION\tCOUNTERPARTY\tAMOUNT")
	for _, id := range who {
		for _, ins := range all[id] {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name(id), ins.Direction, name(ins.CounterpartyID), money.Format(ins.Amount, currency))
		}
	}
	return tw.Flush()
}
