package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/medminder/internal/adherence"
)

// Stats prints adherence statistics — overall, or for one medication when
// an argument is given — plus the data overview.
func (a *App) Stats(ctx context.Context, args []string) error {
	var medID, scope string
	if len(args) > 0 {
		med, err := a.findMedication(ctx, args[0])
		if err != nil {
			return err
		}
		medID = med.ID
		scope = med.Name
	} else {
		scope = "all medications"
	}

	stats := adherence.Calculate(a.store.Records(ctx), medID)

	fmt.Println(titleStyle.Render("Adherence — " + scope))
	fmt.Printf("  responses: %d, taken: %d, rate: %.2f%%\n",
		stats.TotalRecords, stats.TakenRecords, stats.AdherenceRate)

	if len(stats.MonthlyStats) > 0 {
		months := make([]string, 0, len(stats.MonthlyStats))
		for m := range stats.MonthlyStats {
			months = append(months, m)
		}
		sort.Strings(months)
		for _, m := range months {
			ms := stats.MonthlyStats[m]
			fmt.Printf("  %s  %d/%d  %.2f%%\n", m, ms.Taken, ms.Total, ms.AdherenceRate)
		}
	}

	if medID == "" {
		o := a.store.DataOverview(ctx)
		fmt.Println(mutedStyle.Render(fmt.Sprintf(
			"medications: %d (%d active), pending snoozes: %d, last 7 days: %d/%d (%.2f%%)",
			o.TotalMedications, o.ActiveMedications, o.PendingDelays,
			o.RecentWeek.Taken, o.RecentWeek.Total, o.RecentWeek.Rate)))
	}
	return nil
}
