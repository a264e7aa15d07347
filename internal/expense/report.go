package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oatsaysai/spending-in-chat/internal/models"
)

// NoSpendingMessage is returned instead of a report when there is nothing to sum.
const NoSpendingMessage = "You haven't spent anything yet this month!"

// FormatMonthlySummary renders per-category totals in declared category order,
// followed by the grand total for month.
//
// Each displayed figure is rounded on its own: the grand total is the exact sum
// rounded once, never the sum of already rounded category lines.
func FormatMonthlySummary(expenses []models.Expense, month time.Month) string {
	sums := make(map[models.Category]decimal.Decimal)
	for _, e := range expenses {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	var (
		report strings.Builder
		total  decimal.Decimal
		lines  int
	)
	for _, c := range models.Categories() {
		spent, ok := sums[c]
		if !ok || !spent.IsPositive() {
			continue
		}
		total = total.Add(spent)
		lines++
		report.WriteString(fmt.Sprintf("You've spent $%s on %s\n", FormatAmount(spent), c.Title()))
	}

	if lines == 0 {
		return NoSpendingMessage
	}
	report.WriteString(fmt.Sprintf("\nTotal for %s: $%s", month.String(), FormatAmount(total)))
	return report.String()
}
