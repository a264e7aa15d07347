package expense

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/oatsaysai/spending-in-chat/internal/models"
)

// ResultKind tells how much of an expense a message described
type ResultKind int

const (
	Unrecognized ResultKind = iota
	AmountOnly
	Complete
)

func (k ResultKind) String() string {
	switch k {
	case AmountOnly:
		return "amount_only"
	case Complete:
		return "complete"
	default:
		return "unrecognized"
	}
}

// Result is the outcome of interpreting one free-text message
type Result struct {
	Kind     ResultKind
	Amount   decimal.Decimal
	Category models.Category
}

// amountRegex matches unsigned integers and decimals without thousands separators.
var amountRegex = regexp.MustCompile(`\d*\.?\d+`)

// Interpret extracts the first amount and the first category token from text.
//
// Amounts are kept at cent precision; a first match that rounds to zero makes the
// whole message Unrecognized rather than falling through to a later number.
func Interpret(text string) Result {
	match := amountRegex.FindString(text)
	if match == "" {
		return Result{Kind: Unrecognized}
	}
	amount, err := decimal.NewFromString(match)
	if err != nil {
		return Result{Kind: Unrecognized}
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return Result{Kind: Unrecognized}
	}

	for _, token := range strings.Fields(text) {
		if c, ok := models.ParseCategory(token); ok {
			return Result{Kind: Complete, Amount: amount, Category: c}
		}
	}
	return Result{Kind: AmountOnly, Amount: amount}
}

// FormatAmount renders an amount for users: whole numbers without decimals,
// everything else rounded to one decimal place.
func FormatAmount(d decimal.Decimal) string {
	return d.Round(1).String()
}
