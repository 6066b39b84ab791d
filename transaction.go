package nonabank

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable record of one balance-affecting event.
// Amounts are signed: positive for credits, negative for debits. The amount
// and resulting balance are accepted as given; a transaction records a fact,
// not a request, so there is no range check here.
type Transaction struct {
	description  string
	amount       decimal.Decimal
	balanceAfter decimal.Decimal
	timestamp    time.Time
}

func NewTransaction(description string, amount, balanceAfter decimal.Decimal) (Transaction, error) {
	if description == "" {
		return Transaction{}, ErrEmptyDescription
	}
	return Transaction{
		description:  description,
		amount:       amount,
		balanceAfter: balanceAfter,
		timestamp:    time.Now(),
	}, nil
}

func (t Transaction) Description() string {
	return t.description
}

func (t Transaction) Amount() decimal.Decimal {
	return t.amount
}

func (t Transaction) BalanceAfter() decimal.Decimal {
	return t.balanceAfter
}

func (t Transaction) Timestamp() time.Time {
	return t.timestamp
}

func (t Transaction) String() string {
	return fmt.Sprintf("[%s] %s: %s | Balance: %s",
		t.timestamp.Format("02-01-2006 15:04:05"),
		t.description,
		FormatCurrency(t.amount),
		FormatCurrency(t.balanceAfter),
	)
}

// FormatCurrency renders a monetary value as Ghanaian cedi with two decimal
// places, e.g. "GH₵100.50".
func FormatCurrency(v decimal.Decimal) string {
	return "GH₵" + v.StringFixed(2)
}
