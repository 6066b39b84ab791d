package nonabank

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the closed set of account variants.
type Kind int

const (
	Savings Kind = iota
	Current
	FixedDeposit
)

func (k Kind) String() string {
	switch k {
	case Savings:
		return "Savings Account"
	case Current:
		return "Current Account"
	case FixedDeposit:
		return "Fixed Deposit Account"
	default:
		return "Unknown Account"
	}
}

// ParseKind maps the wire/CLI spelling of a variant to its Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "savings":
		return Savings, nil
	case "current":
		return Current, nil
	case "fixed_deposit":
		return FixedDeposit, nil
	}
	return 0, ErrBadRequest{Fields: map[string]string{"kind": "must be one of savings, current, fixed_deposit"}}
}

// Slug is the inverse of ParseKind.
func (k Kind) Slug() string {
	switch k {
	case Savings:
		return "savings"
	case Current:
		return "current"
	case FixedDeposit:
		return "fixed_deposit"
	}
	return "unknown"
}

var (
	savingsMinimumBalance = decimal.NewFromInt(100)
	currentMinimumBalance = decimal.NewFromInt(200)
	currentOverdraftLimit = decimal.NewFromInt(1000)

	// annual rates, accrued monthly
	savingsInterestRate      = decimal.NewFromFloat(0.02)
	fixedDepositInterestRate = decimal.NewFromFloat(0.12)

	monthsPerYear = decimal.NewFromInt(12)
)

// Account is a bank account of one of the three variants. Balance and
// history are only ever mutated together under mu, so the head of the
// history always carries the current balance.
//
// History is kept newest-first and is append-only.
type Account struct {
	mu       sync.Mutex
	kind     Kind
	holder   string
	number   string
	balance  decimal.Decimal
	history  []Transaction
	maturity time.Time // FixedDeposit only
}

func newAccount(kind Kind, holder, number string, initial decimal.Decimal) (*Account, error) {
	fields := map[string]string{}
	if holder == "" {
		fields["holder"] = "required"
	}
	if number == "" {
		fields["accountNumber"] = "required"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}
	a := &Account{
		kind:    kind,
		holder:  holder,
		number:  number,
		balance: initial,
	}
	a.record("Account opened", initial)
	return a, nil
}

// NewSavingsAccount opens a savings account. The opening balance must be at
// least the 100.00 minimum the variant maintains for its lifetime.
func NewSavingsAccount(holder, number string, initial decimal.Decimal) (*Account, error) {
	if initial.LessThan(savingsMinimumBalance) {
		return nil, ErrInvalidInitialBalance{Kind: Savings, Minimum: savingsMinimumBalance, Got: initial}
	}
	return newAccount(Savings, holder, number, initial)
}

// NewCurrentAccount opens a current account. The opening balance must be at
// least 200.00; once open the balance may run negative down to the overdraft
// limit.
func NewCurrentAccount(holder, number string, initial decimal.Decimal) (*Account, error) {
	if initial.LessThan(currentMinimumBalance) {
		return nil, ErrInvalidInitialBalance{Kind: Current, Minimum: currentMinimumBalance, Got: initial}
	}
	return newAccount(Current, holder, number, initial)
}

// NewFixedDepositAccount opens a fixed deposit locked until maturity. There
// is no minimum beyond the deposit having to be positive.
func NewFixedDepositAccount(holder, number string, initial decimal.Decimal, maturity time.Time) (*Account, error) {
	if !initial.IsPositive() {
		return nil, ErrInvalidInitialBalance{Kind: FixedDeposit, Minimum: decimal.Zero, Got: initial}
	}
	a, err := newAccount(FixedDeposit, holder, number, initial)
	if err != nil {
		return nil, err
	}
	// maturity is a date; the clock time it was built with must not delay
	// withdrawals on the maturity day itself
	a.maturity = dateOf(maturity)
	return a, nil
}

// Deposit credits amount to the account. Fails on non-positive amounts with
// no state change; there is no upper bound.
func (a *Account) Deposit(amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deposit(amount)
}

func (a *Account) deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount{Amount: amount}
	}
	a.balance = a.balance.Add(amount)
	a.record("Deposit", amount)
	return nil
}

// Withdraw debits amount from the account subject to the variant's rules.
// Malformed or illegal requests return an error; structurally valid requests
// rejected by policy return (false, nil) with no state change. Callers must
// branch on the boolean, not only on the error.
//
// Precondition order per variant:
//
//	Savings:      invalid amount; insufficient funds; minimum-balance decline
//	Current:      invalid amount; overdraft-ceiling decline
//	FixedDeposit: premature withdrawal; invalid amount; over-balance decline
func (a *Account) Withdraw(amount decimal.Decimal) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.kind {
	case Savings:
		if !amount.IsPositive() {
			return false, ErrInvalidAmount{Amount: amount}
		}
		if amount.GreaterThan(a.balance) {
			return false, ErrInsufficientFunds{Requested: amount, Available: a.balance}
		}
		if a.balance.Sub(amount).LessThan(savingsMinimumBalance) {
			return false, nil
		}
	case Current:
		if !amount.IsPositive() {
			return false, ErrInvalidAmount{Amount: amount}
		}
		if a.balance.Sub(amount).LessThan(currentOverdraftLimit.Neg()) {
			return false, nil
		}
	case FixedDeposit:
		if now := today(); now.Before(a.maturity) {
			return false, ErrPrematureWithdrawal{
				MaturityDate:  a.maturity,
				DaysRemaining: int(a.maturity.Sub(now).Hours() / 24),
			}
		}
		if !amount.IsPositive() {
			return false, ErrInvalidAmount{Amount: amount}
		}
		if amount.GreaterThan(a.balance) {
			return false, nil
		}
	}

	a.balance = a.balance.Sub(amount)
	a.record("Withdrawal", amount.Neg())
	return true, nil
}

// InterestBearing reports whether the variant accrues interest.
func (a *Account) InterestBearing() bool {
	return a.kind == Savings || a.kind == FixedDeposit
}

// AccrueInterest credits one month of interest (balance * annual rate / 12)
// and returns the credited amount. The accrual is booked twice: once as the
// "Deposit" row the credit itself writes, and once as an "Interest Credit"
// row with the same amount and resulting balance. That mirrors the observed
// statement layout and is kept as-is.
func (a *Account) AccrueInterest() (decimal.Decimal, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var rate decimal.Decimal
	switch a.kind {
	case Savings:
		rate = savingsInterestRate
	case FixedDeposit:
		rate = fixedDepositInterestRate
	default:
		return decimal.Zero, ErrNotInterestBearing{Kind: a.kind}
	}

	interest := a.balance.Mul(rate).Div(monthsPerYear)
	if err := a.deposit(interest); err != nil {
		return decimal.Zero, err
	}
	a.record("Interest Credit", interest)
	return interest, nil
}

// record appends a transaction at the head of the history. Caller holds mu
// (or, at construction, is the only holder of the account).
func (a *Account) record(description string, amount decimal.Decimal) {
	t := Transaction{
		description:  description,
		amount:       amount,
		balanceAfter: a.balance,
		timestamp:    time.Now(),
	}
	a.history = append([]Transaction{t}, a.history...)
}

func (a *Account) Kind() Kind {
	return a.kind
}

func (a *Account) Type() string {
	return a.kind.String()
}

func (a *Account) Holder() string {
	return a.holder
}

func (a *Account) Number() string {
	return a.number
}

func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// TransactionHistory returns a defensive copy of the history, newest-first.
// The backing slice is never exposed.
func (a *Account) TransactionHistory() []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Transaction, len(a.history))
	copy(out, a.history)
	return out
}

// MinimumBalance returns the floor the variant enforces: the savings
// minimum, the (negative) current-account overdraft ceiling, or zero for
// fixed deposits.
func (a *Account) MinimumBalance() decimal.Decimal {
	switch a.kind {
	case Savings:
		return savingsMinimumBalance
	case Current:
		return currentOverdraftLimit.Neg()
	}
	return decimal.Zero
}

// OverdraftLimit returns the maximum negative balance for current accounts,
// zero for the other variants.
func (a *Account) OverdraftLimit() decimal.Decimal {
	if a.kind == Current {
		return currentOverdraftLimit
	}
	return decimal.Zero
}

// MaturityDate returns the fixed-deposit maturity date; the zero time for
// the other variants.
func (a *Account) MaturityDate() time.Time {
	return a.maturity
}

// InterestRate returns the annual rate for interest-bearing variants, zero
// otherwise.
func (a *Account) InterestRate() decimal.Decimal {
	switch a.kind {
	case Savings:
		return savingsInterestRate
	case FixedDeposit:
		return fixedDepositInterestRate
	}
	return decimal.Zero
}

// dateOf truncates an instant to its local date; maturity checks are date
// comparisons, not instant comparisons.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func today() time.Time {
	return dateOf(time.Now())
}
