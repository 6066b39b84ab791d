package nonabank

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInternalServer = errors.New("internal server error")

	// ErrEmptyDescription is returned by NewTransaction; every ledger row
	// must say what it was for.
	ErrEmptyDescription = errors.New("transaction description must not be empty")

	// ErrUnknownSession is returned when a session token does not resolve
	// to a logged-in user.
	ErrUnknownSession = errors.New("unknown or expired session")

	// ErrInvalidCredentials is returned by Login on a bad username or
	// password; it does not say which.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrOverloaded is returned by the limit middleware when an operation
	// cannot acquire a slot within its deadline.
	ErrOverloaded = errors.New("service overloaded")
)

type ErrBadRequest struct {
	Fields map[string]string `json:"fields"`
}

func (e ErrBadRequest) Error() string {
	return fmt.Sprintf("missing/invalid params: %v", e.Fields)
}

// ErrInvalidAmount rejects a deposit or withdrawal request with a
// non-positive amount. Raised before any state change.
type ErrInvalidAmount struct {
	Amount decimal.Decimal `json:"amount"`
}

func (e ErrInvalidAmount) Error() string {
	return fmt.Sprintf("amount must be positive, received: %s", e.Amount.StringFixed(2))
}

// ErrInvalidInitialBalance aborts account construction when the opening
// balance violates the variant's minimum. No account is created.
type ErrInvalidInitialBalance struct {
	Kind    Kind            `json:"kind"`
	Minimum decimal.Decimal `json:"minimum"`
	Got     decimal.Decimal `json:"got"`
}

func (e ErrInvalidInitialBalance) Error() string {
	return fmt.Sprintf("%s initial balance must be at least %s, received: %s",
		e.Kind, e.Minimum.StringFixed(2), e.Got.StringFixed(2))
}

// ErrInsufficientFunds is raised only by savings withdrawals whose amount
// exceeds the current balance. Distinct from the declined-by-policy case,
// which is a false return, not an error.
type ErrInsufficientFunds struct {
	Requested decimal.Decimal `json:"requested"`
	Available decimal.Decimal `json:"available"`
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds. requested: %s, available: %s",
		e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

// ErrPrematureWithdrawal is raised by fixed-deposit withdrawals attempted
// before the maturity date, regardless of the amount.
type ErrPrematureWithdrawal struct {
	MaturityDate  time.Time `json:"maturityDate"`
	DaysRemaining int       `json:"daysRemaining"`
}

func (e ErrPrematureWithdrawal) Error() string {
	return fmt.Sprintf("withdrawal blocked! %d days remaining until maturity (due: %s)",
		e.DaysRemaining, e.MaturityDate.Format("2006-01-02"))
}

type ErrAccountNotFound struct {
	Number string `json:"accountNumber"`
}

func (e ErrAccountNotFound) Error() string {
	return fmt.Sprintf("account %s not found", e.Number)
}

// ErrNotInterestBearing is returned when interest accrual is requested on a
// variant without the capability (current accounts).
type ErrNotInterestBearing struct {
	Kind Kind `json:"kind"`
}

func (e ErrNotInterestBearing) Error() string {
	return fmt.Sprintf("%s does not accrue interest", e.Kind)
}
