package nonabank

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const accountNumberPrefix = "NONA"

// Bank owns the account registry: the only long-lived owner of Account
// values. Everything else borrows references for the duration of a session.
type Bank struct {
	mu    sync.Mutex
	name  string
	node  *snowflake.Node
	accts map[string]*Account
}

func NewBank(name string, node *snowflake.Node) *Bank {
	return &Bank{
		name:  name,
		node:  node,
		accts: make(map[string]*Account),
	}
}

func (b *Bank) Name() string {
	return b.name
}

// NextAccountNumber mints a unique account number from the bank's snowflake
// node.
func (b *Bank) NextAccountNumber() string {
	return accountNumberPrefix + b.node.Generate().String()
}

// AddAccount registers the account under its number. A duplicate number
// silently replaces the previous entry; numbers minted by this bank do not
// collide, and the overwrite behavior is deliberate.
func (b *Bank) AddAccount(a *Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accts[a.Number()] = a
}

// Account returns the registered account, or ErrAccountNotFound. A missing
// key is an expected outcome, not a failure of the registry.
func (b *Bank) Account(number string) (*Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accts[number]
	if !ok {
		return nil, ErrAccountNotFound{Number: number}
	}
	return a, nil
}

// Accounts returns a snapshot of all registered accounts in unspecified
// order.
func (b *Bank) Accounts() []*Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Account, 0, len(b.accts))
	for _, a := range b.accts {
		out = append(out, a)
	}
	return out
}

// OpenSavingsAccount mints a number, opens the account, and registers it.
func (b *Bank) OpenSavingsAccount(holder string, initial decimal.Decimal) (*Account, error) {
	a, err := NewSavingsAccount(holder, b.NextAccountNumber(), initial)
	if err != nil {
		return nil, err
	}
	b.AddAccount(a)
	return a, nil
}

func (b *Bank) OpenCurrentAccount(holder string, initial decimal.Decimal) (*Account, error) {
	a, err := NewCurrentAccount(holder, b.NextAccountNumber(), initial)
	if err != nil {
		return nil, err
	}
	b.AddAccount(a)
	return a, nil
}

func (b *Bank) OpenFixedDepositAccount(holder string, initial decimal.Decimal, maturity time.Time) (*Account, error) {
	a, err := NewFixedDepositAccount(holder, b.NextAccountNumber(), initial, maturity)
	if err != nil {
		return nil, err
	}
	b.AddAccount(a)
	return a, nil
}
