package nonabank_test

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonabank/nonabank"
)

func newBank(tt *testing.T) *nonabank.Bank {
	tt.Helper()
	node, err := snowflake.NewNode(1)
	require.New(tt).Nil(err)
	return nonabank.NewBank("NONA BANK", node)
}

func TestBankRegistry(t *testing.T) {
	t.Run("returns not found for an unknown number", func(tt *testing.T) {
		as := assert.New(tt)
		bank := newBank(tt)
		_, err := bank.Account("NONA0000")
		var nf nonabank.ErrAccountNotFound
		as.ErrorAs(err, &nf)
		as.Equal("NONA0000", nf.Number)
	})

	t.Run("stores and retrieves by account number", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		bank := newBank(tt)
		acct, err := nonabank.NewSavingsAccount("Patrick", "NONA1234", dec("500"))
		reqrd.Nil(err)
		bank.AddAccount(acct)

		got, err := bank.Account("NONA1234")
		reqrd.Nil(err)
		as.Same(acct, got)
	})

	t.Run("a duplicate number silently replaces the previous entry", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		bank := newBank(tt)
		first, err := nonabank.NewSavingsAccount("Patrick", "NONA1234", dec("500"))
		reqrd.Nil(err)
		second, err := nonabank.NewCurrentAccount("Nancy", "NONA1234", dec("300"))
		reqrd.Nil(err)

		bank.AddAccount(first)
		bank.AddAccount(second)

		got, err := bank.Account("NONA1234")
		reqrd.Nil(err)
		as.Same(second, got)
		as.Len(bank.Accounts(), 1)
	})

	t.Run("accounts snapshot covers every registered account", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		bank := newBank(tt)
		for _, holder := range []string{"a", "b", "c"} {
			_, err := bank.OpenSavingsAccount(holder, dec("100"))
			reqrd.Nil(err)
		}
		as.Len(bank.Accounts(), 3)
	})
}

func TestBankOpenAccounts(t *testing.T) {
	t.Run("mints unique prefixed account numbers", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		bank := newBank(tt)

		seen := map[string]bool{}
		for i := 0; i < 10; i++ {
			acct, err := bank.OpenSavingsAccount("Patrick", dec("100"))
			reqrd.Nil(err)
			as.True(strings.HasPrefix(acct.Number(), "NONA"))
			as.False(seen[acct.Number()], "duplicate account number %s", acct.Number())
			seen[acct.Number()] = true
		}
	})

	t.Run("constructor failures register nothing", func(tt *testing.T) {
		as := assert.New(tt)
		bank := newBank(tt)
		_, err := bank.OpenCurrentAccount("Nancy", dec("199.99"))
		as.NotNil(err)
		as.Empty(bank.Accounts())
	})

	t.Run("opens all three variants", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		bank := newBank(tt)

		sav, err := bank.OpenSavingsAccount("Patrick", dec("500"))
		reqrd.Nil(err)
		cur, err := bank.OpenCurrentAccount("Nancy", dec("1000"))
		reqrd.Nil(err)
		fd, err := bank.OpenFixedDepositAccount("Alice Johnson", dec("5000"), time.Now().AddDate(1, 0, 0))
		reqrd.Nil(err)

		as.Equal(nonabank.Savings, sav.Kind())
		as.Equal(nonabank.Current, cur.Kind())
		as.Equal(nonabank.FixedDeposit, fd.Kind())
		as.Len(bank.Accounts(), 3)
	})
}
