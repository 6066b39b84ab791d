package nonabank_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nonabank/nonabank"
	"github.com/nonabank/nonabank/mocks"
)

func newService(tt *testing.T) nonabank.Service {
	tt.Helper()
	nooplog := zerolog.Nop()
	store := newStore(tt)
	return nonabank.NewService(newBank(tt), nonabank.NewUserDirectory(store), store, &nooplog)
}

func savingsReq(username string) nonabank.RegisterReq {
	return nonabank.RegisterReq{
		Username: username,
		Password: "pass123",
		Account: nonabank.OpenAccountReq{
			Kind:           nonabank.Savings,
			Holder:         "John Mensah",
			InitialDeposit: dec("500"),
		},
	}
}

func TestServiceRegisterAndLogin(t *testing.T) {
	t.Run("register binds credentials to a fresh account", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		svc := newService(tt)

		acct, ok, err := svc.Register(savingsReq("john"))
		reqrd.Nil(err)
		reqrd.True(ok)
		as.True(acct.Balance().Equal(dec("500")))

		sess, err := svc.Login("john", "pass123")
		reqrd.Nil(err)
		as.Equal(acct.Number(), sess.AccountNumber)
		as.NotEmpty(sess.Token)
	})

	t.Run("login with a wrong password returns invalid credentials", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		svc := newService(tt)
		_, ok, err := svc.Register(savingsReq("john"))
		reqrd.Nil(err)
		reqrd.True(ok)

		_, err = svc.Login("john", "wrong")
		as.ErrorIs(err, nonabank.ErrInvalidCredentials)
	})

	t.Run("a duplicate username is declined and does not overwrite", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		svc := newService(tt)

		first, ok, err := svc.Register(savingsReq("john"))
		reqrd.Nil(err)
		reqrd.True(ok)

		dup := savingsReq("john")
		dup.Password = "other"
		_, ok, err = svc.Register(dup)
		reqrd.Nil(err)
		as.False(ok)

		sess, err := svc.Login("john", "pass123")
		reqrd.Nil(err)
		as.Equal(first.Number(), sess.AccountNumber)
	})

	t.Run("racing registrations of one username create one account", func(tt *testing.T) {
		as := assert.New(tt)
		nooplog := zerolog.Nop()
		store := newStore(tt)
		bank := newBank(tt)
		svc := nonabank.NewService(bank, nonabank.NewUserDirectory(store), store, &nooplog)

		const racers = 8
		results := make(chan bool, racers)
		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok, err := svc.Register(savingsReq("john"))
				results <- ok && err == nil
			}()
		}
		wg.Wait()
		close(results)

		wins := 0
		for won := range results {
			if won {
				wins++
			}
		}
		as.Equal(1, wins)
		as.Len(bank.Accounts(), 1)
	})

	t.Run("a failed account open registers no user", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		svc := newService(tt)

		bad := savingsReq("john")
		bad.Account.InitialDeposit = dec("50")
		_, _, err := svc.Register(bad)
		var ib nonabank.ErrInvalidInitialBalance
		as.ErrorAs(err, &ib)

		// username is still free
		_, ok, err := svc.Register(savingsReq("john"))
		reqrd.Nil(err)
		as.True(ok)
	})
}

func TestServiceAuthorize(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	svc := newService(t)

	acct, ok, err := svc.Register(savingsReq("john"))
	reqrd.Nil(err)
	reqrd.True(ok)
	sess, err := svc.Login("john", "pass123")
	reqrd.Nil(err)

	as.Nil(svc.Authorize(sess.Token, acct.Number()))
	as.ErrorIs(svc.Authorize(sess.Token, "NONA0000"), nonabank.ErrUnknownSession)
	as.ErrorIs(svc.Authorize("bogus", acct.Number()), nonabank.ErrUnknownSession)
}

func TestServicePersistsHistory(t *testing.T) {
	t.Run("open and deposit each snapshot the history", func(tt *testing.T) {
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		store := mocks.NewMockStore(ctrl)
		nooplog := zerolog.Nop()

		store.EXPECT().LoadUsers().Return(nil)
		store.EXPECT().SaveUsers(gomock.Any()).AnyTimes()
		gomock.InOrder(
			store.EXPECT().SaveTransactions(gomock.Any(), gomock.Len(1)),
			store.EXPECT().SaveTransactions(gomock.Any(), gomock.Len(2)),
		)

		svc := nonabank.NewService(newBank(tt), nonabank.NewUserDirectory(store), store, &nooplog)
		acct, ok, err := svc.Register(savingsReq("john"))
		reqrd.Nil(err)
		reqrd.True(ok)

		bal, err := svc.Deposit(nonabank.ChargeReq{AccountNumber: acct.Number(), Amount: dec("100")})
		reqrd.Nil(err)
		reqrd.True(bal.Equal(dec("600")))
	})

	t.Run("a declined withdrawal snapshots nothing", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		store := mocks.NewMockStore(ctrl)
		nooplog := zerolog.Nop()

		store.EXPECT().LoadUsers().Return(nil)
		store.EXPECT().SaveUsers(gomock.Any()).AnyTimes()
		// only the account-open snapshot
		store.EXPECT().SaveTransactions(gomock.Any(), gomock.Len(1)).Times(1)

		svc := nonabank.NewService(newBank(tt), nonabank.NewUserDirectory(store), store, &nooplog)
		acct, ok, err := svc.Register(savingsReq("john"))
		reqrd.Nil(err)
		reqrd.True(ok)

		ok, bal, err := svc.Withdraw(nonabank.ChargeReq{AccountNumber: acct.Number(), Amount: dec("400.01")})
		reqrd.Nil(err)
		as.False(ok)
		as.True(bal.Equal(dec("500")))
	})
}

func TestServiceHistory(t *testing.T) {
	t.Run("serves the live history for registered accounts", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		svc := newService(tt)
		acct, ok, err := svc.Register(savingsReq("john"))
		reqrd.Nil(err)
		reqrd.True(ok)

		history, err := svc.History(acct.Number())
		reqrd.Nil(err)
		reqrd.Len(history, 1)
		as.Equal("Account opened", history[0].Description())
	})

	t.Run("falls back to stored history for accounts from a previous run", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		store := mocks.NewMockStore(ctrl)
		nooplog := zerolog.Nop()

		saved, err := nonabank.NewTransaction("Deposit", dec("200"), dec("700"))
		reqrd.Nil(err)
		store.EXPECT().LoadUsers().Return(nil)
		store.EXPECT().LoadTransactions("NONA777").Return([]nonabank.Transaction{saved})

		svc := nonabank.NewService(newBank(tt), nonabank.NewUserDirectory(store), store, &nooplog)
		history, err := svc.History("NONA777")
		reqrd.Nil(err)
		reqrd.Len(history, 1)
		as.Equal("Deposit", history[0].Description())
	})

	t.Run("unknown account with no stored history is not found", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		store := mocks.NewMockStore(ctrl)
		nooplog := zerolog.Nop()

		store.EXPECT().LoadUsers().Return(nil)
		store.EXPECT().LoadTransactions("NONA777").Return(nil)

		svc := nonabank.NewService(newBank(tt), nonabank.NewUserDirectory(store), store, &nooplog)
		_, err := svc.History("NONA777")
		var nf nonabank.ErrAccountNotFound
		as.ErrorAs(err, &nf)
	})
}

func TestServiceAccrueInterest(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	svc := newService(t)

	req := savingsReq("john")
	req.Account.InitialDeposit = dec("1200")
	acct, ok, err := svc.Register(req)
	reqrd.Nil(err)
	reqrd.True(ok)

	interest, err := svc.AccrueInterest(acct.Number())
	reqrd.Nil(err)
	as.True(interest.Equal(dec("2")))

	bal, err := svc.Balance(acct.Number())
	reqrd.Nil(err)
	as.True(bal.Equal(dec("1202")))
}

func TestServiceStatement(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	svc := newService(t)

	req := nonabank.RegisterReq{
		Username: "alice",
		Password: "pass123",
		Account: nonabank.OpenAccountReq{
			Kind:           nonabank.FixedDeposit,
			Holder:         "Alice Johnson",
			InitialDeposit: dec("5000"),
			MaturityDate:   time.Now().AddDate(1, 0, 0),
		},
	}
	acct, ok, err := svc.Register(req)
	reqrd.Nil(err)
	reqrd.True(ok)

	var buf bytes.Buffer
	reqrd.Nil(svc.Statement(&buf, acct.Number()))
	as.True(bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	as.Greater(buf.Len(), 500)
}
