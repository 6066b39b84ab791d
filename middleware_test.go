package nonabank_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nonabank/nonabank"
	"github.com/nonabank/nonabank/mocks"
)

func TestValidationMiddleware(t *testing.T) {
	t.Run("rejects a register request with missing fields", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		// no EXPECT: the inner service must never be reached
		svc := nonabank.Chain(next, nonabank.NewValidationMiddleware())

		_, _, err := svc.Register(nonabank.RegisterReq{
			Password: "pass123",
			Account:  nonabank.OpenAccountReq{Kind: nonabank.Savings},
		})
		var br nonabank.ErrBadRequest
		as.ErrorAs(err, &br)
		as.Contains(br.Fields, "username")
		as.Contains(br.Fields, "holder")
	})

	t.Run("requires a maturity date for fixed deposits", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		svc := nonabank.Chain(next, nonabank.NewValidationMiddleware())

		_, err := svc.OpenAccount(nonabank.OpenAccountReq{
			Kind:           nonabank.FixedDeposit,
			Holder:         "Alice Johnson",
			InitialDeposit: dec("5000"),
		})
		var br nonabank.ErrBadRequest
		as.ErrorAs(err, &br)
		as.Contains(br.Fields, "maturityDate")
	})

	t.Run("rejects a charge without an account number", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		svc := nonabank.Chain(next, nonabank.NewValidationMiddleware())

		_, err := svc.Deposit(nonabank.ChargeReq{Amount: dec("100")})
		var br nonabank.ErrBadRequest
		as.ErrorAs(err, &br)

		_, _, err = svc.Withdraw(nonabank.ChargeReq{Amount: dec("100")})
		as.ErrorAs(err, &br)
	})

	t.Run("passes a well-formed request through", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		next.EXPECT().
			Deposit(gomock.Any()).
			Return(dec("600"), nil)
		svc := nonabank.Chain(next, nonabank.NewValidationMiddleware())

		bal, err := svc.Deposit(nonabank.ChargeReq{AccountNumber: "NONA1234", Amount: dec("100")})
		reqrd.Nil(err)
		as.True(bal.Equal(dec("600")))
	})

	t.Run("an empty token is an unknown session", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		svc := nonabank.Chain(next, nonabank.NewValidationMiddleware())

		as.ErrorIs(svc.Authorize("", "NONA1234"), nonabank.ErrUnknownSession)
	})
}

func TestLimitMiddleware(t *testing.T) {
	t.Run("sheds charges beyond the in-flight cap", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)

		started := make(chan struct{})
		block := make(chan struct{})
		next.EXPECT().
			Deposit(gomock.Any()).
			DoAndReturn(func(nonabank.ChargeReq) (decimal.Decimal, error) {
				close(started)
				<-block
				return dec("600"), nil
			})

		svc := nonabank.Chain(next, nonabank.NewLimitMiddleware(nonabank.NewServiceLimits(0, 1, 0)))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Deposit(nonabank.ChargeReq{AccountNumber: "NONA1", Amount: dec("100")})
		}()
		<-started

		// the single charge slot is held, this one times out
		_, err := svc.Deposit(nonabank.ChargeReq{AccountNumber: "NONA2", Amount: dec("100")})
		as.ErrorIs(err, nonabank.ErrOverloaded)

		close(block)
		wg.Wait()
	})

	t.Run("operation families do not share slots", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)

		started := make(chan struct{})
		block := make(chan struct{})
		next.EXPECT().
			Deposit(gomock.Any()).
			DoAndReturn(func(nonabank.ChargeReq) (decimal.Decimal, error) {
				close(started)
				<-block
				return dec("600"), nil
			})
		next.EXPECT().
			Balance("NONA1").
			Return(dec("500"), nil)

		svc := nonabank.Chain(next, nonabank.NewLimitMiddleware(nonabank.NewServiceLimits(0, 1, 1)))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Deposit(nonabank.ChargeReq{AccountNumber: "NONA1", Amount: dec("100")})
		}()
		<-started

		bal, err := svc.Balance("NONA1")
		reqrd.Nil(err)
		as.True(bal.Equal(dec("500")))

		close(block)
		wg.Wait()
	})

	t.Run("zero counts leave a family unlimited", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		next.EXPECT().
			Balance("NONA1").
			Return(dec("500"), nil).
			Times(5)

		svc := nonabank.Chain(next, nonabank.NewLimitMiddleware(nonabank.NewServiceLimits(0, 0, 0)))
		for i := 0; i < 5; i++ {
			_, err := svc.Balance("NONA1")
			as.Nil(err)
		}
	})
}

func TestCircuitBreakMiddleware(t *testing.T) {
	t.Run("repeated internal failures open the breaker", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		// gobreaker defaults trip after more than 5 consecutive failures
		next.EXPECT().
			Balance("NONA1").
			Return(decimal.Zero, nonabank.ErrInternalServer).
			Times(6)

		svc := nonabank.Chain(next, nonabank.NewCircuitBreakMiddleware(nonabank.NewServiceBreaker()))
		for i := 0; i < 6; i++ {
			_, err := svc.Balance("NONA1")
			as.ErrorIs(err, nonabank.ErrInternalServer)
		}

		_, err := svc.Balance("NONA1")
		as.ErrorIs(err, gobreaker.ErrOpenState)
	})

	t.Run("domain errors never trip the breaker", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		next.EXPECT().
			Balance("NONA0000").
			Return(decimal.Zero, nonabank.ErrAccountNotFound{Number: "NONA0000"}).
			Times(10)

		svc := nonabank.Chain(next, nonabank.NewCircuitBreakMiddleware(nonabank.NewServiceBreaker()))
		for i := 0; i < 10; i++ {
			_, err := svc.Balance("NONA0000")
			var nf nonabank.ErrAccountNotFound
			as.ErrorAs(err, &nf)
		}
	})

	t.Run("families break independently", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		next.EXPECT().
			Deposit(gomock.Any()).
			Return(decimal.Zero, nonabank.ErrInternalServer).
			Times(6)
		next.EXPECT().
			Balance("NONA1").
			Return(dec("500"), nil)

		svc := nonabank.Chain(next, nonabank.NewCircuitBreakMiddleware(nonabank.NewServiceBreaker()))
		for i := 0; i < 6; i++ {
			_, err := svc.Deposit(nonabank.ChargeReq{AccountNumber: "NONA1", Amount: dec("100")})
			as.ErrorIs(err, nonabank.ErrInternalServer)
		}
		_, err := svc.Deposit(nonabank.ChargeReq{AccountNumber: "NONA1", Amount: dec("100")})
		as.ErrorIs(err, gobreaker.ErrOpenState)

		bal, err := svc.Balance("NONA1")
		reqrd.Nil(err)
		as.True(bal.Equal(dec("500")))
	})

	t.Run("a policy decline flows through untouched", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		next := mocks.NewMockService(ctrl)
		next.EXPECT().
			Withdraw(gomock.Any()).
			Return(false, dec("500"), nil)

		svc := nonabank.Chain(next, nonabank.NewCircuitBreakMiddleware(nonabank.NewServiceBreaker()))
		ok, bal, err := svc.Withdraw(nonabank.ChargeReq{AccountNumber: "NONA1", Amount: dec("400.01")})
		reqrd.Nil(err)
		as.False(ok)
		as.True(bal.Equal(dec("500")))
	})
}
