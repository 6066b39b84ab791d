package nonabank

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
)

type Middleware func(Service) Service

//
// Request-shape validation
//

// validationMiddleware rejects structurally broken requests before they
// reach the core. Amount sign and balance rules stay in the domain; this
// layer only checks that required fields are present, so the domain's
// error taxonomy (and its declined-vs-error split) is untouched.
type validationMiddleware struct {
	next Service
}

var (
	_ Service = (*validationMiddleware)(nil)
)

func NewValidationMiddleware() Middleware {
	return func(next Service) Service {
		return &validationMiddleware{next: next}
	}
}

func (v *validationMiddleware) Register(req RegisterReq) (*Account, bool, error) {
	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "required"
	}
	if req.Password == "" {
		fields["password"] = "required"
	}
	if req.Account.Holder == "" {
		fields["holder"] = "required"
	}
	if req.Account.Kind == FixedDeposit && req.Account.MaturityDate.IsZero() {
		fields["maturityDate"] = "required for fixed deposits"
	}
	if len(fields) > 0 {
		return nil, false, ErrBadRequest{Fields: fields}
	}
	return v.next.Register(req)
}

func (v *validationMiddleware) Login(username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, ErrBadRequest{Fields: map[string]string{"credentials": "username and password required"}}
	}
	return v.next.Login(username, password)
}

func (v *validationMiddleware) Authorize(token, accountNumber string) error {
	if token == "" {
		return ErrUnknownSession
	}
	return v.next.Authorize(token, accountNumber)
}

func (v *validationMiddleware) OpenAccount(req OpenAccountReq) (*Account, error) {
	fields := map[string]string{}
	if req.Holder == "" {
		fields["holder"] = "required"
	}
	if req.Kind == FixedDeposit && req.MaturityDate.IsZero() {
		fields["maturityDate"] = "required for fixed deposits"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}
	return v.next.OpenAccount(req)
}

func (v *validationMiddleware) Deposit(req ChargeReq) (decimal.Decimal, error) {
	if req.AccountNumber == "" {
		return decimal.Zero, ErrBadRequest{Fields: map[string]string{"accountNumber": "required"}}
	}
	return v.next.Deposit(req)
}

func (v *validationMiddleware) Withdraw(req ChargeReq) (bool, decimal.Decimal, error) {
	if req.AccountNumber == "" {
		return false, decimal.Zero, ErrBadRequest{Fields: map[string]string{"accountNumber": "required"}}
	}
	return v.next.Withdraw(req)
}

func (v *validationMiddleware) Balance(accountNumber string) (decimal.Decimal, error) {
	if accountNumber == "" {
		return decimal.Zero, ErrBadRequest{Fields: map[string]string{"accountNumber": "required"}}
	}
	return v.next.Balance(accountNumber)
}

func (v *validationMiddleware) History(accountNumber string) ([]Transaction, error) {
	if accountNumber == "" {
		return nil, ErrBadRequest{Fields: map[string]string{"accountNumber": "required"}}
	}
	return v.next.History(accountNumber)
}

func (v *validationMiddleware) AccrueInterest(accountNumber string) (decimal.Decimal, error) {
	if accountNumber == "" {
		return decimal.Zero, ErrBadRequest{Fields: map[string]string{"accountNumber": "required"}}
	}
	return v.next.AccrueInterest(accountNumber)
}

func (v *validationMiddleware) Statement(w io.Writer, accountNumber string) error {
	if accountNumber == "" {
		return ErrBadRequest{Fields: map[string]string{"accountNumber": "required"}}
	}
	return v.next.Statement(w, accountNumber)
}

//
// Rate limiting
//

// limitMiddleware sheds load by capping in-flight requests per operation
// group with weighted semaphores. Acquisition waits up to acquireTimeout
// before giving up with ErrOverloaded.
type limitMiddleware struct {
	next   Service
	limits *ServiceLimits
}

var (
	_ Service = (*limitMiddleware)(nil)
)

const acquireTimeout = time.Second

// ServiceLimits groups the semaphores by operation family. A nil semaphore
// leaves that family unlimited.
type ServiceLimits struct {
	Auth   *semaphore.Weighted // Register, Login, Authorize
	Charge *semaphore.Weighted // Deposit, Withdraw, AccrueInterest
	Query  *semaphore.Weighted // Balance, History, Statement
}

// NewServiceLimits builds limits from per-family slot counts; zero or
// negative counts mean unlimited.
func NewServiceLimits(auth, charge, query int64) *ServiceLimits {
	sl := &ServiceLimits{}
	if auth > 0 {
		sl.Auth = semaphore.NewWeighted(auth)
	}
	if charge > 0 {
		sl.Charge = semaphore.NewWeighted(charge)
	}
	if query > 0 {
		sl.Query = semaphore.NewWeighted(query)
	}
	return sl
}

func NewLimitMiddleware(limits *ServiceLimits) Middleware {
	return func(next Service) Service {
		return &limitMiddleware{
			next:   next,
			limits: limits,
		}
	}
}

func acquire(sem *semaphore.Weighted) (func(), error) {
	if sem == nil {
		return func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
	defer cancel()
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, ErrOverloaded
	}
	return func() { sem.Release(1) }, nil
}

func (l *limitMiddleware) Register(req RegisterReq) (*Account, bool, error) {
	release, err := acquire(l.limits.Auth)
	if err != nil {
		return nil, false, err
	}
	defer release()
	return l.next.Register(req)
}

func (l *limitMiddleware) Login(username, password string) (*Session, error) {
	release, err := acquire(l.limits.Auth)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Login(username, password)
}

func (l *limitMiddleware) Authorize(token, accountNumber string) error {
	release, err := acquire(l.limits.Auth)
	if err != nil {
		return err
	}
	defer release()
	return l.next.Authorize(token, accountNumber)
}

func (l *limitMiddleware) OpenAccount(req OpenAccountReq) (*Account, error) {
	release, err := acquire(l.limits.Auth)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.OpenAccount(req)
}

func (l *limitMiddleware) Deposit(req ChargeReq) (decimal.Decimal, error) {
	release, err := acquire(l.limits.Charge)
	if err != nil {
		return decimal.Zero, err
	}
	defer release()
	return l.next.Deposit(req)
}

func (l *limitMiddleware) Withdraw(req ChargeReq) (bool, decimal.Decimal, error) {
	release, err := acquire(l.limits.Charge)
	if err != nil {
		return false, decimal.Zero, err
	}
	defer release()
	return l.next.Withdraw(req)
}

func (l *limitMiddleware) Balance(accountNumber string) (decimal.Decimal, error) {
	release, err := acquire(l.limits.Query)
	if err != nil {
		return decimal.Zero, err
	}
	defer release()
	return l.next.Balance(accountNumber)
}

func (l *limitMiddleware) History(accountNumber string) ([]Transaction, error) {
	release, err := acquire(l.limits.Query)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.History(accountNumber)
}

func (l *limitMiddleware) AccrueInterest(accountNumber string) (decimal.Decimal, error) {
	release, err := acquire(l.limits.Charge)
	if err != nil {
		return decimal.Zero, err
	}
	defer release()
	return l.next.AccrueInterest(accountNumber)
}

func (l *limitMiddleware) Statement(w io.Writer, accountNumber string) error {
	release, err := acquire(l.limits.Query)
	if err != nil {
		return err
	}
	defer release()
	return l.next.Statement(w, accountNumber)
}

//
// Circuit breaking
//

// circuitBreakMiddleware trips a breaker per operation family when the
// layers below keep failing outright. Domain rejections (bad amounts,
// policy declines, unknown accounts) are expected outcomes and never count
// as breaker failures; only ErrInternalServer and ErrOverloaded do.
type circuitBreakMiddleware struct {
	next  Service
	brkrs *ServiceBreaker
}

var (
	_ Service = (*circuitBreakMiddleware)(nil)
)

type ServiceBreaker struct {
	Auth   *gobreaker.CircuitBreaker[any]
	Charge *gobreaker.CircuitBreaker[any]
	Query  *gobreaker.CircuitBreaker[any]
}

func breakerSuccessful(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrInternalServer) && !errors.Is(err, ErrOverloaded)
}

func newBreaker(name string) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:         name,
		IsSuccessful: breakerSuccessful,
	})
}

func NewServiceBreaker() *ServiceBreaker {
	return &ServiceBreaker{
		Auth:   newBreaker("auth"),
		Charge: newBreaker("charge"),
		Query:  newBreaker("query"),
	}
}

func NewCircuitBreakMiddleware(brkrs *ServiceBreaker) Middleware {
	return func(next Service) Service {
		return &circuitBreakMiddleware{
			next:  next,
			brkrs: brkrs,
		}
	}
}

func (c *circuitBreakMiddleware) Register(req RegisterReq) (*Account, bool, error) {
	type out struct {
		acct *Account
		ok   bool
	}
	res, err := c.brkrs.Auth.Execute(func() (any, error) {
		acct, ok, err := c.next.Register(req)
		return out{acct: acct, ok: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	o := res.(out)
	return o.acct, o.ok, nil
}

func (c *circuitBreakMiddleware) Login(username, password string) (*Session, error) {
	res, err := c.brkrs.Auth.Execute(func() (any, error) {
		return c.next.Login(username, password)
	})
	if err != nil {
		return nil, err
	}
	return res.(*Session), nil
}

func (c *circuitBreakMiddleware) Authorize(token, accountNumber string) error {
	_, err := c.brkrs.Auth.Execute(func() (any, error) {
		return nil, c.next.Authorize(token, accountNumber)
	})
	return err
}

func (c *circuitBreakMiddleware) OpenAccount(req OpenAccountReq) (*Account, error) {
	res, err := c.brkrs.Auth.Execute(func() (any, error) {
		return c.next.OpenAccount(req)
	})
	if err != nil {
		return nil, err
	}
	return res.(*Account), nil
}

func (c *circuitBreakMiddleware) Deposit(req ChargeReq) (decimal.Decimal, error) {
	res, err := c.brkrs.Charge.Execute(func() (any, error) {
		return c.next.Deposit(req)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return res.(decimal.Decimal), nil
}

func (c *circuitBreakMiddleware) Withdraw(req ChargeReq) (bool, decimal.Decimal, error) {
	type out struct {
		ok  bool
		bal decimal.Decimal
	}
	res, err := c.brkrs.Charge.Execute(func() (any, error) {
		ok, bal, err := c.next.Withdraw(req)
		return out{ok: ok, bal: bal}, err
	})
	if err != nil {
		return false, decimal.Zero, err
	}
	o := res.(out)
	return o.ok, o.bal, nil
}

func (c *circuitBreakMiddleware) Balance(accountNumber string) (decimal.Decimal, error) {
	res, err := c.brkrs.Query.Execute(func() (any, error) {
		return c.next.Balance(accountNumber)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return res.(decimal.Decimal), nil
}

func (c *circuitBreakMiddleware) History(accountNumber string) ([]Transaction, error) {
	res, err := c.brkrs.Query.Execute(func() (any, error) {
		return c.next.History(accountNumber)
	})
	if err != nil {
		return nil, err
	}
	return res.([]Transaction), nil
}

func (c *circuitBreakMiddleware) AccrueInterest(accountNumber string) (decimal.Decimal, error) {
	res, err := c.brkrs.Charge.Execute(func() (any, error) {
		return c.next.AccrueInterest(accountNumber)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return res.(decimal.Decimal), nil
}

func (c *circuitBreakMiddleware) Statement(w io.Writer, accountNumber string) error {
	_, err := c.brkrs.Query.Execute(func() (any, error) {
		return nil, c.next.Statement(w, accountNumber)
	})
	return err
}

// Chain applies middlewares outermost-first, the order they are listed.
func Chain(svc Service, mws ...Middleware) Service {
	for i := len(mws) - 1; i >= 0; i-- {
		svc = mws[i](svc)
	}
	return svc
}
