package nonabank

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OpenAccountReq carries everything needed to open one account.
// MaturityDate is read for fixed deposits only.
type OpenAccountReq struct {
	Kind           Kind
	Holder         string
	InitialDeposit decimal.Decimal
	MaturityDate   time.Time
}

// RegisterReq opens an account and binds credentials to it in one step.
type RegisterReq struct {
	Username string
	Password string
	Account  OpenAccountReq
}

type ChargeReq struct {
	AccountNumber string
	Amount        decimal.Decimal
}

// Session is a logged-in user's borrowed handle on their account, valid for
// the process lifetime.
type Session struct {
	Token         string    `json:"token"`
	Username      string    `json:"username"`
	AccountNumber string    `json:"accountNumber"`
	IssuedAt      time.Time `json:"issuedAt"`
}

// Service is the narrow interface external collaborators (HTTP API, console
// menu) call into. Withdraw and Register keep the domain's declined-vs-error
// split: a false return is a policy decline, an error is a malformed or
// illegal request.
type Service interface {
	Register(req RegisterReq) (*Account, bool, error)
	Login(username, password string) (*Session, error)
	Authorize(token, accountNumber string) error
	OpenAccount(req OpenAccountReq) (*Account, error)
	Deposit(req ChargeReq) (decimal.Decimal, error)
	Withdraw(req ChargeReq) (bool, decimal.Decimal, error)
	Balance(accountNumber string) (decimal.Decimal, error)
	History(accountNumber string) ([]Transaction, error)
	AccrueInterest(accountNumber string) (decimal.Decimal, error)
	Statement(w io.Writer, accountNumber string) error
}

func NewService(bank *Bank, users *UserDirectory, store Store, log *zerolog.Logger) *serviceImpl {
	return &serviceImpl{
		bank:     bank,
		users:    users,
		store:    store,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

type serviceImpl struct {
	bank  *Bank
	users *UserDirectory
	store Store
	log   *zerolog.Logger

	// regMu serializes registrations so the username check and the account
	// open happen as one step; without it two racing registrations of the
	// same username could both pass the check and strand an account.
	regMu sync.Mutex

	mu       sync.Mutex
	sessions map[string]*Session
}

var (
	_ Service = (*serviceImpl)(nil)
)

// Register opens the requested account and binds the credentials to it.
// Returns false, with nothing created, when the username is already taken.
func (s *serviceImpl) Register(req RegisterReq) (*Account, bool, error) {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	if s.users.Exists(req.Username) {
		return nil, false, nil
	}
	acct, err := s.OpenAccount(req.Account)
	if err != nil {
		return nil, false, err
	}
	ok := s.users.Register(User{
		Username:      req.Username,
		Password:      req.Password,
		AccountNumber: acct.Number(),
	})
	if !ok {
		return nil, false, nil
	}
	return acct, true, nil
}

// Login checks credentials and issues a session token.
func (s *serviceImpl) Login(username, password string) (*Session, error) {
	u, ok := s.users.Login(username, password)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	sess := &Session{
		Token:         uuid.NewString(),
		Username:      u.Username,
		AccountNumber: u.AccountNumber,
		IssuedAt:      time.Now(),
	}
	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	s.log.Info().Str("username", username).Msg("user logged in")
	return sess, nil
}

// Authorize resolves the token and checks it grants access to the account.
func (s *serviceImpl) Authorize(token, accountNumber string) error {
	s.mu.Lock()
	sess, ok := s.sessions[token]
	s.mu.Unlock()
	if !ok || sess.AccountNumber != accountNumber {
		return ErrUnknownSession
	}
	return nil
}

func (s *serviceImpl) OpenAccount(req OpenAccountReq) (*Account, error) {
	var (
		acct *Account
		err  error
	)
	switch req.Kind {
	case Savings:
		acct, err = s.bank.OpenSavingsAccount(req.Holder, req.InitialDeposit)
	case Current:
		acct, err = s.bank.OpenCurrentAccount(req.Holder, req.InitialDeposit)
	case FixedDeposit:
		acct, err = s.bank.OpenFixedDepositAccount(req.Holder, req.InitialDeposit, req.MaturityDate)
	default:
		err = ErrBadRequest{Fields: map[string]string{"kind": "unknown account kind"}}
	}
	if err != nil {
		return nil, err
	}
	s.store.SaveTransactions(acct.Number(), acct.TransactionHistory())
	s.log.Info().
		Str("account", acct.Number()).
		Str("kind", acct.Kind().Slug()).
		Msg("account opened")
	return acct, nil
}

func (s *serviceImpl) Deposit(req ChargeReq) (decimal.Decimal, error) {
	acct, err := s.bank.Account(req.AccountNumber)
	if err != nil {
		return decimal.Zero, err
	}
	if err = acct.Deposit(req.Amount); err != nil {
		return decimal.Zero, err
	}
	s.store.SaveTransactions(acct.Number(), acct.TransactionHistory())
	return acct.Balance(), nil
}

func (s *serviceImpl) Withdraw(req ChargeReq) (bool, decimal.Decimal, error) {
	acct, err := s.bank.Account(req.AccountNumber)
	if err != nil {
		return false, decimal.Zero, err
	}
	ok, err := acct.Withdraw(req.Amount)
	if err != nil {
		return false, decimal.Zero, err
	}
	if ok {
		s.store.SaveTransactions(acct.Number(), acct.TransactionHistory())
	}
	return ok, acct.Balance(), nil
}

func (s *serviceImpl) Balance(accountNumber string) (decimal.Decimal, error) {
	acct, err := s.bank.Account(accountNumber)
	if err != nil {
		return decimal.Zero, err
	}
	return acct.Balance(), nil
}

// History returns the account's transaction log, newest-first. For accounts
// not registered in this run it falls back to the store, so statements from
// a previous run stay readable.
func (s *serviceImpl) History(accountNumber string) ([]Transaction, error) {
	acct, err := s.bank.Account(accountNumber)
	if err != nil {
		if saved := s.store.LoadTransactions(accountNumber); len(saved) > 0 {
			return saved, nil
		}
		return nil, err
	}
	return acct.TransactionHistory(), nil
}

func (s *serviceImpl) AccrueInterest(accountNumber string) (decimal.Decimal, error) {
	acct, err := s.bank.Account(accountNumber)
	if err != nil {
		return decimal.Zero, err
	}
	interest, err := acct.AccrueInterest()
	if err != nil {
		return decimal.Zero, err
	}
	s.store.SaveTransactions(acct.Number(), acct.TransactionHistory())
	return interest, nil
}

func (s *serviceImpl) Statement(w io.Writer, accountNumber string) error {
	acct, err := s.bank.Account(accountNumber)
	if err != nil {
		return err
	}
	return writeStatementPDF(w, s.bank.Name(), acct)
}
