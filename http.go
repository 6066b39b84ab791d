package nonabank

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

type registerJSONReq struct {
	Username       string          `json:"username"`
	Password       string          `json:"password"`
	Kind           string          `json:"kind"`
	Holder         string          `json:"holder"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
	MaturityDate   string          `json:"maturityDate,omitempty"`
}

type openAccountJSONReq struct {
	Kind           string          `json:"kind"`
	Holder         string          `json:"holder"`
	InitialDeposit decimal.Decimal `json:"initialDeposit"`
	MaturityDate   string          `json:"maturityDate,omitempty"`
}

type loginJSONReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type chargeJSONReq struct {
	Amount decimal.Decimal `json:"amount"`
}

type accountJSONResp struct {
	AccountNumber string          `json:"accountNumber"`
	Holder        string          `json:"holder"`
	Kind          string          `json:"kind"`
	Balance       decimal.Decimal `json:"balance"`
	MaturityDate  string          `json:"maturityDate,omitempty"`
}

type balanceJSONResp struct {
	Balance decimal.Decimal `json:"balance"`
}

type withdrawJSONResp struct {
	OK      bool            `json:"ok"`
	Balance decimal.Decimal `json:"balance"`
}

type interestJSONResp struct {
	Interest decimal.Decimal `json:"interest"`
	Balance  decimal.Decimal `json:"balance"`
}

type transactionJSONResp struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Timestamp    time.Time       `json:"timestamp"`
	Display      string          `json:"display"`
}

func NewHTTPHandler(svc Service, log *zerolog.Logger) http.Handler {
	hndlr := &httpHandler{
		Svc: svc,
		Log: log,
	}
	mux := chi.NewMux()
	mux.NotFound(HTTPNotFound)
	mux.Route("/users", func(r chi.Router) {
		r.Post("/register", hndlr.Register)
		r.Post("/login", hndlr.Login)
	})
	mux.Route("/accounts", func(r chi.Router) {
		r.Post("/", hndlr.OpenAccount)
		r.Route("/{acctNo}", func(rr chi.Router) {
			rr.Post("/deposit", hndlr.Deposit)
			rr.Post("/withdraw", hndlr.Withdraw)
			rr.Post("/interest", hndlr.AccrueInterest)
			rr.Get("/balance", hndlr.Balance)
			rr.Get("/history", hndlr.History)
			rr.Get("/statement", hndlr.Statement)
		})
	})

	return mux
}

type httpHandler struct {
	Svc Service
	Log *zerolog.Logger
}

func accountResp(acct *Account) accountJSONResp {
	resp := accountJSONResp{
		AccountNumber: acct.Number(),
		Holder:        acct.Holder(),
		Kind:          acct.Kind().Slug(),
		Balance:       acct.Balance(),
	}
	if acct.Kind() == FixedDeposit {
		resp.MaturityDate = acct.MaturityDate().Format("2006-01-02")
	}
	return resp
}

func parseOpenAccountReq(kind, holder, maturity string, initial decimal.Decimal) (OpenAccountReq, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return OpenAccountReq{}, err
	}
	req := OpenAccountReq{
		Kind:           k,
		Holder:         holder,
		InitialDeposit: initial,
	}
	if k == FixedDeposit {
		md, err := time.ParseInLocation("2006-01-02", maturity, time.Local)
		if err != nil {
			return OpenAccountReq{}, ErrBadRequest{Fields: map[string]string{"maturityDate": "must be YYYY-MM-DD"}}
		}
		req.MaturityDate = md
	}
	return req, nil
}

func (h *httpHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerJSONReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Log.Err(err).Str("method", "register").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	acctReq, err := parseOpenAccountReq(body.Kind, body.Holder, body.MaturityDate, body.InitialDeposit)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	acct, ok, err := h.Svc.Register(RegisterReq{
		Username: body.Username,
		Password: body.Password,
		Account:  acctReq,
	})
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "username already taken"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(accountResp(acct)); err != nil {
		h.Log.Err(err).Str("method", "register").Msg("error encoding response")
	}
}

func (h *httpHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginJSONReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Log.Err(err).Str("method", "login").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	sess, err := h.Svc.Login(body.Username, body.Password)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(sess); err != nil {
		h.Log.Err(err).Str("method", "login").Msg("error encoding response")
	}
}

func (h *httpHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var body openAccountJSONReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Log.Err(err).Str("method", "open_account").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	acctReq, err := parseOpenAccountReq(body.Kind, body.Holder, body.MaturityDate, body.InitialDeposit)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	acct, err := h.Svc.OpenAccount(acctReq)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(accountResp(acct)); err != nil {
		h.Log.Err(err).Str("method", "open_account").Msg("error encoding response")
	}
}

// authorize checks the bearer token against the account in the path.
func (h *httpHandler) authorize(r *http.Request) (string, error) {
	acctNo := chi.URLParam(r, "acctNo")
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.Svc.Authorize(token, acctNo); err != nil {
		return "", err
	}
	return acctNo, nil
}

func (h *httpHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	acctNo, err := h.authorize(r)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	var body chargeJSONReq
	if err = json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Log.Err(err).Str("method", "deposit").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	bal, err := h.Svc.Deposit(ChargeReq{AccountNumber: acctNo, Amount: body.Amount})
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(balanceJSONResp{Balance: bal}); err != nil {
		h.Log.Err(err).Str("method", "deposit").Msg("error encoding response")
	}
}

// Withdraw reports a policy decline as a 200 with ok=false; only malformed
// or illegal requests become HTTP errors.
func (h *httpHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	acctNo, err := h.authorize(r)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	var body chargeJSONReq
	if err = json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.Log.Err(err).Str("method", "withdraw").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	ok, bal, err := h.Svc.Withdraw(ChargeReq{AccountNumber: acctNo, Amount: body.Amount})
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(withdrawJSONResp{OK: ok, Balance: bal}); err != nil {
		h.Log.Err(err).Str("method", "withdraw").Msg("error encoding response")
	}
}

func (h *httpHandler) AccrueInterest(w http.ResponseWriter, r *http.Request) {
	acctNo, err := h.authorize(r)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	interest, err := h.Svc.AccrueInterest(acctNo)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	bal, err := h.Svc.Balance(acctNo)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(interestJSONResp{Interest: interest, Balance: bal}); err != nil {
		h.Log.Err(err).Str("method", "interest").Msg("error encoding response")
	}
}

func (h *httpHandler) Balance(w http.ResponseWriter, r *http.Request) {
	acctNo, err := h.authorize(r)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	bal, err := h.Svc.Balance(acctNo)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(balanceJSONResp{Balance: bal}); err != nil {
		h.Log.Err(err).Str("method", "balance").Msg("error encoding response")
	}
}

func (h *httpHandler) History(w http.ResponseWriter, r *http.Request) {
	acctNo, err := h.authorize(r)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	history, err := h.Svc.History(acctNo)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}

	rows := make([]transactionJSONResp, 0, len(history))
	for _, t := range history {
		rows = append(rows, transactionJSONResp{
			Description:  t.Description(),
			Amount:       t.Amount(),
			BalanceAfter: t.BalanceAfter(),
			Timestamp:    t.Timestamp(),
			Display:      t.String(),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(rows); err != nil {
		h.Log.Err(err).Str("method", "history").Msg("error encoding response")
	}
}

// Statement renders into a buffer first so a failed render can still answer
// with the mapped error status instead of a 200 with a broken body.
func (h *httpHandler) Statement(w http.ResponseWriter, r *http.Request) {
	acctNo, err := h.authorize(r)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	var buf bytes.Buffer
	if err = h.Svc.Statement(&buf, acctNo); err != nil {
		h.Log.Err(err).Str("method", "statement").Msg("error writing statement")
		WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	if _, err = w.Write(buf.Bytes()); err != nil {
		h.Log.Err(err).Str("method", "statement").Msg("error sending statement")
	}
}

func WriteHTTPError(w http.ResponseWriter, err error) {
	var ne error
	defer func() {
		if ne != nil {
			log.Error().
				Err(ne).
				Msg("error response encoding failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	var (
		errbr  ErrBadRequest
		errnf  ErrAccountNotFound
		erramt ErrInvalidAmount
		errbal ErrInvalidInitialBalance
		errins ErrInsufficientFunds
		errpre ErrPrematureWithdrawal
		errint ErrNotInterestBearing
	)
	switch {
	case errors.As(err, &errbr):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(errbr)
	case errors.As(err, &erramt):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": erramt.Error()})
	case errors.As(err, &errbal):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": errbal.Error()})
	case errors.As(err, &errnf):
		w.WriteHeader(http.StatusNotFound)
		ne = json.NewEncoder(w).Encode(errnf)
	case errors.As(err, &errins):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": errins.Error()})
	case errors.As(err, &errpre):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": errpre.Error()})
	case errors.As(err, &errint):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": errint.Error()})
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnknownSession):
		w.WriteHeader(http.StatusUnauthorized)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
	case errors.Is(err, ErrOverloaded),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		w.WriteHeader(http.StatusServiceUnavailable)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": "temporarily unavailable"})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": "server error"})
	}
}

func HTTPNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{
		"path": r.URL.Path,
	}
	json.NewEncoder(w).Encode(resp)
}
