package nonabank

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const transactionsDirName = "transactions"

// transactionRecord is the on-disk shape of a Transaction.
type transactionRecord struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Timestamp    time.Time       `json:"timestamp"`
}

// JSONStore writes flat JSON files under a data directory: one
// transactions/<accountNumber>.json array per account and a single
// users.json object keyed by username.
//
// Writes go to a temp file first and are renamed into place, so a crash
// mid-write leaves the previous file intact.
type JSONStore struct {
	dir string
	log *zerolog.Logger
}

var (
	_ Store = (*JSONStore)(nil)
)

func NewJSONStore(dir string, log *zerolog.Logger) *JSONStore {
	return &JSONStore{
		dir: dir,
		log: log,
	}
}

func (s *JSONStore) transactionsPath(accountNumber string) string {
	return filepath.Join(s.dir, transactionsDirName, accountNumber+".json")
}

func (s *JSONStore) usersPath() string {
	return filepath.Join(s.dir, "users.json")
}

// LoadTransactions returns the saved history for the account, newest-first
// as saved. A missing or unreadable file is an empty history.
func (s *JSONStore) LoadTransactions(accountNumber string) []Transaction {
	bits, err := os.ReadFile(s.transactionsPath(accountNumber))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Err(err).Str("account", accountNumber).Msg("error reading transactions file")
		}
		return nil
	}
	var recs []transactionRecord
	if err = json.Unmarshal(bits, &recs); err != nil {
		s.log.Err(err).Str("account", accountNumber).Msg("error decoding transactions file")
		return nil
	}
	out := make([]Transaction, 0, len(recs))
	for _, r := range recs {
		out = append(out, Transaction{
			description:  r.Description,
			amount:       r.Amount,
			balanceAfter: r.BalanceAfter,
			timestamp:    r.Timestamp,
		})
	}
	return out
}

// SaveTransactions writes the account's history, creating the transactions
// directory if missing. Failures are logged, not returned.
func (s *JSONStore) SaveTransactions(accountNumber string, history []Transaction) {
	recs := make([]transactionRecord, 0, len(history))
	for _, t := range history {
		recs = append(recs, transactionRecord{
			Description:  t.description,
			Amount:       t.amount,
			BalanceAfter: t.balanceAfter,
			Timestamp:    t.timestamp,
		})
	}
	if err := s.writeJSON(s.transactionsPath(accountNumber), recs); err != nil {
		s.log.Err(err).Str("account", accountNumber).Msg("error saving transactions")
	}
}

// LoadUsers returns the saved username→user map, empty when nothing usable
// is on disk.
func (s *JSONStore) LoadUsers() map[string]User {
	bits, err := os.ReadFile(s.usersPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Err(err).Msg("error reading users file")
		}
		return nil
	}
	var users map[string]User
	if err = json.Unmarshal(bits, &users); err != nil {
		s.log.Err(err).Msg("error decoding users file")
		return nil
	}
	return users
}

func (s *JSONStore) SaveUsers(users map[string]User) {
	if err := s.writeJSON(s.usersPath(), users); err != nil {
		s.log.Err(err).Msg("error saving users")
	}
}

func (s *JSONStore) writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err = enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
