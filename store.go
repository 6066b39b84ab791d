package nonabank

// Store persists simulator state between runs. Implementations are
// best-effort: loads return empty data when nothing usable is on disk, and
// save failures are logged and swallowed rather than propagated into the
// domain. The domain never degrades because the disk did.
type Store interface {
	LoadTransactions(accountNumber string) []Transaction
	SaveTransactions(accountNumber string, history []Transaction)
	LoadUsers() map[string]User
	SaveUsers(users map[string]User)
}
