package nonabank

import "sync"

// User binds login credentials to an account number. Immutable once
// registered; there is no update or delete.
//
// The password is stored and compared in plaintext. That reproduces the
// system being simulated and is a documented gap, not a feature. Do not
// build on it.
type User struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	AccountNumber string `json:"accountNumber"`
}

// UserDirectory maps usernames to users, backed best-effort by the store.
type UserDirectory struct {
	mu    sync.Mutex
	users map[string]User
	store Store
}

// NewUserDirectory loads any previously saved users from the store.
func NewUserDirectory(store Store) *UserDirectory {
	d := &UserDirectory{
		users: make(map[string]User),
		store: store,
	}
	if loaded := store.LoadUsers(); len(loaded) > 0 {
		d.users = loaded
	}
	return d
}

// Register adds the user and persists the directory. Returns false without
// overwriting when the username is already taken.
func (d *UserDirectory) Register(u User) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.users[u.Username]; exists {
		return false
	}
	d.users[u.Username] = u
	d.store.SaveUsers(d.snapshot())
	return true
}

// Exists reports whether the username is already registered.
func (d *UserDirectory) Exists(username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.users[username]
	return ok
}

// Login returns the user when the username exists and the password matches
// exactly (case-sensitive).
func (d *UserDirectory) Login(username, password string) (User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[username]
	if !ok || u.Password != password {
		return User{}, false
	}
	return u, true
}

// snapshot copies the map for handoff to the store. Caller holds mu.
func (d *UserDirectory) snapshot() map[string]User {
	out := make(map[string]User, len(d.users))
	for k, v := range d.users {
		out[k] = v
	}
	return out
}
