package nonabank

type Config struct {
	BankName   string `yaml:"bank_name"`
	ListenAddr string `yaml:"listen_addr"`
	// DataDir is where the JSON snapshots live: users.json plus one
	// transactions/<accountNumber>.json per account.
	DataDir string `yaml:"data_dir"`
	// SnowflakeNode distinguishes account-number generators; any value in
	// [0, 1023] works for a single process.
	SnowflakeNode int64 `yaml:"snowflake_node"`
	Limits        struct {
		Auth   int64 `yaml:"auth"`
		Charge int64 `yaml:"charge"`
		Query  int64 `yaml:"query"`
	} `yaml:"limits"`
}

// DefaultConfig fills the fields a minimal config file may omit.
func DefaultConfig() Config {
	cfg := Config{
		BankName:   "NONA BANK",
		ListenAddr: ":3000",
		DataDir:    "data",
	}
	return cfg
}
