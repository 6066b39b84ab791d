package main

import (
	"flag"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nonabank/nonabank"
)

// Seeds the data directory with a few demo users and accounts so the CLI
// and HTTP server have something to log into on a fresh checkout.
func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfp := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	cfg := nonabank.DefaultConfig()
	cfgfl, err := os.Open(*cfp)
	if err != nil {
		logger.Fatal().Err(err).Msg("error opening config file")
	}
	if err = yaml.NewDecoder(cfgfl).Decode(&cfg); err != nil {
		logger.Fatal().Err(err).Msg("error decoding config file")
	}
	cfgfl.Close()

	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		logger.Fatal().Err(err).Msg("error starting account number generator")
	}

	store := nonabank.NewJSONStore(cfg.DataDir, &logger)
	bank := nonabank.NewBank(cfg.BankName, node)
	users := nonabank.NewUserDirectory(store)
	svc := nonabank.NewService(bank, users, store, &logger)

	seeds := []nonabank.RegisterReq{
		{
			Username: "patrick",
			Password: "pass123",
			Account: nonabank.OpenAccountReq{
				Kind:           nonabank.Savings,
				Holder:         "Patrick",
				InitialDeposit: decimal.NewFromInt(500),
			},
		},
		{
			Username: "nancy",
			Password: "pass123",
			Account: nonabank.OpenAccountReq{
				Kind:           nonabank.Current,
				Holder:         "Nancy",
				InitialDeposit: decimal.NewFromInt(1000),
			},
		},
		{
			Username: "alice",
			Password: "pass123",
			Account: nonabank.OpenAccountReq{
				Kind:           nonabank.FixedDeposit,
				Holder:         "Alice Johnson",
				InitialDeposit: decimal.NewFromInt(5000),
				MaturityDate:   time.Now().AddDate(1, 0, 0),
			},
		},
	}
	for _, req := range seeds {
		acct, ok, err := svc.Register(req)
		if err != nil {
			logger.Fatal().Err(err).Str("username", req.Username).Msg("error seeding user")
		}
		if !ok {
			logger.Warn().Str("username", req.Username).Msg("user already seeded, skipping")
			continue
		}
		logger.Info().
			Str("username", req.Username).
			Str("account", acct.Number()).
			Str("kind", acct.Kind().Slug()).
			Msg("seeded")
	}
}
