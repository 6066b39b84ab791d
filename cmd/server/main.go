package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/nonabank/nonabank"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// .env is optional; it only supplies NONABANK_CONFIG overrides
	_ = godotenv.Load()

	dflt := "config.yml"
	if env := os.Getenv("NONABANK_CONFIG"); env != "" {
		dflt = env
	}
	cfp := flag.String("config", dflt, "path to configuration file")
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

	svc := nonabank.Chain(
		nonabank.NewService(bank, users, store, &logger),
		nonabank.NewValidationMiddleware(),
		nonabank.NewCircuitBreakMiddleware(nonabank.NewServiceBreaker()),
		nonabank.NewLimitMiddleware(nonabank.NewServiceLimits(
			cfg.Limits.Auth, cfg.Limits.Charge, cfg.Limits.Query,
		)),
	)
	hndlr := nonabank.NewHTTPHandler(svc, &logger)

	logger.Info().Str("addr", cfg.ListenAddr).Str("bank", cfg.BankName).Msg("listening")
	if err = http.ListenAndServe(cfg.ListenAddr, hndlr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
