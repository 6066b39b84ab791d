package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nonabank/nonabank"
)

// Console front end. Same Service boundary as the HTTP API, called
// in-process; the menu owns no account state beyond the active session.
func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	_ = godotenv.Load()

	dflt := "config.yml"
	if env := os.Getenv("NONABANK_CONFIG"); env != "" {
		dflt = env
	}
	cfp := flag.String("config", dflt, "path to configuration file")
	flag.Parse()

	cfg := nonabank.DefaultConfig()
	if cfgfl, err := os.Open(*cfp); err == nil {
		if err = yaml.NewDecoder(cfgfl).Decode(&cfg); err != nil {
			logger.Fatal().Err(err).Msg("error decoding config file")
		}
		cfgfl.Close()
	}

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
	)

	ui := &console{
		svc: svc,
		in:  bufio.NewScanner(os.Stdin),
	}
	ui.run(cfg.BankName)
}

type console struct {
	svc  nonabank.Service
	in   *bufio.Scanner
	sess *nonabank.Session
}

func (c *console) run(bankName string) {
	fmt.Printf("Welcome to %s\n", bankName)
	for {
		if c.sess == nil {
			if done := c.welcomeMenu(); done {
				return
			}
			continue
		}
		c.accountMenu()
	}
}

func (c *console) welcomeMenu() bool {
	fmt.Println()
	fmt.Println("1. Register")
	fmt.Println("2. Login")
	fmt.Println("3. Exit")
	switch c.prompt("Choose an option: ") {
	case "1":
		c.register()
	case "2":
		c.login()
	case "3":
		fmt.Println("Goodbye.")
		return true
	default:
		fmt.Println("Unknown option.")
	}
	return false
}

func (c *console) accountMenu() {
	fmt.Printf("\nLogged in as %s (account %s)\n", c.sess.Username, c.sess.AccountNumber)
	fmt.Println("1. Deposit")
	fmt.Println("2. Withdraw")
	fmt.Println("3. View balance")
	fmt.Println("4. View transaction history")
	fmt.Println("5. Apply monthly interest")
	fmt.Println("6. Download statement (PDF)")
	fmt.Println("7. Logout")
	switch c.prompt("Choose an option: ") {
	case "1":
		c.deposit()
	case "2":
		c.withdraw()
	case "3":
		c.balance()
	case "4":
		c.history()
	case "5":
		c.interest()
	case "6":
		c.statement()
	case "7":
		c.sess = nil
		fmt.Println("Logged out.")
	default:
		fmt.Println("Unknown option.")
	}
}

func (c *console) register() {
	username := c.prompt("Username: ")
	password := c.prompt("Password: ")
	holder := c.prompt("Account holder name: ")
	kind, err := nonabank.ParseKind(c.prompt("Account kind (savings/current/fixed_deposit): "))
	if err != nil {
		fmt.Println(err)
		return
	}
	initial, err := decimal.NewFromString(c.prompt("Initial deposit: "))
	if err != nil {
		fmt.Println("Invalid amount.")
		return
	}
	req := nonabank.RegisterReq{
		Username: username,
		Password: password,
		Account: nonabank.OpenAccountReq{
			Kind:           kind,
			Holder:         holder,
			InitialDeposit: initial,
		},
	}
	if kind == nonabank.FixedDeposit {
		md, err := time.ParseInLocation("2006-01-02", c.prompt("Maturity date (YYYY-MM-DD): "), time.Local)
		if err != nil {
			fmt.Println("Invalid date.")
			return
		}
		req.Account.MaturityDate = md
	}

	acct, ok, err := c.svc.Register(req)
	if err != nil {
		fmt.Println(err)
		return
	}
	if !ok {
		fmt.Println("Username already taken.")
		return
	}
	fmt.Printf("Registered. Your account number is %s with balance %s.\n",
		acct.Number(), nonabank.FormatCurrency(acct.Balance()))
}

func (c *console) login() {
	username := c.prompt("Username: ")
	password := c.prompt("Password: ")
	sess, err := c.svc.Login(username, password)
	if err != nil {
		fmt.Println(err)
		return
	}
	c.sess = sess
}

func (c *console) deposit() {
	amount, err := decimal.NewFromString(c.prompt("Amount to deposit: "))
	if err != nil {
		fmt.Println("Invalid amount.")
		return
	}
	bal, err := c.svc.Deposit(nonabank.ChargeReq{AccountNumber: c.sess.AccountNumber, Amount: amount})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("New balance: %s\n", nonabank.FormatCurrency(bal))
}

func (c *console) withdraw() {
	amount, err := decimal.NewFromString(c.prompt("Amount to withdraw: "))
	if err != nil {
		fmt.Println("Invalid amount.")
		return
	}
	ok, bal, err := c.svc.Withdraw(nonabank.ChargeReq{AccountNumber: c.sess.AccountNumber, Amount: amount})
	if err != nil {
		fmt.Println(err)
		return
	}
	if !ok {
		fmt.Printf("Withdrawal declined. Balance stays at %s.\n", nonabank.FormatCurrency(bal))
		return
	}
	fmt.Printf("New balance: %s\n", nonabank.FormatCurrency(bal))
}

func (c *console) balance() {
	bal, err := c.svc.Balance(c.sess.AccountNumber)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Balance: %s\n", nonabank.FormatCurrency(bal))
}

func (c *console) history() {
	history, err := c.svc.History(c.sess.AccountNumber)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, t := range history {
		fmt.Println(t)
	}
}

func (c *console) interest() {
	interest, err := c.svc.AccrueInterest(c.sess.AccountNumber)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Interest credited: %s\n", nonabank.FormatCurrency(interest))
}

func (c *console) statement() {
	name := fmt.Sprintf("statement-%s.pdf", c.sess.AccountNumber)
	f, err := os.Create(name)
	if err != nil {
		fmt.Println("Could not create statement file:", err)
		return
	}
	defer f.Close()
	if err = c.svc.Statement(f, c.sess.AccountNumber); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("Statement written to %s\n", name)
}

func (c *console) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		os.Exit(0)
	}
	return strings.TrimSpace(c.in.Text())
}
