package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Makepad-fr/till/internal/cli"
	"github.com/Makepad-fr/till/internal/config"
	"github.com/Makepad-fr/till/internal/logging"
	"github.com/Makepad-fr/till/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand); empty means "keep config".
	configPath := flag.String("config", "", "config file (default $TILL_CONFIG or ~/.till/config.yaml)")
	dataDir := flag.String("data", "", "directory holding till.json")
	account := flag.String("account", "", "customer account to shop as")
	policy := flag.String("policy", "", "invalid line handling: abort or skip")
	theme := flag.String("theme", "", "classic, neon or mono")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *policy != "" {
		cfg.Policy = *policy
	}
	if *theme != "" {
		cfg.Theme = *theme
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(2)
	}
	ui.SetTheme(cfg.Theme)

	fees, err := cfg.Fees()
	if err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(2)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		ui.Fail("logging: " + err.Error())
		os.Exit(1)
	}
	logger.Debug("config loaded",
		zap.String("source", cfg.Source),
		zap.String("data_dir", cfg.DataDir),
		zap.String("policy", cfg.Policy),
	)

	code := cli.Run(args, cli.Options{
		Account:         *account,
		Policy:          cfg.CheckoutPolicy(),
		DataDir:         cfg.DataDir,
		Fees:            fees,
		Logger:          logger,
		MetricsTextfile: cfg.MetricsTextfile,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	_ = logger.Sync()
	os.Exit(code)
}
