package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Makepad-fr/till/internal/checkout"
	"github.com/Makepad-fr/till/internal/model"
	"github.com/Makepad-fr/till/internal/store/jsonstore"
	"github.com/Makepad-fr/till/internal/tui"
	"github.com/Makepad-fr/till/internal/ui"
)

// Options carry the resolved root flags and config.
type Options struct {
	Account         string
	Policy          checkout.Policy
	DataDir         string
	Fees            checkout.FeeSchedule
	Logger          *zap.Logger
	MetricsTextfile string
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage
// or a refused checkout).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "seed":
		force := len(a) == 1 && (a[0] == "--force" || a[0] == "-force")
		if len(a) > 1 || (len(a) == 1 && !force) {
			ui.Fail("usage: till seed [--force]")
			return 2
		}
		return doSeed(opt, force)

	case "catalog":
		return doCatalog(opt)

	case "accounts":
		return doAccounts(opt)

	case "add":
		if len(a) < 2 {
			ui.Fail("usage: till add <item...> <qty>")
			return 2
		}
		n, err := strconv.Atoi(a[len(a)-1])
		if err != nil {
			ui.Fail("add: not a number: " + a[len(a)-1])
			return 2
		}
		return doAdd(opt, strings.Join(a[:len(a)-1], " "), n)

	case "basket":
		return doBasket(opt)

	case "clear":
		return doClear(opt)

	case "checkout":
		return doCheckout(opt)

	case "shop":
		return doShop(opt)
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Err)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprintf(ui.Out, `till - a small point-of-sale checkout

Usage:
  till [flags] <subcommand> [args]

Flags:
  -config <path>     Config file (default $TILL_CONFIG or ~/.till/config.yaml)
  -data <dir>        Directory holding till.json
  -account <name>    Customer account to shop as
  -policy abort|skip How invalid basket lines are handled at checkout
  -theme <name>      classic, neon or mono
  -v                 Debug logging

Subcommands:
  seed [--force]     Write the demo catalog and accounts
  catalog            List items with price, stock and traits
  accounts           List accounts and balances
  add <item> <qty>   Put a quantity of an item in the basket
  basket             Show the basket
  clear              Empty the basket
  checkout           Settle the basket
  shop               Interactive shop

Examples:
  till seed
  till -account Ahmed add Cheese 2
  till -account Ahmed add TV 1
  till -account Ahmed -policy skip checkout
`)
}

// -------------- subcommand impls ----------------

func doSeed(opt Options, force bool) int {
	if jsonstore.Exists(opt.DataDir) && !force {
		ui.Fail("seed: " + jsonstore.Path(opt.DataDir) + " already exists")
		ui.Hint("Hint: pass --force to overwrite it")
		return 1
	}
	if err := jsonstore.Save(opt.DataDir, jsonstore.Seed()); err != nil {
		ui.Fail("save: " + err.Error())
		return 1
	}
	ui.OK("seeded " + jsonstore.Path(opt.DataDir))
	return 0
}

func doCatalog(opt Options) int {
	shop, ok := load(opt)
	if !ok {
		return 1
	}
	if len(shop.Items()) == 0 {
		ui.Fail("catalog is empty")
		ui.Hint("Hint: run `till seed` first")
		return 1
	}
	fmt.Fprintln(ui.Out, ui.Catalog(shop.Items()))
	return 0
}

func doAccounts(opt Options) int {
	shop, ok := load(opt)
	if !ok {
		return 1
	}
	lines := []string{ui.Current().Title.Render("Accounts"), ""}
	lines = append(lines, ui.Accounts(shop.Accounts())...)
	ui.Panel(lines)
	return 0
}

func doAdd(opt Options, name string, qty int) int {
	shop, ok := load(opt)
	if !ok {
		return 1
	}
	acct, code := account(shop, opt)
	if acct == nil {
		return code
	}
	item := shop.Item(name)
	if item == nil {
		ui.Fail("add: no such item: " + name)
		ui.Hint("Hint: run `till catalog` to see item names")
		return 2
	}
	if err := shop.Basket(acct.Name()).Add(item, qty); err != nil {
		ui.Fail("add: " + err.Error())
		if errors.Is(err, model.ErrInvalidQuantity) {
			return 2
		}
		return 1
	}
	if !save(opt, shop) {
		return 1
	}
	ui.OK(fmt.Sprintf("added %dx %s", qty, item.Name()))
	return 0
}

func doBasket(opt Options) int {
	shop, ok := load(opt)
	if !ok {
		return 1
	}
	acct, code := account(shop, opt)
	if acct == nil {
		return code
	}
	lines := []string{
		fmt.Sprintf("%s  %s %s",
			ui.Current().Title.Render("Basket"),
			ui.Current().Accent.Render(acct.Name()),
			ui.Current().Muted.Render("balance "+ui.Money(acct.Balance()))),
		"",
	}
	lines = append(lines, ui.BasketLines(shop.Basket(acct.Name()).Lines())...)
	ui.Panel(lines)
	return 0
}

func doClear(opt Options) int {
	shop, ok := load(opt)
	if !ok {
		return 1
	}
	acct, code := account(shop, opt)
	if acct == nil {
		return code
	}
	shop.Basket(acct.Name()).Clear()
	if !save(opt, shop) {
		return 1
	}
	ui.OK("basket cleared")
	return 0
}

func doCheckout(opt Options) int {
	shop, ok := load(opt)
	if !ok {
		return 1
	}
	acct, code := account(shop, opt)
	if acct == nil {
		return code
	}
	eng, reg := newEngine(opt)
	res, err := eng.Checkout(acct, shop.Basket(acct.Name()), opt.Policy)
	if err != nil {
		ui.Fail("checkout: " + err.Error())
		return 1
	}
	defer writeMetrics(opt, reg)

	if !res.Settled() {
		ui.Fail(ui.Failure(res))
		return 2
	}
	if !save(opt, shop) {
		return 1
	}
	ui.Panel(ui.Checkout(res))
	ui.OK("paid " + ui.Money(res.Total))
	return 0
}

func doShop(opt Options) int {
	shop, ok := load(opt)
	if !ok {
		return 1
	}
	acct, code := account(shop, opt)
	if acct == nil {
		return code
	}
	eng, reg := newEngine(opt)
	changed, err := tui.Run(shop, acct, eng, opt.Policy)
	writeMetrics(opt, reg)
	if err != nil {
		ui.Fail("shop: " + err.Error())
		return 1
	}
	if changed {
		if !save(opt, shop) {
			return 1
		}
		ui.OK("saved")
	}
	return 0
}

// -------------- helpers --------------

func load(opt Options) (*jsonstore.Shop, bool) {
	shop, err := jsonstore.Load(opt.DataDir)
	if err != nil {
		ui.Fail("load: " + err.Error())
		return nil, false
	}
	return shop, true
}

func save(opt Options, shop *jsonstore.Shop) bool {
	if err := jsonstore.Save(opt.DataDir, shop); err != nil {
		ui.Fail("save: " + err.Error())
		return false
	}
	return true
}

func account(shop *jsonstore.Shop, opt Options) (*model.Account, int) {
	if opt.Account == "" {
		ui.Fail("no account selected")
		ui.Hint("Hint: pass -account <name>; `till accounts` lists them")
		return nil, 2
	}
	acct := shop.Account(opt.Account)
	if acct == nil {
		ui.Fail("unknown account: " + opt.Account)
		ui.Hint("Hint: run `till accounts` to see valid names")
		return nil, 2
	}
	return acct, 0
}

func newEngine(opt Options) (*checkout.Engine, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	engineOpts := []checkout.Option{
		checkout.WithLogger(opt.logger()),
		checkout.WithObserver(checkout.NewMetrics(reg)),
	}
	if opt.Fees != nil {
		engineOpts = append(engineOpts, checkout.WithFees(opt.Fees))
	}
	return checkout.NewEngine(engineOpts...), reg
}

// writeMetrics leaves the registry for a node-exporter textfile collector.
// Failing to write is logged, not fatal.
func writeMetrics(opt Options, reg *prometheus.Registry) {
	if opt.MetricsTextfile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(opt.MetricsTextfile, reg); err != nil {
		opt.logger().Warn("write metrics textfile", zap.String("path", opt.MetricsTextfile), zap.Error(err))
	}
}
