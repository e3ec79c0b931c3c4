package checkout

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Makepad-fr/till/internal/model"
)

// Engine validates, prices and settles baskets against accounts.
// It holds no per-checkout state and is safe for concurrent use.
type Engine struct {
	fees     FeeSchedule
	logger   *zap.Logger
	observer Observer
}

type Option func(*Engine)

func WithFees(f FeeSchedule) Option {
	return func(e *Engine) { e.fees = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine defaults to a flat shipping fee, no logging and no observer.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		fees:     FlatFee{Amount: DefaultShippingFee},
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Checkout runs one checkout of basket against acct under policy.
//
// Refusals (empty cart, invalid lines, insufficient funds) come back as the
// Result's Outcome with nothing mutated. Settlement reduces stock for every
// accepted line, debits the total and, under SkipInvalidLines, clears the
// basket. A non-nil error means an invariant broke, which is a bug.
//
// Every referenced item and then the account stay locked for the whole call,
// so checkouts sharing items cannot both pass validation on the same stock.
func (e *Engine) Checkout(acct *model.Account, basket *model.Basket, policy Policy) (*Result, error) {
	if policy != AbortOnFirstInvalid && policy != SkipInvalidLines {
		return nil, fmt.Errorf("checkout: unknown policy %d", policy)
	}
	res := &Result{ID: uuid.New(), Account: acct.Name(), Policy: policy}
	if err := e.run(res, acct, basket); err != nil {
		return nil, err
	}
	e.report(res)
	e.observer.CheckoutFinished(res)
	return res, nil
}

func (e *Engine) run(res *Result, acct *model.Account, basket *model.Basket) error {
	lines := basket.Lines()
	if len(lines) == 0 {
		res.Outcome = OutcomeEmptyCart
		return nil
	}

	unlock := lockAll(acct, lines)
	defer unlock()

	res.Balance = acct.Balance()
	valid := e.validate(res, lines)
	if valid == nil {
		return nil
	}

	res.Subtotal = decimal.Zero
	res.Lines = make([]ReceiptLine, 0, len(valid))
	for _, ln := range valid {
		lineTotal := ln.Item.Price().Mul(decimal.NewFromInt(int64(ln.Quantity)))
		res.Subtotal = res.Subtotal.Add(lineTotal)
		res.Lines = append(res.Lines, ReceiptLine{
			Name:      ln.Item.Name(),
			Quantity:  ln.Quantity,
			UnitPrice: ln.Item.Price(),
			Total:     lineTotal,
		})
	}
	res.Shipping = e.fees.Fee(valid)
	res.Total = res.Subtotal.Add(res.Shipping)

	if acct.Balance().LessThan(res.Total) {
		res.Outcome = OutcomeInsufficientFunds
		res.Lines = nil
		return nil
	}

	for _, ln := range valid {
		if err := ln.Item.ReduceStock(ln.Quantity); err != nil {
			return e.defect(res, err)
		}
	}
	if err := acct.Debit(res.Total); err != nil {
		return e.defect(res, fmt.Errorf("%w: %w", model.ErrInvariantViolation, err))
	}
	if res.Policy == SkipInvalidLines {
		basket.Clear()
	}

	res.Outcome = OutcomeSettled
	res.Balance = acct.Balance()
	res.Shipment = BuildShipmentNotice(shippableUnits(valid))
	return nil
}

// validate classifies lines in basket order and returns the accepted ones, or
// nil when the checkout ends here. Demand is summed per item so repeated lines
// of one item are checked against what the earlier lines left.
func (e *Engine) validate(res *Result, lines []model.BasketLine) []model.BasketLine {
	claimed := make(map[*model.Item]int, len(lines))
	valid := make([]model.BasketLine, 0, len(lines))
	for _, ln := range lines {
		reason := classify(ln, claimed[ln.Item])
		if reason == 0 {
			claimed[ln.Item] += ln.Quantity
			valid = append(valid, ln)
			continue
		}
		if res.Policy == AbortOnFirstInvalid {
			res.Outcome = reason.outcome()
			res.Item = ln.Item.Name()
			return nil
		}
		e.logger.Debug("skipping basket line",
			zap.Stringer("checkout_id", res.ID),
			zap.String("item", ln.Item.Name()),
			zap.Int("quantity", ln.Quantity),
			zap.Stringer("reason", reason),
		)
		res.Skipped = append(res.Skipped, SkippedLine{Name: ln.Item.Name(), Quantity: ln.Quantity, Reason: reason})
	}
	if len(valid) == 0 {
		res.Outcome = OutcomeNoValidItems
		return nil
	}
	return valid
}

func classify(ln model.BasketLine, claimed int) Reason {
	if ln.Quantity > ln.Item.Stock()-claimed {
		return ReasonOutOfStock
	}
	if ln.Item.IsExpired() {
		return ReasonExpired
	}
	return 0
}

func (e *Engine) defect(res *Result, err error) error {
	e.logger.DPanic("checkout invariant violated",
		zap.Stringer("checkout_id", res.ID),
		zap.String("account", res.Account),
		zap.Error(err),
	)
	return fmt.Errorf("checkout %s: %w", res.ID, err)
}

func (e *Engine) report(res *Result) {
	fields := []zap.Field{
		zap.Stringer("checkout_id", res.ID),
		zap.String("account", res.Account),
		zap.Stringer("policy", res.Policy),
		zap.Stringer("outcome", res.Outcome),
	}
	if res.Settled() {
		e.logger.Info("checkout settled", append(fields,
			zap.Stringer("total", res.Total),
			zap.Stringer("balance", res.Balance),
			zap.Int("skipped", len(res.Skipped)),
		)...)
		return
	}
	if res.Item != "" {
		fields = append(fields, zap.String("item", res.Item))
	}
	e.logger.Info("checkout refused", fields...)
}

// lockAll locks each distinct item in ID order, then the account, and
// returns the matching unlock.
func lockAll(acct *model.Account, lines []model.BasketLine) func() {
	items := make([]*model.Item, 0, len(lines))
	seen := make(map[*model.Item]struct{}, len(lines))
	for _, ln := range lines {
		if _, ok := seen[ln.Item]; ok {
			continue
		}
		seen[ln.Item] = struct{}{}
		items = append(items, ln.Item)
	}
	slices.SortFunc(items, func(a, b *model.Item) int {
		ida, idb := a.ID(), b.ID()
		return bytes.Compare(ida[:], idb[:])
	})

	for _, it := range items {
		it.Lock()
	}
	acct.Lock()
	return func() {
		acct.Unlock()
		for i := len(items) - 1; i >= 0; i-- {
			items[i].Unlock()
		}
	}
}
