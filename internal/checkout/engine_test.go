package checkout

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Makepad-fr/till/internal/model"
)

// =============================================================================
// Engine Test Suite
// =============================================================================

type EngineSuite struct {
	suite.Suite
	engine   *Engine
	recorder *recordingObserver

	cheese      *model.Item
	biscuits    *model.Item
	scratchCard *model.Item
	tv          *model.Item
	expired     *model.Item
}

type recordingObserver struct {
	results []*Result
}

func (r *recordingObserver) CheckoutFinished(res *Result) {
	r.results = append(r.results, res)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.recorder = &recordingObserver{}
	s.engine = NewEngine(WithObserver(s.recorder))

	s.cheese = s.item("Cheese", 100, 10, model.WithPerishable(false), model.WithShippable(0.2))
	s.biscuits = s.item("Biscuits", 150, 5, model.WithPerishable(false))
	s.scratchCard = s.item("ScratchCard", 50, 20)
	s.tv = s.item("TV", 500, 2, model.WithShippable(2.5))
	s.expired = s.item("Expired Cheese", 100, 5, model.WithPerishable(true), model.WithShippable(0.2))
}

func (s *EngineSuite) item(name string, price int64, stock int, opts ...model.ItemOption) *model.Item {
	it, err := model.NewItem(name, decimal.NewFromInt(price), stock, opts...)
	s.Require().NoError(err)
	return it
}

func (s *EngineSuite) basket(lines ...model.BasketLine) *model.Basket {
	b := model.NewBasket()
	for _, ln := range lines {
		s.Require().NoError(b.Add(ln.Item, ln.Quantity))
	}
	return b
}

func account(balance int64) *model.Account {
	return model.NewAccount("Ahmed", decimal.NewFromInt(balance))
}

func (s *EngineSuite) checkout(acct *model.Account, b *model.Basket, p Policy) *Result {
	res, err := s.engine.Checkout(acct, b, p)
	s.Require().NoError(err)
	s.Require().NotNil(res)
	return res
}

// =============================================================================
// Settlement
// =============================================================================

func (s *EngineSuite) TestSettlesMixedBasket() {
	for _, policy := range []Policy{AbortOnFirstInvalid, SkipInvalidLines} {
		s.Run(policy.String(), func() {
			s.SetupTest()
			acct := account(1000)
			b := s.basket(
				model.BasketLine{Item: s.cheese, Quantity: 2},
				model.BasketLine{Item: s.biscuits, Quantity: 1},
				model.BasketLine{Item: s.scratchCard, Quantity: 1},
			)

			res := s.checkout(acct, b, policy)

			s.Equal(OutcomeSettled, res.Outcome)
			s.NoError(res.Err())
			s.Equal("400", res.Subtotal.String())
			s.Equal("30", res.Shipping.String())
			s.Equal("430", res.Total.String())
			s.Equal("570", res.Balance.String())
			s.Equal("570", acct.Balance().String())

			s.Equal(8, s.cheese.Stock())
			s.Equal(4, s.biscuits.Stock())
			s.Equal(19, s.scratchCard.Stock())

			s.Require().Len(res.Lines, 3)
			s.Equal("Cheese", res.Lines[0].Name)
			s.Equal(2, res.Lines[0].Quantity)
			s.Equal("100", res.Lines[0].UnitPrice.String())
			s.Equal("200", res.Lines[0].Total.String())
			s.Equal("ScratchCard", res.Lines[2].Name)
			s.Equal(4, res.Units())

			s.Require().Len(res.Shipment.Entries, 1)
			s.Equal("Cheese", res.Shipment.Entries[0].Name)
			s.Equal(2, res.Shipment.Entries[0].Count)
			s.InDelta(0.4, res.Shipment.TotalWeight, 1e-9)
		})
	}
}

func (s *EngineSuite) TestBasketClearedOnlyUnderSkipPolicy() {
	s.Run("skip clears", func() {
		b := s.basket(model.BasketLine{Item: s.scratchCard, Quantity: 1})
		s.checkout(account(1000), b, SkipInvalidLines)
		s.True(b.IsEmpty())
	})

	s.Run("abort keeps lines", func() {
		b := s.basket(model.BasketLine{Item: s.scratchCard, Quantity: 1})
		s.checkout(account(1000), b, AbortOnFirstInvalid)
		s.Equal(1, b.Len())
	})
}

func (s *EngineSuite) TestNoShippingWithoutShippableLines() {
	b := s.basket(
		model.BasketLine{Item: s.biscuits, Quantity: 2},
		model.BasketLine{Item: s.scratchCard, Quantity: 1},
	)
	res := s.checkout(account(1000), b, AbortOnFirstInvalid)

	s.Equal(OutcomeSettled, res.Outcome)
	s.True(res.Shipping.IsZero())
	s.Equal("350", res.Total.String())
	s.True(res.Shipment.Empty())
}

func (s *EngineSuite) TestPerShippableLineFee() {
	engine := NewEngine(WithFees(PerShippableLine{Amount: decimal.NewFromInt(10)}))
	b := s.basket(
		model.BasketLine{Item: s.cheese, Quantity: 3},
		model.BasketLine{Item: s.tv, Quantity: 1},
		model.BasketLine{Item: s.scratchCard, Quantity: 1},
	)

	res, err := engine.Checkout(account(10000), b, SkipInvalidLines)
	s.Require().NoError(err)

	s.Equal("20", res.Shipping.String())
	s.Equal("870", res.Total.String())
	s.InDelta(0.6+2.5, res.Shipment.TotalWeight, 1e-9)
}

// =============================================================================
// Refusals
// =============================================================================

func (s *EngineSuite) TestEmptyCart() {
	for _, policy := range []Policy{AbortOnFirstInvalid, SkipInvalidLines} {
		acct := account(1000)
		res := s.checkout(acct, model.NewBasket(), policy)

		s.Equal(OutcomeEmptyCart, res.Outcome)
		s.ErrorIs(res.Err(), ErrEmptyCart)
		s.Equal("1000", acct.Balance().String())
	}
}

func (s *EngineSuite) TestInsufficientFundsMutatesNothing() {
	for _, policy := range []Policy{AbortOnFirstInvalid, SkipInvalidLines} {
		s.Run(policy.String(), func() {
			s.SetupTest()
			acct := model.NewAccount("Poor", decimal.NewFromInt(50))
			b := s.basket(model.BasketLine{Item: s.tv, Quantity: 1})

			res := s.checkout(acct, b, policy)

			s.Equal(OutcomeInsufficientFunds, res.Outcome)
			s.ErrorIs(res.Err(), ErrInsufficientFunds)
			s.Contains(res.Err().Error(), "need 530")
			s.Equal("530", res.Total.String())
			s.Equal(2, s.tv.Stock())
			s.Equal("50", acct.Balance().String())
			s.Equal(1, b.Len())
			s.Empty(res.Lines)
		})
	}
}

func (s *EngineSuite) TestExpiredAbortsWholeCheckout() {
	acct := account(1000)
	b := s.basket(
		model.BasketLine{Item: s.scratchCard, Quantity: 1},
		model.BasketLine{Item: s.expired, Quantity: 1},
	)

	res := s.checkout(acct, b, AbortOnFirstInvalid)

	s.Equal(OutcomeExpired, res.Outcome)
	s.Equal("Expired Cheese", res.Item)
	s.True(errors.Is(res.Err(), ErrExpired))
	s.Equal(20, s.scratchCard.Stock())
	s.Equal(5, s.expired.Stock())
	s.Equal("1000", acct.Balance().String())
	s.Equal(2, b.Len())
}

func (s *EngineSuite) TestExpiredSkippedOthersSettle() {
	acct := account(1000)
	b := s.basket(
		model.BasketLine{Item: s.expired, Quantity: 1},
		model.BasketLine{Item: s.biscuits, Quantity: 1},
	)

	res := s.checkout(acct, b, SkipInvalidLines)

	s.Equal(OutcomeSettled, res.Outcome)
	s.Require().Len(res.Skipped, 1)
	s.Equal("Expired Cheese (expired)", res.Skipped[0].String())
	s.Equal("150", res.Total.String())
	s.Equal("850", acct.Balance().String())
	s.Equal(5, s.expired.Stock())
	s.Equal(4, s.biscuits.Stock())
	s.True(b.IsEmpty())
}

func (s *EngineSuite) TestStockCheckedBeforeExpiry() {
	b := s.basket(model.BasketLine{Item: s.expired, Quantity: 5})
	s.Require().NoError(s.expired.ReduceStock(1))

	res := s.checkout(account(1000), b, AbortOnFirstInvalid)

	s.Equal(OutcomeOutOfStock, res.Outcome)
	s.ErrorIs(res.Err(), ErrOutOfStock)
}

func (s *EngineSuite) TestStockRecheckedAtCheckout() {
	b := s.basket(model.BasketLine{Item: s.tv, Quantity: 2})
	s.Require().NoError(s.tv.ReduceStock(1))

	s.Run("abort", func() {
		res := s.checkout(account(5000), b, AbortOnFirstInvalid)
		s.Equal(OutcomeOutOfStock, res.Outcome)
		s.Equal("TV", res.Item)
	})

	s.Run("skip with nothing left", func() {
		res := s.checkout(account(5000), b, SkipInvalidLines)
		s.Equal(OutcomeNoValidItems, res.Outcome)
		s.ErrorIs(res.Err(), ErrNoValidItems)
		s.Require().Len(res.Skipped, 1)
		s.Equal(ReasonOutOfStock, res.Skipped[0].Reason)
		s.Equal(1, b.Len())
	})
}

func (s *EngineSuite) TestRepeatedItemLinesShareStock() {
	s.Run("abort", func() {
		s.SetupTest()
		acct := account(5000)
		b := s.basket(
			model.BasketLine{Item: s.cheese, Quantity: 8},
			model.BasketLine{Item: s.cheese, Quantity: 5},
		)
		res := s.checkout(acct, b, AbortOnFirstInvalid)
		s.Equal(OutcomeOutOfStock, res.Outcome)
		s.Equal(10, s.cheese.Stock())
		s.Equal("5000", acct.Balance().String())
	})

	s.Run("skip", func() {
		s.SetupTest()
		b := s.basket(
			model.BasketLine{Item: s.cheese, Quantity: 8},
			model.BasketLine{Item: s.cheese, Quantity: 5},
		)
		res := s.checkout(account(5000), b, SkipInvalidLines)
		s.Equal(OutcomeSettled, res.Outcome)
		s.Equal(2, s.cheese.Stock())
		s.Require().Len(res.Skipped, 1)
		s.Equal(5, res.Skipped[0].Quantity)
		s.Equal("830", res.Total.String())
	})
}

// =============================================================================
// Repeated calls
// =============================================================================

func (s *EngineSuite) TestSecondSkipCheckoutSeesEmptyCart() {
	acct := account(1000)
	b := s.basket(model.BasketLine{Item: s.biscuits, Quantity: 1})

	s.Equal(OutcomeSettled, s.checkout(acct, b, SkipInvalidLines).Outcome)
	s.Equal(OutcomeEmptyCart, s.checkout(acct, b, SkipInvalidLines).Outcome)
	s.Equal("850", acct.Balance().String())
}

func (s *EngineSuite) TestSecondAbortCheckoutRerunsFromNewState() {
	acct := account(1000)
	b := s.basket(model.BasketLine{Item: s.tv, Quantity: 1})

	first := s.checkout(acct, b, AbortOnFirstInvalid)
	second := s.checkout(acct, b, AbortOnFirstInvalid)
	third := s.checkout(acct, b, AbortOnFirstInvalid)

	s.Equal(OutcomeSettled, first.Outcome)
	s.Equal(OutcomeInsufficientFunds, second.Outcome)
	s.Equal(OutcomeInsufficientFunds, third.Outcome)
	s.Equal("470", acct.Balance().String())
	s.Equal(1, s.tv.Stock())
}

// =============================================================================
// Wiring
// =============================================================================

func (s *EngineSuite) TestObserverSeesEveryOutcome() {
	s.checkout(account(1000), model.NewBasket(), SkipInvalidLines)
	s.checkout(account(1000), s.basket(model.BasketLine{Item: s.biscuits, Quantity: 1}), SkipInvalidLines)

	s.Require().Len(s.recorder.results, 2)
	s.Equal(OutcomeEmptyCart, s.recorder.results[0].Outcome)
	s.Equal(OutcomeSettled, s.recorder.results[1].Outcome)
	s.NotEqual(s.recorder.results[0].ID, s.recorder.results[1].ID)
}

func (s *EngineSuite) TestLogsOutcome() {
	core, logs := observer.New(zapcore.DebugLevel)
	engine := NewEngine(WithLogger(zap.New(core)))

	b := s.basket(
		model.BasketLine{Item: s.expired, Quantity: 1},
		model.BasketLine{Item: s.scratchCard, Quantity: 1},
	)
	_, err := engine.Checkout(account(1000), b, SkipInvalidLines)
	s.Require().NoError(err)

	s.Equal(1, logs.FilterMessage("skipping basket line").Len())
	settled := logs.FilterMessage("checkout settled").All()
	s.Require().Len(settled, 1)
	s.Equal("50", settled[0].ContextMap()["total"])
	s.Equal("skip", settled[0].ContextMap()["policy"])
}

func (s *EngineSuite) TestDefectIsLoggedAndWrapped() {
	core, logs := observer.New(zapcore.DebugLevel)
	engine := NewEngine(WithLogger(zap.New(core)))
	res := &Result{Account: "Ahmed"}

	err := engine.defect(res, s.tv.ReduceStock(3))
	s.ErrorIs(err, model.ErrInvariantViolation)
	s.Equal(2, s.tv.Stock())

	entries := logs.FilterMessage("checkout invariant violated").All()
	s.Require().Len(entries, 1)
	s.Equal(zapcore.DPanicLevel, entries[0].Level)
	s.Equal("Ahmed", entries[0].ContextMap()["account"])
}

func (s *EngineSuite) TestUnknownPolicy() {
	_, err := s.engine.Checkout(account(1000), model.NewBasket(), Policy(42))
	s.Error(err)
	s.Empty(s.recorder.results)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" Skip ")
	if err != nil || p != SkipInvalidLines {
		t.Fatalf("ParsePolicy(skip) = %v, %v", p, err)
	}
	p, err = ParsePolicy("abort")
	if err != nil || p != AbortOnFirstInvalid {
		t.Fatalf("ParsePolicy(abort) = %v, %v", p, err)
	}
	if _, err := ParsePolicy("maybe"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
