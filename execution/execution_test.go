package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrasher-corp/gct-backtester/config"
	"github.com/thrasher-corp/gct-backtester/data/kline"
	"github.com/thrasher-corp/gct-backtester/portfolio"
)

var testDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func testBar(low, high, closePrice float64) kline.Bar {
	return kline.Bar{
		Date:   testDate,
		Open:   closePrice,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: 1000,
	}
}

func testExecutor(startingCash float64) (*Executor, *portfolio.Ledger) {
	l := portfolio.NewLedger("USD", "BTC", startingCash)
	e := NewExecutor(l, Settings{
		TradedAsset:     "BTC",
		ThresholdPolicy: config.ThresholdPolicyIntrabar,
	})
	return e, l
}

func TestParseOrders(t *testing.T) {
	t.Parallel()
	raw := []interface{}{
		map[string]interface{}{
			"action":    "BUY",
			"asset":     "BTC",
			"amount":    1.5,
			"stop_loss": 90,
		},
		map[string]interface{}{
			"action":     "SELL",
			"holding_id": "H1",
			"amount":     int64(1),
		},
	}
	orders, err := ParseOrders(raw)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, Buy, orders[0].Action)
	assert.Equal(t, "BTC", orders[0].Asset)
	assert.Equal(t, 1.5, orders[0].Amount)
	require.NotNil(t, orders[0].StopLoss)
	assert.Equal(t, 90.0, *orders[0].StopLoss)
	assert.Nil(t, orders[0].TakeProfit)

	assert.Equal(t, Sell, orders[1].Action)
	assert.Equal(t, "H1", orders[1].HoldingID)
	assert.Equal(t, 1.0, orders[1].Amount)
}

func TestParseOrdersFailsWholeBatch(t *testing.T) {
	t.Parallel()
	for name, raw := range map[string][]interface{}{
		"not a map":        {"BUY"},
		"missing action":   {map[string]interface{}{"asset": "BTC", "amount": 1.0}},
		"unknown action":   {map[string]interface{}{"action": "HODL"}},
		"buy no asset":     {map[string]interface{}{"action": "BUY", "amount": 1.0}},
		"buy bad amount":   {map[string]interface{}{"action": "BUY", "asset": "BTC", "amount": "lots"}},
		"bad stop type":    {map[string]interface{}{"action": "BUY", "asset": "BTC", "amount": 1.0, "stop_loss": "low"}},
		"sell no holding":  {map[string]interface{}{"action": "SELL", "amount": 1.0}},
		"sell bad amount":  {map[string]interface{}{"action": "SELL", "holding_id": "H1", "amount": nil}},
		"good after bad":   {map[string]interface{}{"action": "HODL"}, map[string]interface{}{"action": "SELL", "holding_id": "H1", "amount": 1.0}},
		"bad after good":   {map[string]interface{}{"action": "SELL", "holding_id": "H1", "amount": 1.0}, map[string]interface{}{"action": "HODL"}},
	} {
		orders, err := ParseOrders(raw)
		assert.ErrorIs(t, err, ErrInvalidOrderPayload, name)
		assert.Nil(t, orders, name)
	}
}

func TestApplyBuy(t *testing.T) {
	t.Parallel()
	e, l := testExecutor(10000)
	e.Apply([]Order{{
		Action:     Buy,
		Asset:      "BTC",
		Amount:     2,
		StopLoss:   ptr(90),
		TakeProfit: ptr(150),
	}}, testBar(95, 108, 100))

	assert.Empty(t, e.Rejections())
	trades := e.TradeLog()
	require.Len(t, trades, 1)
	assert.Equal(t, Buy, trades[0].Action)
	assert.Equal(t, "H1", trades[0].HoldingID)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.Equal(t, 200.0, trades[0].USDValue)
	assert.Nil(t, trades[0].PnL)
	assert.Empty(t, trades[0].Reason)
	assert.Equal(t, 9800.0, l.QuoteHolding().Amount)
}

func TestApplyBuyRejections(t *testing.T) {
	t.Parallel()
	bar := testBar(95, 108, 100)
	for name, tc := range map[string]struct {
		order Order
		err   error
	}{
		"wrong asset":        {Order{Action: Buy, Asset: "ETH", Amount: 1}, ErrUnsupportedAsset},
		"zero amount":        {Order{Action: Buy, Asset: "BTC", Amount: 0}, portfolio.ErrNonPositiveAmount},
		"negative amount":    {Order{Action: Buy, Asset: "BTC", Amount: -1}, portfolio.ErrNonPositiveAmount},
		"stop above entry":   {Order{Action: Buy, Asset: "BTC", Amount: 1, StopLoss: ptr(101)}, ErrInvalidThreshold},
		"take below entry":   {Order{Action: Buy, Asset: "BTC", Amount: 1, TakeProfit: ptr(99)}, ErrInvalidThreshold},
		"insufficient funds": {Order{Action: Buy, Asset: "BTC", Amount: 500}, portfolio.ErrInsufficientFunds},
	} {
		e, l := testExecutor(10000)
		e.Apply([]Order{tc.order}, bar)
		require.Len(t, e.Rejections(), 1, name)
		assert.ErrorIs(t, e.Rejections()[0].Err, tc.err, name)
		assert.NotEmpty(t, e.Rejections()[0].Cause, name)
		assert.Empty(t, e.TradeLog(), name)
		assert.Equal(t, 10000.0, l.QuoteHolding().Amount, name)
	}
}

func TestApplyBuyAllInAllOut(t *testing.T) {
	t.Parallel()
	e, l := testExecutor(10000)
	bar := testBar(95, 108, 100)
	e.Apply([]Order{
		{Action: Buy, Asset: "BTC", Amount: 1},
		{Action: Buy, Asset: "BTC", Amount: 1},
	}, bar)

	require.Len(t, e.Rejections(), 1)
	assert.ErrorIs(t, e.Rejections()[0].Err, ErrHoldingOpen)
	assert.Len(t, l.AssetHoldings(), 1)

	// multiple open holdings permitted when configured
	e2 := NewExecutor(portfolio.NewLedger("USD", "BTC", 10000), Settings{
		TradedAsset:               "BTC",
		AllowMultipleOpenHoldings: true,
		ThresholdPolicy:           config.ThresholdPolicyIntrabar,
	})
	e2.Apply([]Order{
		{Action: Buy, Asset: "BTC", Amount: 1},
		{Action: Buy, Asset: "BTC", Amount: 1},
	}, bar)
	assert.Empty(t, e2.Rejections())
	assert.Len(t, e2.TradeLog(), 2)
}

func TestApplySell(t *testing.T) {
	t.Parallel()
	e, l := testExecutor(10000)
	e.Apply([]Order{{Action: Buy, Asset: "BTC", Amount: 2}}, testBar(95, 108, 100))
	e.Apply([]Order{{Action: Sell, HoldingID: "H1", Amount: 2}}, testBar(100, 115, 110))

	require.Empty(t, e.Rejections())
	trades := e.TradeLog()
	require.Len(t, trades, 2)
	sell := trades[1]
	assert.Equal(t, Sell, sell.Action)
	assert.Equal(t, 110.0, sell.Price)
	assert.Equal(t, 220.0, sell.USDValue)
	require.NotNil(t, sell.PnL)
	assert.Equal(t, 20.0, *sell.PnL)
	require.NotNil(t, sell.HoldingPeriodDays)
	assert.Empty(t, sell.Reason)
	assert.Empty(t, l.AssetHoldings())
}

func TestApplySellRejectionContinuesSiblings(t *testing.T) {
	t.Parallel()
	e, l := testExecutor(10000)
	e.Apply([]Order{{Action: Buy, Asset: "BTC", Amount: 1}}, testBar(95, 108, 100))

	// the unknown holding is skipped, the valid sibling still executes
	e.Apply([]Order{
		{Action: Sell, HoldingID: "H99", Amount: 1},
		{Action: Sell, HoldingID: "H1", Amount: 1},
	}, testBar(100, 115, 110))

	require.Len(t, e.Rejections(), 1)
	assert.ErrorIs(t, e.Rejections()[0].Err, portfolio.ErrUnknownHolding)
	assert.Len(t, e.TradeLog(), 2)
	assert.Empty(t, l.AssetHoldings())
	assert.InDelta(t, 10010.0, l.QuoteHolding().Amount, 1e-9)
}

func TestSequentialOrdersSeePriorEffects(t *testing.T) {
	t.Parallel()
	e, _ := testExecutor(10000)
	// the sell frees the slot the second buy needs
	e.Apply([]Order{{Action: Buy, Asset: "BTC", Amount: 1}}, testBar(95, 108, 100))
	e.Apply([]Order{
		{Action: Sell, HoldingID: "H1", Amount: 1},
		{Action: Buy, Asset: "BTC", Amount: 2},
	}, testBar(100, 115, 110))

	assert.Empty(t, e.Rejections())
	require.Len(t, e.TradeLog(), 3)
	assert.Equal(t, "H2", e.TradeLog()[2].HoldingID)
}

func TestCheckThresholdsStopLoss(t *testing.T) {
	t.Parallel()
	e, l := testExecutor(10000)
	e.Apply([]Order{{
		Action:   Buy,
		Asset:    "BTC",
		Amount:   1,
		StopLoss: ptr(100),
	}}, testBar(100, 110, 105))

	// low breaches the stop but the close does not; fill is at the close
	e.CheckThresholds(testBar(95, 104, 98))

	trades := e.TradeLog()
	require.Len(t, trades, 2)
	assert.Equal(t, Sell, trades[1].Action)
	assert.Equal(t, ReasonStopLoss, trades[1].Reason)
	assert.Equal(t, 98.0, trades[1].Price)
	require.NotNil(t, trades[1].PnL)
	assert.Equal(t, -7.0, *trades[1].PnL)
	assert.Empty(t, l.AssetHoldings())
}

func TestCheckThresholdsTakeProfit(t *testing.T) {
	t.Parallel()
	e, l := testExecutor(10000)
	e.Apply([]Order{{
		Action:     Buy,
		Asset:      "BTC",
		Amount:     1,
		TakeProfit: ptr(120),
	}}, testBar(100, 110, 105))

	e.CheckThresholds(testBar(104, 125, 118))

	trades := e.TradeLog()
	require.Len(t, trades, 2)
	assert.Equal(t, ReasonTakeProfit, trades[1].Reason)
	assert.Equal(t, 118.0, trades[1].Price)
	assert.Empty(t, l.AssetHoldings())
}

func TestCheckThresholdsStopFirst(t *testing.T) {
	t.Parallel()
	e, _ := testExecutor(10000)
	e.Apply([]Order{{
		Action:     Buy,
		Asset:      "BTC",
		Amount:     1,
		StopLoss:   ptr(100),
		TakeProfit: ptr(110),
	}}, testBar(100, 110, 105))

	// both thresholds breached in one bar resolves as the stop
	e.CheckThresholds(testBar(99, 111, 105))

	trades := e.TradeLog()
	require.Len(t, trades, 2)
	assert.Equal(t, ReasonStopLoss, trades[1].Reason)
}

func TestCheckThresholdsClosePolicy(t *testing.T) {
	t.Parallel()
	l := portfolio.NewLedger("USD", "BTC", 10000)
	e := NewExecutor(l, Settings{
		TradedAsset:     "BTC",
		ThresholdPolicy: config.ThresholdPolicyClose,
	})
	e.Apply([]Order{{
		Action:   Buy,
		Asset:    "BTC",
		Amount:   1,
		StopLoss: ptr(100),
	}}, testBar(100, 110, 105))

	// the low breaches the stop but the close recovers: no trigger
	e.CheckThresholds(testBar(95, 106, 103))
	assert.Len(t, e.TradeLog(), 1)
	assert.Len(t, l.AssetHoldings(), 1)

	e.CheckThresholds(testBar(95, 106, 99))
	trades := e.TradeLog()
	require.Len(t, trades, 2)
	assert.Equal(t, ReasonStopLoss, trades[1].Reason)
	assert.Equal(t, 99.0, trades[1].Price)
}

func TestCheckThresholdsNoThresholdsSet(t *testing.T) {
	t.Parallel()
	e, l := testExecutor(10000)
	e.Apply([]Order{{Action: Buy, Asset: "BTC", Amount: 1}}, testBar(100, 110, 105))

	e.CheckThresholds(testBar(1, 1000, 500))
	assert.Len(t, e.TradeLog(), 1)
	assert.Len(t, l.AssetHoldings(), 1)
}

func TestFinalExit(t *testing.T) {
	t.Parallel()
	l := portfolio.NewLedger("USD", "BTC", 10000)
	e := NewExecutor(l, Settings{
		TradedAsset:               "BTC",
		AllowMultipleOpenHoldings: true,
		ThresholdPolicy:           config.ThresholdPolicyIntrabar,
	})
	e.Apply([]Order{
		{Action: Buy, Asset: "BTC", Amount: 1},
		{Action: Buy, Asset: "BTC", Amount: 2},
	}, testBar(95, 108, 100))

	e.FinalExit(testBar(120, 140, 138))

	trades := e.TradeLog()
	require.Len(t, trades, 4)
	for _, tr := range trades[2:] {
		assert.Equal(t, Sell, tr.Action)
		assert.Equal(t, ReasonFinalExit, tr.Reason)
		assert.Equal(t, 138.0, tr.Price)
	}
	assert.Empty(t, l.AssetHoldings())
	assert.InDelta(t, 10114.0, l.QuoteHolding().Amount, 1e-9)
}

func TestFinalExitNothingOpen(t *testing.T) {
	t.Parallel()
	e, _ := testExecutor(10000)
	e.FinalExit(testBar(120, 140, 138))
	assert.Empty(t, e.TradeLog())
}
