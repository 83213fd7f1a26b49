package execution

import (
	"fmt"
	"time"

	"github.com/thrasher-corp/gct-backtester/config"
	"github.com/thrasher-corp/gct-backtester/data/kline"
	"github.com/thrasher-corp/gct-backtester/log"
	"github.com/thrasher-corp/gct-backtester/portfolio"
)

// NewExecutor binds an executor to the run's ledger and settings
func NewExecutor(ledger *portfolio.Ledger, settings Settings) *Executor {
	return &Executor{
		ledger:   ledger,
		settings: settings,
	}
}

// ParseOrders decodes the value a strategy returned into orders. Any
// malformed element fails the whole batch, which the engine treats as a
// strategy fault rather than a per-order rejection
func ParseOrders(raw []interface{}) ([]Order, error) {
	orders := make([]Order, 0, len(raw))
	for i := range raw {
		m, ok := raw[i].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T, expected an order map",
				ErrInvalidOrderPayload, i, raw[i])
		}
		o, err := parseOrder(m)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func parseOrder(m map[string]interface{}) (Order, error) {
	action, ok := m["action"].(string)
	if !ok {
		return Order{}, fmt.Errorf("%w: missing action", ErrInvalidOrderPayload)
	}
	var o Order
	switch Side(action) {
	case Buy:
		o.Action = Buy
		if o.Asset, ok = m["asset"].(string); !ok {
			return Order{}, fmt.Errorf("%w: buy requires an asset", ErrInvalidOrderPayload)
		}
		if o.Amount, ok = toFloat(m["amount"]); !ok {
			return Order{}, fmt.Errorf("%w: buy requires a numeric amount", ErrInvalidOrderPayload)
		}
		var err error
		if o.StopLoss, err = optionalFloat(m, "stop_loss"); err != nil {
			return Order{}, err
		}
		if o.TakeProfit, err = optionalFloat(m, "take_profit"); err != nil {
			return Order{}, err
		}
	case Sell:
		o.Action = Sell
		if o.HoldingID, ok = m["holding_id"].(string); !ok {
			return Order{}, fmt.Errorf("%w: sell requires a holding_id", ErrInvalidOrderPayload)
		}
		if o.Amount, ok = toFloat(m["amount"]); !ok {
			return Order{}, fmt.Errorf("%w: sell requires a numeric amount", ErrInvalidOrderPayload)
		}
	default:
		return Order{}, fmt.Errorf("%w: unknown action %q", ErrInvalidOrderPayload, action)
	}
	return o, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func optionalFloat(m map[string]interface{}, key string) (*float64, error) {
	v, present := m[key]
	if !present || v == nil {
		return nil, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be numeric, got %T", ErrInvalidOrderPayload, key, v)
	}
	return &f, nil
}

// Apply validates and executes each order in the sequence given, against the
// ledger state its predecessors left behind. A rejected order is logged and
// recorded; its siblings still attempt execution
func (e *Executor) Apply(orders []Order, bar kline.Bar) {
	for i := range orders {
		if err := e.apply(&orders[i], bar); err != nil {
			log.Warnf(log.ExecutionMgr, "%s: rejected %s order: %v",
				bar.Date.Format(kline.DateFormat), orders[i].Action, err)
			e.rejections = append(e.rejections, Rejection{
				Date:  bar.Date,
				Order: orders[i],
				Cause: err.Error(),
				Err:   err,
			})
		}
	}
}

func (e *Executor) apply(o *Order, bar kline.Bar) error {
	switch o.Action {
	case Buy:
		return e.applyBuy(o, bar)
	case Sell:
		return e.applySell(o, bar)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidOrderPayload, o.Action)
	}
}

func (e *Executor) applyBuy(o *Order, bar kline.Bar) error {
	if o.Asset != e.settings.TradedAsset {
		return fmt.Errorf("%w: %q, this run trades %q",
			ErrUnsupportedAsset, o.Asset, e.settings.TradedAsset)
	}
	if o.Amount <= 0 {
		return fmt.Errorf("%w: buy amount %v", portfolio.ErrNonPositiveAmount, o.Amount)
	}
	if !e.settings.AllowMultipleOpenHoldings && len(e.ledger.AssetHoldings()) > 0 {
		return ErrHoldingOpen
	}
	if o.StopLoss != nil && *o.StopLoss >= bar.Close {
		return fmt.Errorf("%w: stop loss %.8f must be below entry %.8f",
			ErrInvalidThreshold, *o.StopLoss, bar.Close)
	}
	if o.TakeProfit != nil && *o.TakeProfit <= bar.Close {
		return fmt.Errorf("%w: take profit %.8f must be above entry %.8f",
			ErrInvalidThreshold, *o.TakeProfit, bar.Close)
	}
	h, err := e.ledger.ApplyBuy(o.Amount, bar.Close, bar.Date, o.StopLoss, o.TakeProfit)
	if err != nil {
		return err
	}
	log.Debugf(log.ExecutionMgr, "%s: bought %v %s as %s at %v",
		bar.Date.Format(kline.DateFormat), h.Amount, h.Asset, h.ID, bar.Close)
	e.trades = append(e.trades, TradeRecord{
		Action:    Buy,
		HoldingID: h.ID,
		Amount:    h.Amount,
		Date:      bar.Date,
		Price:     bar.Close,
		USDValue:  h.Amount * bar.Close,
	})
	return nil
}

func (e *Executor) applySell(o *Order, bar kline.Bar) error {
	receipt, err := e.ledger.ApplySell(o.HoldingID, o.Amount, bar.Close, bar.Date)
	if err != nil {
		return err
	}
	log.Debugf(log.ExecutionMgr, "%s: sold %v of %s at %v for pnl %v",
		bar.Date.Format(kline.DateFormat), receipt.Amount, receipt.HoldingID, receipt.Price, receipt.PnL)
	e.recordSell(receipt, bar.Date, "")
	return nil
}

// CheckThresholds force-liquidates any holding whose standing stop loss or
// take profit the bar breaches, in holding creation order, stop loss checked
// first. Triggers read the bar per the configured threshold policy; fills are
// always at the bar close
func (e *Executor) CheckThresholds(bar kline.Bar) {
	low, high := bar.Low, bar.High
	if e.settings.ThresholdPolicy == config.ThresholdPolicyClose {
		low, high = bar.Close, bar.Close
	}
	for _, h := range e.ledger.AssetHoldings() {
		var reason string
		switch {
		case h.StopLoss != nil && low <= *h.StopLoss:
			reason = ReasonStopLoss
		case h.TakeProfit != nil && high >= *h.TakeProfit:
			reason = ReasonTakeProfit
		default:
			continue
		}
		receipt, err := e.ledger.ApplySell(h.ID, h.Amount, bar.Close, bar.Date)
		if err != nil {
			log.Errorf(log.ExecutionMgr, "%s: forced %s of %s failed: %v",
				bar.Date.Format(kline.DateFormat), reason, h.ID, err)
			continue
		}
		log.Infof(log.ExecutionMgr, "%s: %s closed %s at %v",
			bar.Date.Format(kline.DateFormat), reason, h.ID, bar.Close)
		e.recordSell(receipt, bar.Date, reason)
	}
}

// FinalExit liquidates every remaining holding at the bar close so every run
// ends fully in the quote asset and results stay comparable
func (e *Executor) FinalExit(bar kline.Bar) {
	for _, h := range e.ledger.AssetHoldings() {
		receipt, err := e.ledger.ApplySell(h.ID, h.Amount, bar.Close, bar.Date)
		if err != nil {
			log.Errorf(log.ExecutionMgr, "%s: final exit of %s failed: %v",
				bar.Date.Format(kline.DateFormat), h.ID, err)
			continue
		}
		e.recordSell(receipt, bar.Date, ReasonFinalExit)
	}
}

func (e *Executor) recordSell(r portfolio.SellReceipt, date time.Time, reason string) {
	pnl := r.PnL
	days := r.HoldingPeriodDays
	e.trades = append(e.trades, TradeRecord{
		Action:            Sell,
		HoldingID:         r.HoldingID,
		Amount:            r.Amount,
		Date:              date,
		Price:             r.Price,
		USDValue:          r.USDValue,
		PnL:               &pnl,
		HoldingPeriodDays: &days,
		Reason:            reason,
	})
}

// TradeLog returns a copy of the executed trades in execution order
func (e *Executor) TradeLog() []TradeRecord {
	out := make([]TradeRecord, len(e.trades))
	copy(out, e.trades)
	return out
}

// Rejections returns a copy of the orders rejected so far
func (e *Executor) Rejections() []Rejection {
	out := make([]Rejection, len(e.rejections))
	copy(out, e.rejections)
	return out
}
