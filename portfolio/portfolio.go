package portfolio

import (
	"fmt"
	"time"
)

// NewLedger creates a run-scoped ledger holding startingCash units of the
// quote asset and no traded holdings
func NewLedger(quoteAsset, tradedAsset string, startingCash float64) *Ledger {
	return &Ledger{
		quoteAsset:  quoteAsset,
		tradedAsset: tradedAsset,
		quote: Holding{
			ID:            quoteAsset,
			Asset:         quoteAsset,
			Amount:        startingCash,
			UnitValueUSD:  1,
			TotalValueUSD: startingCash,
		},
		nextID: 1,
	}
}

// QuoteHolding returns a copy of the single quote asset holding
func (l *Ledger) QuoteHolding() Holding {
	return l.quote.clone()
}

// AssetHoldings returns copies of the open traded asset holdings in creation
// order. This is the holdings view handed to strategies; cash sits on the
// summary instead so a script never sees a sellable quote entry
func (l *Ledger) AssetHoldings() []Holding {
	out := make([]Holding, len(l.holdings))
	for i := range l.holdings {
		out[i] = l.holdings[i].clone()
	}
	return out
}

// ApplyBuy debits the quote holding by amount*price and creates a traded
// holding with ids assigned H1, H2, ... in creation order. The new holding's
// entry price, entry date and high water tracker are seeded from the fill
func (l *Ledger) ApplyBuy(amount, price float64, date time.Time, stopLoss, takeProfit *float64) (Holding, error) {
	if amount <= 0 {
		return Holding{}, fmt.Errorf("%w: buy amount %v", ErrNonPositiveAmount, amount)
	}
	cost := amount * price
	if cost > l.quote.Amount+tolerance {
		return Holding{}, fmt.Errorf("%w: required %.8f, available %.8f",
			ErrInsufficientFunds, cost, l.quote.Amount)
	}
	l.quote.Amount -= cost
	if l.quote.Amount < 0 {
		// cost exceeded funds within tolerance only
		l.quote.Amount = 0
	}
	l.quote.TotalValueUSD = l.quote.Amount

	entry := date
	h := Holding{
		ID:            fmt.Sprintf("H%d", l.nextID),
		Asset:         l.tradedAsset,
		Amount:        amount,
		UnitValueUSD:  price,
		TotalValueUSD: amount * price,
		StopLoss:      clonePrice(stopLoss),
		TakeProfit:    clonePrice(takeProfit),
		EntryPrice:    price,
		EntryDate:     &entry,
		HighWaterUSD:  price,
	}
	l.nextID++
	l.holdings = append(l.holdings, h)
	return h.clone(), nil
}

// ApplySell credits the quote holding with amount*price, realises pnl against
// the holding's entry price and removes the holding once empty. A realised
// loss stamps the ledger's last loss exit date
func (l *Ledger) ApplySell(holdingID string, amount, price float64, date time.Time) (SellReceipt, error) {
	if amount <= 0 {
		return SellReceipt{}, fmt.Errorf("%w: sell amount %v", ErrNonPositiveAmount, amount)
	}
	idx := -1
	for i := range l.holdings {
		if l.holdings[i].ID == holdingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return SellReceipt{}, fmt.Errorf("%w: %q", ErrUnknownHolding, holdingID)
	}
	h := &l.holdings[idx]
	if amount > h.Amount+tolerance {
		return SellReceipt{}, fmt.Errorf("%w: requested %.8f, available %.8f",
			ErrOverdraft, amount, h.Amount)
	}
	if amount > h.Amount {
		// requested more than held within tolerance only
		amount = h.Amount
	}

	proceeds := amount * price
	pnl := amount * (price - h.EntryPrice)
	receipt := SellReceipt{
		HoldingID: h.ID,
		Amount:    amount,
		Price:     price,
		USDValue:  proceeds,
		PnL:       pnl,
	}
	if h.EntryDate != nil {
		receipt.HoldingPeriodDays = int(date.Sub(*h.EntryDate).Hours() / 24)
	}

	h.Amount -= amount
	h.TotalValueUSD = h.Amount * h.UnitValueUSD
	l.quote.Amount += proceeds
	l.quote.TotalValueUSD = l.quote.Amount
	if h.Amount <= tolerance {
		l.holdings = append(l.holdings[:idx], l.holdings[idx+1:]...)
	}
	if pnl < 0 {
		l.lastLossExit = date
		l.hasLossExit = true
	}
	return receipt, nil
}

// MarkToMarket revalues every traded holding at the latest close and advances
// each holding's high water tracker. Amounts are never changed here
func (l *Ledger) MarkToMarket(price float64) {
	for i := range l.holdings {
		h := &l.holdings[i]
		h.UnitValueUSD = price
		h.TotalValueUSD = h.Amount * price
		if price > h.HighWaterUSD {
			h.HighWaterUSD = price
		}
	}
}

// TotalValue is the quote holding plus every traded holding at its latest
// marked value
func (l *Ledger) TotalValue() float64 {
	total := l.quote.Amount
	for i := range l.holdings {
		total += l.holdings[i].TotalValueUSD
	}
	return total
}

// Snapshot records total portfolio value for the given bar date
func (l *Ledger) Snapshot(date time.Time) Snapshot {
	return Snapshot{Date: date, TotalValueUSD: l.TotalValue()}
}

// Summary reports the totals a strategy may inspect between bars
func (l *Ledger) Summary() Summary {
	s := Summary{
		TotalValueUSD: l.TotalValue(),
		QuoteUSD:      l.quote.Amount,
	}
	if l.hasLossExit {
		exit := l.lastLossExit
		s.LastLossExit = &exit
	}
	return s
}

// LastLossExit reports the date of the most recent losing sell, if any.
// Strategies read it to hold off re-entering after a stop out
func (l *Ledger) LastLossExit() (time.Time, bool) {
	return l.lastLossExit, l.hasLossExit
}

func (h Holding) clone() Holding {
	c := h
	c.StopLoss = clonePrice(h.StopLoss)
	c.TakeProfit = clonePrice(h.TakeProfit)
	if h.EntryDate != nil {
		d := *h.EntryDate
		c.EntryDate = &d
	}
	return c
}

func clonePrice(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
