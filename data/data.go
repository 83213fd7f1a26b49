package data

import (
	"github.com/thrasher-corp/gct-backtester/data/kline"
)

// Handler walks a bar table in order. The engine drives it one bar per cycle
// and reads the causal history back out for strategy invocations
type Handler struct {
	stream kline.Table
	latest kline.Bar
	offset int
}

// NewHandler returns a handler positioned before the first bar of the stream
func NewHandler(stream kline.Table) *Handler {
	return &Handler{stream: stream}
}

// Next will return the next bar in the list and also shift the offset one
func (d *Handler) Next() (kline.Bar, bool) {
	if len(d.stream) <= d.offset {
		return kline.Bar{}, false
	}
	ret := d.stream[d.offset]
	d.offset++
	d.latest = ret
	return ret, true
}

// History will return all bars up to and including the current one, never
// beyond. The slice is capacity clamped so appends cannot touch the stream
func (d *Handler) History() kline.Table {
	return d.stream[:d.offset:d.offset]
}

// Latest will return the current bar
func (d *Handler) Latest() kline.Bar {
	return d.latest
}

// Offset returns the number of bars consumed so far
func (d *Handler) Offset() int {
	return d.offset
}

// Len returns the total length of the stream
func (d *Handler) Len() int {
	return len(d.stream)
}

// Reset repositions the handler to before the first bar
func (d *Handler) Reset() {
	d.latest = kline.Bar{}
	d.offset = 0
}
