package kite

import (
	"sync"

	"nifty-options-bot/internal/types"
)

// candleCache keeps the most recent candles per key so each poll only
// downloads bars newer than the last cached one.
type candleCache struct {
	mu      sync.RWMutex
	buffers map[string][]types.Candle
	maxSize int
}

func newCandleCache(maxSize int) *candleCache {
	return &candleCache{buffers: make(map[string][]types.Candle), maxSize: maxSize}
}

// lastTs returns the timestamp of the newest cached bar, 0 if none.
func (cc *candleCache) lastTs(key string) int64 {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	b := cc.buffers[key]
	if len(b) == 0 {
		return 0
	}
	return b[len(b)-1].Ts
}

// merge appends bars in time order. A bar with the timestamp of the newest
// cached bar replaces it, since the live bar keeps changing until it closes.
func (cc *candleCache) merge(key string, bars []types.Candle) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	b := cc.buffers[key]
	for _, c := range bars {
		n := len(b)
		switch {
		case n == 0 || c.Ts > b[n-1].Ts:
			b = append(b, c)
		case c.Ts == b[n-1].Ts:
			b[n-1] = c
		}
	}
	if len(b) > cc.maxSize {
		b = append([]types.Candle(nil), b[len(b)-cc.maxSize:]...)
	}
	cc.buffers[key] = b
}

func (cc *candleCache) get(key string) []types.Candle {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return append([]types.Candle(nil), cc.buffers[key]...)
}
