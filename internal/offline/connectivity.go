package offline

import (
	"context"
	"sync"
	"time"
)

// Connectivity is the client's view of whether the server is reachable.
// Listeners fire only on transitions. There is no debouncing, so a flapping
// link triggers a sync on every offline-to-online edge.
type Connectivity struct {
	mu        sync.Mutex
	online    bool
	nextID    int
	listeners map[int]func(online bool)
}

func NewConnectivity(online bool) *Connectivity {
	return &Connectivity{online: online, listeners: make(map[int]func(bool))}
}

func (c *Connectivity) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// Set updates the flag and notifies listeners when it changed.
func (c *Connectivity) Set(online bool) {
	c.mu.Lock()
	if c.online == online {
		c.mu.Unlock()
		return
	}
	c.online = online
	listeners := make([]func(bool), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(online)
	}
}

// Subscribe registers fn for transitions and returns a function removing it.
func (c *Connectivity) Subscribe(fn func(online bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Prober checks whether the server answers.
type Prober interface {
	Health(ctx context.Context) error
}

// Watch probes the server every interval until ctx is done. Any HTTP answer,
// even an error status, counts as online; only transport failures count as
// offline.
func (c *Connectivity) Watch(ctx context.Context, prober Prober, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		c.probe(ctx, prober, interval)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Connectivity) probe(ctx context.Context, prober Prober, timeout time.Duration) {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := prober.Health(probeCtx)
	if ctx.Err() != nil {
		return
	}
	c.Set(err == nil || !IsConnectivityError(err))
}
