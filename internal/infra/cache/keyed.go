// Package cache es un cache en memoria con claves tipadas. No hay eviction:
// una entrada vive hasta que se pisa, se borra o vence su TTL (si hay).
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	val V
	at  time.Time
}

type Keyed[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]entry[V]
	ttl  time.Duration
	now  func() time.Time
}

type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL activa el vencimiento pasivo: la entrada se lee como ausente
// pasado d desde su último Set/Update. 0 = nunca.
func WithTTL(d time.Duration) Option { return func(o *options) { o.ttl = d } }

// WithClock para tests.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func New[K comparable, V any](opts ...Option) *Keyed[K, V] {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return &Keyed[K, V]{data: map[K]entry[V]{}, ttl: o.ttl, now: o.now}
}

func (c *Keyed[K, V]) live(e entry[V]) bool {
	return c.ttl <= 0 || c.now().Sub(e.at) < c.ttl
}

func (c *Keyed[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.data[k]
	if !ok || !c.live(e) {
		var zero V
		return zero, false
	}
	return e.val, true
}

func (c *Keyed[K, V]) Set(k K, v V) {
	c.mu.Lock()
	c.data[k] = entry[V]{val: v, at: c.now()}
	c.mu.Unlock()
}

func (c *Keyed[K, V]) Has(k K) bool {
	_, ok := c.Get(k)
	return ok
}

// HasAll es la compuerta de "listo": true sólo si todas las claves están.
func (c *Keyed[K, V]) HasAll(keys ...K) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, k := range keys {
		e, ok := c.data[k]
		if !ok || !c.live(e) {
			return false
		}
	}
	return true
}

func (c *Keyed[K, V]) Delete(k K) {
	c.mu.Lock()
	delete(c.data, k)
	c.mu.Unlock()
}

// Update hace read-modify-write atómico sobre k. fn recibe el valor actual
// (y si existía) y devuelve el nuevo; si devuelve keep=false no se escribe.
// fn corre con el lock tomado: no debe llamar de vuelta al cache.
func (c *Keyed[K, V]) Update(k K, fn func(cur V, ok bool) (next V, keep bool)) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[k]
	if ok && !c.live(e) {
		ok = false
		e = entry[V]{}
	}
	next, keep := fn(e.val, ok)
	if !keep {
		return e.val, false
	}
	c.data[k] = entry[V]{val: next, at: c.now()}
	return next, true
}
