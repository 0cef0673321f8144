// Package locks guarda que scan/archive/broadcast no corran dos veces a la vez
// para el mismo guild. Cada tipo es un lock independiente.
package locks

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

type Kind string

const (
	Scan      Kind = "scan"
	Archive   Kind = "archive"
	Broadcast Kind = "broadcast"
)

var ErrBusy = errors.New("operation already running")

// Journal persiste los leases para poder detectar corridas interrumpidas
// tras un reinicio. Lo implementa storage.LeaseRepo.
type Journal interface {
	Record(ctx context.Context, l LeaseInfo) error
	Clear(ctx context.Context, guildID string, kind Kind, token int64) error
}

type LeaseInfo struct {
	GuildID    string
	Kind       Kind
	Token      int64
	AcquiredAt time.Time
	ExpiresAt  time.Time
}

type key struct {
	guild string
	kind  Kind
}

type Locker struct {
	mu      sync.Mutex
	held    map[key]LeaseInfo
	ttl     time.Duration
	next    int64
	now     func() time.Time
	journal Journal
}

type Option func(*Locker)

func WithJournal(j Journal) Option          { return func(l *Locker) { l.journal = j } }
func WithClock(now func() time.Time) Option { return func(l *Locker) { l.now = now } }

// New: ttl es la vida máxima de un lease. Pasado ese tiempo otro llamador
// puede tomarlo aunque el dueño no haya liberado (upstream colgado).
// ttl <= 0 = sin vencimiento.
func New(ttl time.Duration, opts ...Option) *Locker {
	l := &Locker{held: map[key]LeaseInfo{}, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Locker) expired(li LeaseInfo, now time.Time) bool {
	return !li.ExpiresAt.IsZero() && !now.Before(li.ExpiresAt)
}

// Acquire pasa idle -> busy. Si ya está busy devuelve ErrBusy sin tocar nada.
func (l *Locker) Acquire(guildID string, kind Kind) (*Lease, error) {
	now := l.now()
	k := key{guildID, kind}

	l.mu.Lock()
	if cur, ok := l.held[k]; ok {
		if !l.expired(cur, now) {
			l.mu.Unlock()
			return nil, ErrBusy
		}
		log.Printf("[locks] lease %s/%s token=%d vencido, se reasigna", guildID, kind, cur.Token)
	}
	l.next++
	li := LeaseInfo{GuildID: guildID, Kind: kind, Token: l.next, AcquiredAt: now}
	if l.ttl > 0 {
		li.ExpiresAt = now.Add(l.ttl)
	}
	l.held[k] = li
	l.mu.Unlock()

	if l.journal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := l.journal.Record(ctx, li); err != nil {
			log.Printf("[locks] journal record %s/%s: %v", guildID, kind, err)
		}
		cancel()
	}
	return &Lease{l: l, info: li}, nil
}

// Busy: true si hay un lease vigente.
func (l *Locker) Busy(guildID string, kind Kind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, ok := l.held[key{guildID, kind}]
	return ok && !l.expired(cur, l.now())
}

func (l *Locker) release(li LeaseInfo) {
	k := key{li.GuildID, li.Kind}
	l.mu.Lock()
	cur, ok := l.held[k]
	mine := ok && cur.Token == li.Token
	if mine {
		delete(l.held, k)
	}
	l.mu.Unlock()

	if !mine {
		// lease vencido y reasignado: no liberamos al nuevo dueño
		return
	}
	if l.journal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := l.journal.Clear(ctx, li.GuildID, li.Kind, li.Token); err != nil {
			log.Printf("[locks] journal clear %s/%s: %v", li.GuildID, li.Kind, err)
		}
		cancel()
	}
}

// Lease es el handle de un lock tomado. Usar con defer lease.Release().
type Lease struct {
	l    *Locker
	info LeaseInfo
	once sync.Once
}

func (le *Lease) Info() LeaseInfo { return le.info }

func (le *Lease) Release() {
	le.once.Do(func() { le.l.release(le.info) })
}
