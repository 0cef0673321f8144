package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
	"github.com/jose-valero/channel-sweeper-bot/internal/infra/storage"
)

// fakePlatform simula el cliente de chat en memoria.
type fakePlatform struct {
	mu          sync.Mutex
	channels    map[string]domain.Channel
	lookupErr   map[string]error
	noPerms     map[string]bool
	sendFail    map[string]bool
	archFail    map[string]bool
	listErr     error
	listGate    chan struct{}
	listCalls   int
	sendGate    chan struct{}
	sendStarted chan string
	stamp       time.Time
	sent        []Notification
	archived    map[string]string
	nextMsg     int
}

func newFakePlatform(chans ...domain.Channel) *fakePlatform {
	p := &fakePlatform{
		channels:  map[string]domain.Channel{},
		lookupErr: map[string]error{},
		noPerms:   map[string]bool{},
		sendFail:  map[string]bool{},
		archFail:  map[string]bool{},
		archived:  map[string]string{},
	}
	for _, ch := range chans {
		p.channels[ch.ID] = ch
	}
	return p
}

func (p *fakePlatform) GuildChannels(ctx context.Context, guildID string) ([]domain.Channel, error) {
	p.mu.Lock()
	p.listCalls++
	gate := p.listGate
	p.mu.Unlock()
	if gate != nil {
		<-gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]domain.Channel, 0, len(p.channels))
	for _, ch := range p.channels {
		out = append(out, ch)
	}
	return out, nil
}

func (p *fakePlatform) Channel(ctx context.Context, channelID string) (domain.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.lookupErr[channelID]; err != nil {
		return domain.Channel{}, err
	}
	ch, ok := p.channels[channelID]
	if !ok {
		return domain.Channel{}, ErrChannelGone
	}
	return ch, nil
}

func (p *fakePlatform) CanSend(ctx context.Context, channelID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.noPerms[channelID], nil
}

// SendNotification: con sendGate el envío queda frenado hasta cerrarlo;
// sendStarted avisa qué canal entró. stamp es el timestamp del mensaje.
func (p *fakePlatform) SendNotification(ctx context.Context, n Notification) (domain.SentMessage, error) {
	p.mu.Lock()
	gate, started := p.sendGate, p.sendStarted
	p.mu.Unlock()
	if started != nil {
		started <- n.ChannelID
	}
	if gate != nil {
		<-gate
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sendFail[n.ChannelID] {
		return domain.SentMessage{}, errors.New("send rejected")
	}
	p.nextMsg++
	p.sent = append(p.sent, n)
	return domain.SentMessage{ID: fmt.Sprintf("M%d", p.nextMsg), Timestamp: p.stamp}, nil
}

func (p *fakePlatform) ArchiveChannel(ctx context.Context, channelID, categoryID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.archFail[channelID] {
		return errors.New("missing access")
	}
	p.archived[channelID] = categoryID
	return nil
}

// memScans es un ScanRepo en memoria.
type memScans struct {
	mu      sync.Mutex
	rows    map[string][]domain.StoredCategory
	writes  int
	failErr error
}

func newMemScans() *memScans { return &memScans{rows: map[string][]domain.StoredCategory{}} }

func (m *memScans) Get(ctx context.Context, guildID string) ([]domain.StoredCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.rows[guildID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rows, nil
}

func (m *memScans) Upsert(ctx context.Context, guildID string, cats []domain.StoredCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.writes++
	m.rows[guildID] = cats
	return nil
}

func (m *memScans) stored(guildID string) domain.GuildScan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.FromStorageForm(m.rows[guildID], nil)
}

type MockConfigRepo struct{ mock.Mock }

func (m *MockConfigRepo) Get(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(domain.GuildConfig), args.Error(1)
}

func (m *MockConfigRepo) Upsert(ctx context.Context, c domain.GuildConfig) error {
	return m.Called(ctx, c).Error(0)
}

type MockReporter struct{ mock.Mock }

func (m *MockReporter) Post(ctx context.Context, channelID, content string) error {
	return m.Called(ctx, channelID, content).Error(0)
}

const testGuild = "G1"

func textChannel(id, name, parent string) domain.Channel {
	return domain.Channel{ID: id, GuildID: testGuild, Name: name, ParentID: parent, Kind: domain.ChannelKindText}
}

func category(id, name string) domain.Channel {
	return domain.Channel{ID: id, GuildID: testGuild, Name: name, Kind: domain.ChannelKindCategory}
}

type testEnv struct {
	engine   *Engine
	platform *fakePlatform
	scans    *memScans
	configs  *MockConfigRepo
	now      time.Time
}

// newTestEnv deja el guild listo (cache cargado) con inv y cfg.
func newTestEnv(p *fakePlatform, inv domain.GuildScan, cfg domain.GuildConfig) *testEnv {
	env := &testEnv{platform: p, scans: newMemScans(), configs: &MockConfigRepo{}, now: time.Unix(1000, 0)}
	env.engine = NewEngine(p, env.scans, env.configs, locks.New(time.Minute), EngineOptions{
		Expiry: time.Hour,
		Now:    func() time.Time { return env.now },
	})
	cfg.GuildID = testGuild
	env.engine.cfg.Set(testGuild, cfg)
	env.engine.inv.Set(testGuild, inv)
	return env
}

func oneCategory(recs map[string]domain.ChannelRecord) domain.GuildScan {
	g := domain.NewGuildScan()
	for id, r := range recs {
		g.Put("P1", "General", id, r)
	}
	return g
}

var mockAnyCtx = mock.Anything
