package discord

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/service"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

func refs() []domain.ChannelRef {
	return []domain.ChannelRef{
		{ParentID: "P1", ParentName: "General", ChannelID: "C1", Record: domain.ChannelRecord{ChannelName: "chat", LastMsgTimestamp: 50}},
		{ParentID: "P1", ParentName: "General", ChannelID: "C2", Record: domain.ChannelRecord{ChannelName: "memes", Status: true, ArchiveTimestamp: 900}},
		{ParentID: "P2", ParentName: "Old", ChannelID: "C3", Record: domain.ChannelRecord{ChannelName: "viejo", Archived: true}},
	}
}

func TestRenderInventoryPage(t *testing.T) {
	embed, comps := renderInventoryPage(service.Page{Index: 0, Total: 2, Items: refs()})

	assert.Contains(t, embed.Description, "**General**")
	assert.Contains(t, embed.Description, "**Old**")
	assert.Contains(t, embed.Description, "<#C2> (vence <t:900:R>)")
	assert.Contains(t, embed.Description, "🗄️ <#C3>")
	assert.Equal(t, "Página 1/2", embed.Footer.Text)

	require.Len(t, comps, 2)
	nav := comps[0].(discordgo.ActionsRow)
	prev := nav.Components[0].(discordgo.Button)
	next := nav.Components[1].(discordgo.Button)
	assert.True(t, prev.Disabled)
	assert.False(t, next.Disabled)
	assert.Equal(t, "inv_page:1", next.CustomID)

	menu := comps[1].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	assert.Equal(t, cidPick, menu.CustomID)
	require.Len(t, menu.Options, 3)
	assert.Equal(t, "C1", menu.Options[0].Value)
	assert.Equal(t, "#chat", menu.Options[0].Label)
}

func TestRenderInventoryPageEmpty(t *testing.T) {
	embed, comps := renderInventoryPage(service.Page{Index: 0, Total: 1})
	assert.Contains(t, embed.Description, "/scan")
	assert.Nil(t, comps)
}

func TestRenderChannelDetail(t *testing.T) {
	content, comps := renderChannelDetail("C3", domain.ChannelRecord{ChannelName: "viejo", Archived: true})
	assert.Contains(t, content, "archivado")
	row := comps[0].(discordgo.ActionsRow)
	send := row.Components[0].(discordgo.Button)
	forget := row.Components[1].(discordgo.Button)
	assert.True(t, send.Disabled)
	assert.Equal(t, "chan_send:C3", send.CustomID)
	assert.Equal(t, "chan_forget:C3", forget.CustomID)
}

func TestFindRefAndClamp(t *testing.T) {
	pages := []service.Page{
		{Index: 0, Total: 2, Items: refs()[:2]},
		{Index: 1, Total: 2, Items: refs()[2:]},
	}
	ref, ok := findRef(pages, "C3")
	assert.True(t, ok)
	assert.Equal(t, "Old", ref.ParentName)
	_, ok = findRef(pages, "nope")
	assert.False(t, ok)

	assert.Equal(t, 1, clampPage(pages, 7).Index)
	assert.Equal(t, 0, clampPage(pages, -2).Index)
	assert.Equal(t, 1, clampPage(nil, 3).Total)
}

func openSessions(p *pager) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

func TestPagerIdleExpiry(t *testing.T) {
	var expired atomic.Int32
	p := newPager(30*time.Millisecond, time.Hour, func(*pagerSession) { expired.Add(1) })
	p.open(&pagerSession{guildID: "G1", ownerID: "U1", messageID: "M1"})

	_, ok := p.touch("M1", "U2", 1)
	assert.False(t, ok, "only the opener can page")

	sess, ok := p.touch("M1", "U1", 1)
	require.True(t, ok)
	assert.Equal(t, 1, sess.page)

	assert.Eventually(t, func() bool { return expired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, openSessions(p))
	_, ok = p.touch("M1", "U1", 0)
	assert.False(t, ok)
}

func TestPagerTotalExpiryWinsOverActivity(t *testing.T) {
	var expired atomic.Int32
	p := newPager(time.Hour, 60*time.Millisecond, func(*pagerSession) { expired.Add(1) })
	p.open(&pagerSession{ownerID: "U1", messageID: "M1"})

	// clicks no extienden el tope total
	for i := 0; i < 3; i++ {
		p.touch("M1", "U1", i)
		time.Sleep(10 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return expired.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, expired.Load(), "expires once")
}

func TestPagerReopenReplacesSession(t *testing.T) {
	var got []string
	done := make(chan struct{}, 1)
	p := newPager(20*time.Millisecond, time.Hour, func(s *pagerSession) {
		got = append(got, s.guildID)
		done <- struct{}{}
	})
	p.open(&pagerSession{guildID: "old", ownerID: "U1", messageID: "M1"})
	p.open(&pagerSession{guildID: "new", ownerID: "U1", messageID: "M1"})

	<-done
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, []string{"new"}, got)
	assert.Zero(t, openSessions(p))
}
