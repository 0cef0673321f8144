package discord

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/service"
	"github.com/jose-valero/channel-sweeper-bot/internal/domain"
)

const pageSize = 10

// pagerSession es una vista /inventory abierta. Vive hasta idle sin clicks
// o total desde que se abrió, lo que pase primero.
type pagerSession struct {
	guildID   string
	ownerID   string
	messageID string
	it        *discordgo.Interaction
	page      int

	idle  *time.Timer
	total *time.Timer
}

type pager struct {
	mu       sync.Mutex
	sessions map[string]*pagerSession // por message id
	idle     time.Duration
	total    time.Duration
	onExpire func(*pagerSession)
}

func newPager(idle, total time.Duration, onExpire func(*pagerSession)) *pager {
	return &pager{
		sessions: map[string]*pagerSession{},
		idle:     idle,
		total:    total,
		onExpire: onExpire,
	}
}

func (p *pager) open(sess *pagerSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old, ok := p.sessions[sess.messageID]; ok {
		old.idle.Stop()
		old.total.Stop()
	}
	sess.idle = time.AfterFunc(p.idle, func() { p.expire(sess) })
	sess.total = time.AfterFunc(p.total, func() { p.expire(sess) })
	p.sessions[sess.messageID] = sess
}

// touch reinicia el timer idle y mueve la página. false si la sesión ya
// expiró o si quien clickea no es quien abrió la vista.
func (p *pager) touch(messageID, userID string, page int) (*pagerSession, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[messageID]
	if !ok || sess.ownerID != userID {
		return nil, false
	}
	sess.idle.Reset(p.idle)
	sess.page = page
	return sess, true
}

func (p *pager) expire(sess *pagerSession) {
	p.mu.Lock()
	cur, ok := p.sessions[sess.messageID]
	if !ok || cur != sess {
		p.mu.Unlock()
		return
	}
	delete(p.sessions, sess.messageID)
	sess.idle.Stop()
	sess.total.Stop()
	p.mu.Unlock()

	if p.onExpire != nil {
		p.onExpire(sess)
	}
}

// closePagerView saca los botones del mensaje cuando la sesión vence.
func (r *Router) closePagerView(sess *pagerSession) {
	log.Printf("[ui.pager] expired guild=%s msg=%s", sess.guildID, sess.messageID)
	empty := []discordgo.MessageComponent{}
	content := "⌛ Vista cerrada. Usá `/inventory` para abrir otra."
	EditFollowup(r.s, sess.it, sess.messageID, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &empty,
	})
}

// renderInventoryPage arma el embed + navegación + menú de la página.
func renderInventoryPage(pg service.Page) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title:  "📋 Inventario de canales",
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Página %d/%d", pg.Index+1, pg.Total)},
	}
	if len(pg.Items) == 0 {
		embed.Description = "No hay canales en el inventario. Corré `/scan` primero."
		return embed, nil
	}

	var b strings.Builder
	lastParent := ""
	for _, ref := range pg.Items {
		if ref.ParentID != lastParent {
			fmt.Fprintf(&b, "\n**%s**\n", ref.ParentName)
			lastParent = ref.ParentID
		}
		fmt.Fprintf(&b, "%s <#%s>%s\n", statusIcon(ref.Record), ref.ChannelID, statusSuffix(ref.Record))
	}
	embed.Description = strings.TrimSpace(b.String())

	nav := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Style:    discordgo.SecondaryButton,
			Label:    "Anterior",
			CustomID: customID(cidPage, fmt.Sprint(pg.Index-1)),
			Emoji:    &discordgo.ComponentEmoji{Name: "⬅️"},
			Disabled: pg.Index == 0,
		},
		discordgo.Button{
			Style:    discordgo.SecondaryButton,
			Label:    "Siguiente",
			CustomID: customID(cidPage, fmt.Sprint(pg.Index+1)),
			Emoji:    &discordgo.ComponentEmoji{Name: "➡️"},
			Disabled: pg.Index >= pg.Total-1,
		},
	}}

	opts := make([]discordgo.SelectMenuOption, 0, len(pg.Items))
	for _, ref := range pg.Items {
		opts = append(opts, discordgo.SelectMenuOption{
			Label:       truncate("#"+ref.Record.ChannelName, 100),
			Value:       ref.ChannelID,
			Description: truncate(ref.ParentName+" · "+statusText(ref.Record), 100),
		})
	}
	pick := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			CustomID:    cidPick,
			Placeholder: "Elegí un canal para ver acciones",
			Options:     opts,
		},
	}}
	return embed, []discordgo.MessageComponent{nav, pick}
}

func statusIcon(rec domain.ChannelRecord) string {
	switch {
	case rec.Archived:
		return "🗄️"
	case rec.Status:
		return "🔔"
	}
	return "▫️"
}

func statusText(rec domain.ChannelRecord) string {
	switch {
	case rec.Archived:
		return "archivado"
	case rec.Status:
		return "notificado"
	}
	return "sin aviso"
}

func statusSuffix(rec domain.ChannelRecord) string {
	if rec.Status && !rec.Archived {
		return fmt.Sprintf(" (vence <t:%d:R>)", rec.ArchiveTimestamp)
	}
	if rec.LastMsgTimestamp > 0 {
		return fmt.Sprintf(" (actividad <t:%d:R>)", rec.LastMsgTimestamp)
	}
	return ""
}

// renderChannelDetail: respuesta al elegir un canal en el menú.
func renderChannelDetail(channelID string, rec domain.ChannelRecord) (string, []discordgo.MessageComponent) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <#%s> · %s", statusIcon(rec), channelID, statusText(rec))
	if rec.LastMsgTimestamp > 0 {
		fmt.Fprintf(&b, "\nÚltima actividad: <t:%d:f>", rec.LastMsgTimestamp)
	}
	if rec.Status {
		fmt.Fprintf(&b, "\nSe archiva: <t:%d:f>", rec.ArchiveTimestamp)
	}
	row := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{
			Style:    discordgo.PrimaryButton,
			Label:    "Enviar aviso",
			CustomID: customID(cidSend, channelID),
			Emoji:    &discordgo.ComponentEmoji{Name: "📣"},
			Disabled: rec.Archived,
		},
		discordgo.Button{
			Style:    discordgo.DangerButton,
			Label:    "Quitar del inventario",
			CustomID: customID(cidForget, channelID),
			Emoji:    &discordgo.ComponentEmoji{Name: "🗑️"},
		},
	}}
	return b.String(), []discordgo.MessageComponent{row}
}

func findRef(pages []service.Page, channelID string) (domain.ChannelRef, bool) {
	for _, pg := range pages {
		for _, ref := range pg.Items {
			if ref.ChannelID == channelID {
				return ref, true
			}
		}
	}
	return domain.ChannelRef{}, false
}

func clampPage(pages []service.Page, n int) service.Page {
	if len(pages) == 0 {
		return service.Page{Total: 1}
	}
	if n < 0 {
		n = 0
	}
	if n >= len(pages) {
		n = len(pages) - 1
	}
	return pages[n]
}
