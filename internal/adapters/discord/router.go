package discord

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	sentry "github.com/getsentry/sentry-go"
)

type RouterOptions struct {
	GuildIDs     []string
	AdminRoleIDs []string
	PagerIdle    time.Duration
	PagerTotal   time.Duration
}

type Router struct {
	s      *discordgo.Session
	guilds map[string]struct{}

	adminRoleIDs []string
	sweeper      Sweeper
	config       ConfigEditor

	pager        *pager
	clickLimiter *userLimiter
}

func NewRouter(s *discordgo.Session, sweeper Sweeper, config ConfigEditor, o RouterOptions) *Router {
	if o.PagerIdle <= 0 {
		o.PagerIdle = 2 * time.Minute
	}
	if o.PagerTotal <= 0 {
		o.PagerTotal = 10 * time.Minute
	}
	r := &Router{
		s:            s,
		guilds:       make(map[string]struct{}, len(o.GuildIDs)),
		adminRoleIDs: o.AdminRoleIDs,
		sweeper:      sweeper,
		config:       config,
		clickLimiter: newUserLimiter(2 * time.Second),
	}
	for _, g := range o.GuildIDs {
		r.guilds[g] = struct{}{}
	}
	r.pager = newPager(o.PagerIdle, o.PagerTotal, r.closePagerView)
	return r
}

// Register registra los slash commands en cada guild gestionado.
func (r *Router) Register() error {
	appID := r.s.State.User.ID
	for g := range r.guilds {
		if _, err := r.s.ApplicationCommandBulkOverwrite(appID, g, Commands); err != nil {
			return fmt.Errorf("register commands guild=%s: %w", g, err)
		}
	}
	return nil
}

func (r *Router) Handlers() {
	r.s.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if !r.manages(ic.GuildID) {
			return
		}
		switch ic.Type {
		case discordgo.InteractionApplicationCommand:
			r.handleSlashCommand(s, ic)
		case discordgo.InteractionMessageComponent:
			r.handleMessageComponent(s, ic)
		}
	})

	// actividad en un canal notificado = renovar
	r.s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		r.handleMessageCreate(s, m)
	})

	r.s.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		r.handleGuildCreate(g.Guild)
	})
	r.s.AddHandler(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		r.handleGuildDelete(g.Guild)
	})
}

// handleGuildCreate recarga un guild gestionado que no está en cache
// (reingreso del bot o cache vencido).
func (r *Router) handleGuildCreate(g *discordgo.Guild) {
	if g == nil || !r.manages(g.ID) || r.sweeper.Ready(g.ID) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := r.sweeper.Load(ctx, g.ID); err != nil {
		log.Printf("[guild] load guild=%s: %v", g.ID, err)
	}
}

// handleGuildDelete: Unavailable es un corte de Discord, no una salida.
func (r *Router) handleGuildDelete(g *discordgo.Guild) {
	if g == nil || g.Unavailable || !r.manages(g.ID) {
		return
	}
	r.sweeper.Unload(g.ID)
	log.Printf("[guild] removed guild=%s, cache descartado", g.ID)
}

func (r *Router) manages(guildID string) bool {
	_, ok := r.guilds[guildID]
	return ok
}

// ready: contesta y devuelve false si el guild todavía está cargando.
func (r *Router) ready(s *discordgo.Session, ic *discordgo.InteractionCreate) bool {
	if r.sweeper.Ready(ic.GuildID) {
		return true
	}
	ReplyEphemeral(s, ic, "⏳ Todavía estoy cargando el estado del servidor, probá en unos segundos.")
	return false
}

func (r *Router) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || !r.manages(m.GuildID) {
		return
	}
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if !r.sweeper.Ready(m.GuildID) || !r.sweeper.Tracked(m.GuildID, m.ChannelID) {
		return
	}
	at := m.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	renewed, err := r.sweeper.Renew(ctx, m.GuildID, m.ChannelID, at)
	if err != nil {
		log.Printf("[renew] guild=%s ch=%s: %v", m.GuildID, m.ChannelID, err)
		return
	}
	if renewed {
		log.Printf("[renew] guild=%s ch=%s by activity", m.GuildID, m.ChannelID)
	}
}

// recoverInteraction: panic en un handler → log + sentry + aviso al usuario.
func recoverInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate, what string) {
	rec := recover()
	if rec == nil {
		return
	}
	log.Printf("panic in %s: %v", what, rec)
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("interaction", what)
		scope.SetTag("guild_id", ic.GuildID)
	})
	hub.Recover(rec)
	ReplyEphemeral(s, ic, "❌ Ocurrió un error inesperado. Contacta con un administrador.")
}
