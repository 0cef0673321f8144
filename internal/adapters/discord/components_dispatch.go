package discord

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/service"
)

func (r *Router) handleMessageComponent(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	data := ic.MessageComponentData()
	prefix, arg := parseCustomID(data.CustomID)
	defer recoverInteraction(s, ic, "component "+prefix)

	// la paginación edita el mismo mensaje, el resto contesta aparte
	if prefix == cidPage {
		r.handlePage(s, ic, arg)
		return
	}

	_ = DeferEphemeral(s, ic)
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	switch prefix {
	case cidRenew:
		// botón público en el canal notificado: cualquiera puede tocarlo
		if !r.clickLimiter.Allow(userID(ic)) {
			ReplyEphemeral(s, ic, "⏳ Esperá un segundo…")
			return
		}
		if !r.ready(s, ic) {
			return
		}
		renewed, err := r.sweeper.Renew(ctx, ic.GuildID, arg, time.Now())
		ReplyEphemeral(s, ic, renewMessage(renewed, err))

	case cidPick:
		if !r.requireAdminOrRoles(s, ic) || !r.ready(s, ic) {
			return
		}
		if len(data.Values) == 0 {
			ReplyEphemeral(s, ic, "⚠️ Selección inválida.")
			return
		}
		chID := data.Values[0]
		ref, ok := findRef(r.sweeper.Pages(ic.GuildID, pageSize), chID)
		if !ok {
			ReplyEphemeral(s, ic, "ℹ️ Ese canal ya no está en el inventario.")
			return
		}
		content, comps := renderChannelDetail(chID, ref.Record)
		if _, err := FollowupEphemeral(s, ic, &discordgo.WebhookParams{Content: content, Components: comps}); err != nil {
			log.Printf("[ui.pick] guild=%s ch=%s: %v", ic.GuildID, chID, err)
		}

	case cidSend:
		if !r.requireAdminOrRoles(s, ic) || !r.ready(s, ic) {
			return
		}
		defer step("component.chan_send")()
		rec, err := r.sweeper.SendOne(ctx, ic.GuildID, arg)
		ReplyEphemeral(s, ic, sendOneMessage(arg, rec.ArchiveTimestamp, err))

	case cidForget:
		if !r.requireAdminOrRoles(s, ic) || !r.ready(s, ic) {
			return
		}
		err := r.sweeper.Forget(ctx, ic.GuildID, arg)
		ReplyEphemeral(s, ic, forgetMessage(arg, err))
	}
}

func (r *Router) handlePage(s *discordgo.Session, ic *discordgo.InteractionCreate, arg string) {
	n, ok := pageArg(arg)
	if !ok {
		return
	}
	sess, ok := r.pager.touch(ic.Message.ID, userID(ic), n)
	if !ok {
		_ = DeferEphemeral(s, ic)
		ReplyEphemeral(s, ic, "⌛ Esta vista expiró o no es tuya. Usá `/inventory`.")
		return
	}
	_ = DeferUpdate(s, ic)

	pg := clampPage(r.sweeper.Pages(sess.guildID, pageSize), n)
	embed, comps := renderInventoryPage(pg)
	embeds := []*discordgo.MessageEmbed{embed}
	if comps == nil {
		comps = []discordgo.MessageComponent{}
	}
	EditFollowup(s, sess.it, sess.messageID, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &comps,
	})
}

func renewMessage(renewed bool, err error) string {
	switch {
	case errors.Is(err, service.ErrNotReady):
		return "⏳ Todavía estoy cargando, probá en unos segundos."
	case err != nil:
		return "⚠️ Se renovó, pero no pude guardarlo: " + err.Error()
	case !renewed:
		return "ℹ️ Este canal no tiene un aviso pendiente."
	}
	return "✅ Listo, el canal no se va a archivar."
}

func sendOneMessage(channelID string, expiresAt int64, err error) string {
	switch {
	case errors.Is(err, service.ErrUnknownChannel):
		return "ℹ️ Ese canal ya no está en el inventario."
	case errors.Is(err, service.ErrChannelGone):
		return "⚠️ El canal ya no existe."
	case errors.Is(err, service.ErrChannelArchived):
		return "ℹ️ <#" + channelID + "> ya está archivado, corré /scan para volver a trackearlo."
	case errors.Is(err, service.ErrCannotSend):
		return "⚠️ No tengo permisos para escribir en <#" + channelID + ">."
	case expiresAt > 0 && err != nil:
		return "⚠️ Aviso enviado, pero no pude guardarlo: " + err.Error()
	case err != nil:
		return "⚠️ No pude enviar el aviso: " + err.Error()
	}
	return "📣 Aviso enviado en <#" + channelID + ">."
}

func forgetMessage(channelID string, err error) string {
	switch {
	case errors.Is(err, service.ErrUnknownChannel):
		return "ℹ️ Ese canal ya no estaba en el inventario."
	case err != nil:
		return "⚠️ Se quitó, pero no pude guardarlo: " + err.Error()
	}
	return "🗑️ <#" + channelID + "> quitado del inventario."
}
