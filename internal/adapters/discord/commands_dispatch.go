// despacho de InteractionApplicationCommand: parsear opciones, chequear
// permisos/estado y llamar al engine o al ConfigService
package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/channel-sweeper-bot/internal/app/locks"
	"github.com/jose-valero/channel-sweeper-bot/internal/app/service"
)

// scan/broadcast/archive pueden tocar cientos de canales
const batchTimeout = 10 * time.Minute

func (r *Router) handleSlashCommand(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	cmd := ic.ApplicationCommandData()
	log.Printf("cmd: %s by=%s guild=%s", cmd.Name, userID(ic), ic.GuildID)
	defer recoverInteraction(s, ic, "/"+cmd.Name)

	_ = DeferEphemeral(s, ic)
	if !r.requireAdminOrRoles(s, ic) {
		return
	}
	if !r.ready(s, ic) {
		return
	}
	if msg, busy := busyReply(r.sweeper, ic.GuildID, cmd.Name); busy {
		ReplyEphemeral(s, ic, msg)
		return
	}

	switch cmd.Name {
	case "scan":
		defer step("cmd.scan")()
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		defer cancel()
		rep, err := r.sweeper.RunScan(ctx, ic.GuildID)
		ReplyEphemeral(s, ic, scanMessage(rep, err))

	case "broadcast":
		defer step("cmd.broadcast")()
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		defer cancel()
		res, err := r.sweeper.RunBroadcast(ctx, ic.GuildID)
		ReplyEphemeral(s, ic, broadcastMessage(res, err))

	case "archive":
		defer step("cmd.archive")()
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		defer cancel()
		rep, err := r.sweeper.RunArchive(ctx, ic.GuildID)
		ReplyEphemeral(s, ic, archiveMessage(rep, err))

	case "inventory":
		r.openInventory(s, ic)

	case "config":
		ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
		defer cancel()
		r.handleConfig(ctx, s, ic)
	}
}

func (r *Router) handleConfig(ctx context.Context, s *discordgo.Session, ic *discordgo.InteractionCreate) {
	sub, _ := subcmdName(ic)
	if sub == "" || sub == "show" {
		msg, err := r.config.Show(ic.GuildID)
		if err != nil {
			ReplyEphemeral(s, ic, "⚠️ No pude obtener la config: "+err.Error())
			return
		}
		ReplyEphemeral(s, ic, msg)
		return
	}

	var patch service.ConfigPatch
	switch sub {
	case "notify":
		if v, ok := optChannel(ic, "channel"); ok {
			patch.NotifyChannelID = &v
		}
	case "archive-add":
		if v, ok := optChannel(ic, "category"); ok {
			patch.AddArchiveCategory = &v
		}
	case "archive-remove":
		if v, ok := optChannel(ic, "category"); ok {
			patch.RemoveArchiveCategory = &v
		}
	case "auto-archive":
		if v, ok := optBool(ic, "enabled"); ok {
			patch.AutoArchive = &v
		}
	}
	msg, err := r.config.Update(ctx, ic.GuildID, patch)
	if err != nil {
		ReplyEphemeral(s, ic, "⚠️ No pude actualizar: "+err.Error())
		return
	}
	ReplyEphemeral(s, ic, "✅ Config actualizada.\n"+msg)
}

func (r *Router) openInventory(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	pages := r.sweeper.Pages(ic.GuildID, pageSize)
	pg := clampPage(pages, 0)
	embed, comps := renderInventoryPage(pg)
	msg, err := FollowupEphemeral(s, ic, &discordgo.WebhookParams{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: comps,
	})
	if err != nil {
		log.Printf("[ui.pager] open guild=%s: %v", ic.GuildID, err)
		return
	}
	if len(comps) == 0 {
		return
	}
	r.pager.open(&pagerSession{
		guildID:   ic.GuildID,
		ownerID:   userID(ic),
		messageID: msg.ID,
		it:        ic.Interaction,
		page:      pg.Index,
	})
}

// comandos batch con su lease y la palabra para el aviso de ocupado
var batchKinds = map[string]struct {
	kind locks.Kind
	what string
}{
	"scan":      {locks.Scan, "scan"},
	"broadcast": {locks.Broadcast, "broadcast"},
	"archive":   {locks.Archive, "archivo"},
}

// busyReply corta antes de arrancar el batch si ya hay uno del mismo tipo.
// El lease sigue siendo la garantía: esto sólo ahorra el trabajo previo.
func busyReply(sw Sweeper, guildID, cmdName string) (string, bool) {
	b, ok := batchKinds[cmdName]
	if !ok || !sw.IsBusy(guildID, b.kind) {
		return "", false
	}
	return busyMessage(b.what), true
}

func busyMessage(what string) string {
	return "⏳ Ya hay un " + what + " en curso para este servidor. Esperá a que termine."
}

func scanMessage(rep service.ScanReport, err error) string {
	switch {
	case errors.Is(err, locks.ErrBusy):
		return busyMessage("scan")
	case err != nil:
		return "⚠️ El scan falló, no se modificó el inventario: " + err.Error()
	}
	cats := len(rep.Inventory.Categories)
	msg := fmt.Sprintf("✅ Scan listo: **%d** canales en **%d** categorías (%d ignorados).",
		rep.Inventory.Len(), cats, rep.Skipped)
	if rep.PersistErr != nil {
		msg += "\n⚠️ No se pudo guardar en la base; el inventario queda sólo en memoria."
	}
	return msg
}

func broadcastMessage(res service.BroadcastResult, err error) string {
	switch {
	case errors.Is(err, locks.ErrBusy):
		return busyMessage("broadcast")
	case err != nil:
		return "⚠️ No se pudo hacer el broadcast: " + err.Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📣 Broadcast: **%d** avisos enviados.", res.Sent)
	if len(res.Unfetchable) > 0 {
		fmt.Fprintf(&b, "\n**Ya no existen** (%d): %s", len(res.Unfetchable), strings.Join(res.Unfetchable, ", "))
	}
	if len(res.Unsendable) > 0 {
		mentions := make([]string, 0, len(res.Unsendable))
		for _, id := range res.Unsendable {
			mentions = append(mentions, "<#"+id+">")
		}
		fmt.Fprintf(&b, "\n**Sin permisos o con error** (%d): %s", len(res.Unsendable), strings.Join(mentions, " "))
	}
	if res.PersistErr != nil {
		b.WriteString("\n⚠️ No se pudo guardar el inventario en la base.")
	}
	return b.String()
}

func archiveMessage(rep service.ArchiveReport, err error) string {
	switch {
	case errors.Is(err, locks.ErrBusy):
		return busyMessage("archivo")
	case errors.Is(err, service.ErrNoArchiveCategory):
		return "⚠️ No hay categoría de archivo configurada. Usá `/config archive-add`."
	case err != nil:
		return "⚠️ No se pudo archivar: " + err.Error()
	}
	return rep.Summary()
}
