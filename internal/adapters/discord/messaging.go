package discord

import (
	"errors"
	"log"

	"github.com/bwmarrin/discordgo"
)

// Defer efímero: el ack inicial, el trabajo pesado sigue con followups.
func DeferEphemeral(s *discordgo.Session, ic *discordgo.InteractionCreate) error {
	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("DeferEphemeral error: %v", err)
	}
	return err
}

// DeferUpdate: ack de un componente sin mensaje nuevo (se edita después).
func DeferUpdate(s *discordgo.Session, ic *discordgo.InteractionCreate) error {
	err := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		log.Printf("DeferUpdate error: %v", err)
	}
	return err
}

func ReplyEphemeral(s *discordgo.Session, ic *discordgo.InteractionCreate, content string, embeds ...*discordgo.MessageEmbed) {
	_, err := FollowupEphemeral(s, ic, &discordgo.WebhookParams{
		Content: content,
		Embeds:  embeds,
	})
	if err != nil {
		log.Printf("ReplyEphemeral error: %v", err)
	}
}

// FollowupEphemeral devuelve el mensaje creado (el pager necesita su ID).
func FollowupEphemeral(s *discordgo.Session, ic *discordgo.InteractionCreate, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	params.Flags |= discordgo.MessageFlagsEphemeral
	params.AllowedMentions = &discordgo.MessageAllowedMentions{}
	msg, err := s.FollowupMessageCreate(ic.Interaction, true, params)
	if err == nil {
		return msg, nil
	}
	// Fallback sólo si todavía no hay respuesta (webhook desconocido)
	var reqErr *discordgo.RESTError
	if errors.As(err, &reqErr) && reqErr.Message != nil && reqErr.Message.Code == discordgo.ErrCodeUnknownWebhook {
		rerr := s.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content:    params.Content,
				Flags:      discordgo.MessageFlagsEphemeral,
				Embeds:     params.Embeds,
				Components: params.Components,
			},
		})
		if rerr != nil {
			return nil, rerr
		}
		return s.InteractionResponse(ic.Interaction)
	}
	return nil, err
}

// EditFollowup edita un followup ya enviado (páginas, cierre del pager).
func EditFollowup(s *discordgo.Session, it *discordgo.Interaction, messageID string, params *discordgo.WebhookEdit) {
	if _, err := s.FollowupMessageEdit(it, messageID, params); err != nil {
		log.Printf("EditFollowup error: %v", err)
	}
}
