package utils

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

// Responder is the part of *discordgo.Session used to answer interactions.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func respondEphemeral(s Responder, i *discordgo.Interaction, content, kind string) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending %s: %v", kind, err)
	}
}

func editResponse(s Responder, i *discordgo.Interaction, edit *discordgo.WebhookEdit, kind string) {
	if _, err := s.InteractionResponseEdit(i, edit); err != nil {
		log.Printf("Error sending %s: %v", kind, err)
	}
}

// SendErrorResponse answers an interaction with an ephemeral error.
func SendErrorResponse(s Responder, i *discordgo.InteractionCreate, message string) {
	respondEphemeral(s, i.Interaction, "❌ "+message, "error response")
}

// SendEphemeralResponse answers an interaction with a message only the invoker sees.
func SendEphemeralResponse(s Responder, i *discordgo.InteractionCreate, message string) {
	respondEphemeral(s, i.Interaction, message, "ephemeral response")
}

// DeferResponse acknowledges an interaction; the answer follows later through an edit.
func DeferResponse(s Responder, i *discordgo.InteractionCreate, ephemeral bool) error {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		response.Data = &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		}
	}
	return s.InteractionRespond(i.Interaction, response)
}

// SendFollowUpError replaces a deferred response with an error message.
func SendFollowUpError(s Responder, i *discordgo.Interaction, message string) {
	content := "❌ " + message
	editResponse(s, i, &discordgo.WebhookEdit{Content: &content}, "follow-up error message")
}

// SendFollowUpEmbed replaces a deferred response with an embed.
func SendFollowUpEmbed(s Responder, i *discordgo.Interaction, embed *discordgo.MessageEmbed) {
	embeds := []*discordgo.MessageEmbed{embed}
	editResponse(s, i, &discordgo.WebhookEdit{Embeds: &embeds}, "follow-up embed")
}
