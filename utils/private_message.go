package utils

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DirectMessenger is the part of *discordgo.Session needed to DM a member.
type DirectMessenger interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SendPrivateEmbed DMs an embed to a user. Members may have DMs closed; callers
// normally just log the error.
func SendPrivateEmbed(s DirectMessenger, userID string, embed *discordgo.MessageEmbed) error {
	channel, err := s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open private channel with %s: %w", userID, err)
	}
	if _, err := s.ChannelMessageSendEmbed(channel.ID, embed); err != nil {
		return fmt.Errorf("failed to send private message to %s: %w", userID, err)
	}
	return nil
}
