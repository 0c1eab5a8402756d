package automod

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

type Embed struct {
	URL string
}

type Attachment struct {
	ID       string
	URL      string
	Filename string
	Size     int
}

// Message is the part of a guild message the rules look at.
type Message struct {
	ID           string
	GuildID      string
	ChannelID    string
	AuthorID     string
	Content      string
	Embeds       []Embed
	Attachments  []Attachment
	UserMentions int
	RoleMentions int
	CreatedAt    time.Time
}

// FromDiscord converts a gateway message. Nil fields are tolerated.
func FromDiscord(m *discordgo.Message) *Message {
	msg := &Message{
		ID:           m.ID,
		GuildID:      m.GuildID,
		ChannelID:    m.ChannelID,
		Content:      m.Content,
		UserMentions: len(m.Mentions),
		RoleMentions: len(m.MentionRoles),
		CreatedAt:    m.Timestamp,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		msg.Embeds = append(msg.Embeds, Embed{URL: e.URL})
	}
	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			ID:       a.ID,
			URL:      a.URL,
			Filename: a.Filename,
			Size:     a.Size,
		})
	}
	return msg
}

// MemberKey identifies the guild member that sent the message.
func (m *Message) MemberKey() string {
	return memberKey(m.GuildID, m.AuthorID)
}

func memberKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// Length counts characters, not bytes.
func (m *Message) Length() int {
	return utf8.RuneCountInString(m.Content)
}

func (m *Message) CapitalLetters() int {
	n := 0
	for _, r := range m.Content {
		if unicode.IsUpper(r) {
			n++
		}
	}
	return n
}

func (m *Message) Newlines() int {
	return strings.Count(m.Content, "\n")
}

func (m *Message) Mentions() int {
	return m.UserMentions + m.RoleMentions
}

// MediaCount is the number of embeds plus attachments.
func (m *Message) MediaCount() int {
	return len(m.Embeds) + len(m.Attachments)
}
