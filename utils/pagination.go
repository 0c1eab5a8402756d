package utils

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	DefaultPageIdleTimeout = 2 * time.Minute
	DefaultPageMaxDuration = 10 * time.Minute
)

func paginationComponents(currentPage, totalPages int, customIDPrefix string, disabled bool) []discordgo.MessageComponent {
	if totalPages <= 1 {
		return nil
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "上一页",
					Style:    discordgo.PrimaryButton,
					Disabled: disabled || currentPage == 1,
					CustomID: fmt.Sprintf("%s:%d", customIDPrefix, currentPage-1),
				},
				discordgo.Button{
					Label:    fmt.Sprintf("%d/%d", currentPage, totalPages),
					Style:    discordgo.SecondaryButton,
					Disabled: true,
					CustomID: customIDPrefix + ":indicator",
				},
				discordgo.Button{
					Label:    "下一页",
					Style:    discordgo.PrimaryButton,
					Disabled: disabled || currentPage == totalPages,
					CustomID: fmt.Sprintf("%s:%d", customIDPrefix, currentPage+1),
				},
			},
		},
	}
}

// SplitPages joins lines into pages of at most perPage lines each. There is always at least one page.
func SplitPages(lines []string, perPage int) []string {
	if perPage <= 0 {
		perPage = 10
	}
	if len(lines) == 0 {
		return []string{""}
	}
	var pages []string
	for start := 0; start < len(lines); start += perPage {
		end := start + perPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, strings.Join(lines[start:end], "\n"))
	}
	return pages
}

// PageSession is the part of *discordgo.Session a Paginator uses.
type PageSession interface {
	Responder
	AddHandler(handler interface{}) func()
}

// Paginator shows a list of embeds one page at a time on a deferred interaction response.
// It stops listening after IdleTimeout without a click or MaxDuration overall, whichever
// comes first, and disables its buttons. Only the invoking user can turn pages.
type Paginator struct {
	Pages       []*discordgo.MessageEmbed
	IdleTimeout time.Duration
	MaxDuration time.Duration

	session     PageSession
	interaction *discordgo.Interaction
	userID      string
	prefix      string

	mu            sync.Mutex
	page          int
	idle          *time.Timer
	hard          *time.Timer
	removeHandler func()
	once          sync.Once
	done          chan struct{}
}

func NewPaginator(s PageSession, i *discordgo.Interaction, pages []*discordgo.MessageEmbed) *Paginator {
	return &Paginator{
		Pages:       pages,
		IdleTimeout: DefaultPageIdleTimeout,
		MaxDuration: DefaultPageMaxDuration,
		session:     s,
		interaction: i,
		userID:      InteractionUserID(i),
		prefix:      "page:" + i.ID,
		done:        make(chan struct{}),
	}
}

// Start shows the first page and, when there is more than one, starts listening for clicks.
func (p *Paginator) Start() error {
	if len(p.Pages) == 0 {
		return fmt.Errorf("paginator has no pages")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	embeds := []*discordgo.MessageEmbed{p.Pages[0]}
	components := paginationComponents(1, len(p.Pages), p.prefix, false)
	if _, err := p.session.InteractionResponseEdit(p.interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		return fmt.Errorf("failed to send first page: %w", err)
	}
	if len(p.Pages) == 1 {
		p.once.Do(func() { close(p.done) })
		return nil
	}

	p.removeHandler = p.session.AddHandler(p.onInteraction)
	p.idle = time.AfterFunc(p.IdleTimeout, p.Expire)
	p.hard = time.AfterFunc(p.MaxDuration, p.Expire)
	return nil
}

// Done is closed once the paginator stopped listening.
func (p *Paginator) Done() <-chan struct{} {
	return p.done
}

// Page returns the zero-based page currently shown.
func (p *Paginator) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Expire stops listening and disables the buttons. Safe to call more than once.
func (p *Paginator) Expire() {
	p.once.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.idle != nil {
			p.idle.Stop()
		}
		if p.hard != nil {
			p.hard.Stop()
		}
		if p.removeHandler != nil {
			p.removeHandler()
		}
		components := paginationComponents(p.page+1, len(p.Pages), p.prefix, true)
		if _, err := p.session.InteractionResponseEdit(p.interaction, &discordgo.WebhookEdit{Components: &components}); err != nil {
			log.Printf("[Paginator] Failed to disable buttons: %v", err)
		}
		close(p.done)
	})
}

func (p *Paginator) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	p.HandleClick(i.Interaction)
}

// HandleClick processes a component interaction. It returns false when the interaction
// isn't a page turn for this paginator.
func (p *Paginator) HandleClick(i *discordgo.Interaction) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}
	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, p.prefix+":") {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
	}

	if InteractionUserID(i) != p.userID {
		err := p.session.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "只有命令发起者可以翻页。",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			log.Printf("[Paginator] Error sending error response: %v", err)
		}
		return true
	}

	page, err := strconv.Atoi(strings.TrimPrefix(customID, p.prefix+":"))
	if err != nil || page < 1 || page > len(p.Pages) {
		return false
	}

	p.mu.Lock()
	select {
	case <-p.done:
		// expired while waiting for the lock; the buttons are already disabled
		p.mu.Unlock()
		return false
	default:
	}
	p.page = page - 1
	p.idle.Reset(p.IdleTimeout)
	embeds := []*discordgo.MessageEmbed{p.Pages[p.page]}
	components := paginationComponents(page, len(p.Pages), p.prefix, false)
	p.mu.Unlock()

	err = p.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     embeds,
			Components: components,
		},
	})
	if err != nil {
		log.Printf("[Paginator] Failed to turn page: %v", err)
	}
	return true
}

// InteractionUserID returns the invoking user in guilds and DMs alike.
func InteractionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
