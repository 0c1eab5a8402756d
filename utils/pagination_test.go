package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePageSession struct {
	mu       sync.Mutex
	handlers int
	removed  int
	edits    []*discordgo.WebhookEdit
	responds []*discordgo.InteractionResponse
}

func (f *fakePageSession) AddHandler(handler interface{}) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.removed++
	}
}

func (f *fakePageSession) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responds = append(f.responds, resp)
	return nil
}

func (f *fakePageSession) InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakePageSession) lastEdit() *discordgo.WebhookEdit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edits[len(f.edits)-1]
}

func testPages(n int) []*discordgo.MessageEmbed {
	pages := make([]*discordgo.MessageEmbed, n)
	for i := range pages {
		pages[i] = &discordgo.MessageEmbed{Description: string(rune('a' + i))}
	}
	return pages
}

func click(customID, userID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:     "click",
		Type:   discordgo.InteractionMessageComponent,
		Data:   discordgo.MessageComponentInteractionData{CustomID: customID},
		Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
	}
}

func buttonsDisabled(edit *discordgo.WebhookEdit) bool {
	row := (*edit.Components)[0].(discordgo.ActionsRow)
	for _, c := range row.Components {
		if !c.(discordgo.Button).Disabled {
			return false
		}
	}
	return true
}

func TestPaginatorTurnsPages(t *testing.T) {
	assert := assert.New(t)
	fs := &fakePageSession{}
	origin := &discordgo.Interaction{ID: "i1", Member: &discordgo.Member{User: &discordgo.User{ID: "u1"}}}

	p := NewPaginator(fs, origin, testPages(3))
	p.IdleTimeout = time.Minute
	p.MaxDuration = time.Minute
	require.NoError(t, p.Start())
	defer p.Expire()

	assert.Equal(1, fs.handlers)
	assert.True(p.HandleClick(click("page:i1:2", "u1")))
	assert.Equal(1, p.Page())
	assert.Equal(discordgo.InteractionResponseUpdateMessage, fs.responds[0].Type)
	assert.Equal("b", fs.responds[0].Data.Embeds[0].Description)

	assert.True(p.HandleClick(click("page:i1:3", "u2")), "other users are answered but cannot page")
	assert.Equal(1, p.Page())
	assert.Equal(discordgo.MessageFlagsEphemeral, fs.responds[1].Data.Flags)

	assert.False(p.HandleClick(click("page:other:2", "u1")))
	assert.False(p.HandleClick(click("page:i1:9", "u1")))
}

func TestPaginatorIdleTimeout(t *testing.T) {
	assert := assert.New(t)
	fs := &fakePageSession{}
	origin := &discordgo.Interaction{ID: "i1", User: &discordgo.User{ID: "u1"}}

	p := NewPaginator(fs, origin, testPages(2))
	p.IdleTimeout = 20 * time.Millisecond
	p.MaxDuration = time.Minute
	require.NoError(t, p.Start())

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("paginator did not expire")
	}
	assert.Equal(1, fs.removed)
	assert.True(buttonsDisabled(fs.lastEdit()))
	assert.False(p.HandleClick(click("page:i1:2", "u1")), "expired paginators ignore clicks")
}

func TestPaginatorHardLimit(t *testing.T) {
	fs := &fakePageSession{}
	origin := &discordgo.Interaction{ID: "i1", User: &discordgo.User{ID: "u1"}}

	p := NewPaginator(fs, origin, testPages(2))
	p.IdleTimeout = time.Minute
	p.MaxDuration = 50 * time.Millisecond
	require.NoError(t, p.Start())

	// clicks keep resetting the idle timer but not the hard limit
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-p.Done():
			assert.True(t, buttonsDisabled(fs.lastEdit()))
			return
		case <-deadline:
			t.Fatal("paginator outlived its maximum duration")
		case <-time.After(10 * time.Millisecond):
			p.HandleClick(click("page:i1:2", "u1"))
		}
	}
}

func TestPaginatorSinglePage(t *testing.T) {
	assert := assert.New(t)
	fs := &fakePageSession{}
	origin := &discordgo.Interaction{ID: "i1", User: &discordgo.User{ID: "u1"}}

	p := NewPaginator(fs, origin, testPages(1))
	require.NoError(t, p.Start())
	assert.Equal(0, fs.handlers)
	assert.Nil(*fs.lastEdit().Components)
	<-p.Done()
}

func TestPaginatorClickRacingExpire(t *testing.T) {
	assert := assert.New(t)
	fs := &fakePageSession{}
	origin := &discordgo.Interaction{ID: "i1", User: &discordgo.User{ID: "u1"}}

	p := NewPaginator(fs, origin, testPages(3))
	p.IdleTimeout = time.Minute
	p.MaxDuration = time.Minute
	require.NoError(t, p.Start())
	defer p.Expire()

	// hold the lock so the click gets past the first done check and waits
	p.mu.Lock()
	result := make(chan bool, 1)
	go func() { result <- p.HandleClick(click("page:i1:2", "u1")) }()
	time.Sleep(20 * time.Millisecond)
	p.once.Do(func() { close(p.done) })
	p.mu.Unlock()

	assert.False(<-result)
	assert.Equal(0, p.Page())
	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Empty(fs.responds, "no page update after expiry")
}
