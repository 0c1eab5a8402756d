package bot

import (
	"log"
	"sync"
	"time"

	"automod-bot/automod"
	"automod-bot/model"
	"automod-bot/utils"
)

// BotProvider defines the methods the scheduler needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	GetRegistry() *automod.Registry
	GetPunishLock() *utils.PunishLock
}

func (b *Bot) GetRegistry() *automod.Registry {
	return b.Registry
}

func (b *Bot) GetPunishLock() *utils.PunishLock {
	return b.PunishLock
}

// Scheduler manages all scheduled tasks.
type Scheduler struct {
	bot  BotProvider
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
	now  func() time.Time
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot BotProvider) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
		now:  time.Now,
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.startStateSweeper()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		log.Println("Stopping scheduler...")
		close(s.done)
		s.wg.Wait()
		log.Println("Scheduler stopped.")
	})
}

func (s *Scheduler) startStateSweeper() {
	defer s.wg.Done()
	interval := s.bot.GetConfig().Automod.SweepInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	sweepTicker := time.NewTicker(interval)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

// sweep evicts member state that has gone quiet for longer than the configured maximum age.
func (s *Scheduler) sweep() int {
	now := s.now()
	removed := s.bot.GetRegistry().Sweep(s.bot.GetConfig().Automod.StateMaxAge, now)
	locks := s.bot.GetPunishLock().Cleanup(now)
	if removed > 0 || locks > 0 {
		log.Printf("[Automod] Swept %d idle member states and %d punish locks", removed, locks)
	}
	return removed
}
