package bot

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"confessions/backup"
	"confessions/command"
	"confessions/config"
	"confessions/db"
	"confessions/gateway"
	"confessions/handler/confession"
	"confessions/handler/my"
	"confessions/health"
	"confessions/model"
	"confessions/moderation"
	"confessions/observability"
	"confessions/relay"
	"confessions/scheduler"
	"confessions/store"
	"confessions/throttle"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Bot owns every long-lived component of the process.
type Bot struct {
	cfg model.Config
	log zerolog.Logger

	session  *discordgo.Session
	store    *store.Store
	guard    *throttle.Guard
	ledger   *db.Ledger
	redis    *backup.RedisStorage
	backup   *backup.Manager
	workflow *moderation.Workflow
	relay    *relay.Relay
	sched    *scheduler.Scheduler
	handler  *confession.Handler
	panel    *my.Handler
	health   *health.Server
	cron     *cron.Cron
}

// Start 启动机器人, blocking until SIGINT or SIGTERM.
func Start() error {
	if err := config.LoadConfig(); err != nil {
		return errors.Wrap(err, "load config")
	}
	log := observability.NewLogger(config.Cfg.LogLevel, config.Cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := New(config.Cfg, log)
	if err != nil {
		return err
	}
	return b.Run(ctx)
}

// New wires the components without touching the network.
func New(cfg model.Config, log zerolog.Logger) (*Bot, error) {
	b := &Bot{
		cfg:   cfg,
		log:   log,
		store: store.New(),
		guard: throttle.NewGuard(config.RateLimit(cfg), cfg.BanHours),
		cron:  cron.New(cron.WithLogger(observability.CronLogger(log))),
	}

	if cfg.AuditDB != "" {
		ledger, err := db.Open(cfg.AuditDB)
		if err != nil {
			return nil, err
		}
		b.ledger = ledger
	}

	storage, err := b.snapshotStorage()
	if err != nil {
		b.closeLedger()
		return nil, err
	}
	b.backup = backup.NewManager(b.store, b.guard, storage, config.BackupInterval(cfg), log)

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		b.closeLedger()
		return nil, errors.Wrap(err, "create discord session")
	}
	b.session = session

	gw := gateway.WithTimeout(
		gateway.NewDiscord(session, cfg.PublicChannelID, cfg.ModerationChannelID, cfg.PollDurationHours),
		config.GatewayTimeout(cfg),
	)

	var (
		wfOpts    = []moderation.Option{moderation.WithLogger(log)}
		relayOpts = []relay.Option{relay.WithLogger(log)}
		schedOpts = []scheduler.Option{scheduler.WithLogger(log)}
	)
	// a nil *db.Ledger must not reach the interfaces
	if b.ledger != nil {
		wfOpts = append(wfOpts, moderation.WithLedger(b.ledger))
		relayOpts = append(relayOpts, relay.WithLedger(b.ledger))
		schedOpts = append(schedOpts, scheduler.WithLedger(b.ledger))
	}

	b.workflow = moderation.New(b.store, b.guard, gw, wfOpts...)
	b.relay = relay.New(b.store, b.guard, gw, config.ReplySessionTTL(cfg), relayOpts...)
	b.sched = scheduler.New(b.store, gw, config.PublishInterval(cfg), schedOpts...)
	b.handler = confession.New(confession.Deps{
		Workflow:            b.workflow,
		Relay:               b.relay,
		Store:               b.store,
		Guard:               b.guard,
		Backup:              b.backup,
		ModerationChannelID: cfg.ModerationChannelID,
		Timeout:             2 * config.GatewayTimeout(cfg),
		Log:                 log,
	})
	var stats my.StatsSource
	if b.ledger != nil {
		stats = b.ledger
	}
	b.panel = my.New(stats, b.guard, log)
	if cfg.HealthAddr != "" {
		b.health = health.NewServer(cfg.HealthAddr, b.store, log)
	}
	return b, nil
}

func (b *Bot) snapshotStorage() (backup.Storage, error) {
	if b.cfg.BackupBackend != "redis" {
		return backup.FileStorage{Path: b.cfg.BackupFile}, nil
	}
	rs, err := backup.NewRedisStorage(b.cfg.RedisURL, b.cfg.BackupRedisKey)
	if err != nil {
		return nil, err
	}
	b.redis = rs
	return rs, nil
}

// Run restores the last snapshot, connects to Discord and serves until ctx
// is cancelled. A final snapshot is written on the way out.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.backup.Load(ctx); err != nil {
		// a broken snapshot must not keep the bot offline
		b.log.Error().Err(err).Msg("could not restore snapshot, starting empty")
	}

	b.handler.RegisterHandlers()
	b.panel.RegisterHandlers()
	registerEventHandlers(b.session, b.handler)

	if err := b.session.Open(); err != nil {
		return errors.Wrap(err, "open discord connection")
	}
	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return err
	}

	if err := b.schedule(ctx); err != nil {
		b.session.Close()
		return err
	}
	b.cron.Start()

	g, gctx := errgroup.WithContext(ctx)
	if b.health != nil {
		g.Go(b.health.Run)
	}

	b.log.Info().Msg("🤖 Bot is now running. Press CTRL-C to exit.")
	<-gctx.Done()
	b.shutdown()
	return g.Wait()
}

func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	for _, cmd := range command.UserCommands {
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return errors.Wrapf(err, "cannot create '%s' command", cmd.Name)
		}
	}

	ch, err := b.session.Channel(b.cfg.ModerationChannelID)
	if err != nil {
		return errors.Wrap(err, "look up moderation channel")
	}
	for _, cmd := range command.ModerationCommands {
		if _, err := b.session.ApplicationCommandCreate(appID, ch.GuildID, cmd); err != nil {
			return errors.Wrapf(err, "cannot create '%s' command", cmd.Name)
		}
	}
	return nil
}

func (b *Bot) schedule(ctx context.Context) error {
	if _, err := b.sched.Register(ctx, b.cron); err != nil {
		return errors.Wrap(err, "schedule publisher")
	}
	if _, err := b.backup.Register(ctx, b.cron); err != nil {
		return errors.Wrap(err, "schedule backup")
	}
	if _, err := registerJanitor(b.cron, b.relay, b.guard, b.log); err != nil {
		return errors.Wrap(err, "schedule janitor")
	}
	return nil
}

// shutdown stops intake first so the final snapshot sees a quiet store.
func (b *Bot) shutdown() {
	b.log.Info().Msg("shutting down")
	if err := b.session.Close(); err != nil {
		b.log.Warn().Err(err).Msg("closing discord session")
	}
	<-b.cron.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.backup.Save(ctx); err != nil {
		b.log.Error().Err(err).Msg("final snapshot failed")
	}
	if b.health != nil {
		if err := b.health.Shutdown(ctx); err != nil {
			b.log.Warn().Err(err).Msg("health server shutdown")
		}
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	b.closeLedger()
}

func (b *Bot) closeLedger() {
	if b.ledger == nil {
		return
	}
	if err := b.ledger.Close(); err != nil {
		b.log.Warn().Err(err).Msg("closing audit ledger")
	}
}
