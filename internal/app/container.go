package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	billingApp "github.com/felixgeelhaar/arena/internal/billing/application"
	billingCommands "github.com/felixgeelhaar/arena/internal/billing/application/commands"
	billingDomain "github.com/felixgeelhaar/arena/internal/billing/domain"
	"github.com/felixgeelhaar/arena/internal/billing/infrastructure/catalog"
	"github.com/felixgeelhaar/arena/internal/billing/infrastructure/scheduler"
	identityCommands "github.com/felixgeelhaar/arena/internal/identity/application/commands"
	identityDomain "github.com/felixgeelhaar/arena/internal/identity/domain"
	notificationsDomain "github.com/felixgeelhaar/arena/internal/notifications/domain"
	notificationsInfra "github.com/felixgeelhaar/arena/internal/notifications/infrastructure"
	organizationApp "github.com/felixgeelhaar/arena/internal/organizations/application"
	organizationCommands "github.com/felixgeelhaar/arena/internal/organizations/application/commands"
	"github.com/felixgeelhaar/arena/internal/organizations/application/subscribers"
	"github.com/felixgeelhaar/arena/internal/readmodel"
	sharedDomain "github.com/felixgeelhaar/arena/internal/shared/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/arena/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/arena/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/migrations"
	teamCommands "github.com/felixgeelhaar/arena/internal/teams/application/commands"
	"github.com/felixgeelhaar/arena/pkg/config"
	"github.com/felixgeelhaar/arena/pkg/observability"
)

// Infrastructure holds the external connections a container is built on.
// Redis and Publisher are optional.
type Infrastructure struct {
	Conn      database.Connection
	Redis     redis.UniversalClient
	Publisher eventbus.Publisher
}

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	DBConn     database.Connection
	UnitOfWork *database.UnitOfWork
	Redis      redis.UniversalClient
	Publisher  eventbus.Publisher
	EventBus   *eventbus.Bus
	Health     *observability.HealthRegistry

	// Repositories
	Repos *Repositories

	// Plans and policy
	Catalog *billingDomain.Catalog
	Policy  *billingApp.PolicyService

	// Cross-domain propagation
	Propagator *subscribers.LimitPropagator
	Notifier   notificationsDomain.Sender
	Inbox      *notificationsInfra.RedisSender

	// Read model
	ReadModel *readmodel.Cache
	Refresher *readmodel.Refresher

	// Identity handlers
	RegisterUserHandler *identityCommands.RegisterUserHandler

	// Organization handlers
	CreateOrganizationHandler *organizationCommands.CreateOrganizationHandler
	RenameOrganizationHandler *organizationCommands.RenameOrganizationHandler

	// Subscription handlers
	CreateSubscriptionHandler  *billingCommands.CreateSubscriptionHandler
	ChangePlanHandler          *billingCommands.ChangePlanHandler
	ChangeStatusHandler        *billingCommands.ChangeStatusHandler
	CancelSubscriptionHandler  *billingCommands.CancelSubscriptionHandler
	ExpireSubscriptionsHandler *billingCommands.ExpireSubscriptionsHandler
	Expiry                     *scheduler.ExpiryScheduler

	// Team handlers
	CreateTeamHandler *teamCommands.CreateTeamHandler
	MembershipHandler *teamCommands.MembershipHandler

	unsubscribe []eventbus.Unsubscribe
	closers     []func() error
}

// NewContainer connects to the configured backends and wires the
// application. In development, unreachable Redis and RabbitMQ are logged
// and skipped; in other environments they are fatal.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := database.Open(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("connected to database", "driver", conn.Driver())

	infra := Infrastructure{Conn: conn}
	var closers []func() error

	if cfg.RedisURL != "" {
		client, err := connectRedis(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			infra.Redis = client
			closers = append(closers, client.Close)
			logger.Info("connected to redis")
		case cfg.IsDevelopment():
			logger.Warn("redis not available, continuing without it", "error", err)
		default:
			_ = conn.Close()
			return nil, err
		}
	}

	if cfg.RabbitMQURL != "" && (cfg.EventMirrorEnabled || cfg.HasNotifier(config.NotifierRabbitMQ)) {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventExchange, logger)
		switch {
		case err == nil:
			infra.Publisher = publisher
		case cfg.IsDevelopment():
			logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			infra.Publisher = eventbus.NewNoopPublisher(logger)
		default:
			for _, c := range closers {
				_ = c()
			}
			_ = conn.Close()
			return nil, err
		}
	}

	c, err := Wire(ctx, cfg, infra, logger)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		_ = conn.Close()
		return nil, err
	}
	// Closed in reverse: publisher, then redis, then the database.
	c.closers = append(append([]func() error{conn.Close}, closers...), c.closers...)
	return c, nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Wire builds the application on already-open infrastructure. The caller
// keeps ownership of infra.Conn and infra.Redis; the publisher is closed by
// Close.
func Wire(ctx context.Context, cfg *config.Config, infra Infrastructure, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat := catalog.Default()
	if cfg.PlanCatalogPath != "" {
		loaded, err := catalog.Load(cfg.PlanCatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan catalog: %w", err)
		}
		cat = loaded
	}

	repos, err := NewRepositories(infra.Conn)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		DBConn:     infra.Conn,
		UnitOfWork: database.NewUnitOfWork(infra.Conn),
		Redis:      infra.Redis,
		Publisher:  infra.Publisher,
		EventBus:   eventbus.New(logger),
		Health:     observability.NewHealthRegistry(),
		Repos:      repos,
		Catalog:    cat,
	}
	if infra.Publisher != nil {
		c.closers = append(c.closers, infra.Publisher.Close)
	}

	c.Policy = billingApp.NewPolicyService(cat, organizationApp.NewCurrentPlans(repos.Organizations))
	c.Notifier = c.buildNotifier()
	c.Propagator = subscribers.NewLimitPropagator(cat, repos.Teams, c.UnitOfWork, c.EventBus, logger)

	c.wireReadModel()
	c.wireSubscribers()
	c.wireHandlers()
	c.registerHealthChecks()

	if cfg.LocalMode {
		if err := c.ensureLocalUser(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}

	logger.Info("application container initialized",
		"driver", infra.Conn.Driver(),
		"plans", len(cat.Plans()),
		"notifiers", cfg.Notifiers,
	)
	return c, nil
}

// buildNotifier fans out to every configured transport, each behind its own
// circuit breaker. Transports whose backend is missing are skipped.
func (c *Container) buildNotifier() notificationsDomain.Sender {
	cfg := c.Config
	var senders notificationsInfra.MultiSender
	add := func(name string, s notificationsDomain.Sender) {
		bc := notificationsInfra.DefaultBreakerConfig("notifier-" + name)
		if cfg.NotifierFailureThreshold > 0 {
			bc.FailureThreshold = uint32(cfg.NotifierFailureThreshold)
		}
		if cfg.NotifierOpenTimeout > 0 {
			bc.Timeout = cfg.NotifierOpenTimeout
		}
		senders = append(senders, notificationsInfra.NewBreakerSender(s, bc, c.Logger))
	}

	for _, name := range cfg.Notifiers {
		switch name {
		case config.NotifierLog:
			add(name, notificationsInfra.NewLogSender(c.Logger))
		case config.NotifierRedis:
			if c.Redis == nil {
				c.Logger.Warn("redis notifier configured without redis, skipping")
				continue
			}
			c.Inbox = notificationsInfra.NewRedisSender(c.Redis, cfg.NotificationInboxSize)
			add(name, c.Inbox)
		case config.NotifierRabbitMQ:
			if c.Publisher == nil {
				c.Logger.Warn("rabbitmq notifier configured without a broker, skipping")
				continue
			}
			add(name, notificationsInfra.NewAMQPSender(c.Publisher))
		default:
			c.Logger.Warn("unknown notifier", "notifier", name)
		}
	}
	if len(senders) == 0 {
		return notificationsInfra.NewLogSender(c.Logger)
	}
	return senders
}

func (c *Container) wireReadModel() {
	var loader readmodel.Loader = readmodel.NewRepositoryLoader(c.Repos.Organizations, c.Repos.Teams, c.Repos.Subscriptions)
	if c.Config.SnapshotsEnabled && c.Redis != nil {
		loader = readmodel.NewRedisSnapshotLoader(c.Redis, loader, c.Config.SnapshotTTL, c.Logger)
	}
	c.ReadModel = readmodel.New(loader, c.Logger)

	rc := readmodel.DefaultRefresherConfig()
	if c.Config.RefreshInterval > 0 {
		rc.Interval = c.Config.RefreshInterval
	}
	c.Refresher = readmodel.NewRefresher(c.ReadModel, rc, c.Logger)
}

// wireSubscribers registers bus consumers. Organization handlers run
// first so the read-model invalidation and the mirror observe the
// propagated state.
func (c *Container) wireSubscribers() {
	for _, consumer := range subscribers.NewConsumers(subscribers.Dependencies{
		Organizations: c.Repos.Organizations,
		Propagator:    c.Propagator,
		Notifier:      c.Notifier,
		UnitOfWork:    c.UnitOfWork,
		Publisher:     c.EventBus,
		Logger:        c.Logger,
	}) {
		c.unsubscribe = append(c.unsubscribe, c.EventBus.RegisterConsumer(consumer))
	}

	c.unsubscribe = append(c.unsubscribe, c.EventBus.RegisterConsumer(readmodel.NewSyncSubscriber(c.ReadModel)))

	if c.Config.EventMirrorEnabled && c.Publisher != nil {
		c.unsubscribe = append(c.unsubscribe, c.EventBus.RegisterConsumer(eventbus.NewMirror(c.Publisher, c.Logger)))
		c.Logger.Info("mirroring domain events", "exchange", c.Config.EventExchange)
	}
}

func (c *Container) wireHandlers() {
	r := c.Repos
	c.RegisterUserHandler = identityCommands.NewRegisterUserHandler(r.Users, c.UnitOfWork, c.EventBus)

	c.CreateOrganizationHandler = organizationCommands.NewCreateOrganizationHandler(r.Organizations, r.Subscriptions, r.Users, c.UnitOfWork, c.EventBus)
	c.RenameOrganizationHandler = organizationCommands.NewRenameOrganizationHandler(r.Organizations, c.UnitOfWork, c.EventBus)

	c.CreateSubscriptionHandler = billingCommands.NewCreateSubscriptionHandler(r.Subscriptions, c.Catalog, c.UnitOfWork, c.EventBus)
	c.ChangePlanHandler = billingCommands.NewChangePlanHandler(r.Subscriptions, c.Catalog, c.UnitOfWork, c.EventBus)
	c.ChangeStatusHandler = billingCommands.NewChangeStatusHandler(r.Subscriptions, c.UnitOfWork, c.EventBus)
	c.CancelSubscriptionHandler = billingCommands.NewCancelSubscriptionHandler(r.Subscriptions, c.UnitOfWork, c.EventBus)
	c.ExpireSubscriptionsHandler = billingCommands.NewExpireSubscriptionsHandler(r.Subscriptions, c.UnitOfWork, c.EventBus, c.Logger)
	c.Expiry = scheduler.NewExpiryScheduler(c.ExpireSubscriptionsHandler, scheduler.Config{Interval: c.Config.ExpiryInterval}, c.Logger)

	c.CreateTeamHandler = teamCommands.NewCreateTeamHandler(r.Teams, r.Users, c.Policy, c.UnitOfWork, c.EventBus)
	c.MembershipHandler = teamCommands.NewMembershipHandler(r.Teams, r.Users, c.UnitOfWork, c.EventBus)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (c *Container) registerHealthChecks() {
	c.Health.Register("database", observability.PingChecker("database", true, c.DBConn.Ping))
	if c.Redis != nil {
		c.Health.Register("redis", observability.PingChecker("redis", false, func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		}))
	}
	if p, ok := c.Publisher.(pinger); ok {
		c.Health.Register("rabbitmq", observability.PingChecker("rabbitmq", false, p.Ping))
	}
}

// ensureLocalUser creates the configured local user when missing, so a
// fresh local database can be used straight away.
func (c *Container) ensureLocalUser(ctx context.Context) error {
	id, err := uuid.Parse(c.Config.UserID)
	if err != nil {
		return fmt.Errorf("invalid ARENA_USER_ID: %w", err)
	}
	_, err = c.Repos.Users.FindByID(ctx, id)
	if err == nil {
		return nil
	}
	if !sharedDomain.IsKind(err, sharedDomain.KindNotFound) {
		return fmt.Errorf("failed to check local user: %w", err)
	}

	email, err := identityDomain.NewEmail("local@arena.local")
	if err != nil {
		return err
	}
	name, err := identityDomain.NewName("Local User")
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := c.Repos.Users.Save(ctx, identityDomain.RehydrateUser(id, email, name, 0, now, now)); err != nil {
		if errors.Is(err, identityDomain.ErrEmailAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create local user: %w", err)
	}
	c.Logger.Info("created local user", "user_id", id)
	return nil
}

// Start launches background work owned by the container.
func (c *Container) Start(ctx context.Context) error {
	return c.Refresher.Start(ctx)
}

// StartWorker launches the background work of the worker process: the
// read model refresher and the expiry sweep.
func (c *Container) StartWorker(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	return c.Expiry.Start(ctx)
}

// Close stops background work and releases owned resources.
func (c *Container) Close() {
	if c.Expiry != nil {
		c.Expiry.Stop()
	}
	if c.Refresher != nil {
		c.Refresher.Stop()
	}
	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("error closing resource", "error", err)
		}
	}
	c.closers = nil
}
