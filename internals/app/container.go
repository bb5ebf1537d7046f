package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"watchpost/config"
	"watchpost/internals/modules/checker"
	"watchpost/internals/modules/cleaner"
	"watchpost/internals/modules/dispatch"
	"watchpost/internals/modules/event"
	"watchpost/internals/modules/monitor"
	"watchpost/internals/modules/notifier"
	"watchpost/internals/modules/scheduler"
	"watchpost/pkg/httpclient"
	"watchpost/pkg/rabbitmq"
	"watchpost/pkg/redisstore"
)

type Container struct {
	DB          *pgxpool.Pool
	RedisClient *redisstore.Client
	Logger      *zerolog.Logger

	Scheduler  *scheduler.Scheduler
	Dispatcher *dispatch.Dispatcher
	Cleaner    *cleaner.Cleaner
	MonitorSvc *monitor.Service

	monitorHandler *monitor.Handler

	amqpConn *amqp091.Connection
	amqpPub  *rabbitmq.Publisher
}

func NewContainer(ctx context.Context, db *pgxpool.Pool, cfg *config.Config, logger *zerolog.Logger) (*Container, error) {

	redisClient, err := redisstore.New(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	validate := validator.New()
	probeClient := httpclient.NewHttpClient()

	uptimeEvents := event.NewUptimeEventRepository(db, logger)
	sslEvents := event.NewSSLEventRepository(db, logger)
	latency := event.NewLatencyRepository(db, logger)
	evaluator := event.NewEvaluator(uptimeEvents, sslEvents, logger)

	c := &Container{
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	}

	handlers, err := c.buildNotifiers(cfg, probeClient, logger)
	if err != nil {
		return nil, err
	}
	c.Dispatcher = dispatch.New(handlers, cfg.Checks.DispatchBuffer, logger)

	sslThreshold := time.Duration(cfg.Checks.SSLExpiryThresholdDays) * 24 * time.Hour
	uptimeChecker := checker.NewUptimeChecker(
		probeClient, cfg.Checks.HTTPTimeout, evaluator, latency, redisClient, c.Dispatcher, logger)
	sslChecker := checker.NewSSLChecker(
		uptimeEvents, evaluator, redisClient, c.Dispatcher, sslThreshold, cfg.Checks.HTTPTimeout, logger)

	c.Scheduler = scheduler.New(uptimeChecker, sslChecker, logger)

	monitorRepo := monitor.NewRepository(db, logger)
	c.MonitorSvc = monitor.NewService(
		monitorRepo, c.Scheduler, redisClient, uptimeEvents, sslEvents, latency, logger)
	c.monitorHandler = monitor.NewHandler(c.MonitorSvc, validate, logger)

	c.Cleaner = cleaner.New(uptimeEvents, sslEvents, latency, cfg.Retention, logger)

	return c, nil
}

// buildNotifiers assembles the handler set from config. The log handler is
// always present.
func (c *Container) buildNotifiers(cfg *config.Config, client *http.Client, logger *zerolog.Logger) ([]dispatch.Handler, error) {
	handlers := []dispatch.Handler{notifier.NewLogNotifier(logger)}

	n := cfg.Notifiers
	if n.SMTP.Enabled {
		handlers = append(handlers, notifier.NewSMTPNotifier(n.SMTP, cfg.ServiceName))
	}
	if n.Slack.Enabled {
		handlers = append(handlers, notifier.NewSlackNotifier(n.Slack.WebhookURL, client))
	}
	if n.Telegram.Enabled {
		tg, err := notifier.NewTelegramNotifier(n.Telegram)
		if err != nil {
			return nil, fmt.Errorf("telegram notifier: %w", err)
		}
		handlers = append(handlers, tg)
	}
	if n.Pagerduty.Enabled {
		handlers = append(handlers, notifier.NewPagerdutyNotifier(n.Pagerduty.RoutingKey, client))
	}
	if n.AMQP.Enabled {
		conn, err := rabbitmq.NewConnection(&n.AMQP)
		if err != nil {
			return nil, fmt.Errorf("amqp connection: %w", err)
		}
		if err := rabbitmq.SetupTopology(conn, &n.AMQP); err != nil {
			conn.Close()
			return nil, fmt.Errorf("amqp topology: %w", err)
		}
		pub, err := rabbitmq.NewPublisher(conn, n.AMQP.ExchangeName, n.AMQP.RoutingKey)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("amqp publisher: %w", err)
		}
		c.amqpConn = conn
		c.amqpPub = pub
		handlers = append(handlers, notifier.NewAMQPNotifier(pub))
	}

	return handlers, nil
}

// Start brings up the background workers: dispatcher first so the checkers
// always have somewhere to send events, then the timers, then the retention
// sweep.
func (c *Container) Start(ctx context.Context) error {
	monitors, err := c.MonitorSvc.ListEnabled(ctx)
	if err != nil {
		return err
	}

	c.Dispatcher.Start(ctx)
	c.Scheduler.Start(ctx, monitors)
	go c.Cleaner.Run(ctx)
	return nil
}

// Shutdown stops producers before consumers so the event queue can drain.
func (c *Container) Shutdown() error {
	c.Scheduler.Stop()
	c.Dispatcher.Stop()

	if c.amqpPub != nil {
		if err := c.amqpPub.Close(); err != nil {
			c.Logger.Error().Err(err).Msg("failed to close amqp publisher")
		}
	}
	if c.amqpConn != nil {
		if err := c.amqpConn.Close(); err != nil {
			c.Logger.Error().Err(err).Msg("failed to close amqp connection")
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	return nil
}
