// cmd/container.go
//
// Root composition root. Owns infrastructure (DB, Redis, email provider)
// and composes bounded-context containers. This is the only place that
// knows about ALL modules.
package main

import (
	"context"

	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/pressroom-io/pressroom/pkg/config"
	"github.com/pressroom-io/pressroom/pkg/iam/iamcontainer"
	"github.com/pressroom-io/pressroom/pkg/iam/otp/otpinfra"
	"github.com/pressroom-io/pressroom/pkg/kernel"
	"github.com/pressroom-io/pressroom/pkg/kernel/kvredis"
	"github.com/pressroom-io/pressroom/pkg/logx"
	"github.com/pressroom-io/pressroom/pkg/notifx"
	"github.com/pressroom-io/pressroom/pkg/notifx/notifxconsole"
	"github.com/pressroom-io/pressroom/pkg/notifx/notifxses"
	"github.com/pressroom-io/pressroom/pkg/ratelimit"
)

// Container holds shared infrastructure and composed module containers.
type Container struct {
	Config *config.Config

	// Infrastructure (shared across all modules)
	DB    *sqlx.DB
	Redis *redis.Client
	Store kernel.TTLStore

	// Bounded-context containers
	IAM     *iamcontainer.Container
	Limiter *ratelimit.Limiter
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — DB, Redis, notifications
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	db, err := sqlx.Connect("postgres", c.Config.Database.DSN())
	if err != nil {
		logx.Fatalf("Failed to connect to database: %v", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetMaxIdleConns(c.Config.Database.MaxIdleConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)
	c.DB = db
	logx.Info("Database connected")

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (Redis is required)", err)
	}
	c.Store = kvredis.NewRedisStore(c.Redis)
	logx.Info("Redis connected")
}

func (c *Container) newNotificationClient() *notifx.Client {
	var provider notifx.EmailSender

	switch c.Config.Notifx.Provider {
	case "ses":
		awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
			awsConfig.WithRegion(c.Config.Notifx.AWSRegion))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		provider = notifxses.NewSESProvider(ses.NewFromConfig(awsCfg))
		logx.Infof("SES email provider configured (region: %s)", c.Config.Notifx.AWSRegion)

	default:
		provider = notifxconsole.NewConsoleProvider()
		logx.Warn("Console email provider configured (codes are logged, not sent)")
	}

	return notifx.NewClient(provider, c.Config.Notifx.FromAddress, c.Config.Notifx.FromName)
}

// ---------------------------------------------------------------------------
// Module composition — each bounded context wires itself
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	notifier, err := otpinfra.NewEmailNotifier(c.newNotificationClient())
	if err != nil {
		logx.Fatalf("Failed to initialize OTP notifier: %v", err)
	}

	c.IAM = iamcontainer.New(iamcontainer.Deps{
		DB:          c.DB,
		Store:       c.Store,
		Cfg:         c.Config,
		OTPNotifier: notifier,
	})

	c.Limiter = ratelimit.NewLimiter(c.Store,
		ratelimit.WithPenaltyTTL(c.Config.RateLimit.PenaltyTTL))
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("Cleaning up resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.Errorf("Error closing database: %v", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		}
	}
}
