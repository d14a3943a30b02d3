package di

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/event"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/handler"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/middleware"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/repository"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/service"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/token"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/config"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/database"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	pkgmiddleware "github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/middleware"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/redis"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"github.com/gin-gonic/gin"
)

// Repositories groups the data access layer
type Repositories struct {
	Users         repository.UserRepository
	RefreshTokens repository.RefreshTokenRepository
	Levels        repository.LevelRepository
	Activities    repository.ActivityRepository
	Contents      repository.ContentRepository
	Submissions   repository.SubmissionRepository
	Progress      repository.ProgressRepository
}

// NewPostgresRepositories builds every repository over one pool
func NewPostgresRepositories(db *database.PostgresDB) *Repositories {
	pool := db.Pool()
	return &Repositories{
		Users:         repository.NewPostgresUserRepository(pool),
		RefreshTokens: repository.NewPostgresRefreshTokenRepository(pool),
		Levels:        repository.NewPostgresLevelRepository(pool),
		Activities:    repository.NewPostgresActivityRepository(pool),
		Contents:      repository.NewPostgresContentRepository(pool),
		Submissions:   repository.NewPostgresSubmissionRepository(pool),
		Progress:      repository.NewPostgresProgressRepository(pool),
	}
}

// Container holds all dependencies of the API
type Container struct {
	// Infrastructure
	Config    *config.Config
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher event.Publisher
	Codec     *token.Codec

	Repos *Repositories

	// Services
	RefreshTokenService service.RefreshTokenService
	AuthService         service.AuthService
	LearningService     service.LearningService
	ProgressService     service.ProgressService
	UserService         service.UserService

	Handlers *handler.Handlers
}

// ContainerConfig contains configuration for building the container.
// DB and Redis are optional; Repos defaults to postgres repositories over DB.
type ContainerConfig struct {
	Config    *config.Config
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher event.Publisher
	Repos     *Repositories
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, errors.New("container config is required")
	}
	appCfg := cfg.Config

	repos := cfg.Repos
	if repos == nil {
		if cfg.DB == nil {
			return nil, errors.New("either a database or repositories are required")
		}
		repos = NewPostgresRepositories(cfg.DB)
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = event.NewNoOpPublisher()
	}

	codec, err := token.NewCodec(token.Config{
		Issuer: appCfg.JWT.Issuer,
		Access: token.KeyConfig{
			Secret:          appCfg.JWT.AccessSecret,
			PreviousSecrets: appCfg.JWT.AccessPreviousSecrets,
			TTL:             appCfg.JWT.AccessTokenTTL,
		},
		Refresh: token.KeyConfig{
			Secret:          appCfg.JWT.RefreshSecret,
			PreviousSecrets: appCfg.JWT.RefreshPreviousSecrets,
			TTL:             appCfg.JWT.RefreshTokenTTL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build token codec: %w", err)
	}

	grader, err := service.NewGrader(appCfg.Learning.QuizGrader)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:    appCfg,
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Publisher: publisher,
		Codec:     codec,
		Repos:     repos,
	}

	c.RefreshTokenService = service.NewRefreshTokenService(repos.RefreshTokens, codec.TTL(token.Refresh))
	c.AuthService = service.NewAuthService(repos.Users, c.RefreshTokenService, codec, publisher, &service.AuthServiceConfig{
		BcryptCost: appCfg.JWT.BcryptCost,
	})
	c.LearningService = service.NewLearningService(repos.Levels, repos.Activities, repos.Contents, repos.Submissions, repos.Progress, grader, publisher, &service.LearningServiceConfig{
		DefaultPassingScore: appCfg.Learning.DefaultPassingScore,
	})
	c.ProgressService = service.NewProgressService(repos.Users, repos.Levels, repos.Activities, repos.Submissions, repos.Progress, publisher, appCfg.Learning.DefaultPassingScore)
	c.UserService = service.NewUserService(repos.Users, c.RefreshTokenService)

	c.Handlers = &handler.Handlers{
		Health: handler.NewHealthHandler(c.healthCheckers()),
		Auth: handler.NewAuthHandler(c.AuthService, handler.CookieConfig{
			Name:   appCfg.Cookie.Name,
			Path:   appCfg.Cookie.Path,
			Domain: appCfg.Cookie.Domain,
			Secure: appCfg.Cookie.Secure,
			MaxAge: codec.TTL(token.Refresh),
		}),
		Student: handler.NewStudentHandler(c.LearningService),
		Teacher: handler.NewTeacherHandler(c.ProgressService),
		Admin:   handler.NewAdminHandler(c.UserService),
	}

	return c, nil
}

// healthCheckers keeps absent clients as untyped nils so they read "not configured"
func (c *Container) healthCheckers() (db, rdb handler.HealthChecker) {
	if c.DB != nil {
		db = c.DB
	}
	if c.Redis != nil {
		rdb = c.Redis
	}
	return db, rdb
}

// Router builds the gin engine with the full middleware chain
func (c *Container) Router() *gin.Engine {
	policy := middleware.DefaultRoutePolicy()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		telemetry.TracingMiddleware(c.Config.OTel.ServiceName),
		telemetry.TraceHeaderMiddleware(),
		middleware.Logger(logger.Get()),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
		middleware.ErrorHandler(handler.RespondError),
		middleware.Authenticate(c.Codec, c.Repos.Users, middleware.PublicPrefixes(policy)...),
		middleware.Authorize(policy),
	)

	var opts handler.RouteOptions
	if c.Redis != nil {
		if c.Config.RateLimit.Enabled {
			opts.LoginLimiter = middleware.RateLimit(middleware.RateLimitConfig{
				Counter: c.Redis,
				Limit:   c.Config.RateLimit.LoginPerMinute,
				Window:  time.Minute,
				Name:    "login",
			})
		}
		opts.SubmitIdempotency = pkgmiddleware.Idempotency(pkgmiddleware.DefaultIdempotencyConfig(c.Redis, principalID))
	}

	handler.RegisterRoutes(r, c.Handlers, opts)
	r.NoRoute(handler.NotFound)
	return r
}

func principalID(c *gin.Context) string {
	if p, ok := middleware.GetPrincipal(c); ok {
		return strconv.FormatInt(p.UserID, 10)
	}
	return ""
}

// PostgresConfig maps application settings onto the pool configuration
func PostgresConfig(cfg *config.Config) *database.PostgresConfig {
	dbCfg := database.DefaultPostgresConfig()
	dbCfg.Host = cfg.Database.Host
	dbCfg.Port = cfg.Database.Port
	dbCfg.User = cfg.Database.User
	dbCfg.Password = cfg.Database.Password
	dbCfg.Database = cfg.Database.DBName
	dbCfg.SSLMode = cfg.Database.SSLMode
	if cfg.Database.MaxConns > 0 {
		dbCfg.MaxConns = int32(cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns > 0 {
		dbCfg.MinConns = int32(cfg.Database.MinConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		dbCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}
	if cfg.Database.ConnMaxIdleTime > 0 {
		dbCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime
	}
	dbCfg.EnableTracing = cfg.OTel.Enabled
	return dbCfg
}

// RedisConfig maps application settings onto the client configuration
func RedisConfig(cfg *config.Config) *redis.Config {
	rCfg := redis.DefaultConfig()
	rCfg.Host = cfg.Redis.Host
	rCfg.Port = cfg.Redis.Port
	rCfg.Password = cfg.Redis.Password
	rCfg.DB = cfg.Redis.DB
	if cfg.Redis.PoolSize > 0 {
		rCfg.PoolSize = cfg.Redis.PoolSize
	}
	if cfg.Redis.MinIdleConns > 0 {
		rCfg.MinIdleConns = cfg.Redis.MinIdleConns
	}
	if cfg.Redis.DialTimeout > 0 {
		rCfg.DialTimeout = cfg.Redis.DialTimeout
	}
	if cfg.Redis.ReadTimeout > 0 {
		rCfg.ReadTimeout = cfg.Redis.ReadTimeout
	}
	if cfg.Redis.WriteTimeout > 0 {
		rCfg.WriteTimeout = cfg.Redis.WriteTimeout
	}
	return rCfg
}
