package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/parishscheduler/internal/app/controllers"
	appMigrations "github.com/yigit/parishscheduler/internal/app/migrations"
	appRepos "github.com/yigit/parishscheduler/internal/app/repositories"
	appRoutes "github.com/yigit/parishscheduler/internal/app/routes"
	appServices "github.com/yigit/parishscheduler/internal/app/services"
	"github.com/yigit/parishscheduler/internal/config"
	"github.com/yigit/parishscheduler/internal/db"
	appMiddleware "github.com/yigit/parishscheduler/internal/middleware"
	pkgAuth "github.com/yigit/parishscheduler/internal/pkg/auth"
	"github.com/yigit/parishscheduler/internal/pkg/helpers"
	"github.com/yigit/parishscheduler/internal/pkg/logger"
	"github.com/yigit/parishscheduler/internal/pkg/validation"
	"github.com/yigit/parishscheduler/internal/pkg/websocket"
	"github.com/yigit/parishscheduler/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	LoginLimiter   *appMiddleware.IPRateLimiter
	JWTService     *pkgAuth.JWTService
	Hub            *websocket.Hub
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads .env, the YAML configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("Failed to read .env file")
	}

	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := ConfigureLogger(cfg)
	return cfg, lgr, nil
}

// ConfigureLogger applies the logging section of cfg to the global logger
func ConfigureLogger(cfg *config.Config) zerolog.Logger {
	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
		App:    "parishscheduler",
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return lgr
}

// SetupDatabase opens the pool, applies migrations when enabled and seeds the director.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		migrator := appMigrations.NewMigrator(cfg.GetPostgresConnectionString(), lgr)
		if err := migrator.MigrateUp(); err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			database.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
	}

	if cfg.Seed.DirectorEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := seed.EnsureDirector(ctx, appRepos.NewUserRepository(database), seed.Director{
			Name:     cfg.Seed.DirectorName,
			Email:    cfg.Seed.DirectorEmail,
			Password: cfg.Seed.DirectorPassword,
		}, lgr)
		if err != nil {
			// The API can still serve existing accounts
			lgr.Error().Err(err).Msg("Failed to seed director account, proceeding anyway...")
		}
	}

	return database, nil
}

// SetupCache connects to redis when a URL is configured. It returns nil otherwise.
func SetupCache(cfg *config.Config, lgr zerolog.Logger) (*db.RedisCache, error) {
	if cfg.Redis.URL == "" {
		lgr.Info().Msg("Redis not configured, dashboard cache disabled")
		return nil, nil
	}

	cache, err := db.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to Redis")
		return nil, err
	}
	lgr.Info().Msg("Redis connection successfully established.")
	return cache, nil
}

// RepositoriesFrom adapts the postgres repositories and optional cache into service dependencies
func RepositoriesFrom(database *db.PostgresDB, cache *db.RedisCache) appServices.Dependencies {
	repos := appRepos.NewRepositories(database)
	deps := appServices.Dependencies{
		Transactor:     repos.Transactor,
		Users:          repos.UserRepository,
		Ministries:     repos.MinistryRepository,
		Memberships:    repos.MembershipRepository,
		Schedules:      repos.ScheduleRepository,
		Participations: repos.ParticipationRepository,
	}
	if cache != nil {
		deps.SummaryCache = cache
	}
	return deps
}

// BuildDependencies initializes services, middleware and controllers on top of the given storage.
// The caller runs the returned Hub.
func BuildDependencies(
	cfg *config.Config,
	storage appServices.Dependencies,
	checks map[string]appControllers.Pinger,
	lgr zerolog.Logger,
) *Dependencies {
	deps := &Dependencies{Logger: lgr}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 8*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "events").Logger())

	storage.JWT = deps.JWTService
	storage.Notifier = deps.Hub
	storage.SummaryTTL = helpers.ParseDuration(cfg.Redis.SummaryTTL, 30*time.Second)
	deps.Services = appServices.NewServices(storage, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.LoginLimiter = appMiddleware.NewIPRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)

	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.Services.Auth),
		Member:    appControllers.NewMemberController(deps.Services.Member),
		Ministry:  appControllers.NewMinistryController(deps.Services.Ministry),
		Schedule:  appControllers.NewScheduleController(deps.Services.Schedule),
		Dashboard: appControllers.NewDashboardController(deps.Services.Dashboard),
		Report:    appControllers.NewReportController(deps.Services.Report),
		Health:    appControllers.NewHealthController(checks),
		Events:    websocket.NewHandler(deps.Hub, storage.Memberships, cfg.AllowedOrigins(), lgr),
	}

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, registry *prometheus.Registry) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			deps.Logger.Error().Err(err).Msg("Failed to register validation rules")
		}
	}

	router := gin.New()
	router.Use(appMiddleware.Recovery())
	router.Use(appMiddleware.RequestLogger())
	router.Use(corsMiddleware(cfg))

	if registry != nil {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		router.Use(appMiddleware.NewMetrics(registry).Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.LoginLimiter)
	router.NoRoute(appMiddleware.NotFound())

	return router
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	origins := cfg.AllowedOrigins()
	for _, origin := range origins {
		if origin == "*" {
			corsConfig.AllowAllOrigins = true
			return cors.New(corsConfig)
		}
	}
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
		return cors.New(corsConfig)
	}

	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	return cors.New(corsConfig)
}
