package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DhavalSuthar-24/huddle/config"
	"github.com/DhavalSuthar-24/huddle/internal/auth"
	"github.com/DhavalSuthar-24/huddle/internal/chat"
	"github.com/DhavalSuthar-24/huddle/internal/companion"
	"github.com/DhavalSuthar-24/huddle/internal/event"
	"github.com/DhavalSuthar-24/huddle/internal/feed"
	"github.com/DhavalSuthar-24/huddle/internal/location"
	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/internal/participation"
	"github.com/DhavalSuthar-24/huddle/internal/rewards"
	"github.com/DhavalSuthar-24/huddle/internal/sport"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/DhavalSuthar-24/huddle/pkg/rmiddleware"
)

// Deps carries the long-lived collaborators the HTTP layer is built on. Hub and
// Locations are shared with background workers, so the caller owns their lifecycle.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	Locations *location.Registry
	Hub       *companion.Hub
}

// App is the assembled server plus the services cmd/ needs outside request handling.
type App struct {
	Engine *gin.Engine
	Events event.EventRepository
	Syncer *companion.Syncer
}

func SetupRoutes(deps Deps) *App {
	cfg, db, logger := deps.Config, deps.DB, deps.Logger
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Welcome page
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`
			<html>
				<head><title>Huddle</title></head>
				<body style="text-align:center; margin-top: 40px;">
					<h1>Huddle API</h1>
					<div><a href="/swagger/index.html">swagger</a></div>
				</body>
			</html>
		`))
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	maxAttempts := cfg.Participation.MaxAttempts

	users := user.NewUserRepository(db, maxAttempts)
	events := event.NewEventRepository(db, maxAttempts, cfg.Events.DefaultExpiry)
	chats := chat.NewChatRepository(db, events)

	syncer := companion.NewSyncer(deps.Hub, events, logger)
	deps.Locations.SetRequester(deps.Hub)
	engine := participation.NewEngine(participation.NewGormStore(db, maxAttempts), syncer, logger)
	feeds := feed.NewService(events, deps.Locations, logger)

	// API routes
	api := r.Group("/api")
	api.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware(cfg.JWT.AccessTokenSecret, db))
	admin := authenticated.Group("/admin")
	admin.Use(rmiddleware.AdminMiddleware(db))

	auth.RegisterAuthRoutes(api, authenticated, auth.NewAuthController(auth.NewAuthRepository(db), users, cfg, logger))
	sport.RegisterSportRoutes(api)
	user.RegisterUserRoutes(authenticated, user.NewUserController(users, logger))
	event.RegisterEventRoutes(authenticated, admin, event.NewEventController(events, users, logger))
	participation.RegisterParticipationRoutes(authenticated, admin, participation.NewParticipationController(engine))
	feed.RegisterFeedRoutes(authenticated, feed.NewFeedController(feeds))
	location.RegisterLocationRoutes(authenticated, location.NewLocationController(deps.Locations))
	chat.RegisterChatRoutes(authenticated, chat.NewChatController(chats, users, logger))
	rewards.RegisterRewardsRoutes(authenticated, admin, rewards.NewRewardsController(rewards.NewRewardsRepository(db, maxAttempts), logger))
	companion.RegisterCompanionRoutes(authenticated, companion.NewCompanionController(deps.Hub, logger))

	return &App{Engine: r, Events: events, Syncer: syncer}
}
