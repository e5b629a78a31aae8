package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/velion-digital/dkn-backend/config"
	"github.com/velion-digital/dkn-backend/internal/analytics"
	httpapi "github.com/velion-digital/dkn-backend/internal/api/http"
	"github.com/velion-digital/dkn-backend/internal/api/http/middleware"
	"github.com/velion-digital/dkn-backend/internal/artefacts"
	"github.com/velion-digital/dkn-backend/internal/auth"
	"github.com/velion-digital/dkn-backend/internal/governance/engine"
	govhttp "github.com/velion-digital/dkn-backend/internal/governance/http"
	govstore "github.com/velion-digital/dkn-backend/internal/governance/store"
	"github.com/velion-digital/dkn-backend/internal/projects"
	"github.com/velion-digital/dkn-backend/internal/tags"
	"github.com/velion-digital/dkn-backend/internal/workspaces"
)

type RouterDeps struct {
	ServiceName string
	Cfg         *config.Config
	DB          *pgxpool.Pool
	Redis       *redis.Client
	GovStore    *govstore.Postgres
	GovEngine   *engine.Engine
	Issuer      *auth.TokenIssuer
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", dep.Cfg.Server.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Cfg.App.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api")

	// Public: login and signup issue the tokens everything else requires.
	authRepo := auth.NewRepo(dep.DB)
	loginLimiter := middleware.LoginRateLimit(dep.Cfg.Auth.LoginPerMin, dep.Cfg.Auth.LoginBurst)
	auth.Register(api.Group("/auth"), authRepo, dep.Issuer, loginLimiter)

	// Everything below carries a verified identity.
	authed := api.Group("")
	authed.Use(auth.Required(dep.Issuer))

	artefactRepo := artefacts.NewRepo(dep.DB)
	artefacts.Register(authed.Group("/artefacts"), artefactRepo, dep.GovEngine)

	govhttp.Register(authed.Group("/governance"), dep.GovEngine, dep.GovStore)

	tags.Register(authed.Group("/tags"), tags.NewRepo(dep.DB))
	projects.Register(authed.Group("/projects"), projects.NewRepo(dep.DB))
	workspaces.Register(authed.Group("/workspaces"), workspaces.NewRepo(dep.DB))

	cache := analytics.NewCache(dep.Redis, time.Duration(dep.Cfg.Redis.LeaderboardTTLMS)*time.Millisecond)
	analytics.Register(authed.Group("/analytics"), analytics.NewRepo(dep.DB), cache)

	return r
}
