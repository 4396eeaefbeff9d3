package api

import (
	"context"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/promosign/spin-api/docs"
	v1 "github.com/promosign/spin-api/internal/api/handler/v1"
	"github.com/promosign/spin-api/internal/api/middleware"
	"github.com/promosign/spin-api/internal/config"
	"github.com/promosign/spin-api/internal/repository"
	"github.com/promosign/spin-api/internal/repository/dao"
	"github.com/promosign/spin-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	gameSvc *service.GameService
}

func NewServer(conf *config.AppConfig, db *gorm.DB, redisClient *redis.Client) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	displayRepo := repository.NewDisplayRepository(dao.NewDisplayDAO(db))
	outcomeRepo := repository.NewOutcomeRepository(dao.NewOutcomeDAO(db))
	sessionRepo := repository.NewSessionRepository(dao.NewSessionDAO(db), dao.NewPlayerDAO(db))
	redemptionRepo := repository.NewRedemptionRepository(dao.NewRedemptionDAO(db))
	policyRepo := repository.NewPolicyRepository(dao.NewPolicyDAO(db))
	analyticsRepo := repository.NewAnalyticsRepository(dao.NewAnalyticsDAO(db))

	broadcaster := service.NewBroadcaster()

	selector := service.NewOutcomeSelector(outcomeRepo, sessionRepo, conf.Game)
	rules := service.NewRuleEngine(sessionRepo, policyRepo)
	tokenSvc := service.NewTokenService(displayRepo, repository.NewRedisTokenStore(redisClient), conf.Game.TokenTTL)
	redemptionSvc := service.NewRedemptionService(redemptionRepo)
	gameSvc := service.NewGameService(
		sessionRepo,
		outcomeRepo,
		displayRepo,
		selector,
		rules,
		tokenSvc,
		redemptionSvc,
		broadcaster,
		conf.Game.StuckSessionAge,
	)
	displaySvc := service.NewDisplayService(displayRepo, outcomeRepo, sessionRepo, broadcaster)
	outcomeSvc := service.NewOutcomeService(outcomeRepo, displayRepo)
	policySvc := service.NewPolicyService(policyRepo, displayRepo)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, policyRepo, displayRepo)
	authSvc := service.NewAuthService(repository.NewAdminRepository(dao.NewAdminDAO(db)))

	s.gameSvc = gameSvc

	gameHandler := v1.NewGameHandler(gameSvc, rules, redemptionSvc)
	tokenHandler := v1.NewTokenHandler(tokenSvc)
	redemptionHandler := v1.NewRedemptionHandler(redemptionSvc)
	displayHandler := v1.NewDisplayHandler(displaySvc)
	outcomeHandler := v1.NewOutcomeHandler(outcomeSvc)
	policyHandler := v1.NewPolicyHandler(policySvc)
	analyticsHandler := v1.NewAnalyticsHandler(analyticsSvc)
	authHandler := v1.NewAuthHandler(conf.API, authSvc)
	socketHandler := v1.NewDisplaySocketHandler(displaySvc, gameSvc, broadcaster)

	s.MountHandlers(
		gameHandler,
		tokenHandler,
		redemptionHandler,
		displayHandler,
		outcomeHandler,
		policyHandler,
		analyticsHandler,
		authHandler,
		socketHandler,
	)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	gameHandler *v1.GameHandler,
	tokenHandler *v1.TokenHandler,
	redemptionHandler *v1.RedemptionHandler,
	displayHandler *v1.DisplayHandler,
	outcomeHandler *v1.OutcomeHandler,
	policyHandler *v1.PolicyHandler,
	analyticsHandler *v1.AnalyticsHandler,
	authHandler *v1.AuthHandler,
	socketHandler *v1.DisplaySocketHandler,
) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)

		public.GET("/tokens/generate", tokenHandler.HandleGenerateToken)
		public.GET("/tokens/validate", tokenHandler.HandleValidateToken)

		public.POST("/submit", gameHandler.HandleSubmit)
		public.GET("/eligibility", gameHandler.HandleCheckEligibility)
		public.GET("/sessions/:sessionID", gameHandler.HandleGetSession)
		public.POST("/sessions/:sessionID/start", gameHandler.HandleStartSession)
		public.POST("/sessions/:sessionID/complete", gameHandler.HandleCompleteSession)

		public.POST("/redemptions/verify", redemptionHandler.HandleVerifyRedemption)

		public.GET("/ws/display/:displayID", socketHandler.HandleDisplaySocket)
	}

	admin := s.Router.Group(basePath+"/admin", middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		admin.POST("/displays", displayHandler.HandleCreateDisplay)
		admin.GET("/displays", displayHandler.HandleListDisplays)
		admin.GET("/displays/:displayID", displayHandler.HandleGetDisplay)
		admin.PUT("/displays/:displayID", displayHandler.HandleUpdateDisplay)
		admin.DELETE("/displays/:displayID", displayHandler.HandleDeleteDisplay)
		admin.GET("/displays/:displayID/stats", displayHandler.HandleDisplayStats)
		admin.GET("/displays/:displayID/policy", policyHandler.HandleGetPolicy)
		admin.PUT("/displays/:displayID/policy", policyHandler.HandleUpdatePolicy)

		admin.POST("/outcomes", outcomeHandler.HandleCreateOutcome)
		admin.GET("/outcomes", outcomeHandler.HandleListOutcomes)
		admin.GET("/outcomes/stats", outcomeHandler.HandleWeightStats)
		admin.PUT("/outcomes/weights", outcomeHandler.HandleBulkUpdateWeights)
		admin.PUT("/outcomes/:outcomeID", outcomeHandler.HandleUpdateOutcome)
		admin.DELETE("/outcomes/:outcomeID", outcomeHandler.HandleDeleteOutcome)

		admin.GET("/redemptions", redemptionHandler.HandleListRedemptions)
		admin.GET("/redemptions/stats", redemptionHandler.HandleRedemptionStats)
		admin.POST("/redemptions/:redemptionID/redeem", redemptionHandler.HandleRedeem)

		admin.GET("/sessions", gameHandler.HandleListSessions)
		admin.GET("/players", gameHandler.HandleListPlayers)

		admin.GET("/analytics/duplicates", analyticsHandler.HandleDuplicateAttempts)
		admin.GET("/analytics/validation", analyticsHandler.HandleValidationReport)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Promo Spin API"
	docs.SwaggerInfo.Description = "Promotional spin-the-wheel kiosk game engine."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}

// StartSweepers launches the background job that forces stuck sessions to
// completed.
func (s *Server) StartSweepers() {
	s.startSweepers(context.Background())
}

func (s *Server) startSweepers(ctx context.Context) {
	interval := s.Config.Game.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.gameSvc.SweepStuck(ctx); err != nil {
					zap.L().Error("stuck session sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
