package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/gem-game/internal/middleware"
	"github.com/wfunc/gem-game/internal/service"
	"github.com/wfunc/gem-game/internal/utils"
	"github.com/wfunc/gem-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	services       *service.Services
	hub            *websocket.Hub
	sessionHandler *SessionHandler
	authMiddleware *middleware.AuthMiddleware
	log            *zap.Logger
}

// RouterConfig 路由器配置
type RouterConfig struct {
	Service     *service.Config
	JWTSecret   string
	TokenExpiry time.Duration
}

// DefaultRouterConfig 默认路由器配置
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Service:     service.DefaultConfig(),
		JWTSecret:   "gem-game-secret",
		TokenExpiry: 24 * time.Hour,
	}
}

// NewRouter 创建路由器
func NewRouter(db *gorm.DB, config *RouterConfig, log *zap.Logger) *Router {
	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// Hub先创建：命令服务把它当作变更通知器
	hub := websocket.NewHub(log)

	// 创建服务
	services := service.NewServices(db, config.Service, hub, log)
	hub.SetSnapshotLoader(services.Session)

	// 创建处理器
	sessionHandler := NewSessionHandler(services.Session, services.Command)

	// 创建中间件
	jwtManager := utils.NewJWTManager(config.JWTSecret, config.TokenExpiry)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	router := &Router{
		engine:         engine,
		db:             db,
		services:       services,
		hub:            hub,
		sessionHandler: sessionHandler,
		authMiddleware: authMiddleware,
		log:            log,
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.PlayerIdentity())
	{
		// 会话相关路由
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", r.sessionHandler.CreateSession)
			sessions.GET("/:id", r.sessionHandler.GetSession)
			sessions.POST("/:id/commands", r.sessionHandler.SubmitCommand)
			sessions.GET("/:id/events", r.sessionHandler.ListEvents)
		}
	}

	// WebSocket路由
	r.engine.GET("/ws", func(c *gin.Context) {
		websocket.ServeWS(r.hub, c.Writer, c.Request, r.log)
	})

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	// 检查数据库连接
	sqlDB, err := r.db.DB()
	if err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库连接失败",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(500, gin.H{
			"status":  "unhealthy",
			"message": "数据库ping失败",
		})
		return
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
		"online":  r.hub.GetOnlineCount(),
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// GetHub 获取WebSocket Hub
func (r *Router) GetHub() *websocket.Hub {
	return r.hub
}
