package main

import (
	"net/http"
	"strconv"
	"time"

	"osoulapi/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Server carries the dependencies every handler needs. Handlers are methods so
// nothing reaches for package globals.
type Server struct {
	cfg Config
	db  *gorm.DB
	log *logrus.Logger
}

func newServer(cfg Config, db *gorm.DB, log *logrus.Logger) *Server {
	return &Server{cfg: cfg, db: db, log: log}
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(s.cfg.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.CORSOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/register", s.register)
	auth.GET("/me", s.authRequired(), s.me)
	auth.PUT("/password", s.authRequired(), s.changePassword)

	protected := api.Group("", s.authRequired())

	collection := protected.Group("/collection")
	collection.GET("/accounts", s.listAccounts)
	collection.GET("/accounts/:id", s.accountDetail)
	collection.GET("/reports/daily", s.dailyReport)

	metrics := protected.Group("/dashboard")
	metrics.GET("/summary", s.dashboardSummary)
	metrics.GET("/trends/:period", s.collectionTrends)
	metrics.GET("/aging", s.agingAnalysis)
	metrics.GET("/collector-performance", s.collectorPerformance)
	metrics.GET("/product-npf", s.productNPF)

	branches := protected.Group("/branches")
	branches.GET("", s.listBranches)
	branches.GET("/:id", s.getBranch)
	branches.GET("/:id/stats", s.branchStats)
	branches.POST("", s.requireRole(models.RoleAdmin, models.RoleManager), s.createBranch)
	branches.PUT("/:id", s.requireRole(models.RoleAdmin, models.RoleManager), s.updateBranch)
	branches.DELETE("/:id", s.requireRole(models.RoleAdmin), s.deleteBranch)

	reports := protected.Group("/reports")
	reports.GET("/monthly-comparison", s.monthlyComparison)
	reports.GET("/quarterly-comparison", s.quarterlyComparison)
	reports.GET("/branch-comparison", s.branchComparison)
	reports.GET("/performance-trends", s.performanceTrends)
	reports.GET("/top-performers", s.topPerformers)
	reports.GET("/summary", s.reportsSummary)
	reports.GET("/export", s.exportReport)

	dashboards := protected.Group("/dashboards")
	dashboards.GET("", s.listDashboards)
	dashboards.POST("", s.createDashboard)
	dashboards.GET("/widgets/:widgetId/data", s.widgetData)
	dashboards.GET("/:id", s.getDashboard)
	dashboards.PUT("/:id", s.updateDashboard)
	dashboards.DELETE("/:id", s.deleteDashboard)
	dashboards.POST("/:id/widgets", s.addWidget)
	dashboards.PUT("/:id/widgets/:widgetId", s.updateWidget)
	dashboards.DELETE("/:id/widgets/:widgetId", s.deleteWidget)

	return r
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// storeError logs the query failure with its call site and answers 500. The
// client never sees driver details.
func (s *Server) storeError(c *gin.Context, funcName string, err error) {
	logStoreError(s.log, funcName, c.FullPath(), err)
	fail(c, http.StatusInternalServerError, "internal server error")
}

func (s *Server) currentUser(c *gin.Context) models.User {
	return c.MustGet("user").(models.User)
}

func intQuery(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// dateQuery parses an ISO date query param, nil when absent or malformed.
func dateQuery(c *gin.Context, key string) *time.Time {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}

// dateRange resolves startDate/endDate with fallbacks; endDate is pushed to
// end-of-day so BETWEEN comparisons include the whole day.
func dateRange(c *gin.Context, defaultDays int) (time.Time, time.Time) {
	now := time.Now()
	start := now.AddDate(0, 0, -defaultDays)
	end := now
	if t := dateQuery(c, "startDate"); t != nil {
		start = *t
	}
	if t := dateQuery(c, "endDate"); t != nil {
		end = *t
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, end.Location())
	return start, end
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}
