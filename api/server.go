package api

import (
	"context"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bitmark-inc/covid-monthly/geo"
	"github.com/bitmark-inc/covid-monthly/logmodule"
	"github.com/bitmark-inc/covid-monthly/store"
)

const (
	defaultCacheTTL = 10 * time.Minute
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Server to run a http server instance
type Server struct {
	// Server instance
	server *http.Server

	// Stores
	mongoStore store.MongoStore

	// combined key decomposition
	resolver geo.KeyDecomposer

	// rendered wide tables per state
	cache *cache.Cache
}

// NewServer new instance of server
func NewServer(
	mongoStore store.MongoStore,
	resolver geo.KeyDecomposer,
	cacheTTL time.Duration) *Server {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	s := &Server{
		mongoStore: mongoStore,
		resolver:   resolver,
		cache:      cache.New(cacheTTL, 2*cacheTTL),
	}
	s.server = &http.Server{
		Handler: s.setupRouter(),
	}
	return s
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server.Addr = addr
	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))

	apiRoute := r.Group("/api")
	apiRoute.Use(logmodule.Ginrus("API"))
	apiRoute.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))
	apiRoute.GET("/information", s.information)
	apiRoute.GET("/decompose", s.decompose)

	monthlyRoute := apiRoute.Group("/monthly")
	{
		monthlyRoute.GET("", s.monthly)
		monthlyRoute.GET("/increase", s.monthlyIncrease)
	}

	stateRoute := apiRoute.Group("/states")
	{
		stateRoute.GET("/:state/wide", s.stateWide)
	}

	r.GET("/healthz", s.healthz)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// shouldInterrupt sends error message and determine if it should interrupt the current flow
func shouldInterrupt(err error, c *gin.Context) bool {
	if err == nil {
		return false
	}

	log.Error(err)
	abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
	return true
}

func (s *Server) healthz(c *gin.Context) {
	// Ping db
	err := s.mongoStore.Ping()
	if shouldInterrupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"version": viper.GetString("server.version"),
	})
}

func (s *Server) information(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"information": map[string]interface{}{
			"server": map[string]interface{}{
				"version": viper.GetString("server.version"),
			},
			"source":  viper.GetString("source.url"),
			"country": viper.GetString("resolver.country"),
		},
	})
}

// abortWithEncoding records errs on the context and aborts with a JSON error body
func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errs ...error) {
	for _, err := range errs {
		c.Error(err)
	}
	c.AbortWithStatusJSON(code, obj)
}
