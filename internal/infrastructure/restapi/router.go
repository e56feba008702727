package restapi

import (
	"net/http"
	"net/http/pprof"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions are the optional surfaces mounted next to the API.
type RouterOptions struct {
	MetricsHandler http.Handler // mounted on /metrics when set
	EnablePprof    bool
}

// SetupRouter настраивает и возвращает экземпляр Gin роутера.
func SetupRouter(consumers *ConsumerHandler, snapshots *SnapshotHandler, zapLogger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(zapLogger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Группа для API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/consumers", consumers.ListConsumersHandler)
		v1.PUT("/consumers/:id", consumers.AttachConsumerHandler)
		v1.DELETE("/consumers/:id", consumers.DetachConsumerHandler)
		v1.GET("/consumers/:id/balance", consumers.GetBalanceHandler)
		v1.GET("/consumers/:id/transactions", consumers.GetTransactionsHandler)
		v1.POST("/consumers/:id/refresh", consumers.RefreshHandler)
		v1.GET("/consumers/:id/stream", consumers.StreamHandler)
		v1.GET("/snapshots", snapshots.GetSnapshotsHandler)
	}

	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	if opts.EnablePprof {
		pprofRouter := router.Group("/debug/pprof")
		{
			pprofRouter.GET("/", gin.WrapF(pprof.Index))
			pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
			pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
			pprofRouter.POST("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
			pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
			pprofRouter.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
			pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
			pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		}
	}

	return router
}
