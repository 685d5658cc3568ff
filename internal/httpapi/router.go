package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/imitator/internal/common"
	"github.com/suPer8Hu/imitator/internal/httpapi/handlers"
	"github.com/suPer8Hu/imitator/internal/httpapi/middleware"
	"github.com/suPer8Hu/imitator/internal/metrics"
	"go.uber.org/zap"
)

func NewRouter(svc handlers.Imitator, log *zap.Logger, m *metrics.Collector) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	// match on the escaped path so names may contain an encoded '/'
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(m))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(svc, log)

	r.GET("/ping", h.Ping)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.POST("/users/:name/messages", h.AddMessage)
	r.GET("/users/:name/imitation", h.ImitateUser)
	r.GET("/random-user/imitation", h.ImitateRandomUser)
	return r
}
