package internal

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/gbif/occurrence-annotation/internal/handler"
	"github.com/gbif/occurrence-annotation/internal/middleware"
	"github.com/gbif/occurrence-annotation/pkg/constants"
)

type Backend struct {
	R *gin.Engine
}

func Register(db *gorm.DB) *Backend {
	s := new(Backend)
	s.R = gin.Default()

	// Kubernetes health check
	s.R.GET(constants.HealthzPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})

	s.R.GET(constants.MetricsPath, gin.WrapH(promhttp.Handler()))

	s.RegisterService(db)

	return s
}

func (b *Backend) RegisterService(db *gorm.DB) {
	// The API is consumed by third-party portals, so allow any origin.
	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AddAllowHeaders("Authorization")
	b.R.Use(cors.New(corsConf))

	b.R.Use(middleware.Metrics())

	managers := registerManagers(handler.RegisterConfig{DB: db})

	publicRouter := b.R.Group(constants.APIPrefix)

	protectedRouter := b.R.Group(constants.APIPrefix)
	protectedRouter.Use(middleware.AuthProtected())

	adminRouter := b.R.Group(constants.APIPrefix + "/admin")
	adminRouter.Use(middleware.AuthProtected(), middleware.AuthAdmin())

	for _, mgr := range managers {
		mgr.RegisterPublic(publicRouter.Group("/" + mgr.GetName()))
		mgr.RegisterProtected(protectedRouter.Group("/" + mgr.GetName()))
		mgr.RegisterAdmin(adminRouter.Group("/" + mgr.GetName()))
	}
}
