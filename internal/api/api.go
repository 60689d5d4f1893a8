package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/ougirez/iodmap/internal/api/controller"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/pkg/logger"
	"github.com/ougirez/iodmap/internal/service/auth"
	"github.com/ougirez/iodmap/internal/service/dashboard"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

type APIService struct {
	router    *echo.Echo
	auth      *auth.Service
	dashboard *dashboard.Service
}

func (svc *APIService) Serve(addr string) {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(context.Background(), err)
	}
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// Handler exposes the router for httptest.
func (svc *APIService) Handler() http.Handler {
	return svc.router
}

func NewAPIService(authService *auth.Service, dashboardService *dashboard.Service) (*APIService, error) {
	svc := &APIService{
		router:    echo.New(),
		auth:      authService,
		dashboard: dashboardService,
	}

	svc.router.HideBanner = true
	svc.router.HidePort = true
	svc.router.Logger.SetLevel(log.WARN)
	svc.router.JSONSerializer = NewJSONSerializer()
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.HTTPErrorHandler = httpErrorHandler

	extractor, err := ipExtractor(viper.GetStringSlice(constants.ViperTrustedProxies))
	if err != nil {
		return nil, err
	}
	svc.router.IPExtractor = extractor

	svc.router.Use(middleware.Recover())
	svc.router.Use(middleware.RequestID())
	svc.router.Use(requestLogger())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     viper.GetStringSlice(constants.ViperServerAllowOrigins),
		AllowMethods:     []string{echo.GET, echo.PATCH, echo.POST},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	cntrl := controller.NewController(svc.dashboard, svc.auth)

	svc.router.GET("/", cntrl.GetAbout)
	svc.router.POST("/", cntrl.PostAbout)
	svc.router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := svc.router.Group("/api/v1")
	api.POST("/access", cntrl.Access)

	gated := api.Group("", svc.GateMiddleware)
	gated.GET("/catalog", cntrl.GetCatalog)

	gated.GET("/selection", cntrl.GetSelection)
	gated.PATCH("/selection", cntrl.PatchSelection)

	datasets := gated.Group("/datasets/:dataset")
	datasets.GET("/regions", cntrl.GetRegions)
	datasets.GET("/areas", cntrl.ListAreas)
	datasets.GET("/areas/:code", cntrl.GetArea)

	views := gated.Group("/views")
	views.GET("", cntrl.ListViews)
	views.GET("/:view", cntrl.GetView)
	views.GET("/:view/spec", cntrl.GetViewSpec)
	views.GET("/:view/chart.png", cntrl.GetViewChart)

	return svc, nil
}

// ipExtractor decides where the client address comes from. Forwarding headers are only
// believed when they arrive from a configured proxy range; otherwise the peer address
// is used as is.
func ipExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("net.ParseCIDR, proxy-%s: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}
