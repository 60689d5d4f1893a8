package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ougirez/iodmap/internal/api"
	"github.com/ougirez/iodmap/internal/pkg/catalog"
	"github.com/ougirez/iodmap/internal/pkg/config"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/pkg/logger"
	"github.com/ougirez/iodmap/internal/pkg/store"
	"github.com/ougirez/iodmap/internal/pkg/store/xpgx"
	"github.com/ougirez/iodmap/internal/service/auth"
	"github.com/ougirez/iodmap/internal/service/dashboard"
	"github.com/ougirez/iodmap/internal/service/datasource"
	"github.com/ougirez/iodmap/internal/service/pipeline"
	"github.com/ougirez/iodmap/internal/service/session"
	"github.com/spf13/viper"
)

func main() {
	_ = godotenv.Load(".env.local")

	configPath := flag.String("config", os.Getenv("IOD_CONFIG"), "path to the YAML config file")
	flag.Parse()

	ctx := context.Background()
	if err := config.Load(*configPath); err != nil {
		logger.Fatal(ctx, err)
	}
	if err := logger.Init(viper.GetString(constants.ViperLogMode)); err != nil {
		logger.Fatal(ctx, err)
	}
	defer logger.Sync()
	if err := config.Validate(); err != nil {
		logger.Fatal(ctx, err)
	}

	cat, err := catalog.Default()
	if err != nil {
		logger.Fatal(ctx, err)
	}
	overflow := pipeline.NewPartitionRule(
		viper.GetStringSlice(constants.ViperOverflowLAs),
		viper.GetInt(constants.ViperRowCeiling),
	)

	var opts []datasource.Option
	if viper.GetString(constants.ViperDataSource) == constants.DataSourcePostgres {
		pool, err := xpgx.Connect(ctx, viper.GetString(constants.ViperPostgresDSN), viper.GetDuration(constants.ViperPostgresMaxWait))
		if err != nil {
			logger.Fatal(ctx, err)
		}
		defer pool.Close()
		opts = append(opts, datasource.WithMirror(store.NewStore(pool)))
	}

	repo := datasource.NewRepository(
		datasource.NewFetcher(viper.GetDuration(constants.ViperDataHTTPTimeout)),
		cat,
		overflow,
		opts...,
	)
	if viper.GetBool(constants.ViperDataWarmOnStart) {
		if err := repo.Warm(ctx); err != nil {
			logger.Warnf(ctx, "warm-up incomplete: %s", err.Error())
		}
	}

	sessions := session.NewStore(
		cat.Rules(viper.GetInt(constants.ViperComparisonMaxLAs)),
		viper.GetDuration(constants.ViperSessionIdleTTL),
	)
	authService, err := auth.NewServiceFromConfig(sessions)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	dashboardService := dashboard.NewService(
		repo,
		cat,
		sessions,
		overflow,
		pipeline.ParseJoinKey(viper.GetString(constants.ViperJoinKey)),
	)

	apiService, err := api.NewAPIService(authService, dashboardService)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	addr := viper.GetString(constants.ViperServerAddr)
	go apiService.Serve(addr)
	logger.Infof(ctx, "server listening on %s", addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, viper.GetDuration(constants.ViperShutdownTimeout))
	defer cancel()
	if err := apiService.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "shutdown: %s", err.Error())
	}
	logger.Infof(ctx, "server stopped")
}
