package main

import (
	"context"
	"flag"
	"time"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/http"
	"github.com/lintang-b-s/transitmatch/pkg/http/usecases"
	"github.com/lintang-b-s/transitmatch/pkg/logger"
	"github.com/lintang-b-s/transitmatch/pkg/mapmatcher/spatial"
	"github.com/lintang-b-s/transitmatch/pkg/metrics"
	"github.com/lintang-b-s/transitmatch/pkg/spatialindex"
	"github.com/lintang-b-s/transitmatch/pkg/util"
	"github.com/lintang-b-s/transitmatch/pkg/vehicle"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	scheduleFile          = flag.String("schedule", "./data/schedule.json", "block schedule file, .bz2 compressed files are decompressed")
	leafBoundingBoxRadius = flag.Float64("leaf_bounding_box_radius", 0.05, "leaf node (r-tree) bounding box radius in km")
	useRateLimit          = flag.Bool("rate_limit", false, "rate limit the rest api")
)

func setConfigDefaults() {
	spatial.SetConfigDefaults()
	http.SetConfigDefaults()
	viper.SetDefault("SPATIAL_INDEX_RADIUS", 0.2)
	viper.SetDefault("CANDIDATE_CACHE_SIZE", 4096)
	viper.SetDefault("VEHICLE_STALE_AFTER", "30m")
	viper.SetDefault("VEHICLE_PRUNE_INTERVAL", "1m")
}

func main() {
	flag.Parse()
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}
	setConfigDefaults()

	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := spatial.NewConfigFromViper()
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	schedule, err := datastructure.ReadSchedule(*scheduleFile)
	if err != nil {
		logger.Fatal("failed reading schedule", zap.String("file", *scheduleFile), zap.Error(err))
	}
	logger.Info("schedule loaded", zap.Int("numberOfBlocks", len(schedule.GetBlocks())))

	rtree := spatialindex.NewRtree()
	rtree.Build(schedule.GetBlocks(), *leafBoundingBoxRadius, logger)

	matcher := spatial.NewSpatialMatcher(cfg, logger)
	vehicles := vehicle.NewStore(viper.GetDuration("VEHICLE_STALE_AFTER"))
	collector := metrics.NewCollector()

	mapMatcherService, err := usecases.NewMapMatcherService(logger, matcher, schedule, rtree, vehicles, collector,
		viper.GetFloat64("SPATIAL_INDEX_RADIUS"), viper.GetInt("CANDIDATE_CACHE_SIZE"))
	if err != nil {
		logger.Fatal("failed creating map matcher service", zap.Error(err))
	}

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	go pruneStaleVehicles(ctx, mapMatcherService, viper.GetDuration("VEHICLE_PRUNE_INTERVAL"))

	api := http.NewServer(logger)
	if _, err := api.Use(ctx, logger, *useRateLimit, mapMatcherService, collector.Handler()); err != nil {
		logger.Fatal("failed starting api", zap.Error(err))
	}

	signal := http.GracefulShutdown()
	cleanup()
	if err := api.Wait(); err != nil && err != context.Canceled {
		logger.Error("api stopped with error", zap.Error(err))
	}

	logger.Info("transitmatch spatial matcher server stopped", zap.String("signal", signal.String()))
}

func pruneStaleVehicles(ctx context.Context, ms *usecases.MapMatcherService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ms.PruneStaleVehicles()
		}
	}
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
