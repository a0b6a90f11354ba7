package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/http/usecases"
	"github.com/lintang-b-s/transitmatch/pkg/logger"
	"github.com/lintang-b-s/transitmatch/pkg/mapmatcher/spatial"
	"github.com/lintang-b-s/transitmatch/pkg/metrics"
	"github.com/lintang-b-s/transitmatch/pkg/replay"
	"github.com/lintang-b-s/transitmatch/pkg/spatialindex"
	"github.com/lintang-b-s/transitmatch/pkg/util"
	"github.com/lintang-b-s/transitmatch/pkg/vehicle"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	scheduleFile          = flag.String("schedule", "./data/schedule.json", "block schedule file, .bz2 compressed files are decompressed")
	reportsFile           = flag.String("reports", "./data/avl_reports.csv", "csv of avl reports to replay")
	outputFile            = flag.String("out", "./data/spatial_matches.csv", "csv of the chosen spatial match per report")
	leafBoundingBoxRadius = flag.Float64("leaf_bounding_box_radius", 0.05, "leaf node (r-tree) bounding box radius in km")
	numWorkers            = flag.Int("workers", 8, "number of replay workers")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}
	spatial.SetConfigDefaults()
	viper.SetDefault("SPATIAL_INDEX_RADIUS", 0.2)
	viper.SetDefault("CANDIDATE_CACHE_SIZE", 4096)

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
	rtree := spatialindex.NewRtree()
	rtree.Build(schedule.GetBlocks(), *leafBoundingBoxRadius, logger)

	in, err := os.Open(*reportsFile)
	if err != nil {
		logger.Fatal("failed opening avl reports", zap.String("file", *reportsFile), zap.Error(err))
	}
	rows, err := replay.ReadReports(in)
	in.Close()
	if err != nil {
		logger.Fatal("failed reading avl reports", zap.String("file", *reportsFile), zap.Error(err))
	}

	// the replay keeps every vehicle, stale pruning is only for the server
	mapMatcherService, err := usecases.NewMapMatcherService(logger, spatial.NewSpatialMatcher(cfg, logger),
		schedule, rtree, vehicle.NewStore(0), metrics.NewCollector(),
		viper.GetFloat64("SPATIAL_INDEX_RADIUS"), viper.GetInt("CANDIDATE_CACHE_SIZE"))
	if err != nil {
		logger.Fatal("failed creating map matcher service", zap.Error(err))
	}

	out, err := os.Create(*outputFile)
	if err != nil {
		logger.Fatal("failed creating output", zap.String("file", *outputFile), zap.Error(err))
	}
	defer out.Close()
	resultWriter, err := replay.NewResultWriter(out)
	if err != nil {
		logger.Fatal("failed writing output", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	summary, err := replay.NewReplayer(mapMatcherService, logger, *numWorkers, 64).Run(ctx, rows, resultWriter.Write)
	if flushErr := resultWriter.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	if err != nil {
		logger.Error("replay stopped", zap.Error(err))
	}

	logger.Info("replay done",
		zap.Int("reports", summary.Reports),
		zap.Int("matched", summary.Matched),
		zap.Int("unmatched", summary.Unmatched),
		zap.Int("failed", summary.Failed),
		zap.Duration("took", time.Since(start)))
}
