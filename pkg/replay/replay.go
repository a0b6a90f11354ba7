package replay

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/lintang-b-s/transitmatch/pkg/concurrent"
	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/http/usecases"
	"github.com/lintang-b-s/transitmatch/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ReportProcessor interface {
	ProcessReport(ctx context.Context, report *datastructure.GPSPoint, blockId string) (usecases.MatchResult, error)
}

type Result struct {
	Row   Row
	Match usecases.MatchResult
	Err   error
}

// Summary. counts of a finished replay.
type Summary struct {
	Reports   int
	Matched   int
	Unmatched int
	Failed    int
}

type Replayer struct {
	processor  ReportProcessor
	log        *zap.Logger
	numWorkers int
	queueSize  int
}

func NewReplayer(processor ReportProcessor, log *zap.Logger, numWorkers, queueSize int) *Replayer {
	return &Replayer{
		processor:  processor,
		log:        log,
		numWorkers: numWorkers,
		queueSize:  queueSize,
	}
}

/*
Run. match every row, handing each result to onResult.

reports of one vehicle are processed by the same worker in file order, so the vehicle state sees them
in time order. different vehicles are matched concurrently, onResult is called from a single goroutine.
*/
func (rp *Replayer) Run(ctx context.Context, rows []Row, onResult func(Result) error) (Summary, error) {
	g, gctx := errgroup.WithContext(ctx)

	pool := concurrent.NewWorkerPool[Row, Result](rp.numWorkers, rp.queueSize)
	pool.Start(func(row Row) Result {
		match, err := rp.processor.ProcessReport(gctx, row.Report, row.BlockId)
		return Result{Row: row, Match: match, Err: err}
	})

	var summary Summary

	g.Go(func() error {
		defer func() {
			pool.Close()
			pool.Wait()
		}()
		for _, row := range rows {
			if util.StopConcurrentOperation(gctx) {
				return gctx.Err()
			}
			pool.AddJob(row.Report.VehicleId(), row)
		}
		return nil
	})

	g.Go(func() error {
		var firstErr error
		// drain every result so workers never block on a full results channel
		for res := range pool.CollectResults() {
			summary.Reports++
			switch {
			case res.Err != nil:
				summary.Failed++
				rp.log.Warn("failed matching avl report", zap.String("vehicleId", res.Row.Report.VehicleId()),
					zap.String("blockId", res.Row.BlockId), zap.Error(res.Err))
			case res.Match.Best == nil:
				summary.Unmatched++
			default:
				summary.Matched++
			}
			if firstErr == nil {
				firstErr = onResult(res)
			}
		}
		return firstErr
	})

	err := g.Wait()
	return summary, err
}

var resultHeader = []string{"vehicle_id", "block_id", "time", "scan", "number_of_matches", "trip_id",
	"stop_path_index", "segment_index", "distance_to_segment", "distance_along_segment", "layover", "error"}

// ResultWriter. csv of the chosen match per report.
type ResultWriter struct {
	w *csv.Writer
}

func NewResultWriter(w io.Writer) (*ResultWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return nil, err
	}
	return &ResultWriter{w: cw}, nil
}

func (rw *ResultWriter) Write(res Result) error {
	record := []string{
		res.Row.Report.VehicleId(),
		res.Row.BlockId,
		res.Row.Report.Time().Format(time.RFC3339),
		res.Match.Scan,
		strconv.Itoa(len(res.Match.Matches)),
		"", "", "", "", "", "", "",
	}
	if best := res.Match.Best; best != nil {
		record[5] = best.GetTrip().GetId()
		record[6] = strconv.Itoa(best.GetStopPathIndex())
		record[7] = strconv.Itoa(best.GetSegmentIndex())
		record[8] = strconv.FormatFloat(util.RoundFloat(best.GetDistanceToSegment(), 2), 'f', -1, 64)
		record[9] = strconv.FormatFloat(util.RoundFloat(best.GetDistanceAlongSegment(), 2), 'f', -1, 64)
		record[10] = strconv.FormatBool(best.IsLayover())
	}
	if res.Err != nil {
		record[11] = res.Err.Error()
	}
	return rw.w.Write(record)
}

func (rw *ResultWriter) Flush() error {
	rw.w.Flush()
	return rw.w.Error()
}
