package datastructure

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/transitmatch/pkg/geo"
	"github.com/twpayne/go-polyline"
)

type routeRecord struct {
	Id                     string   `json:"id"`
	MaxDistanceFromSegment *float64 `json:"max_distance_from_segment,omitempty"`
}

type stopPathRecord struct {
	Id       string       `json:"id"`
	StopId   string       `json:"stop_id"`
	Layover  bool         `json:"layover"`
	Polyline string       `json:"polyline,omitempty"`
	Points   [][2]float64 `json:"points,omitempty"` // [lat, lon], used when polyline is empty
}

type tripPatternRecord struct {
	Id        string           `json:"id"`
	StopPaths []stopPathRecord `json:"stop_paths"`
}

type tripRecord struct {
	Id            string `json:"id"`
	RouteId       string `json:"route_id"`
	TripPatternId string `json:"trip_pattern_id"`
}

type blockRecord struct {
	Id    string       `json:"id"`
	Trips []tripRecord `json:"trips"`
}

type scheduleRecord struct {
	Routes       []routeRecord       `json:"routes"`
	TripPatterns []tripPatternRecord `json:"trip_patterns"`
	Blocks       []blockRecord       `json:"blocks"`
}

// Schedule holds every block of the service day, keyed by block id.
type Schedule struct {
	blocks map[string]*Block
}

func NewSchedule(blocks []*Block) *Schedule {
	s := &Schedule{blocks: make(map[string]*Block, len(blocks))}
	for _, b := range blocks {
		s.blocks[b.GetId()] = b
	}
	return s
}

func (s *Schedule) GetBlock(id string) (*Block, bool) {
	b, ok := s.blocks[id]
	return b, ok
}

// GetBlocks. blocks sorted by id
func (s *Schedule) GetBlocks() []*Block {
	blocks := make([]*Block, 0, len(s.blocks))
	for _, b := range s.blocks {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].GetId() < blocks[j].GetId()
	})
	return blocks
}

// ReadSchedule. read blocks from a json file, stop path geometry is a google encoded polyline.
// files ending in .bz2 are bzip2 compressed.
func ReadSchedule(filename string) (*Schedule, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open schedule file %s: %w", filename, err)
	}
	defer f.Close()

	if !strings.HasSuffix(filename, ".bz2") {
		return DecodeSchedule(f)
	}

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, fmt.Errorf("open schedule file %s: %w", filename, err)
	}
	defer bz.Close()
	return DecodeSchedule(bz)
}

func DecodeSchedule(r io.Reader) (*Schedule, error) {
	var rec scheduleRecord
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}

	routes := make(map[string]*Route, len(rec.Routes))
	for _, rr := range rec.Routes {
		maxDist := math.NaN()
		if rr.MaxDistanceFromSegment != nil {
			maxDist = *rr.MaxDistanceFromSegment
		}
		routes[rr.Id] = NewRoute(rr.Id, maxDist)
	}

	patterns := make(map[string]*TripPattern, len(rec.TripPatterns))
	for _, pr := range rec.TripPatterns {
		stopPaths := make([]*StopPath, 0, len(pr.StopPaths))
		for _, spr := range pr.StopPaths {
			points, err := stopPathPoints(spr)
			if err != nil {
				return nil, fmt.Errorf("trip pattern %s: %w", pr.Id, err)
			}
			sp, err := NewStopPath(spr.Id, spr.StopId, points, spr.Layover)
			if err != nil {
				return nil, fmt.Errorf("trip pattern %s: %w", pr.Id, err)
			}
			stopPaths = append(stopPaths, sp)
		}
		pattern, err := NewTripPattern(pr.Id, stopPaths)
		if err != nil {
			return nil, err
		}
		patterns[pr.Id] = pattern
	}

	blocks := make([]*Block, 0, len(rec.Blocks))
	for _, br := range rec.Blocks {
		trips := make([]*Trip, 0, len(br.Trips))
		for _, tr := range br.Trips {
			route, ok := routes[tr.RouteId]
			if !ok {
				return nil, fmt.Errorf("trip %s route %s: %w", tr.Id, tr.RouteId, ErrUnknownRoute)
			}
			pattern, ok := patterns[tr.TripPatternId]
			if !ok {
				return nil, fmt.Errorf("trip %s trip pattern %s: %w", tr.Id, tr.TripPatternId, ErrUnknownTripPattern)
			}
			trips = append(trips, NewTrip(tr.Id, route, pattern))
		}
		block, err := NewBlock(br.Id, trips)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return NewSchedule(blocks), nil
}

func stopPathPoints(spr stopPathRecord) ([]geo.Coordinate, error) {
	if spr.Polyline == "" {
		points := make([]geo.Coordinate, len(spr.Points))
		for i, p := range spr.Points {
			points[i] = geo.NewCoordinate(p[0], p[1])
		}
		return points, nil
	}
	coords, _, err := polyline.DecodeCoords([]byte(spr.Polyline))
	if err != nil {
		return nil, fmt.Errorf("stop path %s: decode polyline: %w", spr.Id, err)
	}
	points := make([]geo.Coordinate, len(coords))
	for i, c := range coords {
		points[i] = geo.NewCoordinate(c[0], c[1])
	}
	return points, nil
}
