package replay

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
)

var (
	ErrMissingColumn = errors.New("missing csv column")
	ErrInvalidValue  = errors.New("invalid csv value")
)

var requiredColumns = []string{"vehicle_id", "block_id", "time", "lat", "lon"}

// Row. one avl report of the replay file and the block it was assigned to.
type Row struct {
	BlockId string
	Report  *datastructure.GPSPoint
}

/*
ReadReports. read avl reports from csv with header

	vehicle_id,block_id,time,lat,lon[,speed][,heading]

time is unix epoch milliseconds or RFC3339. empty speed or heading means the report has none.
*/
func ReadReports(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := makeIndex(header)
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%s: %w", col, ErrMissingColumn)
		}
	}

	rows := make([]Row, 0)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, err := parseRow(record, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string, idx map[string]int) (Row, error) {
	t, err := parseTime(getField(record, idx, "time"))
	if err != nil {
		return Row{}, err
	}
	lat, err := parseFloatInRange(getField(record, idx, "lat"), -90, 90)
	if err != nil {
		return Row{}, fmt.Errorf("lat: %w", err)
	}
	lon, err := parseFloatInRange(getField(record, idx, "lon"), -180, 180)
	if err != nil {
		return Row{}, fmt.Errorf("lon: %w", err)
	}
	speed, err := parseOptionalFloat(getField(record, idx, "speed"), 0, math.Inf(1))
	if err != nil {
		return Row{}, fmt.Errorf("speed: %w", err)
	}
	heading, err := parseOptionalFloat(getField(record, idx, "heading"), 0, 360)
	if err != nil {
		return Row{}, fmt.Errorf("heading: %w", err)
	}

	return Row{
		BlockId: getField(record, idx, "block_id"),
		Report:  datastructure.NewGPSPoint(getField(record, idx, "vehicle_id"), lat, lon, t, speed, heading),
	}, nil
}

func parseTime(v string) (time.Time, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: %w", v, err)
	}
	return t, nil
}

// parseFloatInRange. finite value within [min, max].
func parseFloatInRange(v string, min, max float64) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < min || f > max {
		return 0, fmt.Errorf("%q not within [%v, %v]: %w", v, min, max, ErrInvalidValue)
	}
	return f, nil
}

// parseOptionalFloat. NaN when v is empty.
func parseOptionalFloat(v string, min, max float64) (float64, error) {
	if v == "" {
		return math.NaN(), nil
	}
	return parseFloatInRange(v, min, max)
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
