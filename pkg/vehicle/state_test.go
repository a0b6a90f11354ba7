package vehicle

import (
	"math"
	"testing"
	"time"

	"github.com/lintang-b-s/transitmatch/pkg/datastructure"
	"github.com/lintang-b-s/transitmatch/pkg/geo"
	"github.com/lintang-b-s/transitmatch/pkg/mapmatcher/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func avlReport(lon float64, offset time.Duration) *datastructure.GPSPoint {
	return datastructure.NewGPSPoint("v1", 0, lon, t0.Add(offset), math.NaN(), math.NaN())
}

func testBlock(t *testing.T) *datastructure.Block {
	t.Helper()
	sp, err := datastructure.NewStopPath("sp0", "s0", []geo.Coordinate{
		geo.NewCoordinate(0, 0), geo.NewCoordinate(0, 0.01),
	}, false)
	require.NoError(t, err)
	pattern, err := datastructure.NewTripPattern("p", []*datastructure.StopPath{sp})
	require.NoError(t, err)
	block, err := datastructure.NewBlock("b1", []*datastructure.Trip{
		datastructure.NewTrip("t1", datastructure.NewRoute("r", math.NaN()), pattern),
	})
	require.NoError(t, err)
	return block
}

func TestVehicleStatePreviousAvlReport(t *testing.T) {
	vs := NewVehicleState("v1")
	assert.Nil(t, vs.GetAvlReport())
	assert.Nil(t, vs.GetPreviousAvlReport(0))

	// ~111m apart
	first := avlReport(0.000, 0)
	second := avlReport(0.001, 10*time.Second)
	third := avlReport(0.0015, 20*time.Second)
	vs.SetAvlReport(first)
	vs.SetAvlReport(second)
	vs.SetAvlReport(third)

	testCases := []struct {
		name        string
		minDistance float64
		want        *datastructure.GPSPoint
	}{
		{"closest earlier report", 10, second},
		{"skip reports that are too close", 100, first},
		{"none far enough", 1000, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Same(t, third, vs.GetAvlReport())
			assert.Equal(t, tc.want, vs.GetPreviousAvlReport(tc.minDistance))
		})
	}
}

func TestVehicleStateHistoryIsBounded(t *testing.T) {
	vs := NewVehicleState("v1")
	for i := 0; i < MAX_AVL_HISTORY+5; i++ {
		vs.SetAvlReport(avlReport(float64(i)*0.001, time.Duration(i)*time.Second))
	}

	assert.Len(t, vs.avlReports, MAX_AVL_HISTORY)
	assert.InDelta(t, 0.024, vs.GetAvlReport().Lon(), 1e-9)
	assert.InDelta(t, 0.005, vs.avlReports[0].Lon(), 1e-9)
}

func TestVehicleStateSetMatch(t *testing.T) {
	block := testBlock(t)
	vs := NewVehicleState("v1")
	report := avlReport(0.005, 0)
	vs.SetAvlReport(report)
	assert.False(t, vs.IsMatchedToBlock("b1"))

	match := spatial.NewSpatialMatch("v1", block, 0, 0, 0, 1, 500)
	vs.SetMatch(match)

	assert.Same(t, match, vs.GetMatch())
	assert.Same(t, report, vs.GetPreviousAvlReportFromSuccessfulMatch())
	assert.True(t, vs.IsMatchedToBlock("b1"))
	assert.False(t, vs.IsMatchedToBlock("b2"))

	vs.SetAvlReport(avlReport(0.006, 10*time.Second))
	assert.Same(t, report, vs.GetPreviousAvlReportFromSuccessfulMatch())

	vs.ClearMatch()
	assert.Nil(t, vs.GetMatch())
	assert.Nil(t, vs.GetPreviousAvlReportFromSuccessfulMatch())
	assert.Equal(t, "", vs.GetBlockId())
}
