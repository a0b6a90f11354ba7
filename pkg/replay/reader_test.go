package replay

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadReports(t *testing.T) {
	input := "vehicle_id,block_id,time,lat,lon,speed,heading\n" +
		"v1,b1,1772409600000,0.00001,0.0003,8.5,90\n" +
		"v2,b2,2026-03-02T00:00:10Z,-6.2,106.8,,\n"

	rows, err := ReadReports(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "b1", rows[0].BlockId)
	assert.Equal(t, "v1", rows[0].Report.VehicleId())
	assert.Equal(t, int64(1772409600000), rows[0].Report.Time().UnixMilli())
	assert.InDelta(t, 0.0003, rows[0].Report.Lon(), 1e-12)
	assert.InDelta(t, 8.5, rows[0].Report.Speed(), 1e-12)
	assert.True(t, rows[0].Report.HasValidHeading())

	assert.Equal(t, "v2", rows[1].Report.VehicleId())
	assert.True(t, rows[1].Report.Time().Equal(time.Date(2026, 3, 2, 0, 0, 10, 0, time.UTC)))
	assert.True(t, math.IsNaN(rows[1].Report.Speed()))
	assert.False(t, rows[1].Report.HasValidHeading())
}

func TestReadReportsOptionalColumnsAbsent(t *testing.T) {
	rows, err := ReadReports(strings.NewReader("lat,lon,time,block_id,vehicle_id\n1.5,2.5,1000,b1,v1\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 1.5, rows[0].Report.Lat(), 1e-12)
	assert.InDelta(t, 2.5, rows[0].Report.Lon(), 1e-12)
	assert.False(t, rows[0].Report.HasValidHeading())
}

func TestReadReportsErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "empty", input: ""},
		{name: "missing block", input: "vehicle_id,time,lat,lon\nv1,1,0,0\n", wantErr: ErrMissingColumn},
		{name: "bad time", input: "vehicle_id,block_id,time,lat,lon\nv1,b1,yesterday,0,0\n"},
		{name: "bad lat", input: "vehicle_id,block_id,time,lat,lon\nv1,b1,1,north,0\n"},
		{name: "bad heading", input: "vehicle_id,block_id,time,lat,lon,heading\nv1,b1,1,0,0,east\n"},
		{name: "NaN lat", input: "vehicle_id,block_id,time,lat,lon\nv1,b1,1,NaN,0\n", wantErr: ErrInvalidValue},
		{name: "infinite lon", input: "vehicle_id,block_id,time,lat,lon\nv1,b1,1,0,+Inf\n", wantErr: ErrInvalidValue},
		{name: "lat out of range", input: "vehicle_id,block_id,time,lat,lon\nv1,b1,1,91,0\n", wantErr: ErrInvalidValue},
		{name: "lon out of range", input: "vehicle_id,block_id,time,lat,lon\nv1,b1,1,0,-180.5\n", wantErr: ErrInvalidValue},
		{name: "heading out of range", input: "vehicle_id,block_id,time,lat,lon,heading\nv1,b1,1,0,0,400\n", wantErr: ErrInvalidValue},
		{name: "NaN heading", input: "vehicle_id,block_id,time,lat,lon,heading\nv1,b1,1,0,0,nan\n", wantErr: ErrInvalidValue},
		{name: "negative speed", input: "vehicle_id,block_id,time,lat,lon,speed\nv1,b1,1,0,0,-3\n", wantErr: ErrInvalidValue},
		{name: "infinite speed", input: "vehicle_id,block_id,time,lat,lon,speed\nv1,b1,1,0,0,Inf\n", wantErr: ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadReports(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
		})
	}
}
