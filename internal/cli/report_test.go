package cli_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonaccess/plategate/internal/cli"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

func sampleRows() []types.AccessReportRow {
	vid := int64(3)
	return []types.AccessReportRow{
		{
			Event: types.AccessEvent{
				ID: 2, VehicleID: &vid, Plate: "XYZ9A88", Allowed: true, Source: types.SourceImage,
				OccurredAt: time.Date(2026, 2, 10, 15, 4, 5, 0, time.UTC),
			},
			VehicleBrand: "Chevrolet", VehicleModel: "Onix", OwnerName: "Jane Doe", OwnerRole: "Manager",
		},
		{
			Event: types.AccessEvent{
				ID: 1, Plate: "ABC1D23", Source: types.SourceTyped, Notes: "vehicle not registered, gate 2",
				OccurredAt: time.Date(2026, 2, 10, 1, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestRenderReport_CSV(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("BRT", -3*60*60)

	require.NoError(t, cli.RenderReport(&buf, sampleRows(), "csv", loc))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "occurred_at", records[0][1])
	assert.Equal(t, []string{
		"2", "2026-02-10 12:04:05", "XYZ9A88", "true", "image", "Chevrolet Onix", "Jane Doe", "Manager", "",
	}, records[1])
	assert.Equal(t, "2026-02-09 22:00:00", records[2][1], "local day boundary")
	assert.Equal(t, "vehicle not registered, gate 2", records[2][8])
}

func TestRenderReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cli.RenderReport(&buf, sampleRows(), "json", time.UTC))

	var rows []types.AccessReportRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "XYZ9A88", rows[0].Event.Plate)
	assert.Nil(t, rows[1].Event.VehicleID)

	buf.Reset()
	require.NoError(t, cli.RenderReport(&buf, nil, "json", time.UTC))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderReport_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cli.RenderReport(&buf, sampleRows(), "", nil))

	out := buf.String()
	assert.Contains(t, out, "OCCURRED_AT")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "2026-02-10 01:00:00")
}

func TestRenderReport_UnknownFormat(t *testing.T) {
	err := cli.RenderReport(&bytes.Buffer{}, nil, "xml", time.UTC)
	assert.Error(t, err)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 16, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
