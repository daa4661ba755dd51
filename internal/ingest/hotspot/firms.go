// Package hotspot polls NASA FIRMS for active-fire CSV rows, grounded on
// odin_orbital/src/firms.rs. VIIRS/MODIS-specific confidence-band decoding
// is simplified to the handful of columns this system actually surfaces.
package hotspot

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/odin-fire/odin-go/internal/domain/model"
)

// DecodeCSV parses a FIRMS active-fire CSV response (header row: latitude,
// longitude, bright_ti4, confidence, satellite, acq_date, acq_time, ...)
// into Hotspot records. gzip-compressed bodies (FIRMS serves both) are
// transparently inflated first.
func DecodeCSV(tileID string, body io.Reader, gzipped bool) ([]model.Hotspot, error) {
	r := body
	if gzipped {
		gz, err := gzip.NewReader(bufio.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("hotspot: gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("hotspot: read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	var out []model.Hotspot
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hotspot: read row: %w", err)
		}
		out = append(out, decodeRow(tileID, col, row))
	}
	return out, nil
}

func decodeRow(tileID string, col map[string]int, row []string) model.Hotspot {
	get := func(name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}
	f := func(name string) float64 {
		v, _ := strconv.ParseFloat(get(name), 64)
		return v
	}

	confidence := int32(0)
	switch get("confidence") {
	case "h", "high":
		confidence = 100
	case "n", "nominal":
		confidence = 60
	case "l", "low":
		confidence = 20
	default:
		if v, err := strconv.Atoi(get("confidence")); err == nil {
			confidence = int32(v)
		}
	}

	acquiredAt := time.Now().UnixMilli()
	if d, t := get("acq_date"), get("acq_time"); d != "" {
		if ts, err := time.Parse("2006-01-02 1504", d+" "+t); err == nil {
			acquiredAt = ts.UnixMilli()
		}
	}

	return model.Hotspot{
		TileID:      tileID,
		Lat:         f("latitude"),
		Lon:         f("longitude"),
		BrightnessK: f("bright_ti4"),
		Confidence:  confidence,
		Satellite:   get("satellite"),
		AcquiredAt:  acquiredAt,
	}
}
