// Package adsb ingests aircraft position reports over the SBS/BaseStation
// CSV line protocol, grounded on odin_adsb/src/sbs.rs. Mode-S decoding
// itself is out of scope (SPEC_FULL.md non-goals): this package only
// understands the plain-text SBS feed a dump1090-style receiver emits on
// port 30003, not raw Mode-S frames.
package adsb

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/odin-fire/odin-go/internal/domain/model"
)

// sbs field indices, 0-based, per
// http://woodair.net/SBS/Article/Barebones42_Socket_Data.htm
const (
	fieldMsgType    = 1
	fieldICAO       = 4
	fieldDate2      = 8
	fieldTime2      = 9
	fieldCallsign   = 10
	fieldAltitude   = 11
	fieldGroundSpd  = 12
	fieldTrack      = 13
	fieldLat        = 14
	fieldLon        = 15
	fieldVertRate   = 16
	minFieldsMSG3   = 16
	minFieldsMSG4   = 17
)

// ParseLine decodes one SBS CSV line. Only MSG,3 (airborne position) and
// MSG,4 (airborne velocity) lines carry data this system tracks; every
// other message type returns ok=false rather than an error, mirroring the
// source's "not all updates count towards a new timestamp" comment.
func ParseLine(line string) (pos model.AircraftPosition, ok bool, err error) {
	fields := strings.Split(line, ",")
	if len(fields) < 5 || fields[0] != "MSG" {
		return pos, false, nil
	}

	msgType := fields[fieldMsgType]
	if len(fields) <= fieldICAO {
		return pos, false, fmt.Errorf("adsb: truncated SBS line: %q", line)
	}
	pos.ICAO = fields[fieldICAO]
	pos.ObservedAt = parseObservedAt(fields)

	switch msgType {
	case "3":
		if len(fields) <= fieldLon {
			return pos, false, fmt.Errorf("adsb: truncated MSG,3 line: %q", line)
		}
		pos.Callsign = strings.TrimSpace(fields[fieldCallsign])
		pos.AltitudeFt = parseInt32(fields[fieldAltitude])
		pos.Lat = parseFloat(fields[fieldLat])
		pos.Lon = parseFloat(fields[fieldLon])
		if pos.Lat == 0 && pos.Lon == 0 {
			return pos, false, nil
		}
		return pos, true, nil

	case "4":
		if len(fields) <= fieldVertRate {
			return pos, false, fmt.Errorf("adsb: truncated MSG,4 line: %q", line)
		}
		pos.GroundSpeedKt = parseFloat(fields[fieldGroundSpd])
		pos.TrackDeg = parseFloat(fields[fieldTrack])
		pos.VerticalRateFpm = parseInt32(fields[fieldVertRate])
		return pos, true, nil

	default:
		return pos, false, nil
	}
}

func parseObservedAt(fields []string) int64 {
	if len(fields) <= fieldTime2 {
		return time.Now().UnixMilli()
	}
	ts, err := time.Parse("2006/01/02 15:04:05.000", fields[fieldDate2]+" "+fields[fieldTime2])
	if err != nil {
		return time.Now().UnixMilli()
	}
	return ts.UnixMilli()
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func parseInt32(s string) int32 {
	v, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	return int32(v)
}
