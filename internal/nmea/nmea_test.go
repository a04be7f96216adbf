package nmea

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumKnownSentence(t *testing.T) {
	// GPGGA example widely quoted in NMEA references, checksum 47.
	body := "GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"
	assert.Equal(t, "47", Checksum(body))
}

func TestBuildRoundTripsChecksum(t *testing.T) {
	line := Build("GPRMC", []string{"123519", "A", "4807.038", "N", "01131.000", "E"})
	require.True(t, strings.HasPrefix(line, "$GPRMC,"))
	require.True(t, strings.HasSuffix(line, "\r\n"))

	star := strings.LastIndex(line, "*")
	body := line[1:star]
	gotChecksum := strings.TrimSuffix(line[star+1:], "\r\n")
	assert.Equal(t, Checksum(body), gotChecksum)
}

func TestFormatLatLonHemispheres(t *testing.T) {
	latStr, latHemi := FormatLat(-33.5)
	assert.Equal(t, "S", latHemi)
	assert.Equal(t, "3330.0000", latStr)

	lonStr, lonHemi := FormatLon(-151.25)
	assert.Equal(t, "W", lonHemi)
	assert.Equal(t, "15115.0000", lonStr)
}

func TestBuildGGAReflectsNoFix(t *testing.T) {
	snap := FixSnapshot{TalkerID: "GP", Lat: 51.5, Lon: -0.1, HasFix: false, Quality: FixGPS}
	line := BuildGGA(snap)
	assert.Contains(t, line, "$GPGGA,")
	fields := strings.Split(strings.TrimPrefix(line, "$GPGGA,"), ",")
	assert.Equal(t, "0", fields[5])
}

func TestBuildRMCStatus(t *testing.T) {
	noFix := BuildRMC(FixSnapshot{TalkerID: "GP", HasFix: false})
	assert.Contains(t, noFix, ",V,")

	fix := BuildRMC(FixSnapshot{TalkerID: "GP", HasFix: true})
	assert.Contains(t, fix, ",A,")
}

func TestBuildGSVPaging(t *testing.T) {
	sats := make([]SatelliteView, 9)
	for i := range sats {
		sats[i] = SatelliteView{PRN: i + 1, Elevation: 45, Azimuth: 90, SNR: 40}
	}
	lines := BuildGSV(FixSnapshot{TalkerID: "GP", SatellitesView: sats})
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "3,1,9,")
	assert.Contains(t, lines[2], "3,3,9,")
}

func TestBuildGSANoMoreThanTwelveSatellites(t *testing.T) {
	used := make([]int, 20)
	for i := range used {
		used[i] = i + 1
	}
	line := BuildGSA(FixSnapshot{TalkerID: "GP", SatellitesUsed: used, FixMode: FixMode3D})
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(line, "$GPGSA,"), "\r\n"), ",")
	// status, mode, 12 satellite slots, PDOP/HDOP/VDOP + checksum-bearing last field
	require.Len(t, parts, 17)
	assert.Equal(t, "3", parts[1])
	assert.Equal(t, "12", parts[13])
}
