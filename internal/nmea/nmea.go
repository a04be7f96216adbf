// Package nmea formats receiver state into NMEA-0183 sentences and
// computes their checksums. It only ever generates sentences; this
// simulator never needs to parse a feed it did not itself produce.
package nmea

import (
	"fmt"
	"math"
	"strings"
)

// Checksum returns the uppercase two-hex XOR checksum of data, the bytes
// that appear strictly between '$' and '*' in a finished sentence.
func Checksum(data string) string {
	var sum uint8
	for i := 0; i < len(data); i++ {
		sum ^= data[i]
	}
	return fmt.Sprintf("%02X", sum)
}

// Build assembles a complete sentence from a talker+type prefix (e.g.
// "GPGGA") and comma-joined fields, appending the checksum and the
// trailing CRLF terminator.
func Build(typeID string, fields []string) string {
	body := typeID + "," + strings.Join(fields, ",")
	return "$" + body + "*" + Checksum(body) + "\r\n"
}

// FormatLat renders a decimal-degree latitude as NMEA ddmm.mmmm plus its
// hemisphere letter.
func FormatLat(lat float64) (string, string) {
	hemisphere := "N"
	if lat < 0 {
		hemisphere = "S"
		lat = -lat
	}
	degrees := math.Floor(lat)
	minutes := (lat - degrees) * 60.0
	return fmt.Sprintf("%02.0f%07.4f", degrees, minutes), hemisphere
}

// FormatLon renders a decimal-degree longitude as NMEA dddmm.mmmm plus
// its hemisphere letter.
func FormatLon(lon float64) (string, string) {
	hemisphere := "E"
	if lon < 0 {
		hemisphere = "W"
		lon = -lon
	}
	degrees := math.Floor(lon)
	minutes := (lon - degrees) * 60.0
	return fmt.Sprintf("%03.0f%07.4f", degrees, minutes), hemisphere
}

// FormatTime renders a UTC time-of-day as NMEA hhmmss.ss.
func FormatTime(hour, minute, second, hundredths int) string {
	return fmt.Sprintf("%02d%02d%02d.%02d", hour, minute, second, hundredths)
}

// FormatDate renders a UTC calendar date as NMEA ddmmyy.
func FormatDate(day, month, year int) string {
	return fmt.Sprintf("%02d%02d%02d", day, month, year%100)
}
