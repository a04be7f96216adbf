package nmea

import "fmt"

// FixQuality mirrors the GGA fix-quality field.
type FixQuality int

const (
	FixNone FixQuality = 0
	FixGPS  FixQuality = 1
	FixDGPS FixQuality = 2
)

// FixMode mirrors the GSA fix-mode field.
type FixMode int

const (
	FixModeNone FixMode = 1
	FixMode2D   FixMode = 2
	FixMode3D   FixMode = 3
)

// SatelliteView is one satellite's reported state at emission time, used
// by both GSA (which satellites contributed to the fix) and GSV (every
// satellite in view).
type SatelliteView struct {
	PRN       int
	Elevation float64
	Azimuth   float64
	SNR       float64
}

// FixSnapshot is everything the sentence builders need about the
// receiver's current instant. It is a plain value type so this package
// stays independent of the receiver package's concurrency and state
// machinery.
type FixSnapshot struct {
	TalkerID string // e.g. "GP", "GL"

	Hour, Minute, Second, Hundredths int
	Day, Month, Year                 int

	Lat, Lon float64
	HasFix   bool
	FixMode  FixMode
	Quality  FixQuality

	SpeedKph   float64
	HeadingDeg float64
	AltitudeM  float64
	GeoidSepM  float64

	HDOP, VDOP, PDOP float64

	SatellitesUsed []int
	SatellitesView []SatelliteView
}

func (f FixSnapshot) timeField() string {
	return FormatTime(f.Hour, f.Minute, f.Second, f.Hundredths)
}

func (f FixSnapshot) dateField() string {
	return FormatDate(f.Day, f.Month, f.Year)
}

func fmtFloat(v float64, prec int) string {
	return fmt.Sprintf("%.*f", prec, v)
}

// BuildGGA renders a GGA (fix data) sentence.
func BuildGGA(f FixSnapshot) string {
	latStr, latHemi := FormatLat(f.Lat)
	lonStr, lonHemi := FormatLon(f.Lon)

	numSats := len(f.SatellitesUsed)
	quality := f.Quality
	if !f.HasFix {
		quality = FixNone
	}

	fields := []string{
		f.timeField(),
		latStr, latHemi,
		lonStr, lonHemi,
		fmt.Sprintf("%d", quality),
		fmt.Sprintf("%02d", numSats),
		fmtFloat(f.HDOP, 1),
		fmtFloat(f.AltitudeM, 1), "M",
		fmtFloat(f.GeoidSepM, 1), "M",
		"", "",
	}
	return Build(f.TalkerID+"GGA", fields)
}

// BuildGLL renders a GLL (geographic position, latitude/longitude)
// sentence, mirroring RMC's position and status.
func BuildGLL(f FixSnapshot) string {
	latStr, latHemi := FormatLat(f.Lat)
	lonStr, lonHemi := FormatLon(f.Lon)

	status := "V"
	if f.HasFix {
		status = "A"
	}

	fields := []string{
		latStr, latHemi,
		lonStr, lonHemi,
		f.timeField(),
		status,
		"A",
	}
	return Build(f.TalkerID+"GLL", fields)
}

// BuildGSA renders a GSA (DOP and active satellites) sentence.
func BuildGSA(f FixSnapshot) string {
	fields := make([]string, 0, 18)
	fields = append(fields, "A", fmt.Sprintf("%d", f.FixMode))

	for i := 0; i < 12; i++ {
		if i < len(f.SatellitesUsed) {
			fields = append(fields, fmt.Sprintf("%02d", f.SatellitesUsed[i]))
		} else {
			fields = append(fields, "")
		}
	}

	fields = append(fields, fmtFloat(f.PDOP, 1), fmtFloat(f.HDOP, 1), fmtFloat(f.VDOP, 1))
	return Build(f.TalkerID+"GSA", fields)
}

// BuildGSV renders the sequence of GSV (satellites in view) sentences
// needed to report every satellite, paging at 4 satellites per sentence.
func BuildGSV(f FixSnapshot) []string {
	sats := f.SatellitesView
	if len(sats) == 0 {
		totalMessages := 1
		fields := []string{fmt.Sprintf("%d", totalMessages), "1", "0"}
		return []string{Build(f.TalkerID+"GSV", fields)}
	}

	const perMessage = 4
	totalMessages := (len(sats) + perMessage - 1) / perMessage

	out := make([]string, 0, totalMessages)
	for msg := 0; msg < totalMessages; msg++ {
		fields := []string{
			fmt.Sprintf("%d", totalMessages),
			fmt.Sprintf("%d", msg+1),
			fmt.Sprintf("%d", len(sats)),
		}
		for i := msg * perMessage; i < (msg+1)*perMessage && i < len(sats); i++ {
			s := sats[i]
			snr := "99"
			if s.SNR >= 0 {
				snr = fmt.Sprintf("%02.0f", s.SNR)
			}
			fields = append(fields,
				fmt.Sprintf("%02d", s.PRN),
				fmt.Sprintf("%02.0f", s.Elevation),
				fmt.Sprintf("%03.0f", s.Azimuth),
				snr,
			)
		}
		out = append(out, Build(f.TalkerID+"GSV", fields))
	}
	return out
}

// BuildRMC renders an RMC (recommended minimum navigation information)
// sentence.
func BuildRMC(f FixSnapshot) string {
	latStr, latHemi := FormatLat(f.Lat)
	lonStr, lonHemi := FormatLon(f.Lon)

	status := "V"
	if f.HasFix {
		status = "A"
	}
	speedKnots := f.SpeedKph / 1.852

	fields := []string{
		f.timeField(),
		status,
		latStr, latHemi,
		lonStr, lonHemi,
		fmtFloat(speedKnots, 1),
		fmtFloat(f.HeadingDeg, 1),
		f.dateField(),
		"", "",
	}
	return Build(f.TalkerID+"RMC", fields)
}

// BuildVTG renders a VTG (track made good and ground speed) sentence.
func BuildVTG(f FixSnapshot) string {
	speedKnots := f.SpeedKph / 1.852
	fields := []string{
		fmtFloat(f.HeadingDeg, 1), "T",
		fmtFloat(f.HeadingDeg, 1), "M",
		fmtFloat(speedKnots, 1), "N",
		fmtFloat(f.SpeedKph, 1), "K",
	}
	return Build(f.TalkerID+"VTG", fields)
}

// BuildZDA renders a ZDA (time and date) sentence. Local zone offsets
// are always zero: this simulator has no notion of a local timezone.
func BuildZDA(f FixSnapshot) string {
	fields := []string{
		f.timeField(),
		fmt.Sprintf("%02d", f.Day),
		fmt.Sprintf("%02d", f.Month),
		fmt.Sprintf("%04d", f.Year),
		"00", "00",
	}
	return Build(f.TalkerID+"ZDA", fields)
}
