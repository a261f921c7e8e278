package geo

import (
	"fmt"
	"math"
)

// WGS84 ellipsoid.
const (
	equatorialRadius = 6378137.0
	eccSquared       = 0.00669438
	scaleFactor      = 0.9996

	falseEasting          = 500000.0
	southernFalseNorthing = 10000000.0
)

// Latitude bands from 80S to 84N, 8 degrees each (I and O skipped).
const bandLetters = "CDEFGHJKLMNPQRSTUVWX"

type UTMCoordinates struct {
	Northing int
	Easting  int
	Zone     string
}

// ToUTM projects a WGS84 longitude/latitude pair onto the UTM grid.
// Longitude must be within [-180, 180] and latitude within [-90, 90].
func ToUTM(longitude float64, latitude float64) (UTMCoordinates, error) {
	if latitude < -90 || latitude > 90 {
		return UTMCoordinates{}, fmt.Errorf("latitude out of range: %f", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return UTMCoordinates{}, fmt.Errorf("longitude out of range: %f", longitude)
	}

	// +180 maps onto the first zone again
	if longitude == 180 {
		longitude = -180
	}

	zone := zoneNumber(longitude, latitude)
	letter := bandLetter(latitude)

	latRad := latitude * math.Pi / 180
	longRad := longitude * math.Pi / 180

	longOrigin := float64((zone-1)*6 - 180 + 3) // middle of the zone
	longOriginRad := longOrigin * math.Pi / 180

	eccPrimeSquared := eccSquared / (1 - eccSquared)

	n := equatorialRadius / math.Sqrt(1-eccSquared*math.Sin(latRad)*math.Sin(latRad))
	t := math.Tan(latRad) * math.Tan(latRad)
	c := eccPrimeSquared * math.Cos(latRad) * math.Cos(latRad)
	a := math.Cos(latRad) * (longRad - longOriginRad)

	m := equatorialRadius * ((1-eccSquared/4-3*eccSquared*eccSquared/64-5*eccSquared*eccSquared*eccSquared/256)*latRad -
		(3*eccSquared/8+3*eccSquared*eccSquared/32+45*eccSquared*eccSquared*eccSquared/1024)*math.Sin(2*latRad) +
		(15*eccSquared*eccSquared/256+45*eccSquared*eccSquared*eccSquared/1024)*math.Sin(4*latRad) -
		(35*eccSquared*eccSquared*eccSquared/3072)*math.Sin(6*latRad))

	easting := scaleFactor*n*(a+(1-t+c)*a*a*a/6+
		(5-18*t+t*t+72*c-58*eccPrimeSquared)*a*a*a*a*a/120) + falseEasting

	northing := scaleFactor * (m + n*math.Tan(latRad)*(a*a/2+(5-t+9*c+4*c*c)*a*a*a*a/24+
		(61-58*t+t*t+600*c-330*eccPrimeSquared)*a*a*a*a*a*a/720))
	if latitude < 0 {
		northing += southernFalseNorthing
	}

	return UTMCoordinates{
		Northing: int(math.Round(northing)),
		Easting:  int(math.Round(easting)),
		Zone:     fmt.Sprintf("%d%s", zone, letter),
	}, nil
}

func zoneNumber(longitude float64, latitude float64) int {
	zone := int(math.Floor((longitude+180)/6)) + 1

	// southern Norway exception
	if latitude >= 56 && latitude < 64 && longitude >= 3 && longitude < 12 {
		zone = 32
	}

	// Svalbard exceptions
	if latitude >= 72 && latitude < 84 {
		switch {
		case longitude >= 0 && longitude < 9:
			zone = 31
		case longitude >= 9 && longitude < 21:
			zone = 33
		case longitude >= 21 && longitude < 33:
			zone = 35
		case longitude >= 33 && longitude < 42:
			zone = 37
		}
	}
	return zone
}

func bandLetter(latitude float64) string {
	if latitude > 84 || latitude < -80 {
		// outside the regular band range
		return "Z"
	}
	index := int(math.Floor((latitude + 80) / 8))
	if index > len(bandLetters)-1 {
		index = len(bandLetters) - 1 // 80..84 stays in X
	}
	return string(bandLetters[index])
}
