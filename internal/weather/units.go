package weather

import (
	"fmt"
	"math"
	"time"
)

const hpaToMmHg = 0.750062

var windDirectionLabels = map[string]string{
	"N":   "С",
	"NNE": "ССВ",
	"NE":  "СВ",
	"ENE": "ВСВ",
	"E":   "В",
	"ESE": "ВЮВ",
	"SE":  "ЮВ",
	"SSE": "ЮЮВ",
	"S":   "Ю",
	"SSW": "ЮЮЗ",
	"SW":  "ЮЗ",
	"WSW": "ЗЮЗ",
	"W":   "З",
	"WNW": "ЗСЗ",
	"NW":  "СЗ",
	"NNW": "ССЗ",
}

// PressureToMmHg converts hPa to mmHg. Non-positive readings are treated as
// missing and converted from DefaultPressureHpa instead.
func PressureToMmHg(hpa int) int {
	if hpa <= 0 {
		hpa = DefaultPressureHpa
	}
	return int(math.Round(float64(hpa) * hpaToMmHg))
}

// WindKphToMps converts km/h to m/s, truncating to whole units for display.
func WindKphToMps(kph float64) int {
	return int(math.Floor(kph / 3.6))
}

// WindDirectionLabel maps a 16-point compass code to its Russian label.
// Unknown codes are returned unchanged.
func WindDirectionLabel(code string) string {
	if label, ok := windDirectionLabels[code]; ok {
		return label
	}
	return code
}

// PrecipitationLabel picks which precipitation chance to show. The larger
// chance wins; a tie is broken by the month of now, with December through
// February preferring snow.
func PrecipitationLabel(rain, snow *int, now time.Time) string {
	switch {
	case rain == nil && snow == nil:
		return ""
	case snow == nil:
		return rainLabel(*rain)
	case rain == nil:
		return snowLabel(*snow)
	case *rain > *snow:
		return rainLabel(*rain)
	case *snow > *rain:
		return snowLabel(*snow)
	}

	switch now.Month() {
	case time.December, time.January, time.February:
		return snowLabel(*snow)
	default:
		return rainLabel(*rain)
	}
}

func rainLabel(pct int) string { return fmt.Sprintf("Дождь: %d%%", pct) }

func snowLabel(pct int) string { return fmt.Sprintf("Снег: %d%%", pct) }
