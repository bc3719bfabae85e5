// Package widget formats a weather snapshot into the text lines shown by the
// desktop panel.
package widget

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-widget/internal/weather"
)

const unresolvedClock = "--:--"

var (
	weekdays = [...]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"}
	months   = [...]string{"янв", "фев", "мар", "апр", "мая", "июн", "июл", "авг", "сен", "окт", "ноя", "дек"}
)

// Panel holds one rendered line per widget row.
type Panel struct {
	Date        string `json:"date"`
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Details     string `json:"details"`
	WindSun     string `json:"windSun"`
}

// Lines returns the rows in display order.
func (p Panel) Lines() []string {
	return []string{p.Date, p.Location, p.Temperature, p.Details, p.WindSun}
}

func (p Panel) String() string {
	return strings.Join(p.Lines(), "\n")
}

// Render builds the panel for s. The date header and the precipitation tie
// break both follow now rather than the snapshot's fetch time.
func Render(s weather.Snapshot, now time.Time) Panel {
	return Panel{
		Date:        DateHeader(now),
		Location:    s.Location,
		Temperature: fmt.Sprintf("%s°C  %s", signedDegrees(s.TemperatureC), s.Description),
		Details:     strings.TrimRight(fmt.Sprintf("Вл: %d%%  Давл: %d мм %s", s.HumidityPct, s.PressureMmHg(), s.PrecipitationWarningAt(now)), " "),
		WindSun:     fmt.Sprintf("Восх: %s  Закат: %s  %s", clock(s.Sunrise), clock(s.Sunset), windText(s)),
	}
}

// DateHeader formats t as "Пн, 10 авг".
func DateHeader(t time.Time) string {
	// A Caser keeps state between calls and cannot be shared.
	day := cases.Title(language.Russian).String(weekdays[t.Weekday()])
	return fmt.Sprintf("%s, %d %s", day, t.Day(), months[t.Month()-1])
}

func signedDegrees(c float64) string {
	n := int(math.Round(c))
	if n >= 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func clock(t time.Time) string {
	if t.IsZero() {
		return unresolvedClock
	}
	return t.Format("15:04")
}

func windText(s weather.Snapshot) string {
	if s.WindSpeedKph <= 0 {
		return "Ветер: —"
	}
	return fmt.Sprintf("Ветер: %d м/с %s", s.WindMps(), s.WindDirectionLabel())
}
