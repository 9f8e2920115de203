package assess

import "time"

const (
	forecastHorizonHours = 24
	forecastStepHours    = 3
	forecastFloorSpeed   = 2.0 // m/s
)

var forecastConfidence = []string{"High", "High", "Medium", "Medium", "Low"}

var forecastTrends = []string{"Rising", "Stable", "Cooling"}

// buildForecast models the next 24 hours in 3 hour steps around a base
// speed. Every fourth step gets a small positive bias so the series
// shows believable diurnal structure.
func (a *Assessor) buildForecast(baseSpeed float64) *Forecast {
	start := a.now().UTC().Truncate(time.Hour)

	steps := forecastHorizonHours/forecastStepHours + 1
	hourly := make([]ForecastEntry, 0, steps)
	for idx := 0; idx < steps; idx++ {
		offset := idx * forecastStepHours
		delta := a.uniform(-0.8, 0.9)
		if idx%4 == 0 {
			delta += 0.2
		} else {
			delta -= 0.1
		}
		speed := baseSpeed + delta
		if speed < forecastFloorSpeed {
			speed = forecastFloorSpeed
		}

		hourly = append(hourly, ForecastEntry{
			Timestamp:  start.Add(time.Duration(offset) * time.Hour),
			HourOffset: offset,
			WindSpeed:  roundTo(speed, 1),
			Gust:       roundTo(speed+a.uniform(1.8, 4.2), 1),
			Direction:  roundTo(a.uniform(200, 290), 0),
			Confidence: a.choice(forecastConfidence),
		})
	}

	summary := ForecastSummary{
		PeakSpeed: hourly[0].WindSpeed,
		MinSpeed:  hourly[0].WindSpeed,
		Trend:     a.choice(forecastTrends),
	}
	sum := 0.0
	for _, e := range hourly {
		if e.WindSpeed > summary.PeakSpeed {
			summary.PeakSpeed = e.WindSpeed
		}
		if e.WindSpeed < summary.MinSpeed {
			summary.MinSpeed = e.WindSpeed
		}
		sum += e.WindSpeed
	}
	summary.AvgSpeed = roundTo(sum/float64(len(hourly)), 1)

	return &Forecast{Hourly: hourly, Summary: summary}
}
