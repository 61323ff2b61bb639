package utils

import (
	"time"

	"angel-trader/internal/models"
)

// IndiaLocation is the timezone for Indian markets.
var IndiaLocation *time.Location

func init() {
	var err error
	IndiaLocation, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to UTC+5:30
		IndiaLocation = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// GetMarketStatus returns the current market status.
func GetMarketStatus() models.MarketStatus {
	return marketStatusAt(time.Now().In(IndiaLocation))
}

func marketStatusAt(now time.Time) models.MarketStatus {
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return models.MarketClosed
	}

	timeMinutes := now.Hour()*60 + now.Minute()

	// Pre-open: 9:00 - 9:15
	if timeMinutes >= 540 && timeMinutes < 555 {
		return models.MarketPreOpen
	}

	// Market open: 9:15 - 15:30
	if timeMinutes >= 555 && timeMinutes < 930 {
		return models.MarketOpen
	}

	return models.MarketClosed
}

// IsMarketOpen returns true if the market is currently open.
func IsMarketOpen() bool {
	return GetMarketStatus() == models.MarketOpen
}

// GetNextMarketOpen returns the next market opening time.
func GetNextMarketOpen() time.Time {
	now := time.Now().In(IndiaLocation)

	next := time.Date(now.Year(), now.Month(), now.Day(), 9, 15, 0, 0, IndiaLocation)
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// GetMarketClose returns today's market close time.
func GetMarketClose() time.Time {
	now := time.Now().In(IndiaLocation)
	return time.Date(now.Year(), now.Month(), now.Day(), 15, 30, 0, 0, IndiaLocation)
}

// NextExpiries returns upcoming weekly expiry timestamps (Thursday 15:30)
// for index options.
func NextExpiries(from time.Time, count int) []time.Time {
	from = from.In(IndiaLocation)
	expiries := make([]time.Time, 0, count)
	current := from

	for len(expiries) < count {
		daysUntilThursday := (int(time.Thursday) - int(current.Weekday()) + 7) % 7
		if daysUntilThursday == 0 && current.Hour() >= 15 {
			daysUntilThursday = 7
		}
		expiry := current.AddDate(0, 0, daysUntilThursday)
		expiry = time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 15, 30, 0, 0, IndiaLocation)
		if expiry.After(from) {
			expiries = append(expiries, expiry)
		}
		current = expiry.AddDate(0, 0, 1)
	}
	return expiries
}
