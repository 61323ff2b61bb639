package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// OptionContract holds the components of a parsed option symbol.
type OptionContract struct {
	Underlying string
	Expiry     time.Time
	Strike     float64
	OptionType string // CE or PE
}

// optionSymbolPattern matches symbols like NIFTY23DEC21000CE.
var optionSymbolPattern = regexp.MustCompile(`^([A-Z]+)(\d{2})([A-Z]{3})(\d+)(CE|PE)$`)

var monthMap = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// FormatOptionSymbol builds an option symbol: NIFTY23DEC21000CE.
func FormatOptionSymbol(underlying string, expiry time.Time, strike float64, optionType string) string {
	year := expiry.Format("06")
	month := strings.ToUpper(expiry.Format("Jan"))
	return fmt.Sprintf("%s%s%s%d%s", underlying, year, month, int(strike), strings.ToUpper(optionType))
}

// ParseOptionSymbol extracts the components of an option symbol. The
// expiry day is set to the first of the month; the exact expiry date
// needs an instrument master lookup.
func ParseOptionSymbol(symbol string) (*OptionContract, bool) {
	match := optionSymbolPattern.FindStringSubmatch(symbol)
	if match == nil {
		return nil, false
	}

	year, _ := strconv.Atoi(match[2])
	month, ok := monthMap[match[3]]
	if !ok {
		return nil, false
	}
	strike, err := strconv.ParseFloat(match[4], 64)
	if err != nil {
		return nil, false
	}

	return &OptionContract{
		Underlying: match[1],
		Expiry:     time.Date(2000+year, month, 1, 0, 0, 0, 0, IndiaLocation),
		Strike:     strike,
		OptionType: match[5],
	}, true
}

// indexLotSizes holds standard lot sizes for index derivatives.
var indexLotSizes = map[string]int{
	"NIFTY":      50,
	"BANKNIFTY":  15,
	"FINNIFTY":   40,
	"MIDCPNIFTY": 75,
	"SENSEX":     10,
	"BANKEX":     15,
}

// GetLotSize returns the lot size for a symbol, defaulting to 1 for
// cash equities.
func GetLotSize(symbol string) int {
	for underlying, lotSize := range indexLotSizes {
		if strings.HasPrefix(symbol, underlying) {
			return lotSize
		}
	}
	return 1
}

// RoundToTick rounds a price to the nearest tick size.
func RoundToTick(price, tickSize float64) float64 {
	if tickSize <= 0 {
		return price
	}
	return math.Round(math.Round(price/tickSize)*tickSize*100) / 100
}

// TokenHash generates a stable 16-character token for a symbol-exchange
// combination.
func TokenHash(symbol, exchange string) string {
	sum := md5.Sum([]byte(exchange + ":" + symbol))
	return hex.EncodeToString(sum[:])[:16]
}
