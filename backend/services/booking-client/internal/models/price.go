package models

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PriceUnit is appended to every formatted price.
const PriceUnit = "VND/kWh"

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a per-kWh price rounded to whole units with grouped thousands,
// e.g. 3500 -> "3,500 VND/kWh".
func FormatPrice(pricePerKWh float64) string {
	if pricePerKWh <= 0 || math.IsNaN(pricePerKWh) {
		return "Free"
	}
	return pricePrinter.Sprintf("%d %s", int64(math.Round(pricePerKWh)), PriceUnit)
}
