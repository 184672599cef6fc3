package backoffice

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is the only settlement currency the platform uses.
const Currency = "NGN"

var moneyPrinter = message.NewPrinter(language.English)

// Kobo is an amount in minor units of the naira.
type Kobo int64

// String renders the amount with thousand separators, e.g. "NGN 12,500.00".
func (k Kobo) String() string {
	sign := ""
	v := uint64(k)
	if k < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%s %s.%02d", sign, Currency, moneyPrinter.Sprint(v/100), v%100)
}

// Naira returns the amount in major units.
func (k Kobo) Naira() float64 {
	return float64(k) / 100
}
