package mapper

import "sort"

// Method is the payment rail used for a transfer.
type Method string

const (
	MethodSWIFT Method = "SWIFT"
	MethodACH   Method = "ACH"
)

// Route is the destination metadata the batch template needs for a currency.
type Route struct {
	Country string
	Method  Method
}

// routes maps a currency code (case-sensitive) to its route.
var routes = map[string]Route{
	"BRL": {Country: "Brazil", Method: MethodSWIFT},
	"PKR": {Country: "Pakistan", Method: MethodSWIFT},
	"USD": {Country: "United States of America", Method: MethodACH},
	"THB": {Country: "Thailand", Method: MethodSWIFT},
}

// LookupRoute returns the route for currency. The match is exact: "usd" has
// no route.
func LookupRoute(currency string) (Route, bool) {
	r, ok := routes[currency]
	return r, ok
}

// SupportedCurrencies returns the routed currency codes in sorted order.
func SupportedCurrencies() []string {
	codes := make([]string, 0, len(routes))
	for code := range routes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
