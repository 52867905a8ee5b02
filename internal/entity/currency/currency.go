package currency

import "sort"

const (
	USD = "USD"
	EUR = "EUR"
)

var defaultNames = map[string]string{
	"Argentine Peso":        "ARS",
	"Australian Dollar":     "AUD",
	"Bahraini Dinar":        "BHD",
	"Botswana Pula":         "BWP",
	"Brazilian Real":        "BRL",
	"British Pound":         "GBP",
	"Bruneian Dollar":       "BND",
	"Bulgarian Lev":         "BGN",
	"Canadian Dollar":       "CAD",
	"Chilean Peso":          "CLP",
	"Chinese Yuan Renminbi": "CNY",
	"Colombian Peso":        "COP",
	"Czech Koruna":          "CZK",
	"Croatian Kuna":         "HRK",
	"Danish Krone":          "DKK",
	"Emirati Dirham":        "AED",
	"Euro":                  EUR,
	"Hong Kong Dollar":      "HKD",
	"Hungarian Forint":      "HUF",
	"Icelandic Krona":       "ISK",
	"Indian Rupee":          "INR",
	"Indonesian Rupiah":     "IDR",
	"Iranian Rial":          "IRR",
	"Israeli Shekel":        "ILS",
	"Japanese Yen":          "JPY",
	"Kazakhstani Tenge":     "KZT",
	"Kuwaiti Dinar":         "KWD",
	"Libyan Dinar":          "LYD",
	"Malaysian Ringgit":     "MYR",
	"Mauritian Rupee":       "MUR",
	"Mexican Peso":          "MXN",
	"Nepalese Rupee":        "NPR",
	"New Zealand Dollar":    "NZD",
	"Norwegian Krone":       "NOK",
	"Omani Rial":            "OMR",
	"Pakistani Rupee":       "PKR",
	"Philippine Peso":       "PHP",
	"Polish Zloty":          "PLN",
	"Qatari Riyal":          "QAR",
	"Romanian New Leu":      "RON",
	"Russian Ruble":         "RUB",
	"Saudi Arabian Riyal":   "SAR",
	"Singapore Dollar":      "SGD",
	"South African Rand":    "ZAR",
	"South Korean Won":      "KRW",
	"Sri Lankan Rupee":      "LKR",
	"Swedish Krona":         "SEK",
	"Swiss Franc":           "CHF",
	"Taiwan New Dollar":     "TWD",
	"Thai Baht":             "THB",
	"Trinidadian Dollar":    "TTD",
	"Turkish Lira":          "TRY",
	"US Dollar":             USD,
	"Venezuelan Bolivar":    "VES",
}

// CodeMap maps currency display names, as printed by the rates source,
// to their three-letter codes. It is read-only once built.
type CodeMap struct {
	byName map[string]string
	byCode map[string]string
}

// NewCodeMap copies names so later changes to the argument are not observed.
func NewCodeMap(names map[string]string) CodeMap {
	m := CodeMap{
		byName: make(map[string]string, len(names)),
		byCode: make(map[string]string, len(names)),
	}
	for name, code := range names {
		m.byName[name] = code
		m.byCode[code] = name
	}
	return m
}

// DefaultCodeMap returns the built-in table of currencies listed by x-rates.com.
func DefaultCodeMap() CodeMap {
	return NewCodeMap(defaultNames)
}

// Resolve returns the code for a display name. Unknown names are not an error.
func (m CodeMap) Resolve(name string) (string, bool) {
	code, ok := m.byName[name]
	return code, ok
}

// Name is the reverse of Resolve.
func (m CodeMap) Name(code string) (string, bool) {
	name, ok := m.byCode[code]
	return name, ok
}

func (m CodeMap) Len() int {
	return len(m.byName)
}

// Codes returns every known code in alphabetical order.
func (m CodeMap) Codes() []string {
	codes := make([]string, 0, len(m.byCode))
	for code := range m.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
