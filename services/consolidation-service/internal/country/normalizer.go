// Package country maps the many ways a destination gets typed ("us", "USA",
// "United States") onto one ISO 3166-1 alpha-2 code.
package country

import (
	_ "embed"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/text/unicode/norm"
)

// Normalizer turns a free-text country into a canonical code. An empty
// result means the input names no country the normalizer knows.
type Normalizer interface {
	Normalize(country string) string
}

// Namer gives the display name for a canonical code.
type Namer interface {
	Name(code string) string
}

//go:embed iso3166.txt
var isoCodes string

// officialNames adds ISO 3166 short names, SAR forms and common
// spellings that the CLDR display names do not use. Keys are folded.
var officialNames = map[string]string{
	"UK":                               "GB",
	"GREAT BRITAIN":                    "GB",
	"BRITAIN":                          "GB",
	"ENGLAND":                          "GB",
	"SCOTLAND":                         "GB",
	"WALES":                            "GB",
	"NORTHERN IRELAND":                 "GB",
	"UNITED STATES OF AMERICA":         "US",
	"AMERICA":                          "US",
	"HOLLAND":                          "NL",
	"HONG KONG":                        "HK",
	"HONG KONG SAR":                    "HK",
	"MACAU":                            "MO",
	"MACAO":                            "MO",
	"MACAU SAR":                        "MO",
	"MACAO SAR":                        "MO",
	"MYANMAR":                          "MM",
	"BURMA":                            "MM",
	"BOSNIA AND HERZEGOVINA":           "BA",
	"BOSNIA":                           "BA",
	"NORTH MACEDONIA":                  "MK",
	"MACEDONIA":                        "MK",
	"TURKEY":                           "TR",
	"TURKIYE":                          "TR",
	"COTE D IVOIRE":                    "CI",
	"IVORY COAST":                      "CI",
	"ESWATINI":                         "SZ",
	"SWAZILAND":                        "SZ",
	"KOSOVO":                           "XK",
	"PALESTINE":                        "PS",
	"STATE OF PALESTINE":               "PS",
	"PALESTINIAN TERRITORIES":          "PS",
	"CZECHIA":                          "CZ",
	"CZECH REPUBLIC":                   "CZ",
	"CABO VERDE":                       "CV",
	"CAPE VERDE":                       "CV",
	"TIMOR LESTE":                      "TL",
	"EAST TIMOR":                       "TL",
	"HOLY SEE":                         "VA",
	"VATICAN":                          "VA",
	"VATICAN CITY":                     "VA",
	"DEMOCRATIC REPUBLIC OF THE CONGO": "CD",
	"DR CONGO":                         "CD",
	"CONGO KINSHASA":                   "CD",
	"REPUBLIC OF THE CONGO":            "CG",
	"CONGO BRAZZAVILLE":                "CG",
	"SOUTH KOREA":                      "KR",
	"KOREA":                            "KR",
	"REPUBLIC OF KOREA":                "KR",
	"NORTH KOREA":                      "KP",
	"RUSSIA":                           "RU",
	"RUSSIAN FEDERATION":               "RU",
	"VIETNAM":                          "VN",
	"VIET NAM":                         "VN",
	"LAOS":                             "LA",
	"SYRIA":                            "SY",
	"IRAN":                             "IR",
	"TAIWAN":                           "TW",
	"BOLIVIA":                          "BO",
	"VENEZUELA":                        "VE",
	"TANZANIA":                         "TZ",
	"MOLDOVA":                          "MD",
	"MICRONESIA":                       "FM",
	"SAINT KITTS AND NEVIS":            "KN",
	"SAINT LUCIA":                      "LC",
	"SAINT VINCENT AND THE GRENADINES": "VC",
	"UAE":                              "AE",
}

// nameLocales are the CLDR locales whose region names are accepted as input.
// English goes last so its names win over a colliding foreign one.
var nameLocales = []language.Tag{
	language.German,
	language.French,
	language.Spanish,
	language.Italian,
	language.Portuguese,
	language.Dutch,
	language.English,
}

// ISO resolves ISO alpha-2 and alpha-3 codes and country names in several
// CLDR locales using the data in golang.org/x/text.
type ISO struct {
	byName map[string]string
}

var (
	defaultISO     *ISO
	defaultISOOnce sync.Once
)

// Default returns the shared ISO normalizer. The name table is built once.
func Default() *ISO {
	defaultISOOnce.Do(func() { defaultISO = NewISO() })
	return defaultISO
}

func NewISO() *ISO {
	byName := make(map[string]string, 2000)
	for _, tag := range nameLocales {
		namer := display.Regions(tag)
		for _, code := range strings.Fields(isoCodes) {
			region, err := language.ParseRegion(code)
			if err != nil {
				continue
			}
			if name := fold(namer.Name(region)); name != "" {
				byName[name] = code
			}
		}
	}
	for name, code := range officialNames {
		byName[fold(name)] = code
	}
	return &ISO{byName: byName}
}

// Normalize returns the alpha-2 code for country. Two and three letter input
// that is not a known code is returned uppercased; any other text that names
// no known country yields "".
func (n *ISO) Normalize(country string) string {
	key := fold(country)
	if key == "" {
		return ""
	}
	if code, ok := n.byName[key]; ok {
		return code
	}
	if isCode(key) {
		if region, err := language.ParseRegion(key); err == nil && region.IsCountry() {
			return region.String()
		}
		return key
	}
	return ""
}

// Name returns the English display name ("Canada") for a code, or the input
// when it is not a country code.
func (n *ISO) Name(code string) string {
	region, err := language.ParseRegion(strings.TrimSpace(code))
	if err != nil || !region.IsCountry() {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}

func isCode(s string) bool {
	if len(s) != 2 && len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// fold reduces a country spelling to a comparison key: diacritics and dots
// dropped, "&" read as "AND", other punctuation as a space, uppercased, a
// leading "THE" removed and "ST" expanded to "SAINT".
func fold(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r), r == '.':
		case r == '&':
			b.WriteString(" AND ")
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(' ')
		}
	}
	fields := strings.Fields(b.String())
	if len(fields) > 1 && fields[0] == "THE" {
		fields = fields[1:]
	}
	for i, f := range fields {
		if f == "ST" {
			fields[i] = "SAINT"
		}
	}
	return strings.Join(fields, " ")
}
