package domain

import "strings"

// Rasi is a zodiac sign code ("Ar" .. "Pi").
type Rasi string

// RasiOrder is the fixed 12-sign sidereal order starting at Aries.
var RasiOrder = []Rasi{
	"Ar", "Ta", "Ge", "Cn", "Le", "Vi", "Li", "Sc", "Sg", "Cp", "Aq", "Pi",
}

// Nakshatra is a lunar-mansion code in the fixed 27-mansion order
// (no Abhijit).
type Nakshatra string

// NakshatraOrder lists the 27 mansions starting at Ashwini.
var NakshatraOrder = []Nakshatra{
	"Aswi", "Bhar", "Krit", "Rohi", "Mrig", "Ardr", "Puna", "Push", "Asle",
	"Magh", "PPha", "UPha", "Hast", "Chit", "Swat", "Visa", "Anu", "Jye",
	"Mool", "PSha", "USha", "Srav", "Dhan", "Sata", "PBha", "UBha", "Reva",
}

// Full display names, index-aligned with NakshatraOrder.
var nakshatraFullNames = []string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashirsha", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni",
	"Uttara Phalguni", "Hasta", "Chitra", "Swati", "Visakha", "Anuradha",
	"Jyeshtha", "Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana",
	"Dhanishta", "Shatabhisha", "Purva Bhadrapada", "Uttara Bhadrapada",
	"Revati",
}

// Bounded transliteration variants that do not converge through the
// substitution passes alone.
var nakshatraVariants = map[string][]string{
	"Mrig": {"mrigashira", "mrigasira", "makayiram"},
	"Asle": {"ayilyam", "aslesa"},
	"Jye":  {"jyestha", "jyaistha"},
	"Dhan": {"dhanishtha", "avittam"},
	"Sata": {"shatabhishak", "satabhisaj"},
	"Puna": {"punarvasu"},
	"Krit": {"kritika", "karthika"},
}

var rasiFullNames = map[Rasi][]string{
	"Ar": {"Aries", "Mesha"},
	"Ta": {"Taurus", "Vrishabha", "Vrushabha"},
	"Ge": {"Gemini", "Mithuna"},
	"Cn": {"Cancer", "Karka", "Kataka"},
	"Le": {"Leo", "Simha"},
	"Vi": {"Virgo", "Kanya"},
	"Li": {"Libra", "Tula", "Thula"},
	"Sc": {"Scorpio", "Vrischika", "Vrishchika"},
	"Sg": {"Sagittarius", "Dhanus", "Dhanu"},
	"Cp": {"Capricorn", "Makara"},
	"Aq": {"Aquarius", "Kumbha"},
	"Pi": {"Pisces", "Meena", "Mina"},
}

var (
	rasiLookup      map[string]Rasi
	nakshatraLookup map[string]Nakshatra
)

func init() {
	rasiLookup = make(map[string]Rasi)
	for _, r := range RasiOrder {
		rasiLookup[canonicalName(string(r))] = r
	}
	for r, names := range rasiFullNames {
		for _, n := range names {
			rasiLookup[canonicalName(n)] = r
		}
	}

	nakshatraLookup = make(map[string]Nakshatra)
	for i, n := range NakshatraOrder {
		nakshatraLookup[canonicalName(string(n))] = n
		nakshatraLookup[canonicalName(nakshatraFullNames[i])] = n
	}
	for abbr, variants := range nakshatraVariants {
		for _, v := range variants {
			nakshatraLookup[canonicalName(v)] = Nakshatra(abbr)
		}
	}
}

// canonicalName reduces a mansion or sign token to its lookup key: the
// parenthetical suffix is dropped, case/spacing removed, then a bounded
// set of transliteration substitutions applied (vowel doubling, sibilant,
// semivowel).
func canonicalName(token string) string {
	s := token
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "", "-", "", ".", "", "'", "").Replace(s)
	s = strings.NewReplacer("aa", "a", "ee", "i", "oo", "u").Replace(s)
	s = strings.ReplaceAll(s, "sh", "s")
	s = strings.ReplaceAll(s, "w", "v")
	return s
}

// ParseRasi resolves a sign token (code, English or Sanskrit name, with
// optional parenthetical suffix) to its canonical code.
func ParseRasi(token string) (Rasi, bool) {
	r, ok := rasiLookup[canonicalName(token)]
	return r, ok
}

// ParseNakshatra resolves a mansion token to its canonical code.
func ParseNakshatra(token string) (Nakshatra, bool) {
	n, ok := nakshatraLookup[canonicalName(token)]
	return n, ok
}

// Index returns the 0-11 position of the sign, or -1 for an unknown code.
func (r Rasi) Index() int {
	for i, v := range RasiOrder {
		if v == r {
			return i
		}
	}
	return -1
}

// RasiAt returns the sign at a 0-based index, wrapping modulo 12.
func RasiAt(i int) Rasi {
	return RasiOrder[((i%12)+12)%12]
}

// Index returns the 0-26 position of the mansion, or -1 for an unknown code.
func (n Nakshatra) Index() int {
	for i, v := range NakshatraOrder {
		if v == n {
			return i
		}
	}
	return -1
}

// NakshatraAt returns the mansion at a 0-based index, wrapping modulo 27.
func NakshatraAt(i int) Nakshatra {
	return NakshatraOrder[((i%27)+27)%27]
}

// FullName returns the display name of the mansion ("Visa" -> "Visakha").
func (n Nakshatra) FullName() string {
	if i := n.Index(); i >= 0 {
		return nakshatraFullNames[i]
	}
	return string(n)
}
