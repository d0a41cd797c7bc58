package farming

import "strings"

// keywordPair maps the spoken keyword to the canonical slot value. Order is
// a priority: the first matching pair wins and the rest are not scanned.
type keywordPair struct {
	keyword string
	value   string
}

var locationKeywords = []keywordPair{
	{"haryana", "हरियाणा"},
	{"punjab", "पंजाब"},
	{"gujarat", "गुजरात"},
	{"maharashtra", "महाराष्ट्र"},
	{"karnataka", "कर्नाटक"},
	{"tamil nadu", "तमिलनाडु"},
}

// Crops are recognized by their Hindi name or their English name; both map
// onto the canonical English value.
var cropKeywords = []keywordPair{
	{"gehun", "wheat"},
	{"wheat", "wheat"},
	{"chawal", "rice"},
	{"rice", "rice"},
	{"makka", "maize"},
	{"maize", "maize"},
	{"bajra", "pearl millet"},
	{"pearl millet", "pearl millet"},
	{"jowar", "sorghum"},
	{"sorghum", "sorghum"},
	{"cotton", "cotton"},
	{"sugarcane", "sugarcane"},
	{"potato", "potato"},
	{"tomato", "tomato"},
	{"onion", "onion"},
}

var soilKeywords = []keywordPair{
	{"kali", "black soil"},
	{"black soil", "black soil"},
	{"lal", "red soil"},
	{"red soil", "red soil"},
	{"peeli", "yellow soil"},
	{"yellow soil", "yellow soil"},
	{"balu", "sandy soil"},
	{"sandy soil", "sandy soil"},
	{"chikni", "clay soil"},
	{"clay soil", "clay soil"},
}

var seasonKeywords = []keywordPair{
	{"rabi", string(SeasonRabi)},
	{"kharif", string(SeasonKharif)},
	{"zaid", string(SeasonZaid)},
	{"summer", string(SeasonSummer)},
	{"winter", string(SeasonWinter)},
	{"monsoon", string(SeasonMonsoon)},
}

// Water detection is two-staged: a primary water token must be present
// before the shortage/excess secondaries are even considered.
var (
	waterPrimary   = []string{"paani", "water"}
	waterShortage  = []string{"kami", "shortage", "less"}
	waterExcessive = []string{"bharpur", "excess", "more"}
)

// Extract parses a transcribed utterance into a farming context record.
// It is a pure keyword scan: unmatched slots stay unset and extraction
// never fails.
func Extract(text string) Context {
	lower := strings.ToLower(text)

	var c Context
	c.Location = firstMatch(lower, locationKeywords)
	c.Crop = firstMatch(lower, cropKeywords)
	c.Water = extractWater(lower)
	c.SoilType = firstMatch(lower, soilKeywords)
	c.Season = Season(firstMatch(lower, seasonKeywords))
	return c
}

func firstMatch(lower string, pairs []keywordPair) string {
	for _, p := range pairs {
		if strings.Contains(lower, p.keyword) {
			return p.value
		}
	}
	return ""
}

func extractWater(lower string) WaterCondition {
	if !containsAny(lower, waterPrimary) {
		return WaterUnknown
	}
	if containsAny(lower, waterShortage) {
		return WaterShortage
	}
	if containsAny(lower, waterExcessive) {
		return WaterExcess
	}
	return WaterNormal
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
