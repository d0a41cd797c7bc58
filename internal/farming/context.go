package farming

// WaterCondition is the caller's reported water situation.
type WaterCondition string

const (
	WaterUnknown  WaterCondition = ""
	WaterShortage WaterCondition = "shortage"
	WaterExcess   WaterCondition = "excess"
	WaterNormal   WaterCondition = "normal"
)

// Season is the cropping season mentioned by the caller.
type Season string

const (
	SeasonUnknown Season = ""
	SeasonRabi    Season = "rabi"
	SeasonKharif  Season = "kharif"
	SeasonZaid    Season = "zaid"
	SeasonSummer  Season = "summer"
	SeasonWinter  Season = "winter"
	SeasonMonsoon Season = "monsoon"
)

// Context is the structured farming record extracted from a single
// utterance. Zero values mean the slot was not mentioned.
type Context struct {
	Location string         `json:"location,omitempty"`
	Crop     string         `json:"crop,omitempty"`
	Water    WaterCondition `json:"waterCondition,omitempty"`
	SoilType string         `json:"soilType,omitempty"`
	Season   Season         `json:"season,omitempty"`
}

// IsEmpty reports whether no slot was filled.
func (c Context) IsEmpty() bool {
	return c == Context{}
}

// Merge fills unset slots of c from next and returns the result. Slots
// already set in c win; this is the opt-in alternative to the default
// replace-on-reextraction behavior.
func (c Context) Merge(next Context) Context {
	out := c
	if out.Location == "" {
		out.Location = next.Location
	}
	if out.Crop == "" {
		out.Crop = next.Crop
	}
	if out.Water == WaterUnknown {
		out.Water = next.Water
	}
	if out.SoilType == "" {
		out.SoilType = next.SoilType
	}
	if out.Season == SeasonUnknown {
		out.Season = next.Season
	}
	return out
}
