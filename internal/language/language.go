package language

// Tag identifies one of the supported caller languages.
type Tag string

const (
	Hindi     Tag = "hindi"
	English   Tag = "english"
	Punjabi   Tag = "punjabi"
	Gujarati  Tag = "gujarati"
	Marathi   Tag = "marathi"
	Telugu    Tag = "telugu"
	Tamil     Tag = "tamil"
	Kannada   Tag = "kannada"
	Bengali   Tag = "bengali"
	Odia      Tag = "odia"
	Assamese  Tag = "assamese"
	Malayalam Tag = "malayalam"
)

// Default is the language assumed for every new call until detection says
// otherwise.
const Default = Hindi

// VoiceProfile carries the engine-specific voice codes for one language:
// the STT locale sent to the recognizer, the Edge neural voice used by the
// primary synthesizer, and the gTTS code of the last-resort fallback.
type VoiceProfile struct {
	STTLocale string
	EdgeVoice string
	GTTSCode  string
}

var profiles = map[Tag]VoiceProfile{
	Hindi:     {"hi-IN", "hi-IN-MadhurNeural", "hi"},
	English:   {"en-IN", "en-IN-NeerjaNeural", "en"},
	Punjabi:   {"pa-IN", "pa-IN-GurpreetNeural", "pa"},
	Gujarati:  {"gu-IN", "gu-IN-DhwaniNeural", "gu"},
	Marathi:   {"mr-IN", "mr-IN-AarohiNeural", "mr"},
	Telugu:    {"te-IN", "te-IN-ShrutiNeural", "te"},
	Tamil:     {"ta-IN", "ta-IN-PallaviNeural", "ta"},
	Kannada:   {"kn-IN", "kn-IN-SapnaNeural", "kn"},
	Bengali:   {"bn-IN", "bn-IN-TanishaaNeural", "bn"},
	Odia:      {"or-IN", "or-IN-JyotiNeural", "or"},
	Assamese:  {"as-IN", "as-IN-JoyeeNeural", "as"},
	Malayalam: {"ml-IN", "ml-IN-SobhanaNeural", "ml"},
}

// Native script names, interpolated into LLM prompts so the model answers
// in the caller's language.
var displayNames = map[Tag]string{
	Hindi:     "हिंदी",
	English:   "English",
	Punjabi:   "ਪੰਜਾਬੀ",
	Gujarati:  "ગુજરાતી",
	Marathi:   "मराठी",
	Telugu:    "తెలుగు",
	Tamil:     "தமிழ்",
	Kannada:   "ಕನ್ನಡ",
	Bengali:   "বাংলা",
	Odia:      "ଓଡ଼ିଆ",
	Assamese:  "অসমীয়া",
	Malayalam: "മലയാളം",
}

// ProfileFor returns the voice profile for a tag, falling back to Hindi for
// anything outside the supported set.
func ProfileFor(tag Tag) VoiceProfile {
	if p, ok := profiles[tag]; ok {
		return p
	}
	return profiles[Default]
}

// DisplayName returns the native-script name of the language.
func DisplayName(tag Tag) string {
	if n, ok := displayNames[tag]; ok {
		return n
	}
	return displayNames[Default]
}
