package dialog

import (
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/kisanvaani/kisan-agent-service/internal/database"
	"github.com/kisanvaani/kisan-agent-service/internal/language"
)

// Prompt ids, also the row keys operators can override in the prompts
// table.
const (
	PromptGreeting     = "PROMPT_GREETING"
	PromptGreetingHint = "PROMPT_GREETING_HINT"
	PromptAskQuery     = "PROMPT_ASK_QUERY"
	PromptAskQueryHint = "PROMPT_ASK_QUERY_HINT"
	PromptFollowUp     = "PROMPT_FOLLOW_UP"
	PromptFollowUpHint = "PROMPT_FOLLOW_UP_HINT"
	PromptGoodbye      = "PROMPT_GOODBYE"
	PromptApology      = "PROMPT_APOLOGY"
)

var greetings = map[language.Tag]string{
	language.Hindi:     "नमस्ते! कृपया अपनी खेती से जुड़ी कुछ जानकारी दें जैसे लोकेशन, फसल, पानी की स्थिति...",
	language.English:   "Hello! Please provide some information about your farming like location, crop, water condition...",
	language.Punjabi:   "ਸਤ ਸ੍ਰੀ ਅਕਾਲ! ਕਿਰਪਾ ਕਰਕੇ ਆਪਣੀ ਖੇਤੀ ਬਾਰੇ ਕੁਝ ਜਾਣਕਾਰੀ ਦਿਓ ਜਿਵੇਂ ਟਿਕਾਣਾ, ਫਸਲ, ਪਾਣੀ ਦੀ ਸਥਿਤੀ...",
	language.Gujarati:  "નમસ્તે! કૃપા કરીને તમારી ખેતી વિશે કેટલીક માહિતી આપો જેમ કે સ્થાન, પાક, પાણીની સ્થિતિ...",
	language.Marathi:   "नमस्कार! कृपया तुमच्या शेतीबद्दल काही माहिती द्या जसे स्थान, पीक, पाण्याची स्थिती...",
	language.Telugu:    "నమస్కారం! దయచేసి మీ వ్యవసాయం గురించి కొంత సమాచారం ఇవ్వండి వంటి స్థానం, పంట, నీటి పరిస్థితి...",
	language.Tamil:     "வணக்கம்! தயவுசெய்து உங்கள் விவசாயத்தைப் பற்றி சில தகவல்களை வழங்கவும் போன்ற இடம், பயிர், நீர் நிலை...",
	language.Kannada:   "ನಮಸ್ಕಾರ! ದಯವಿಟ್ಟು ನಿಮ್ಮ ಕೃಷಿಯ ಬಗ್ಗೆ ಕೆಲವು ಮಾಹಿತಿಯನ್ನು ನೀಡಿ ಉದಾಹರಣೆಗೆ ಸ್ಥಳ, ಬೆಳೆ, ನೀರಿನ ಸ್ಥಿತಿ...",
	language.Bengali:   "নমস্কার! অনুগ্রহ করে আপনার কৃষিকাজ সম্পর্কে কিছু তথ্য দিন যেমন অবস্থান, ফসল, জলের অবস্থা...",
	language.Odia:      "ନମସ୍କାର! ଦୟାକରି ଆପଣଙ୍କ କୃଷି ବିଷୟରେ କିଛି ସୂଚନା ଦିଅନ୍ତୁ ଯେପରି ସ୍ଥାନ, ଫସଲ, ଜଳର ସ୍ଥିତି...",
	language.Assamese:  "নমস্কাৰ! অনুগ্ৰহ কৰি আপোনাৰ কৃষি সম্পৰ্কে কিছু তথ্য দিয়ক যেনে স্থান, শস্য, পানীৰ অৱস্থা...",
	language.Malayalam: "നമസ്കാരം! ദയവായി നിങ്ങളുടെ കൃഷിയെക്കുറിച്ച് ചില വിവരങ്ങൾ നൽകുക പോലെ സ്ഥാനം, വിള, വെള്ളത്തിന്റെ അവസ്ഥ...",
}

var queryPrompts = map[language.Tag]string{
	language.Hindi:     "अब अपना सवाल पूछिए।",
	language.English:   "Now ask your question.",
	language.Punjabi:   "ਹੁਣ ਆਪਣਾ ਸਵਾਲ ਪੁੱਛੋ।",
	language.Gujarati:  "હવે તમારો પ્રશ્ન પૂછો।",
	language.Marathi:   "आता तुमचा प्रश्न विचारा।",
	language.Telugu:    "ఇప్పుడు మీ ప్రశ్న అడగండి.",
	language.Tamil:     "இப்போது உங்கள் கேள்வியைக் கேள்வி.",
	language.Kannada:   "ಈಗ ನಿಮ್ಮ ಪ್ರಶ್ನೆಯನ್ನು ಕೇಳಿ.",
	language.Bengali:   "এখন আপনার প্রশ্ন জিজ্ঞাসা করুন।",
	language.Odia:      "ବର୍ତ୍ତମାନ ଆପଣଙ୍କ ପ୍ରଶ୍ନ ପଚାରନ୍ତୁ।",
	language.Assamese:  "এতিয়া আপোনাৰ প্ৰশ্ন সুধক।",
	language.Malayalam: "ഇപ്പോൾ നിങ്ങളുടെ ചോദ്യം ചോദിക്കുക.",
}

// Fixed spoken lines without a full per-language table; they fall back to
// Hindi for languages not listed.
var fixedTexts = map[string]map[language.Tag]string{
	PromptGreetingHint: {
		language.Hindi:   "कृपया बोलें",
		language.English: "Please speak now.",
	},
	PromptAskQueryHint: {
		language.Hindi:   "अपना सवाल पूछें",
		language.English: "Ask your question.",
	},
	PromptFollowUp: {
		language.Hindi:   "क्या आप कोई और सवाल पूछना चाहते हैं?",
		language.English: "Would you like to ask another question?",
	},
	PromptFollowUpHint: {
		language.Hindi:   "हाँ या नहीं बोलें",
		language.English: "Say yes or no.",
	},
	PromptGoodbye: {
		language.Hindi:   "धन्यवाद! आपकी कॉल समाप्त हो रही है।",
		language.English: "Thank you! Your call is ending.",
	},
	PromptApology: {
		language.Hindi:   "Sorry, there was an error.",
		language.English: "Sorry, there was an error.",
	},
}

// TextProvider resolves spoken prompt texts, preferring operator overrides
// in PostgreSQL over the embedded tables. A nil db serves embedded texts
// only.
type TextProvider struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewTextProvider(db *sql.DB, log zerolog.Logger) *TextProvider {
	return &TextProvider{db: db, log: log}
}

func (p *TextProvider) Text(id string, lang language.Tag) string {
	if p.db != nil {
		content, err := database.GetPromptText(p.db, id, string(lang))
		if err == nil && content != "" {
			return content
		}
	}
	return embeddedText(id, lang)
}

func embeddedText(id string, lang language.Tag) string {
	switch id {
	case PromptGreeting:
		if t, ok := greetings[lang]; ok {
			return t
		}
		return greetings[language.Default]
	case PromptAskQuery:
		if t, ok := queryPrompts[lang]; ok {
			return t
		}
		return queryPrompts[language.Default]
	default:
		table := fixedTexts[id]
		if t, ok := table[lang]; ok {
			return t
		}
		return table[language.Default]
	}
}
