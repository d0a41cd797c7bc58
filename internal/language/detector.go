package language

import "strings"

// Question words plus the domain words callers actually use; the domain
// words make short farming utterances classifiable.
var hindiWords = []string{
	"क्या", "कैसे", "कहाँ", "कब", "कौन", "क्यों", "है", "हैं", "था", "थी",
	"पानी", "फसल", "खेती",
}

var englishWords = []string{
	"what", "how", "where", "when", "who", "why", "is", "are", "was", "were",
	"water", "crop", "farming",
}

// Detect classifies an utterance as Hindi or English by counting word-list
// hits. Hindi wins only on a strictly greater count; ties, including the
// zero-match case, resolve to English.
func Detect(text string) Tag {
	lower := strings.ToLower(text)

	hindiCount := 0
	for _, w := range hindiWords {
		if strings.Contains(lower, w) {
			hindiCount++
		}
	}
	englishCount := 0
	for _, w := range englishWords {
		if strings.Contains(lower, w) {
			englishCount++
		}
	}

	if hindiCount > englishCount {
		return Hindi
	}
	return English
}
