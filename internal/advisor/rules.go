package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/kisanvaani/kisan-agent-service/internal/farming"
)

// ruleBucket is one canned-answer topic. Buckets are scanned in order and
// the first keyword hit wins, which makes them mutually exclusive.
type ruleBucket struct {
	keywords []string
	respond  func(fc farming.Context) string
}

var ruleBuckets = []ruleBucket{
	{
		keywords: []string{"dawa", "pesticide", "medicine"},
		respond: func(fc farming.Context) string {
			return fmt.Sprintf("आपकी फसल %s के लिए, पानी की कमी की स्थिति में, आप नीम का तेल या बायोपेस्टिसाइड का उपयोग कर सकते हैं। यह सुरक्षित और प्रभावी है।", fc.Crop)
		},
	},
	{
		keywords: []string{"paani", "water", "irrigation", "sinchai"},
		respond: func(fc farming.Context) string {
			return "पानी की कमी में, ड्रिप इरिगेशन या फरो इरिगेशन का उपयोग करें। सुबह या शाम को पानी दें ताकि वाष्पीकरण कम हो।"
		},
	},
	{
		keywords: []string{"khad", "fertilizer", "manure"},
		respond: func(fc farming.Context) string {
			return "जैविक खाद जैसे गोबर की खाद या वर्मीकम्पोस्ट का उपयोग करें। यह मिट्टी की गुणवत्ता बेहतर करेगा।"
		},
	},
	{
		keywords: []string{"bima", "insurance"},
		respond: func(fc farming.Context) string {
			return "फसल बीमा के लिए अपने नजदीकी कृषि कार्यालय में संपर्क करें। यह आपकी फसल को सुरक्षा देगा।"
		},
	},
	{
		keywords: []string{"sukha", "drought", "akal"},
		respond: func(fc farming.Context) string {
			return fmt.Sprintf("सूखे की स्थिति में मल्चिंग करें और %s की सूखा-सहनशील किस्में चुनें। नजदीकी कृषि केंद्र से सूखा राहत योजना की जानकारी लें।", fc.Crop)
		},
	},
	{
		keywords: []string{"kiraya", "rent", "rental", "tractor", "machine"},
		respond: func(fc farming.Context) string {
			return "ट्रैक्टर या कृषि यंत्र किराये पर लेने के लिए अपने नजदीकी कस्टम हायरिंग सेंटर से संपर्क करें। इससे लागत कम होगी।"
		},
	},
}

// RuleGenerator serves canned advice keyed by query topic. It is pure and
// dependency-free so the degraded path stays trivially testable.
type RuleGenerator struct{}

func NewRuleGenerator() *RuleGenerator {
	return &RuleGenerator{}
}

func (g *RuleGenerator) Generate(_ context.Context, fc farming.Context, query string) string {
	lower := strings.ToLower(query)
	for _, b := range ruleBuckets {
		for _, kw := range b.keywords {
			if strings.Contains(lower, kw) {
				return b.respond(fc)
			}
		}
	}
	return fmt.Sprintf("आपकी फसल %s के लिए, स्थानीय कृषि विशेषज्ञ से सलाह लें। वे आपकी स्थानीय स्थिति के अनुसार सटीक सलाह दे सकते हैं।", fc.Crop)
}
