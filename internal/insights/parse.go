package insights

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spacesedan/honestreviews/internal/faults"
	"github.com/spacesedan/honestreviews/internal/models"
)

// stageResult is the outcome of one parse stage. An empty reason means value
// is usable.
type stageResult struct {
	value  models.InsightResult
	reason string
}

func (r stageResult) ok() bool { return r.reason == "" }

type parseStage struct {
	name string
	run  func(raw string) stageResult
}

var parseStages = []parseStage{
	{name: "strict", run: strictStage},
	{name: "bracket_scan", run: bracketScanStage},
}

// keyAliases lists the accepted spellings of each required key.
var keyAliases = []struct {
	name    string
	aliases []string
}{
	{"conclusion", []string{"conclusion"}},
	{"pros", []string{"pros"}},
	{"cons", []string{"cons"}},
	{"sentiment_score", []string{"sentiment_score", "sentimentScore"}},
	{"word_cloud", []string{"word_cloud", "wordCloud"}},
}

// ParseInsight turns raw backend text into an InsightResult, trying each
// stage in order. When every stage fails the error is an
// ExtractionParseFailure carrying raw.
func ParseInsight(raw string) (models.InsightResult, error) {
	reasons := make([]string, 0, len(parseStages))
	for _, stage := range parseStages {
		res := stage.run(raw)
		if res.ok() {
			return res.value, nil
		}
		reasons = append(reasons, stage.name+": "+res.reason)
	}
	return models.InsightResult{}, faults.NewExtractionParseFailure(raw, strings.Join(reasons, "; "))
}

func strictStage(raw string) stageResult {
	return decodeInsight(strings.TrimSpace(raw))
}

// bracketScanStage tries the widest first-{ to last-} span, then every
// balanced object in order of its opening brace.
func bracketScanStage(raw string) stageResult {
	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first < 0 || last <= first {
		return stageResult{reason: "no JSON object found"}
	}

	res := decodeInsight(raw[first : last+1])
	if res.ok() {
		return res
	}
	lastReason := res.reason

	for start := first; start >= 0 && start < len(raw); {
		if end, found := balancedObjectEnd(raw, start); found {
			candidate := decodeInsight(raw[start : end+1])
			if candidate.ok() {
				return candidate
			}
			lastReason = candidate.reason
		}
		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return stageResult{reason: lastReason}
}

// balancedObjectEnd returns the index of the brace closing the object that
// opens at start. Braces inside JSON strings are ignored.
func balancedObjectEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

type wireTerm struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

func decodeInsight(text string) stageResult {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return stageResult{reason: "not a JSON object: " + err.Error()}
	}

	values := make(map[string]json.RawMessage, len(keyAliases))
	var missing []string
	for _, key := range keyAliases {
		found := false
		for _, alias := range key.aliases {
			if v, ok := fields[alias]; ok {
				values[key.name] = v
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, key.name)
		}
	}
	if len(missing) > 0 {
		return stageResult{reason: "missing keys " + strings.Join(missing, ", ")}
	}

	var (
		result models.InsightResult
		score  *float64
		cloud  []wireTerm
	)
	decoders := []struct {
		key    string
		target any
	}{
		{"conclusion", &result.Conclusion},
		{"pros", &result.Pros},
		{"cons", &result.Cons},
		{"sentiment_score", &score},
		{"word_cloud", &cloud},
	}
	for _, d := range decoders {
		if err := json.Unmarshal(values[d.key], d.target); err != nil {
			return stageResult{reason: fmt.Sprintf("bad %s: %v", d.key, err)}
		}
	}
	if score == nil {
		return stageResult{reason: "bad sentiment_score: null"}
	}

	sentiment, ok := roundToInt(*score)
	if !ok {
		return stageResult{reason: fmt.Sprintf("bad sentiment_score: %g out of range", *score)}
	}
	result.SentimentScore = sentiment
	if result.Pros == nil {
		result.Pros = []string{}
	}
	if result.Cons == nil {
		result.Cons = []string{}
	}
	result.WordCloud = make([]models.WordCloudTerm, 0, len(cloud))
	for _, term := range cloud {
		value, ok := roundToInt(term.Value)
		if !ok {
			return stageResult{reason: fmt.Sprintf("bad word_cloud: value %g for %q out of range", term.Value, term.Text)}
		}
		result.WordCloud = append(result.WordCloud, models.WordCloudTerm{Text: term.Text, Value: value})
	}
	return stageResult{value: result}
}

// roundToInt rounds v and reports false when the result does not fit an int.
func roundToInt(v float64) (int, bool) {
	r := math.Round(v)
	if math.IsNaN(r) || r < float64(math.MinInt) || r >= -float64(math.MinInt) {
		return 0, false
	}
	return int(r), true
}
