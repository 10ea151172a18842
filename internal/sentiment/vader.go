package sentiment

import (
	"math"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/honestreviews/internal/models"
	"github.com/spacesedan/honestreviews/internal/utils"
)

const (
	LABEL_THRESHOLD = 0.20

	// DIVERGENCE_WARNING is how far, in score points, the lexical baseline
	// may sit from the model's score before it is worth a warning.
	DIVERGENCE_WARNING = 35
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

// AnalyzeWithVADER returns the compound score of markdown text and its label.
func AnalyzeWithVADER(text string) (float64, string) {
	plainText := utils.MarkdownToText(text)
	if plainText == "" {
		return 0, "neutral"
	}

	score := analyzer.PolarityScores(plainText).Compound

	var label string
	if score >= LABEL_THRESHOLD {
		label = "positive"
	} else if score <= -LABEL_THRESHOLD {
		label = "negative"
	} else {
		label = "neutral"
	}

	return score, label
}

// Baseline scores a corpus on the same 0-100 scale the model reports.
func Baseline(corpus string) models.LexicalSentiment {
	compound, label := AnalyzeWithVADER(corpus)
	return models.LexicalSentiment{
		Score:    ToScore(compound),
		Compound: compound,
		Label:    label,
	}
}

// ToScore maps a compound score in [-1, 1] onto [0, 100].
func ToScore(compound float64) int {
	compound = math.Max(-1, math.Min(1, compound))
	return int(math.Round((compound + 1) * 50))
}

// Diverges reports whether the model's score and the baseline disagree by
// more than DIVERGENCE_WARNING points.
func Diverges(modelScore int, baseline models.LexicalSentiment) bool {
	diff := modelScore - baseline.Score
	if diff < 0 {
		diff = -diff
	}
	return diff > DIVERGENCE_WARNING
}
