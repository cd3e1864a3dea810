package enrich

import (
	"strings"

	"newsdigest/internal/domain/entity"
)

const promptTemplate = `
You are an expert news analyst with strong skills in summarization, topic classification,
and sentiment detection for international English news.

TASK:
From the news article below, generate a JSON with 3 fields only:
- "summary": A clear and informative summary in English, 3–6 sentences (about 80–150 words).
  Include the context, main actors, what happened, and the impact.
- "topic": One of:
  [{{topics}}]
- "sentiment": One of [{{sentiments}}].


TOPIC DEFINITIONS:
- politics: geopolitics, elections, government policies, diplomacy, conflict, military.
- economy: markets, inflation, trade, business, finance, oil prices, corporate updates.
- technology: AI, cybersecurity, gadgets, startups, software, scientific innovation.
- sports: football, basketball, racing, Olympics, tournaments, player transfers.
- health: disease, medicine, Covid-19, hospital updates, public health policy.
- entertainment: movies, music, celebrities, festivals, cultural events.
- world: global events, disasters, climate emergencies, humanitarian crises.
- general: anything that does not clearly fit other categories.

SENTIMENT RULES:
- positive: progress, recovery, growth, success, diplomatic resolution, positive outcomes.
- negative: conflict, crime, disaster, decline, losses, casualties, severe problems.
- neutral: mainly factual reporting without strong emotional tone.

NOTE:
Ensure the topic matches the dominant theme of the article. If multiple topics appear, choose the most prominent one.
Ensure the sentiment reflects the overall tone and outcome.

ARTICLE:
"""{{article}}"""

Return only valid JSON and nothing else.
`

var promptReplacer = strings.NewReplacer(
	"{{topics}}", quoteList(entity.Topics),
	"{{sentiments}}", quoteList(entity.Sentiments),
)

// BuildPrompt embeds content, which must already be truncated, in the fixed
// instruction template.
func BuildPrompt(content string) string {
	// article is substituted last so text inside it is never treated as a placeholder
	return strings.Replace(promptReplacer.Replace(promptTemplate), "{{article}}", content, 1)
}

func quoteList[T ~string](values []T) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + string(v) + `"`
	}
	return strings.Join(quoted, ", ")
}
