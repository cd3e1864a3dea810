package entity

import "strings"

// Topic is the closed set of subject labels an article can carry.
type Topic string

const (
	TopicPolitics      Topic = "politics"
	TopicEconomy       Topic = "economy"
	TopicTechnology    Topic = "technology"
	TopicSports        Topic = "sports"
	TopicHealth        Topic = "health"
	TopicEntertainment Topic = "entertainment"
	TopicWorld         Topic = "world"
	TopicGeneral       Topic = "general"

	// DefaultTopic is used whenever a label is missing or outside the vocabulary.
	DefaultTopic = TopicGeneral
)

// Topics lists the vocabulary in prompt order.
var Topics = []Topic{
	TopicPolitics,
	TopicEconomy,
	TopicTechnology,
	TopicSports,
	TopicHealth,
	TopicEntertainment,
	TopicWorld,
	TopicGeneral,
}

// Valid reports whether t belongs to the vocabulary.
func (t Topic) Valid() bool {
	for _, v := range Topics {
		if t == v {
			return true
		}
	}
	return false
}

// ParseTopic normalises a raw label. Unknown or empty labels become DefaultTopic.
func ParseTopic(raw string) Topic {
	t := Topic(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return DefaultTopic
	}
	return t
}

// Sentiment is the closed set of tone labels an article can carry.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"

	DefaultSentiment = SentimentNeutral
)

// Sentiments lists the vocabulary in prompt order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// Valid reports whether s belongs to the vocabulary.
func (s Sentiment) Valid() bool {
	for _, v := range Sentiments {
		if s == v {
			return true
		}
	}
	return false
}

// ParseSentiment normalises a raw label. Unknown or empty labels become DefaultSentiment.
func ParseSentiment(raw string) Sentiment {
	s := Sentiment(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return DefaultSentiment
	}
	return s
}
