package scoring

import (
	"math"
	"sort"
	"strings"
	"time"

	"artconnect/internal/interaction"
)

// Fixed weights of the opportunity score.
const (
	WeightKeyword   = 0.50
	WeightSentiment = 0.30
	WeightInfluence = 0.15
	WeightRecency   = 0.05
)

// HighValueThreshold is the score at which an interaction counts as high value.
const HighValueThreshold = 50.0

// DefaultKeywords signal commercial intent in a comment.
var DefaultKeywords = []string{
	"commission", "buy", "purchase", "price", "prints", "print",
	"gallery", "curator", "collector", "feature", "represent",
}

type InfluenceScale string

const (
	InfluenceLinear InfluenceScale = "linear"
	InfluenceLog    InfluenceScale = "log"
)

// Breakdown is the per-factor result of scoring one interaction.
type Breakdown struct {
	KeywordFactor    float64 `json:"keyword_factor"`
	SentimentFactor  float64 `json:"sentiment_factor"`
	InfluenceFactor  float64 `json:"influence_factor"`
	RecencyFactor    float64 `json:"recency_factor"`
	OpportunityScore float64 `json:"opportunity_score"`
}

// IsHighValue reports whether the score reaches HighValueThreshold.
func (b Breakdown) IsHighValue() bool { return b.OpportunityScore >= HighValueThreshold }

// Scored pairs an interaction with its breakdown.
type Scored struct {
	interaction.Interaction
	Breakdown
}

type Scorer struct {
	keywords  []string
	sentiment SentimentAnalyzer
	influence InfluenceScale
}

type Option func(*Scorer)

func WithKeywords(kw []string) Option {
	return func(s *Scorer) {
		s.keywords = s.keywords[:0]
		for _, k := range kw {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				s.keywords = append(s.keywords, k)
			}
		}
	}
}

func WithSentimentAnalyzer(a SentimentAnalyzer) Option {
	return func(s *Scorer) { s.sentiment = a }
}

func WithInfluenceScale(scale InfluenceScale) Option {
	return func(s *Scorer) {
		if scale == InfluenceLog {
			s.influence = InfluenceLog
		} else {
			s.influence = InfluenceLinear
		}
	}
}

func New(opts ...Option) *Scorer {
	s := &Scorer{
		keywords:  append([]string(nil), DefaultKeywords...),
		sentiment: LexiconAnalyzer{},
		influence: InfluenceLinear,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Batch carries the normalization scope of one ingestion pass. The follower
// denominator and the age span are fixed once and shared by every interaction
// scored against the batch.
type Batch struct {
	scorer       *Scorer
	Now          time.Time
	MaxFollowers int64
	Newest       time.Time
	Oldest       time.Time
}

func (s *Scorer) NewBatch(items []interaction.Interaction, now time.Time) *Batch {
	b := &Batch{scorer: s, Now: now, Newest: now, Oldest: now}
	for i, in := range items {
		if in.FollowerCount > b.MaxFollowers {
			b.MaxFollowers = in.FollowerCount
		}
		if i == 0 || in.Timestamp.After(b.Newest) {
			b.Newest = in.Timestamp
		}
		if i == 0 || in.Timestamp.Before(b.Oldest) {
			b.Oldest = in.Timestamp
		}
	}
	return b
}

// Score computes the breakdown of in against the batch.
func (b *Batch) Score(in interaction.Interaction) Breakdown {
	out := Breakdown{
		KeywordFactor:   b.scorer.keywordFactor(in.Text),
		SentimentFactor: b.scorer.sentimentFactor(in.Text),
		InfluenceFactor: b.influenceFactor(in.FollowerCount),
		RecencyFactor:   b.recencyFactor(in.Timestamp),
	}
	raw := out.KeywordFactor*WeightKeyword +
		out.SentimentFactor*WeightSentiment +
		out.InfluenceFactor*WeightInfluence +
		out.RecencyFactor*WeightRecency
	out.OpportunityScore = clamp(raw*100, 0, 100)
	return out
}

// ScoreAll scores the batch and orders it by score descending, then id.
func (s *Scorer) ScoreAll(items []interaction.Interaction, now time.Time) []Scored {
	b := s.NewBatch(items, now)
	out := make([]Scored, 0, len(items))
	for _, in := range items {
		out = append(out, Scored{Interaction: in, Breakdown: b.Score(in)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OpportunityScore != out[j].OpportunityScore {
			return out[i].OpportunityScore > out[j].OpportunityScore
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// MatchesKeyword reports whether text contains any of the scorer's keywords.
func (s *Scorer) MatchesKeyword(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range s.keywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

func (s *Scorer) keywordFactor(text string) float64 {
	if s.MatchesKeyword(text) {
		return 1
	}
	return 0
}

// sentimentFactor keeps only the positive side of the polarity.
func (s *Scorer) sentimentFactor(text string) float64 {
	return clamp(s.sentiment.Compound(text), 0, 1)
}

func (b *Batch) influenceFactor(followers int64) float64 {
	if b.MaxFollowers <= 0 || followers <= 0 {
		return 0
	}
	if b.scorer.influence == InfluenceLog {
		return clamp(math.Log1p(float64(followers))/math.Log1p(float64(b.MaxFollowers)), 0, 1)
	}
	return clamp(float64(followers)/float64(b.MaxFollowers), 0, 1)
}

// recencyFactor decays linearly from 1 at the newest interaction to 0 at the oldest.
func (b *Batch) recencyFactor(ts time.Time) float64 {
	minAge := b.Now.Sub(b.Newest)
	span := b.Now.Sub(b.Oldest) - minAge
	if span <= 0 {
		return 1
	}
	age := b.Now.Sub(ts)
	return clamp(1-float64(age-minAge)/float64(span), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
