package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artconnect/internal/interaction"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func mk(id, text string, followers int64, age time.Duration) interaction.Interaction {
	return interaction.Interaction{
		ID:            id,
		Platform:      interaction.PlatformInstagram,
		Author:        "@" + id,
		FollowerCount: followers,
		Text:          text,
		Timestamp:     now.Add(-age),
	}
}

func sampleBatch() []interaction.Interaction {
	return []interaction.Interaction{
		mk("INS-0001", "I'd love to commission a piece in this style.", 12000, 2*time.Hour),
		mk("INS-0002", "Love this!", 300, 5*24*time.Hour),
		mk("TWI-0001", "What is the price for a commission?", 1500, 10*24*time.Hour),
		mk("TWI-0002", "Nice composition.", 50, 29*24*time.Hour),
		mk("TWI-0003", "This is boring and ugly", 800, 15*24*time.Hour),
	}
}

func TestScoreBounds(t *testing.T) {
	s := New()
	for _, sc := range s.ScoreAll(sampleBatch(), now) {
		assert.GreaterOrEqual(t, sc.OpportunityScore, 0.0, sc.ID)
		assert.LessOrEqual(t, sc.OpportunityScore, 100.0, sc.ID)
		for _, f := range []float64{sc.KeywordFactor, sc.SentimentFactor, sc.InfluenceFactor, sc.RecencyFactor} {
			assert.GreaterOrEqual(t, f, 0.0)
			assert.LessOrEqual(t, f, 1.0)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := New()
	first := s.ScoreAll(sampleBatch(), now)
	second := s.ScoreAll(sampleBatch(), now)
	require.Equal(t, first, second)
}

func TestScoreAll_SortedDescending(t *testing.T) {
	out := New().ScoreAll(sampleBatch(), now)
	require.Len(t, out, 5)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].OpportunityScore, out[i].OpportunityScore)
	}
	assert.Equal(t, "INS-0001", out[0].ID)
}

func TestRecencyMonotonic(t *testing.T) {
	var items []interaction.Interaction
	for d := 0; d < 30; d++ {
		items = append(items, mk(fmt.Sprintf("ID-%02d", d), "Nice!", 10, time.Duration(d)*24*time.Hour))
	}
	b := New().NewBatch(items, now)
	prev := 2.0
	for _, in := range items {
		r := b.Score(in).RecencyFactor
		assert.LessOrEqual(t, r, prev)
		prev = r
	}
	assert.Equal(t, 1.0, b.Score(items[0]).RecencyFactor)
	assert.Equal(t, 0.0, b.Score(items[len(items)-1]).RecencyFactor)
}

func TestRecency_SingleTimestampBatch(t *testing.T) {
	items := []interaction.Interaction{mk("A", "Nice!", 1, time.Hour), mk("B", "Nice!", 2, time.Hour)}
	b := New().NewBatch(items, now)
	assert.Equal(t, 1.0, b.Score(items[0]).RecencyFactor)
	assert.Equal(t, 1.0, b.Score(items[1]).RecencyFactor)
}

func TestInfluence_SharedDenominator(t *testing.T) {
	items := []interaction.Interaction{
		mk("A", "Nice!", 1000, time.Hour),
		mk("B", "Nice!", 250, time.Hour),
		mk("C", "Nice!", 0, time.Hour),
	}
	b := New().NewBatch(items, now)
	assert.Equal(t, int64(1000), b.MaxFollowers)
	assert.Equal(t, 1.0, b.Score(items[0]).InfluenceFactor)
	assert.InDelta(t, 0.25, b.Score(items[1]).InfluenceFactor, 1e-9)
	assert.Equal(t, 0.0, b.Score(items[2]).InfluenceFactor)
}

func TestInfluence_LogScale(t *testing.T) {
	items := []interaction.Interaction{mk("A", "Nice!", 1000, time.Hour), mk("B", "Nice!", 10, time.Hour)}
	b := New(WithInfluenceScale(InfluenceLog)).NewBatch(items, now)
	u := b.Score(items[1]).InfluenceFactor
	assert.Greater(t, u, 0.01)
	assert.Less(t, u, 1.0)
	assert.InDelta(t, 1.0, b.Score(items[0]).InfluenceFactor, 1e-9)
}

func TestInfluence_AllZeroFollowers(t *testing.T) {
	items := []interaction.Interaction{mk("A", "Nice!", 0, time.Hour)}
	b := New().NewBatch(items, now)
	assert.Equal(t, 0.0, b.Score(items[0]).InfluenceFactor)
}

func TestKeywordFactor_CaseInsensitive(t *testing.T) {
	s := New()
	assert.Equal(t, 1.0, s.keywordFactor("Do you sell PRINTS of this?"))
	assert.Equal(t, 1.0, s.keywordFactor("We run an online Gallery"))
	assert.Equal(t, 1.0, s.keywordFactor("Where can I purchase this"))
	assert.Equal(t, 0.0, s.keywordFactor("Stunning!"))
}

func TestWithKeywords(t *testing.T) {
	s := New(WithKeywords([]string{" Licensing ", ""}))
	assert.True(t, s.MatchesKeyword("licensing question"))
	assert.False(t, s.MatchesKeyword("commission"))
	assert.Contains(t, DefaultKeywords, "commission")
}

func TestLowValueScenario(t *testing.T) {
	items := []interaction.Interaction{
		mk("A", "Love your work!", 0, time.Hour),
		mk("B", "Would love to buy a print", 5000, 3*24*time.Hour),
	}
	b := New().NewBatch(items, now)
	got := b.Score(items[0])
	assert.Equal(t, 0.0, got.KeywordFactor)
	assert.Equal(t, 0.0, got.InfluenceFactor)
	assert.Less(t, got.OpportunityScore, 35.0)
	assert.False(t, got.IsHighValue())
}

func TestScoreFormula(t *testing.T) {
	s := New(WithSentimentAnalyzer(fixedSentiment(0.5)))
	items := []interaction.Interaction{
		mk("A", "commission please", 100, time.Hour),
		mk("B", "hello", 200, 11*time.Hour),
	}
	b := s.NewBatch(items, now)
	got := b.Score(items[0])
	// K=1, S=0.5, U=0.5, R=1
	assert.InDelta(t, 100*(0.50+0.15+0.075+0.05), got.OpportunityScore, 1e-9)
	assert.True(t, got.IsHighValue())
}

func TestNegativeSentimentContributesZero(t *testing.T) {
	s := New(WithSentimentAnalyzer(fixedSentiment(-0.9)))
	assert.Equal(t, 0.0, s.sentimentFactor("whatever"))
}

type fixedSentiment float64

func (f fixedSentiment) Compound(string) float64 { return float64(f) }
