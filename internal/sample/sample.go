package sample

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"artconnect/internal/ingest"
	"artconnect/internal/interaction"
)

var genericComments = []string{
	"Love this!", "Amazing work!", "So cool 🔥", "Nice!", "Beautiful piece.",
	"Wow!", "Great colors!", "This is awesome.", "Nice composition.",
	"Stunning!",
}

var highValueComments = []string{
	"I'd love to commission a piece in this style.",
	"Do you sell prints of this artwork?",
	"What is the price for a commission?",
	"I'm a gallery curator, would love to talk.",
	"I'm a collector and really interested in this piece.",
	"We run an online art gallery, can we feature your work?",
	"I'd like to buy this painting for my collection.",
}

var handles = []string{
	"ArtLover", "GalleryGazer", "CollectorJane", "CuratorMike",
	"PainterFan", "AbstractAddict", "ColorChaser", "GalleryOwnerTX",
	"DesignGeek", "ModernArtFan",
}

// Config controls the size and shape of a generated data set.
type Config struct {
	Total          int
	HighValue      int
	InstagramShare float64
	DaysBack       int
	Seed           int64
	Now            time.Time
}

func DefaultConfig(now time.Time) Config {
	return Config{
		Total:          240,
		HighValue:      25,
		InstagramShare: 0.55,
		DaysBack:       30,
		Seed:           42,
		Now:            now,
	}
}

// Generator produces reproducible fake interactions for a given seed.
type Generator struct {
	cfg Config
	rnd *rand.Rand
}

func NewGenerator(cfg Config) *Generator {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	return &Generator{cfg: cfg, rnd: rand.New(rand.NewSource(cfg.Seed))}
}

// Generate returns the Instagram and Twitter sets. High-value interactions come
// first on each platform and are split evenly between them.
func (g *Generator) Generate() (instagram, twitter []interaction.Interaction) {
	instaTotal := int(float64(g.cfg.Total) * g.cfg.InstagramShare)
	twitterTotal := g.cfg.Total - instaTotal
	instaHigh := g.cfg.HighValue / 2
	twitterHigh := g.cfg.HighValue - instaHigh

	for i := 1; i <= instaTotal; i++ {
		instagram = append(instagram, g.make(i, interaction.PlatformInstagram, i <= instaHigh))
	}
	for i := 1; i <= twitterTotal; i++ {
		twitter = append(twitter, g.make(i, interaction.PlatformTwitter, i <= twitterHigh))
	}
	return instagram, twitter
}

func (g *Generator) make(idx int, p interaction.Platform, highValue bool) interaction.Interaction {
	handle := fmt.Sprintf("@%s%d", handles[g.rnd.Intn(len(handles))], g.rnd.Intn(999)+1)
	var text string
	var followers int64
	if highValue {
		text = highValueComments[g.rnd.Intn(len(highValueComments))]
		followers = int64(1500 + g.rnd.Intn(15000-1500+1))
	} else {
		text = genericComments[g.rnd.Intn(len(genericComments))]
		followers = int64(10 + g.rnd.Intn(1200-10+1))
	}
	return interaction.Interaction{
		ID:            fmt.Sprintf("%s-%04d", strings.ToUpper(string(p)[:3]), idx),
		Platform:      p,
		Author:        handle,
		FollowerCount: followers,
		Text:          text,
		Timestamp:     g.timestamp(),
	}
}

// timestamp picks a moment within the last DaysBack days, truncated to seconds.
func (g *Generator) timestamp() time.Time {
	days := g.rnd.Intn(g.cfg.DaysBack + 1)
	secs := g.rnd.Intn(24*3600 + 1)
	ts := g.cfg.Now.AddDate(0, 0, -days).Add(-time.Duration(secs) * time.Second)
	return ts.Truncate(time.Second)
}

func row(in interaction.Interaction) []string {
	return []string{
		in.ID,
		string(in.Platform),
		in.Timestamp.Local().Format(interaction.TimestampLayout),
		in.Author,
		strconv.FormatInt(in.FollowerCount, 10),
		in.Text,
	}
}

// WriteCSV writes items in the Instagram sample format.
func WriteCSV(w io.Writer, items []interaction.Interaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ingest.Columns); err != nil {
		return err
	}
	for _, in := range items {
		if err := cw.Write(row(in)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes items in the Twitter sample format.
func WriteJSON(w io.Writer, items []interaction.Interaction) error {
	out := make([]map[string]any, 0, len(items))
	for _, in := range items {
		r := row(in)
		out = append(out, map[string]any{
			"interaction_id": r[0],
			"platform":       r[1],
			"timestamp":      r[2],
			"user_handle":    r[3],
			"user_followers": in.FollowerCount,
			"text_content":   r[5],
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// WriteFiles generates a data set and writes both sample files, creating
// parent directories as needed.
func WriteFiles(cfg Config, instagramPath, twitterPath string) (int, int, error) {
	insta, tw := NewGenerator(cfg).Generate()
	if err := writeFile(instagramPath, func(w io.Writer) error { return WriteCSV(w, insta) }); err != nil {
		return 0, 0, fmt.Errorf("write instagram sample: %w", err)
	}
	if err := writeFile(twitterPath, func(w io.Writer) error { return WriteJSON(w, tw) }); err != nil {
		return 0, 0, fmt.Errorf("write twitter sample: %w", err)
	}
	return len(insta), len(tw), nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
