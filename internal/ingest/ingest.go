package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"artconnect/internal/interaction"
)

// Columns of the sample files, shared by the CSV header and the JSON keys.
var Columns = []string{"interaction_id", "platform", "timestamp", "user_handle", "user_followers", "text_content"}

// record is the loosely typed shape of one sample row before validation.
type record struct {
	ID        string          `json:"interaction_id"`
	Platform  string          `json:"platform"`
	Timestamp string          `json:"timestamp"`
	Handle    string          `json:"user_handle"`
	Followers json.RawMessage `json:"user_followers"`
	Text      string          `json:"text_content"`
}

// Loader turns sample files into validated interactions.
type Loader struct {
	Now      time.Time
	Location *time.Location
}

func NewLoader(now time.Time) *Loader {
	return &Loader{Now: now, Location: time.Local}
}

// LoadInstagramCSV reads the Instagram sample file.
func (l *Loader) LoadInstagramCSV(path string) ([]interaction.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instagram sample: %w", err)
	}
	defer func() { _ = f.Close() }()
	items, err := l.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ReadCSV parses CSV with a header row. Column order is taken from the header.
func (l *Loader) ReadCSV(r io.Reader) ([]interaction.Interaction, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", interaction.ErrValidation, c)
		}
	}

	var recs []record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		recs = append(recs, record{
			ID:        row[idx["interaction_id"]],
			Platform:  row[idx["platform"]],
			Timestamp: row[idx["timestamp"]],
			Handle:    row[idx["user_handle"]],
			Followers: json.RawMessage(strings.TrimSpace(row[idx["user_followers"]])),
			Text:      row[idx["text_content"]],
		})
	}
	return l.convert(recs)
}

// LoadTwitterJSON reads the Twitter sample file.
func (l *Loader) LoadTwitterJSON(path string) ([]interaction.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open twitter sample: %w", err)
	}
	defer func() { _ = f.Close() }()
	items, err := l.ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// ReadJSON parses a JSON array of sample records.
func (l *Loader) ReadJSON(r io.Reader) ([]interaction.Interaction, error) {
	var recs []record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	return l.convert(recs)
}

// LoadBatch loads both sample files into one batch. Ids must be unique across it.
func (l *Loader) LoadBatch(instagramPath, twitterPath string) ([]interaction.Interaction, error) {
	insta, err := l.LoadInstagramCSV(instagramPath)
	if err != nil {
		return nil, err
	}
	tw, err := l.LoadTwitterJSON(twitterPath)
	if err != nil {
		return nil, err
	}
	batch := append(insta, tw...)
	seen := make(map[string]struct{}, len(batch))
	for _, in := range batch {
		if _, dup := seen[in.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate interaction id %s", interaction.ErrValidation, in.ID)
		}
		seen[in.ID] = struct{}{}
	}
	return batch, nil
}

func (l *Loader) convert(recs []record) ([]interaction.Interaction, error) {
	loc := l.Location
	if loc == nil {
		loc = time.Local
	}
	out := make([]interaction.Interaction, 0, len(recs))
	var errs []error
	for i, rec := range recs {
		in, err := l.toInteraction(rec, loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i+1, err))
			continue
		}
		out = append(out, in)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (l *Loader) toInteraction(rec record, loc *time.Location) (interaction.Interaction, error) {
	platform, err := interaction.ParsePlatform(rec.Platform)
	if err != nil {
		return interaction.Interaction{}, err
	}
	ts, err := interaction.ParseTimestamp(rec.Timestamp, loc)
	if err != nil {
		return interaction.Interaction{}, err
	}
	followers, err := parseFollowers(rec.Followers)
	if err != nil {
		return interaction.Interaction{}, err
	}
	in := interaction.Interaction{
		ID:            strings.TrimSpace(rec.ID),
		Platform:      platform,
		Author:        interaction.NormalizeHandle(rec.Handle),
		FollowerCount: followers,
		Text:          rec.Text,
		Timestamp:     ts,
	}
	if err := in.Validate(l.Now); err != nil {
		return interaction.Interaction{}, err
	}
	return in, nil
}

// parseFollowers accepts a JSON number, a quoted number, or a bare CSV cell.
// Whole floats such as 1500.0 are accepted; fractions, NaN, Inf and values
// outside int64 are not.
func parseFollowers(raw json.RawMessage) (int64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, fmt.Errorf("%w: missing follower count", interaction.ErrValidation)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) ||
		f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: bad follower count %q", interaction.ErrValidation, s)
	}
	return int64(f), nil
}
