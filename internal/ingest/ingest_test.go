package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artconnect/internal/interaction"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestLoader() *Loader {
	l := NewLoader(testNow)
	l.Location = time.UTC
	return l
}

const instaCSV = `interaction_id,platform,timestamp,user_handle,user_followers,text_content
INS-0001,Instagram,2024-04-30 10:00:00,@CollectorJane12,4200,"I'd love to commission a piece in this style."
INS-0002,instagram,2024-04-20 09:30:00,ArtLover7,35,"Love this!"
`

const twitterJSON = `[
  {"interaction_id": "TWI-0001", "platform": "Twitter", "timestamp": "2024-04-29 18:00:00",
   "user_handle": "@CuratorMike3", "user_followers": 9100, "text_content": "I'm a gallery curator, would love to talk."}
]`

func TestReadCSV(t *testing.T) {
	items, err := newTestLoader().ReadCSV(strings.NewReader(instaCSV))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "INS-0001", items[0].ID)
	assert.Equal(t, interaction.PlatformInstagram, items[0].Platform)
	assert.Equal(t, int64(4200), items[0].FollowerCount)
	assert.Equal(t, time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC), items[0].Timestamp)
	assert.Equal(t, "@ArtLover7", items[1].Author)
	assert.Equal(t, interaction.PlatformInstagram, items[1].Platform)
}

func TestReadCSV_ColumnOrderFromHeader(t *testing.T) {
	data := "text_content,user_followers,user_handle,timestamp,platform,interaction_id\n" +
		"Nice!,12,@a,2024-04-30 10:00:00,Instagram,INS-0009\n"
	items, err := newTestLoader().ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "INS-0009", items[0].ID)
	assert.Equal(t, "Nice!", items[0].Text)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := newTestLoader().ReadCSV(strings.NewReader("interaction_id,platform\nX,Instagram\n"))
	assert.ErrorIs(t, err, interaction.ErrValidation)
}

func TestReadCSV_RejectsInvalidRecords(t *testing.T) {
	data := `interaction_id,platform,timestamp,user_handle,user_followers,text_content
INS-0001,Instagram,2024-04-30 10:00:00,@a,-5,Nice!
INS-0002,Instagram,2030-01-01 00:00:00,@b,5,Nice!
INS-0003,Instagram,2024-04-30 10:00:00,@c,5,
INS-0004,Instagram,2024-04-30 10:00:00,@d,5,Fine
`
	items, err := newTestLoader().ReadCSV(strings.NewReader(data))
	require.Error(t, err)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, interaction.ErrValidation)
	msg := err.Error()
	assert.Contains(t, msg, "record 1")
	assert.Contains(t, msg, "record 2")
	assert.Contains(t, msg, "record 3")
	assert.NotContains(t, msg, "record 4")
}

func TestParseFollowers(t *testing.T) {
	valid := map[string]int64{
		"4200":   4200,
		`"35"`:   35,
		"1500.0": 1500,
		"0":      0,
		" 12 ":   12,
		"1.2e3":  1200,
		"-7":     -7,
	}
	for in, want := range valid {
		got, err := parseFollowers([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"1500.9", "1e30", "-1e30", "NaN", "Inf", "-Inf", "99999999999999999999", "lots", "", "null"} {
		_, err := parseFollowers([]byte(in))
		assert.ErrorIs(t, err, interaction.ErrValidation, in)
	}
}

func TestReadJSON_FractionalFollowers(t *testing.T) {
	data := `[{"interaction_id": "TWI-0001", "platform": "Twitter", "timestamp": "2024-04-29 18:00:00",
   "user_handle": "@a", "user_followers": 1500.9, "text_content": "Nice"}]`
	_, err := newTestLoader().ReadJSON(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad follower count")
}

func TestReadJSON(t *testing.T) {
	items, err := newTestLoader().ReadJSON(strings.NewReader(twitterJSON))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, interaction.PlatformTwitter, items[0].Platform)
	assert.Equal(t, int64(9100), items[0].FollowerCount)
}

func TestReadJSON_MissingTimestamp(t *testing.T) {
	data := `[{"interaction_id":"TWI-1","platform":"Twitter","user_handle":"@x","user_followers":1,"text_content":"hi"}]`
	_, err := newTestLoader().ReadJSON(strings.NewReader(data))
	assert.ErrorIs(t, err, interaction.ErrValidation)
}

func TestLoadBatch(t *testing.T) {
	dir := t.TempDir()
	ip := filepath.Join(dir, "instagram_sample.csv")
	tp := filepath.Join(dir, "twitter_sample.json")
	require.NoError(t, os.WriteFile(ip, []byte(instaCSV), 0o644))
	require.NoError(t, os.WriteFile(tp, []byte(twitterJSON), 0o644))

	items, err := newTestLoader().LoadBatch(ip, tp)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "TWI-0001", items[2].ID)
}

func TestLoadBatch_DuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	ip := filepath.Join(dir, "instagram_sample.csv")
	tp := filepath.Join(dir, "twitter_sample.json")
	require.NoError(t, os.WriteFile(ip, []byte(instaCSV), 0o644))
	dup := strings.ReplaceAll(twitterJSON, "TWI-0001", "INS-0001")
	require.NoError(t, os.WriteFile(tp, []byte(dup), 0o644))

	_, err := newTestLoader().LoadBatch(ip, tp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate interaction id INS-0001")
}

func TestLoadBatch_MissingFile(t *testing.T) {
	_, err := newTestLoader().LoadBatch(filepath.Join(t.TempDir(), "nope.csv"), "nope.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open instagram sample")
}
