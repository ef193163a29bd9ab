package interaction

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Platform is the social network an interaction was collected from.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformTwitter   Platform = "Twitter"
)

// TimestampLayout is the layout used by the sample files.
const TimestampLayout = "2006-01-02 15:04:05"

var ErrValidation = errors.New("invalid interaction")

// ParsePlatform accepts platform names case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instagram":
		return PlatformInstagram, nil
	case "twitter":
		return PlatformTwitter, nil
	default:
		return "", fmt.Errorf("%w: unknown platform %q", ErrValidation, s)
	}
}

// Interaction is one comment or mention on the artist's content.
type Interaction struct {
	ID            string    `json:"interaction_id"`
	Platform      Platform  `json:"platform"`
	Author        string    `json:"user_handle"`
	FollowerCount int64     `json:"user_followers"`
	Text          string    `json:"text_content"`
	Timestamp     time.Time `json:"timestamp"`
}

// Validate checks the fields scoring relies on. now is the reference time used
// for scoring; interactions created after it are rejected.
func (in Interaction) Validate(now time.Time) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrValidation)
	}
	if in.Platform != PlatformInstagram && in.Platform != PlatformTwitter {
		return fmt.Errorf("%w: %s: unknown platform %q", ErrValidation, in.ID, in.Platform)
	}
	if strings.TrimSpace(in.Text) == "" {
		return fmt.Errorf("%w: %s: missing text", ErrValidation, in.ID)
	}
	if in.Timestamp.IsZero() {
		return fmt.Errorf("%w: %s: missing timestamp", ErrValidation, in.ID)
	}
	if in.Timestamp.After(now) {
		return fmt.Errorf("%w: %s: timestamp %s is in the future", ErrValidation, in.ID, in.Timestamp.Format(time.RFC3339))
	}
	if in.FollowerCount < 0 {
		return fmt.Errorf("%w: %s: negative follower count %d", ErrValidation, in.ID, in.FollowerCount)
	}
	return nil
}

// ParseTimestamp accepts the sample file layout (interpreted in loc) or RFC 3339.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrValidation)
	}
	if t, err := time.ParseInLocation(TimestampLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q", ErrValidation, s)
	}
	return t, nil
}

// NormalizeHandle returns the handle with a single leading "@".
func NormalizeHandle(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimLeft(h, "@")
	if h == "" {
		return ""
	}
	return "@" + h
}
