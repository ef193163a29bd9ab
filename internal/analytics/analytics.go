package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"artconnect/internal/interaction"
	"artconnect/internal/scoring"
	"artconnect/internal/storage"
)

// RecentLimit is how many of the latest decisions a report carries.
const RecentLimit = 15

// Breakdown counts decisions per action kind.
type Breakdown struct {
	Approve     int `json:"approve"`
	EditApprove int `json:"edit_approve"`
	Reject      int `json:"reject"`
}

func (b Breakdown) Total() int   { return b.Approve + b.EditApprove + b.Reject }
func (b Breakdown) Replied() int { return b.Approve + b.EditApprove }

// Count returns the count for one action kind.
func (b Breakdown) Count(a storage.Action) int {
	switch a {
	case storage.ActionApprove:
		return b.Approve
	case storage.ActionEditApprove:
		return b.EditApprove
	case storage.ActionReject:
		return b.Reject
	}
	return 0
}

// Rate is the share of decisions that sent a reply; 0 when there are none.
func (b Breakdown) Rate() float64 {
	if b.Total() == 0 {
		return 0
	}
	return float64(b.Replied()) / float64(b.Total())
}

// ActionBreakdown counts the log per action. Total equals len(entries).
func ActionBreakdown(entries []storage.Entry) Breakdown {
	var b Breakdown
	for _, e := range entries {
		switch e.Action {
		case storage.ActionApprove:
			b.Approve++
		case storage.ActionEditApprove:
			b.EditApprove++
		case storage.ActionReject:
			b.Reject++
		}
	}
	return b
}

// ApprovalRate returns (approve + edit) / all decisions, or 0 for an empty log.
func ApprovalRate(entries []storage.Entry) float64 {
	return ActionBreakdown(entries).Rate()
}

// Funnel follows interactions from ingestion to a sent reply.
type Funnel struct {
	Total     int `json:"total"`
	HighValue int `json:"high_value"`
	Replied   int `json:"replied"`
}

// Report holds the dashboard KPIs.
type Report struct {
	GeneratedAt       time.Time       `json:"generated_at"`
	TotalInteractions int             `json:"total_interactions"`
	ByPlatform        map[string]int  `json:"by_platform"`
	HighValue         int             `json:"high_value"`
	LoggedActions     int             `json:"logged_actions"`
	ApprovalRate      float64         `json:"approval_rate"`
	Actions           Breakdown       `json:"actions"`
	Funnel            Funnel          `json:"funnel"`
	Recent            []storage.Entry `json:"recent"`
}

// BuildReport computes KPIs over a scored batch and the decision log.
func BuildReport(scored []scoring.Scored, entries []storage.Entry, now time.Time) *Report {
	r := &Report{
		GeneratedAt: now.UTC(),
		ByPlatform: map[string]int{
			string(interaction.PlatformInstagram): 0,
			string(interaction.PlatformTwitter):   0,
		},
	}
	for _, s := range scored {
		r.TotalInteractions++
		r.ByPlatform[string(s.Platform)]++
		if s.IsHighValue() {
			r.HighValue++
		}
	}
	r.Actions = ActionBreakdown(entries)
	r.LoggedActions = r.Actions.Total()
	r.ApprovalRate = r.Actions.Rate()
	r.Funnel = Funnel{Total: r.TotalInteractions, HighValue: r.HighValue, Replied: r.Actions.Replied()}

	start := len(entries) - RecentLimit
	if start < 0 {
		start = 0
	}
	r.Recent = append([]storage.Entry(nil), entries[start:]...)
	return r
}

// GenerateReportSummary renders the report as plain text for reviewers and LLM input.
func (r *Report) GenerateReportSummary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ArtConnect opportunity report (%s UTC)\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "Interactions scanned: %d\n", r.TotalInteractions)

	platforms := make([]string, 0, len(r.ByPlatform))
	for p := range r.ByPlatform {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	for _, p := range platforms {
		fmt.Fprintf(&sb, "- %s: %d\n", p, r.ByPlatform[p])
	}

	fmt.Fprintf(&sb, "High-value opportunities (score >= %.0f): %d\n", scoring.HighValueThreshold, r.HighValue)
	fmt.Fprintf(&sb, "Logged decisions: %d\n", r.LoggedActions)
	fmt.Fprintf(&sb, "Approval rate (approve + edit): %.1f%%\n\n", r.ApprovalRate*100)

	sb.WriteString("Action breakdown:\n")
	fmt.Fprintf(&sb, "- APPROVE: %d\n- EDIT: %d\n- REJECT: %d\n\n", r.Actions.Approve, r.Actions.EditApprove, r.Actions.Reject)

	sb.WriteString("Engagement funnel:\n")
	fmt.Fprintf(&sb, "- Total interactions: %d\n- High-value: %d\n- Replied: %d\n", r.Funnel.Total, r.Funnel.HighValue, r.Funnel.Replied)
	return sb.String()
}

// ToJSON serializes the report for detailed analysis.
func (r *Report) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DailyStats summarizes decisions taken on one day.
type DailyStats struct {
	Date         string    `json:"date"`
	Decisions    int       `json:"decisions"`
	Interactions int       `json:"interactions"`
	Actions      Breakdown `json:"actions"`
	ApprovalRate float64   `json:"approval_rate"`
}

// AnalyzeDailyDecisions keeps the entries decided on targetDate's calendar day.
func AnalyzeDailyDecisions(entries []storage.Entry, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	var day []storage.Entry
	unique := make(map[string]struct{})
	for _, e := range entries {
		if e.DecidedAt.Before(startOfDay) || !e.DecidedAt.Before(endOfDay) {
			continue
		}
		day = append(day, e)
		unique[e.InteractionID] = struct{}{}
	}

	b := ActionBreakdown(day)
	return &DailyStats{
		Date:         startOfDay.Format("2006-01-02"),
		Decisions:    len(day),
		Interactions: len(unique),
		Actions:      b,
		ApprovalRate: b.Rate(),
	}
}

// Summary renders the day's decisions as one short paragraph.
func (ds *DailyStats) Summary() string {
	if ds.Decisions == 0 {
		return fmt.Sprintf("No decisions were logged on %s.", ds.Date)
	}
	return fmt.Sprintf("On %s reviewers logged %d decisions on %d interactions: %d approved, %d edited, %d rejected (approval rate %.1f%%).",
		ds.Date, ds.Decisions, ds.Interactions, ds.Actions.Approve, ds.Actions.EditApprove, ds.Actions.Reject, ds.ApprovalRate*100)
}
