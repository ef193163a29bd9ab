package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"artconnect/internal/analytics"
	"artconnect/internal/interaction"
	"artconnect/internal/reply"
	"artconnect/internal/review"
	"artconnect/internal/storage"
)

// ListOpportunitiesParams filters the scored batch
type ListOpportunitiesParams struct {
	Platform string  `json:"platform,omitempty" mcp:"Instagram or Twitter; empty for both"`
	MinScore float64 `json:"min_score,omitempty" mcp:"minimum opportunity score (0-100)"`
	Limit    int     `json:"limit,omitempty" mcp:"maximum number of results (default 10)"`
}

// ScoreInteractionParams describes an interaction to score
type ScoreInteractionParams struct {
	InteractionID string `json:"interaction_id,omitempty" mcp:"id of an interaction in the loaded batch"`
	Platform      string `json:"platform,omitempty" mcp:"Instagram or Twitter (ad-hoc scoring)"`
	Handle        string `json:"user_handle,omitempty" mcp:"author handle (ad-hoc scoring)"`
	Followers     int64  `json:"user_followers,omitempty" mcp:"author follower count (ad-hoc scoring)"`
	Text          string `json:"text_content,omitempty" mcp:"comment text (ad-hoc scoring)"`
	Timestamp     string `json:"timestamp,omitempty" mcp:"RFC 3339 or 'YYYY-MM-DD HH:MM:SS'; defaults to now"`
}

// SuggestReplyParams selects the interaction to answer
type SuggestReplyParams struct {
	InteractionID string `json:"interaction_id,omitempty" mcp:"id of an interaction in the loaded batch"`
	Text          string `json:"text_content,omitempty" mcp:"comment text when no id is given"`
	Handle        string `json:"user_handle,omitempty" mcp:"author handle when no id is given"`
}

// LogActionParams is one reviewer decision
type LogActionParams struct {
	InteractionID  string `json:"interaction_id" mcp:"id of the interaction decided on"`
	Action         string `json:"action" mcp:"APPROVE, EDIT or REJECT"`
	FinalReplyText string `json:"final_reply_text,omitempty" mcp:"text actually sent; required for EDIT, defaults to the suggestion for APPROVE"`
}

// NoParams is used by tools without arguments
type NoParams struct{}

// Server exposes the review service as MCP tools.
type Server struct {
	svc     *review.Service
	replies *reply.Selector
	logger  *zap.Logger
}

func New(svc *review.Service, replies *reply.Selector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, replies: replies, logger: logger}
}

// ToolNames lists the registered tools in registration order.
var ToolNames = []string{
	"list_opportunities", "score_interaction", "suggest_reply",
	"log_action", "approval_rate", "action_breakdown",
}

// Register adds every tool to server.
func (s *Server) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_opportunities",
		Description: "Lists scored interactions, highest opportunity score first, with suggested replies",
	}, s.ListOpportunities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "score_interaction",
		Description: "Returns the opportunity score breakdown of a batch interaction or of an ad-hoc comment",
	}, s.ScoreInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest_reply",
		Description: "Suggests a reply in the artist's voice for an interaction",
	}, s.SuggestReply)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_action",
		Description: "Appends a reviewer decision (APPROVE, EDIT, REJECT) to the decision log",
	}, s.LogAction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "approval_rate",
		Description: "Share of logged decisions that sent a reply",
	}, s.ApprovalRate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "action_breakdown",
		Description: "Counts of logged decisions per action",
	}, s.ActionBreakdown)

	s.logger.Info("📋 Registered MCP tools", zap.Strings("tools", ToolNames))
}

// NewMCPServer builds an MCP server with all tools registered.
func (s *Server) NewMCPServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "artconnect-mcp",
		Version: version,
	}, nil)
	s.Register(server)
	return server
}

func (s *Server) ListOpportunities(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ListOpportunitiesParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	f := review.Filter{MinScore: args.MinScore, Limit: args.Limit}
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if args.Platform != "" {
		p, err := interaction.ParsePlatform(args.Platform)
		if err != nil {
			return errorResult(err), nil
		}
		f.Platform = p
	}
	ops := s.svc.Opportunities(f)
	if ops == nil {
		ops = []review.Opportunity{}
	}
	return jsonResult(map[string]any{"opportunities": ops, "total": len(ops)})
}

func (s *Server) ScoreInteraction(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ScoreInteractionParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if id := strings.TrimSpace(args.InteractionID); id != "" {
		op, err := s.svc.Get(id)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(op.Breakdown)
	}

	in, err := s.adHoc(args)
	if err != nil {
		return errorResult(err), nil
	}
	b, err := s.svc.Score(in)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(b)
}

func (s *Server) adHoc(args ScoreInteractionParams) (interaction.Interaction, error) {
	platform := interaction.PlatformInstagram
	if args.Platform != "" {
		p, err := interaction.ParsePlatform(args.Platform)
		if err != nil {
			return interaction.Interaction{}, err
		}
		platform = p
	}
	ts := s.svc.Now()
	if args.Timestamp != "" {
		t, err := interaction.ParseTimestamp(args.Timestamp, time.UTC)
		if err != nil {
			return interaction.Interaction{}, err
		}
		ts = t
	}
	return interaction.Interaction{
		ID:            "adhoc",
		Platform:      platform,
		Author:        interaction.NormalizeHandle(args.Handle),
		FollowerCount: args.Followers,
		Text:          args.Text,
		Timestamp:     ts,
	}, nil
}

func (s *Server) SuggestReply(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[SuggestReplyParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if id := strings.TrimSpace(args.InteractionID); id != "" {
		op, err := s.svc.Get(id)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(map[string]string{"category": op.ReplyCategory, "reply": op.SuggestedReply})
	}
	if strings.TrimSpace(args.Text) == "" {
		return errorResult(errors.New("interaction_id or text_content is required")), nil
	}
	cat := reply.Classify(args.Text)
	return jsonResult(map[string]string{"category": cat.String(), "reply": s.replies.Render(cat, args.Handle)})
}

func (s *Server) LogAction(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[LogActionParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	action, err := storage.ParseAction(args.Action)
	if err != nil {
		return errorResult(err), nil
	}
	e, err := s.svc.Decide(args.InteractionID, action, args.FinalReplyText)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(e)
}

func (s *Server) ApprovalRate(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[NoParams]) (*mcp.CallToolResultFor[any], error) {
	b, err := s.svc.ActionBreakdown()
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{"approval_rate": b.Rate(), "decisions": b.Total()})
}

func (s *Server) ActionBreakdown(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[NoParams]) (*mcp.CallToolResultFor[any], error) {
	b, err := s.svc.ActionBreakdown()
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(struct {
		analytics.Breakdown
		Total int `json:"total"`
	}{b, b.Total()})
}

func jsonResult(v any) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil
}

func errorResult(err error) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("❌ %v", err)},
		},
	}
}
