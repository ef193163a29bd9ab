package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Morwran/yagpt"
)

// iamRefreshMargin renews the IAM token this long before it expires.
const iamRefreshMargin = 5 * time.Minute

// YandexClient calls YandexGPT. The IAM token exchanged from the OAuth token
// expires after a few hours, so it is renewed on demand.
type YandexClient struct {
	ya  yagpt.YaGPTFace
	iam yagpt.IamFace
	now func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		_ = iam.Close()
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}
	c := newYandex(ya, iam, time.Now)
	if _, err := c.iamToken(context.Background()); err != nil {
		_ = iam.Close()
		return nil, err
	}
	return c, nil
}

func newYandex(ya yagpt.YaGPTFace, iam yagpt.IamFace, now func() time.Time) *YandexClient {
	return &YandexClient{ya: ya, iam: iam, now: now}
}

func (c *YandexClient) iamToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Add(iamRefreshMargin).Before(c.expiresAt) {
		return c.token, nil
	}
	resp, err := c.iam.CreateWithCtx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create iam token: %w", err)
	}
	if resp == nil || resp.IamToken == "" {
		return "", errors.New("yandex iam returned an empty token")
	}
	c.token, c.expiresAt = resp.IamToken, resp.ExpiresAt
	return c.token, nil
}

func (c *YandexClient) Complete(ctx context.Context, messages []Message) (Completion, error) {
	tok, err := c.iamToken(ctx)
	if err != nil {
		return Completion{}, err
	}
	yaMsgs := make([]yagpt.Message, 0, len(messages))
	for _, m := range messages {
		yaMsgs = append(yaMsgs, yagpt.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := c.ya.CompletionWithCtx(ctx, tok, yaMsgs)
	if err != nil {
		return Completion{}, fmt.Errorf("yagpt completion failed: %w", err)
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return Completion{}, errors.New("yagpt returned empty response")
	}
	model := resp.ModelVersion
	if model == "" {
		model = yagpt.YaModelLite
	}
	return Completion{
		Text:  resp.Alternatives[0].Message.Content,
		Model: model,
		Usage: Usage{
			Prompt:     int(resp.Usage.InputTextTokens),
			Completion: int(resp.Usage.CompletionTokens),
			Total:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Close releases the IAM gRPC connection.
func (c *YandexClient) Close() error {
	return c.iam.Close()
}
