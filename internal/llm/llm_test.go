package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Morwran/yagpt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artconnect/internal/config"
)

type fakeClient struct {
	got  []Message
	resp Completion
	err  error
}

func (f *fakeClient) Complete(_ context.Context, messages []Message) (Completion, error) {
	f.got = messages
	return f.resp, f.err
}

func TestReportNarrator(t *testing.T) {
	fc := &fakeClient{resp: Completion{Text: "  Two collectors are waiting.  ", Model: "m"}}
	text, err := NewReportNarrator(fc, nil).Narrate(context.Background(), "High-value opportunities: 2")
	require.NoError(t, err)
	assert.Equal(t, "Two collectors are waiting.", text)
	require.Len(t, fc.got, 2)
	assert.Equal(t, RoleSystem, fc.got[0].Role)
	assert.Equal(t, RoleUser, fc.got[1].Role)
	assert.Equal(t, "High-value opportunities: 2", fc.got[1].Content)
}

func TestReportNarrator_Errors(t *testing.T) {
	_, err := NewReportNarrator(&fakeClient{err: errors.New("quota")}, nil).Narrate(context.Background(), "x")
	assert.ErrorContains(t, err, "quota")

	_, err = NewReportNarrator(&fakeClient{resp: Completion{Text: " "}}, nil).Narrate(context.Background(), "x")
	assert.Error(t, err)
}

func TestFactory(t *testing.T) {
	f := NewFactory(&config.Config{OpenAIAPIKey: "k"})
	c, err := f.CreateClient("OpenAI", "gpt-4o-mini")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = f.CreateClient("gigachat", "")
	assert.Error(t, err)

	_, err = NewFactory(&config.Config{}).CreateClient(ProviderOpenAI, "m")
	assert.Error(t, err)

	n, err := FromConfig(&config.Config{}, nil)
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = FromConfig(&config.Config{LLMProvider: config.ProviderOpenAI, OpenAIAPIKey: "k", OpenAIModel: "m"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ReportNarrator{}, n)
}

func TestHeaderTransport(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	h := http.Header{}
	h.Set("X-Title", "ArtConnect")
	client := &http.Client{Transport: headerTransport{rt: http.DefaultTransport, headers: h}}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "ArtConnect", got.Get("X-Title"))
	assert.Empty(t, req.Header.Get("X-Title"))
}

type fakeIam struct {
	calls   int
	expires time.Time
}

func (f *fakeIam) Create() (*yagpt.IamTokenResponse, error) {
	return f.CreateWithCtx(context.Background())
}

func (f *fakeIam) CreateWithCtx(context.Context) (*yagpt.IamTokenResponse, error) {
	f.calls++
	return &yagpt.IamTokenResponse{IamToken: "tok-" + string(rune('0'+f.calls)), ExpiresAt: f.expires}, nil
}

func (f *fakeIam) Close() error { return nil }

type fakeYa struct{ tokens []string }

func (f *fakeYa) CompletionWithCtx(_ context.Context, iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	f.tokens = append(f.tokens, iamTok)
	return &yagpt.CompletionResponse{
		Alternatives: []yagpt.Alternative{{Message: yagpt.Message{Role: "assistant", Content: "ok"}}},
		Usage:        yagpt.ContentUsage{InputTextTokens: 10, CompletionTokens: 2, TotalTokens: 12},
	}, nil
}

func (f *fakeYa) Completion(iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	return f.CompletionWithCtx(context.Background(), iamTok, m)
}

func TestYandexClient_RenewsIamToken(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	iam := &fakeIam{expires: now.Add(time.Hour)}
	ya := &fakeYa{}
	c := newYandex(ya, iam, func() time.Time { return now })

	out, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
	assert.Equal(t, yagpt.YaModelLite, out.Model)
	assert.Equal(t, Usage{Prompt: 10, Completion: 2, Total: 12}, out.Usage)

	_, err = c.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, iam.calls)

	now = now.Add(58 * time.Minute)
	iam.expires = now.Add(time.Hour)
	_, err = c.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, iam.calls)
	assert.Equal(t, []string{"tok-1", "tok-1", "tok-2"}, ya.tokens)
}
