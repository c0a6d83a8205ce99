package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/skumatch-core/internal/core/domain"
	"github.com/custodia-labs/skumatch-core/internal/core/ports/driven"
)

// Ensure OpenAIReranker implements Reranker
var _ driven.Reranker = (*OpenAIReranker)(nil)

// Low temperature keeps the ranking stable across identical requests.
const (
	rerankTemperature = 0.3
	rerankMaxTokens   = 2000
)

// OpenAIReranker implements Reranker using an OpenAI-compatible chat
// completion API. The model receives the query and candidate names in a
// Japanese evaluation prompt and answers with a strict JSON ranking.
type OpenAIReranker struct {
	client *openai.Client
	model  string
}

// RerankerConfig holds the API connection settings.
type RerankerConfig struct {
	APIKey string

	// BaseURL overrides the endpoint for proxies and compatible servers
	BaseURL string

	Model string
}

// NewOpenAIReranker creates a new chat-completion backed re-ranker.
func NewOpenAIReranker(cfg RerankerConfig) (*OpenAIReranker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIReranker{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Rerank asks the model to reorder the candidates by semantic relevance.
func (r *OpenAIReranker) Rerank(ctx context.Context, req domain.RerankRequest) (*domain.RerankResponse, error) {
	if len(req.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates to rerank")
	}

	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Temperature: rerankTemperature,
		MaxTokens:   rerankMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("rerank completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	return parseRanking(resp.Choices[0].Message.Content)
}

// buildPrompt renders the Japanese evaluation prompt with the candidate list
// embedded as indented JSON.
func buildPrompt(req domain.RerankRequest) (string, error) {
	skuList, err := json.MarshalIndent(req.Candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode candidates: %w", err)
	}

	return fmt.Sprintf(`あなたは日本の製品検索の専門家です。ユーザーの検索クエリと商品名（SKU）のリストを与えられます。

検索クエリ: "%s"

商品リスト:
%s

以下の基準で商品の関連性を評価し、最も関連性の高い順に並べ替えてください：

1. **意味的関連性**: 商品名が検索クエリの意図と一致しているか
2. **ブランド認識**: 有名ブランドや正確な製品名か
3. **製品文脈**: カテゴリー、用途、特徴が検索意図と合っているか
4. **日本語の自然さ**: 表記が正しく、自然な日本語か

必ず以下のJSON形式で応答してください：

{
  "reranked_results": [
    {
      "index": 元のインデックス番号,
      "relevance_score": 0-100の関連性スコア,
      "reason": "ランキング理由（日本語、50文字以内）"
    }
  ]
}

注意: 必ずJSONのみを返し、他の説明文は含めないでください。`, req.Query, skuList), nil
}

// parseRanking decodes the model's JSON answer, tolerating markdown code
// fences around the payload.
func parseRanking(text string) (*domain.RerankResponse, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var resp domain.RerankResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse ranking: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("ranking contains no results")
	}
	return &resp, nil
}

// Model returns the model name being used.
func (r *OpenAIReranker) Model() string {
	return r.model
}

// Close releases resources held by the re-ranker.
func (r *OpenAIReranker) Close() error {
	return nil
}
