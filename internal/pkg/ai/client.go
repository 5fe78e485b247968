package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/yunuszade97-del/treadsbot/config"
	"github.com/yunuszade97-del/treadsbot/internal/model"
)

// DefaultSystemPrompt 未设置风格时使用的默认人设（含 few-shot 示例）
const DefaultSystemPrompt = "Ты — brainstorm-бадди для Threads.\n\n" +
	"ЛИМИТ: У тебя 600 символов на ВЕСЬ ответ. Считай символы. Укладывайся.\n\n" +
	"ЧТО РАБОТАЕТ В THREADS (используй всегда):\n" +
	"- КРЮЧОК: первая строка цепляет. Провокация, шок-факт, боль или контринтуитивная мысль. Без крючка пост мёртв.\n" +
	"- ЛИЧНОЕ МНЕНИЕ: пиши от первого лица, обыгрывай свою позицию. Не нейтрально. Threads любит мнения.\n" +
	"- ПРОВОКАЦИЯ: спорное утверждение = комментарии = охваты. Не бойся задеть. Поляризуй.\n" +
	"- КОНЕЦ = ВОПРОС ИЛИ ВЫЗОВ: последняя строка должна заставить ответить или подписаться.\n" +
	"- Цель каждого поста: вирусность, подписки, вовлечение.\n" +
	"- Без хештегов. Короткие абзацы с пустыми строками.\n\n" +
	"ФОРМАТ:\n" +
	"- Один хук = 1-2 предложения, до 150 символов\n" +
	"- Варианты = 2-3 хука через ===, каждый до 150 символов\n" +
	"- Полный пост (только по «напиши пост») = до 500 символов\n\n" +
	"ЗАПРЕЩЕНО:\n" +
	"- «ВАРИАНТ 1», «---», названия типов, метки\n" +
	"- Заголовки, вступления, markdown\n\n" +
	"ПРИМЕРЫ:\n\n" +
	"Пользователь: выгорание\n" +
	"Ты: Выгорание — это не когда устал. Это когда отдохнул, а всё равно не хочешь. Знакомо?\n\n" +
	"Пользователь: варианты про ИИ\n" +
	"Ты: ИИ не заберёт твою работу. Её заберёт тот, кто умеет с ним работать.\n===\n" +
	"Через 5 лет резюме без навыков ИИ будет как резюме без Excel в 2010.\n===\n" +
	"Самое страшное в ИИ — не то, что он умеет. А то, как быстро он учится.\n\n" +
	"На русском."

// 触发"长帖模式"的关键词
var longPostRe = regexp.MustCompile(`(?i)напиши\s+пост|развёрни|разверни|длинн|полн[а-яё]*\s+пост|подробн`)

var ErrEmptyChoices = errors.New("AI 返回了空的 choices")

type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []model.Message `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float32         `json:"temperature"`
}

type chatChoice struct {
	Index        int           `json:"index"`
	Message      model.Message `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Client OpenRouter 兼容的 chat completions 客户端
type Client struct {
	httpClient    *http.Client
	apiKey        string
	baseURL       string
	model         string
	temperature   float32
	maxTokens     int
	maxTokensLong int
}

func NewClient(cfg *config.AIConfig) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 120 * time.Second},
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		model:         cfg.Model,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxTokens,
		maxTokensLong: cfg.MaxTokensLong,
	}
}

// GenerateThread 调用模型生成帖子文本。
// 无内建重试，失败原样上抛给调用方。
func (c *Client) GenerateThread(ctx context.Context, topic, systemPrompt string, history []model.Message) (string, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	messages := make([]model.Message, 0, len(history)+2)
	messages = append(messages, model.Message{Role: model.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, model.Message{Role: model.RoleUser, Content: topic})

	// 用户要完整长帖时放宽 token 上限
	maxTokens := c.maxTokens
	if longPostRe.MatchString(topic) {
		maxTokens = c.maxTokensLong
	}

	log.Printf("Calling %s with %d chars (max_tokens=%d)", c.model, len(topic), maxTokens)

	resp, err := c.post(ctx, "chat/completions", &chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Printf("Received %d chars from LLM", len(text))
	return text, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body *chatRequest) (*chatResponse, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, endpoint)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var response chatResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &response, nil
}
