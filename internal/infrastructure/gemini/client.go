package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"plantify/internal/domain/entity"
	"plantify/internal/domain/port"
	"plantify/internal/infrastructure/metrics"
)

// DefaultModel модель по умолчанию.
const DefaultModel = "gemini-1.5-flash"

// Instruction фиксированная инструкция для сервиса. Ключи совпадают с entity.PlantRecord.
const Instruction = "Identify this plant and provide important information about it. " +
	"Return the information in JSON format with the following properties: " +
	"name, scientificName, family, description, care, funFacts. " +
	"Keep each property's value concise, about 2-3 sentences. " +
	"Do not include any markdown formatting in the response."

// Config параметры клиента.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string // пустой означает публичный endpoint Google
}

// Client клиент Gemini generateContent. Собственного таймаута нет.
type Client struct {
	model  string
	client *genai.Client
}

// NewClient создаёт клиента. Без ключа клиент создаётся, но любой вызов
// возвращает entity.ErrCredentialMissing.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	c := &Client{model: model}
	if cfg.APIKey == "" {
		return c, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(cfg.Endpoint, "/")))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Ready проверяет наличие ключа.
func (c *Client) Ready() error {
	if c.client == nil {
		return entity.ErrCredentialMissing
	}
	return nil
}

// Close закрывает соединение с сервисом.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Identify отправляет [инструкция, inlineData] и возвращает текст ответа как есть.
func (c *Client) Identify(ctx context.Context, payload entity.EncodedPayload) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}

	data, err := payload.Decode()
	if err != nil {
		return "", fmt.Errorf("%w: decode payload: %v", entity.ErrEncoding, err)
	}

	model := c.client.GenerativeModel(c.model)

	start := time.Now()
	resp, err := model.GenerateContent(ctx,
		genai.Text(Instruction),
		genai.Blob{MIMEType: payload.MIMEType(), Data: data},
	)
	if err != nil {
		err = transportError(err)
		metrics.ObserveInference(c.model, entity.ErrorKind(err), time.Since(start))
		return "", err
	}

	text, err := responseText(resp)
	if err != nil {
		metrics.ObserveInference(c.model, entity.ErrorKind(err), time.Since(start))
		return "", err
	}

	metrics.ObserveInference(c.model, "success", time.Since(start))
	return text, nil
}

// responseText склеивает текстовые части первого кандидата.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		reason := "no candidates"
		if resp != nil && resp.PromptFeedback != nil {
			reason = "prompt blocked: " + resp.PromptFeedback.BlockReason.String()
		}
		return "", &entity.TransportError{StatusCode: 200, Err: errors.New(reason)}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", &entity.TransportError{StatusCode: 200, Err: fmt.Errorf("empty candidate, finish reason %s", candidate.FinishReason)}
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func transportError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &entity.TransportError{StatusCode: 200, Err: err}
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &entity.TransportError{StatusCode: apiErr.Code, Err: fmt.Errorf("status %d: %s", apiErr.Code, apiErr.Message)}
	}
	// В URL запроса может быть ключ, в ошибку он попадать не должен.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &entity.TransportError{Err: fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)}
	}
	return &entity.TransportError{Err: err}
}

// Проверка реализации интерфейса
var _ port.Identifier = (*Client)(nil)
