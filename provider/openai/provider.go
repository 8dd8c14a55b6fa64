package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/casualjim/courier/pkg/jsonx"
	"github.com/casualjim/courier/provider"
	"github.com/go-openapi/strfmt"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const healthCheckTimeout = 3 * time.Second

// Provider talks to the OpenAI chat completions API. It also serves as the
// binding for OpenAI-compatible backends (OpenRouter, Ollama) which reuse the
// same wire protocol behind a different base URL; see Named.
type Provider struct {
	name   string
	client *openai.Client
}

// New creates a provider for the OpenAI API proper.
func New(apiKey string, options ...option.RequestOption) *Provider {
	return Named("openai", append([]option.RequestOption{option.WithAPIKey(apiKey)}, options...)...)
}

// Named creates a provider with an explicit display name and client options.
// The name shows up in errors and quota reports so operators can tell
// OpenAI-compatible backends apart.
func Named(name string, options ...option.RequestOption) *Provider {
	return &Provider{
		name:   name,
		client: openai.NewClient(options...),
	}
}

// Name returns the display name this provider was constructed with.
func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	page, err := p.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list models: %w", p.name, err)
	}

	names := make([]string, 0, len(page.Data))
	for _, model := range page.Data {
		names = append(names, model.ID)
	}
	return names, nil
}

func (p *Provider) Generate(ctx context.Context, params provider.GenerateParams) (string, error) {
	chatParams, err := p.buildRequest(&params)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	chat, err := p.client.Chat.Completions.New(ctx, chatParams)
	if err != nil {
		return "", p.wrapErr(params.Model, err)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("%s: completion returned no choices", p.name)
	}
	return chat.Choices[0].Message.Content, nil
}

func (p *Provider) GenerateStream(ctx context.Context, params provider.GenerateParams) (<-chan provider.StreamEvent, error) {
	chatParams, err := p.buildRequest(&params)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	events := make(chan provider.StreamEvent, 10)
	go func() {
		defer close(events)
		p.runStream(ctx, chatParams, &params, events)
	}()
	return events, nil
}

func (p *Provider) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	_, err := p.client.Models.List(ctx)
	return err == nil
}

func (p *Provider) runStream(ctx context.Context, chatParams openai.ChatCompletionNewParams, params *provider.GenerateParams, events chan<- provider.StreamEvent) {
	strm := p.client.Chat.Completions.NewStreaming(ctx, chatParams)
	defer strm.Close()

	if strm.Err() != nil {
		events <- provider.Error{
			RunID:     params.RunID,
			Err:       p.wrapErr(params.Model, strm.Err()),
			Timestamp: strfmt.DateTime(time.Now()),
		}
		return
	}

	var acc openai.ChatCompletionAccumulator
	for strm.Next() {
		// Stop producing as soon as the caller gives up
		if ctx.Err() != nil {
			events <- provider.Error{
				RunID:     params.RunID,
				Err:       ctx.Err(),
				Timestamp: strfmt.DateTime(time.Now()),
			}
			return
		}

		chunk := strm.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		if fragment := chunk.Choices[0].Delta.Content; fragment != "" {
			events <- provider.Chunk{
				RunID:     params.RunID,
				Fragment:  fragment,
				Timestamp: strfmt.DateTime(time.Now()),
			}
		}
	}

	if err := strm.Err(); err != nil {
		events <- provider.Error{
			RunID:     params.RunID,
			Err:       p.wrapErr(params.Model, err),
			Timestamp: strfmt.DateTime(time.Now()),
		}
		return
	}

	var content string
	if len(acc.Choices) > 0 {
		content = acc.Choices[0].Message.Content
	}
	events <- provider.Done{
		RunID:     params.RunID,
		Content:   content,
		Timestamp: strfmt.DateTime(time.Now()),
	}
}

func (p *Provider) buildRequest(params *provider.GenerateParams) (openai.ChatCompletionNewParams, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(params.History)+2)
	if params.Instructions != "" {
		messages = append(messages, openai.SystemMessage(params.Instructions))
	}
	for _, msg := range params.History {
		switch msg.Role {
		case provider.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case provider.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(params.Prompt))

	chatParams := openai.ChatCompletionNewParams{
		Messages: openai.F(messages),
		Model:    openai.F(params.Model),
		N:        openai.Int(1),
	}

	if params.ResponseSchema != nil {
		schema, err := jsonx.ToDynamicJSON(params.ResponseSchema.Schema)
		if err != nil {
			return openai.ChatCompletionNewParams{}, fmt.Errorf("failed to convert response schema: %w", err)
		}
		jsonSchema := shared.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   openai.String(params.ResponseSchema.Name),
			Schema: openai.F[any](schema),
			Strict: openai.Bool(true),
		}
		if params.ResponseSchema.Description != "" {
			jsonSchema.Description = openai.String(params.ResponseSchema.Description)
		}
		chatParams.ResponseFormat = openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			shared.ResponseFormatJSONSchemaParam{
				Type:       openai.F(shared.ResponseFormatJSONSchemaTypeJSONSchema),
				JSONSchema: openai.F(jsonSchema),
			},
		)
	}

	return chatParams, nil
}

// wrapErr maps a 429 from the backend to a typed quota error and leaves
// everything else as-is.
func (p *Provider) wrapErr(model string, err error) error {
	var apierr *openai.Error
	if !errors.As(err, &apierr) || apierr.StatusCode != http.StatusTooManyRequests {
		return err
	}

	qe := &provider.QuotaError{Provider: p.name, Model: model}
	if apierr.Response != nil {
		if ra := apierr.Response.Header.Get("Retry-After"); ra != "" {
			if secs, perr := strconv.Atoi(ra); perr == nil {
				qe.RetryAfter = time.Duration(secs) * time.Second
			}
		}
	}
	return qe
}
