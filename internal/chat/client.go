// AngelaMos | 2026
// client.go

package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ecoplagas/backend/internal/config"
	"github.com/ecoplagas/backend/internal/core"
)

// Image is an already normalized upload.
type Image struct {
	Data []byte
	MIME string
}

type Request struct {
	Message string
	Image   *Image
}

type Reply struct {
	Response string `json:"response"`
	Model    string `json:"model,omitempty"`
}

type Client struct {
	api         *openai.Client
	configured  bool
	textModel   string
	visionModel string
	temperature float32
	maxTokens   int
	completions *prometheus.CounterVec
}

func NewClient(
	cfg config.ChatConfig,
	httpClient *http.Client,
	reg prometheus.Registerer,
) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = httpClient

	completions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecoplagas_chat_completions_total",
		Help: "Chat completions by model and outcome.",
	}, []string{"model", "outcome"})
	if reg != nil {
		reg.MustRegister(completions)
	}

	return &Client{
		api:         openai.NewClientWithConfig(oc),
		configured:  cfg.APIKey != "",
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		completions: completions,
	}
}

func (c *Client) Configured() bool {
	return c.configured
}

// Ask sends req to the text model, or to the vision model when an image is
// attached.
func (c *Client) Ask(ctx context.Context, req Request) (reply *Reply, err error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	message := strings.TrimSpace(req.Message)
	if message == "" && req.Image == nil {
		return nil, core.ErrEmptyInput
	}

	model := c.textModel
	user := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	}

	if req.Image != nil {
		model = c.visionModel
		user = imageMessage(message, req.Image)
	}

	ctx, span := core.StartSpan(ctx, "chat.ask",
		attribute.String("chat.model", model),
		attribute.Bool("chat.has_image", req.Image != nil),
	)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = Classify(err).String()
		}
		c.completions.WithLabelValues(model, outcome).Inc()
		core.EndSpan(span, err)
	}()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			user,
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices: %w", core.ErrUpstream)
	}

	return &Reply{
		Response: resp.Choices[0].Message.Content,
		Model:    model,
	}, nil
}

func imageMessage(message string, img *Image) openai.ChatCompletionMessage {
	if message == "" {
		message = DefaultImagePrompt
	}

	mime := img.MIME
	if mime == "" {
		mime = "image/jpeg"
	}

	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: message,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	}
}
