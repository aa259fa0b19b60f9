package prompt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/jwalitptl/memory-api/internal/config"
	"github.com/jwalitptl/memory-api/pkg/circuitbreaker"
	"github.com/jwalitptl/memory-api/pkg/logger"
)

// Fallback is served whenever no suggestion could be produced
const Fallback = "응답을 가져올 수 없습니다."

const (
	defaultModel   = openai.GPT4o
	defaultTimeout = 15 * time.Second

	instruction = "커뮤니티를 하나 만들고 있는데, 사진과 함께 추억을 나눌만한 글감을 랜덤으로 골라서 한국어 딱 한 문장으로 추천해줘. " +
		"반말이나 대답은 하지 말고 권유하는 식의 질문으로 끝났으면 좋겠고 소재는 매번 다양했으면 좋겠어."
)

var errEmptyCompletion = errors.New("completion has no content")

// ChatClient is the part of the OpenAI client the service calls
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient builds an OpenAI client from cfg, or nil when no key is set
func NewClient(cfg config.OpenAIConfig) ChatClient {
	if cfg.APIKey == "" {
		return nil
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

type Service struct {
	client  ChatClient
	model   string
	timeout time.Duration
	cb      *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// NewService creates the suggestion service. A nil client always yields Fallback.
func NewService(client ChatClient, cfg config.OpenAIConfig, cb *circuitbreaker.CircuitBreaker, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{client: client, model: model, timeout: timeout, cb: cb, log: log}
}

// Suggest asks the model for one writing prompt about topic. Upstream
// failures are logged and answered with Fallback.
func (s *Service) Suggest(ctx context.Context, topic string) string {
	if s.client == nil {
		return Fallback
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var suggestion string
	call := func() error {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: instruction + "\n주제: " + topic},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errEmptyCompletion
		}
		suggestion = strings.TrimSpace(resp.Choices[0].Message.Content)
		if suggestion == "" {
			return errEmptyCompletion
		}
		return nil
	}

	var err error
	if s.cb != nil {
		err = s.cb.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		s.log.Error(err, "Prompt suggestion failed", "topic", topic)
		return Fallback
	}
	return suggestion
}
