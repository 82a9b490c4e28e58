// Package search answers open questions with Gemini, phrased for
// speech rather than screens.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/emberhome/ember/domain/repositories"
)

const systemPrompt = "You are a voice assistant. Answer the question in one or two short " +
	"spoken sentences. No markdown, no lists, no URLs. If you do not know, say so plainly."

// Gemini implements AnswerService.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.AnswerService = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (g *Gemini) Answer(ctx context.Context, question string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.3),
		MaxOutputTokens:   256,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(question), config)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	answer := strings.TrimSpace(response.Text())
	if answer == "" {
		return "", fmt.Errorf("empty answer from model")
	}

	g.logger.Debug("answered question",
		zap.String("question", question),
		zap.Int("answerLen", len(answer)))
	return answer, nil
}
