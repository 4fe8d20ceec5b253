package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github/itish2003/invoicechat/models"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// maxToolTurns bounds how many rounds of function calls one answer may take.
const maxToolTurns = 6

const noAnswer = "I'm sorry, I couldn't generate a response."

// ToolExecutor runs a function the model asked for and returns its result.
type ToolExecutor interface {
	CallTool(ctx context.Context, name string, args map[string]interface{}) map[string]interface{}
}

// AnswerGenerator produces the assistant's answer for a prepared prompt.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, prompt string, history []models.HistoryMessage, tools ToolExecutor) (string, error)
}

type geminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	log         logrus.FieldLogger
}

// NewGeminiGenerator answers through a fresh Gemini chat per question,
// seeded with the caller's history.
func NewGeminiGenerator(client *genai.Client, model string, temperature float64, log logrus.FieldLogger) AnswerGenerator {
	return &geminiGenerator{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		log:         log.WithField("component", "generator"),
	}
}

func (g *geminiGenerator) GenerateAnswer(ctx context.Context, prompt string, history []models.HistoryMessage, tools ToolExecutor) (string, error) {
	chat, err := g.client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(g.temperature),
		Tools:             GetAllTools(),
		SystemInstruction: GetSystemPrompt(),
	}, historyToContents(history))
	if err != nil {
		return "", fmt.Errorf("could not start chat session: %w", err)
	}

	parts := []genai.Part{{Text: prompt}}
	for turn := 0; turn < maxToolTurns; turn++ {
		result, err := chat.SendMessage(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("gemini api call failed: %w", err)
		}

		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
			return noAnswer, nil
		}

		responses := g.runFunctionCalls(ctx, result.Candidates[0].Content.Parts, tools)
		if len(responses) > 0 {
			parts = responses
			continue
		}

		// No function call, so this is the final answer.
		var answer strings.Builder
		for _, p := range result.Candidates[0].Content.Parts {
			if p.Text != "" {
				answer.WriteString(p.Text)
			}
		}
		return answer.String(), nil
	}
	return "", errors.New("gemini kept calling tools without answering")
}

func (g *geminiGenerator) runFunctionCalls(ctx context.Context, parts []*genai.Part, tools ToolExecutor) []genai.Part {
	var responses []genai.Part
	for _, part := range parts {
		if part == nil || part.FunctionCall == nil {
			continue
		}
		call := part.FunctionCall
		g.log.WithFields(logrus.Fields{"function": call.Name, "args": call.Args}).Info("Model requested a function call")

		responses = append(responses, genai.Part{FunctionResponse: &genai.FunctionResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: tools.CallTool(ctx, call.Name, call.Args),
		}})
	}
	return responses
}

func historyToContents(history []models.HistoryMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		var role genai.Role = genai.RoleUser
		if msg.Role == "assistant" || msg.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}
