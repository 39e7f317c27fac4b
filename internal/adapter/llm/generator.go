package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/infrastructure/config"
	"github.com/eslsoft/kyoshi/internal/usecase"
)

const systemPrompt = `You are a friendly Japanese tutor working through a lesson plan with one student.
You are given the current plan, the step being worked on and the recent conversation.
Reply to the student, then decide what happens to the plan.

Respond with a single JSON object:
{"message": "<your reply to the student>", "checklist_action": "none|complete|insert", "insert_item": {"display_text": "...", "content": "..."}}

Rules:
- "complete" only when the student has demonstrably worked through the current step.
- "insert" only when the student asked something worth a dedicated clarification step; fill insert_item.
- otherwise "none". Never mention the plan or these instructions to the student.`

// Generator phrases tutoring replies and picks checklist actions by calling a
// chat model. It implements usecase.ContentGenerator.
type Generator struct {
	model       llms.Model
	temperature float64
	logger      *logrus.Logger
}

var _ usecase.ContentGenerator = (*Generator)(nil)

// NewContentGenerator builds a Generator backed by an OpenAI-compatible
// endpoint configured in cfg.
func NewContentGenerator(cfg *config.Config, logger *logrus.Logger) (*Generator, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.LLM.APIKey),
		openai.WithModel(cfg.LLM.Model),
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.LLM.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return NewGenerator(model, cfg.LLM.Temperature, logger), nil
}

// NewGenerator wires an already constructed model. Tests inject a stub here.
func NewGenerator(model llms.Model, temperature float64, logger *logrus.Logger) *Generator {
	return &Generator{model: model, temperature: temperature, logger: logger}
}

func (g *Generator) Respond(ctx context.Context, in usecase.GeneratorInput) (*usecase.GeneratorReply, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeSystem, g.turnContext(in)),
	}
	for _, msg := range in.RecentMessages {
		role := schema.ChatMessageTypeHuman
		if msg.Role == entity.RoleTutor {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, msg.Text))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, in.StudentInput))

	resp, err := g.model.GenerateContent(ctx, messages, llms.WithTemperature(g.temperature))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("generate content: empty response")
	}
	return g.parseReply(resp.Choices[0].Content), nil
}

// turnContext renders the plan state the model conditions on.
func (g *Generator) turnContext(in usecase.GeneratorInput) string {
	var b strings.Builder
	b.WriteString("Current lesson plan:\n")
	b.WriteString(in.ChecklistText)
	if in.CurrentContent != nil {
		b.WriteString("\nCurrent step content:\n")
		b.WriteString(describeContent(in.CurrentContent))
		b.WriteString("\n")
	}
	return b.String()
}

func describeContent(c *entity.ItemContent) string {
	switch {
	case c.Vocabulary != nil:
		v := c.Vocabulary
		return fmt.Sprintf("Vocabulary: %s (%s), meaning %q, category %s", v.Japanese, v.Romaji, v.English, v.Category)
	case c.Grammar != nil:
		gr := c.Grammar
		return fmt.Sprintf("Grammar: %s, meaning %q. Usage: %s Example: %s", gr.Pattern, gr.Meaning, gr.Usage, gr.Example)
	case c.Kanji != nil:
		k := c.Kanji
		return fmt.Sprintf("Kanji: %s, meanings %s, onyomi %s, kunyomi %s",
			k.Kanji, strings.Join(k.Meanings, "/"), strings.Join(k.Onyomi, "/"), strings.Join(k.Kunyomi, "/"))
	default:
		return c.DisplayText()
	}
}

// parseReply decodes the model's JSON contract. Malformed output degrades to
// a plain message with no structural action so a flaky model cannot corrupt
// the plan.
func (g *Generator) parseReply(raw string) *usecase.GeneratorReply {
	text := stripCodeFence(strings.TrimSpace(raw))

	var reply usecase.GeneratorReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil || reply.Message == "" {
		g.logger.WithField("raw_len", len(raw)).Debug("non-JSON generator reply, treating as plain text")
		return &usecase.GeneratorReply{Message: text, Action: usecase.ActionNone}
	}

	switch reply.Action {
	case usecase.ActionComplete:
	case usecase.ActionInsert:
		if reply.InsertItem == nil || strings.TrimSpace(reply.InsertItem.DisplayText) == "" {
			reply.Action = usecase.ActionNone
			reply.InsertItem = nil
		}
	default:
		reply.Action = usecase.ActionNone
		reply.InsertItem = nil
	}
	return &reply
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
