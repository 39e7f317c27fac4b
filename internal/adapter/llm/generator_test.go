package llm

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/eslsoft/kyoshi/internal/entity"
	"github.com/eslsoft/kyoshi/internal/usecase"
)

type stubModel struct {
	reply    string
	messages []llms.MessageContent
}

func (m *stubModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = messages
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.reply}},
	}, nil
}

func (m *stubModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return m.reply, nil
}

func newTestGenerator(reply string) (*Generator, *stubModel) {
	model := &stubModel{reply: reply}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewGenerator(model, 0.7, logger), model
}

func generatorInput() usecase.GeneratorInput {
	return usecase.GeneratorInput{
		ChecklistText: "Lesson day 1: Greetings\n[>] item_001 (teach) hello\n",
		RecentMessages: []entity.ChatMessage{
			{Role: entity.RoleTutor, Text: "Let's learn こんにちは."},
			{Role: entity.RoleStudent, Text: "got it"},
		},
		StudentInput: "konnichiwa means hello",
		CurrentContent: &entity.ItemContent{
			Vocabulary: &entity.VocabularyItem{ID: "v1", Japanese: "こんにちは", Romaji: "konnichiwa", English: "hello"},
		},
	}
}

func TestRespondParsesAction(t *testing.T) {
	g, model := newTestGenerator(`{"message": "Exactly right!", "checklist_action": "complete"}`)

	reply, err := g.Respond(context.Background(), generatorInput())
	require.NoError(t, err)
	assert.Equal(t, "Exactly right!", reply.Message)
	assert.Equal(t, usecase.ActionComplete, reply.Action)

	// System context, two history turns, the new student input.
	require.Len(t, model.messages, 5)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, schema.ChatMessageTypeAI, model.messages[2].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.messages[4].Role)
}

func TestRespondParsesInsert(t *testing.T) {
	g, _ := newTestGenerator(`{"message": "Good question.", "checklist_action": "insert", "insert_item": {"display_text": "Clarify: は vs が", "content": "notes"}}`)

	reply, err := g.Respond(context.Background(), generatorInput())
	require.NoError(t, err)
	assert.Equal(t, usecase.ActionInsert, reply.Action)
	require.NotNil(t, reply.InsertItem)
	assert.Equal(t, "Clarify: は vs が", reply.InsertItem.DisplayText)
}

func TestRespondInsertWithoutItemDegrades(t *testing.T) {
	g, _ := newTestGenerator(`{"message": "Hmm.", "checklist_action": "insert"}`)

	reply, err := g.Respond(context.Background(), generatorInput())
	require.NoError(t, err)
	assert.Equal(t, usecase.ActionNone, reply.Action)
	assert.Nil(t, reply.InsertItem)
}

func TestRespondStripsCodeFence(t *testing.T) {
	g, _ := newTestGenerator("```json\n{\"message\": \"Nice.\", \"checklist_action\": \"complete\"}\n```")

	reply, err := g.Respond(context.Background(), generatorInput())
	require.NoError(t, err)
	assert.Equal(t, "Nice.", reply.Message)
	assert.Equal(t, usecase.ActionComplete, reply.Action)
}

func TestRespondPlainTextFallback(t *testing.T) {
	g, _ := newTestGenerator("Great job, let's move on!")

	reply, err := g.Respond(context.Background(), generatorInput())
	require.NoError(t, err)
	assert.Equal(t, "Great job, let's move on!", reply.Message)
	assert.Equal(t, usecase.ActionNone, reply.Action, "plain text can never mutate the plan")
}

func TestRespondUnknownActionDegrades(t *testing.T) {
	g, _ := newTestGenerator(`{"message": "ok", "checklist_action": "restart"}`)

	reply, err := g.Respond(context.Background(), generatorInput())
	require.NoError(t, err)
	assert.Equal(t, usecase.ActionNone, reply.Action)
}
