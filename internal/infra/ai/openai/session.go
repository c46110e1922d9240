package openai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/legalsense/internal/domain/chat"
	"github.com/bryanwahyu/legalsense/internal/infra/ai/prompt"
)

// New opens a chat session over a stored document. The conversation history
// lives in the session; each Send replays it so the model keeps context.
func (c *Client) New(ctx context.Context, documentURL string) (chat.Session, error) {
	model := c.ChatModel
	if model == "" {
		model = c.Model
	}
	if model == "" {
		return nil, fmt.Errorf("no chat model configured")
	}
	return &session{
		client: c.Client,
		model:  model,
		messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.ChatSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.ChatDocumentPrompt(documentURL)},
			{Role: openai.ChatMessageRoleAssistant, Content: prompt.ChatOpeningReply()},
		},
	}, nil
}

type session struct {
	client *openai.Client
	model  string

	mu       sync.Mutex
	messages []openai.ChatCompletionMessage
}

func (s *session) Send(ctx context.Context, text string) (chat.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	req := openai.ChatCompletionRequest{
		Model:     s.model,
		Messages:  msgs,
		MaxTokens: maxTokens,
	}
	if isReasoningModel(s.model) {
		req.MaxTokens = 0
		req.MaxCompletionTokens = maxTokens
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return chat.Reply{}, mapErr(err)
	}
	if len(resp.Choices) == 0 {
		return chat.Reply{}, fmt.Errorf("empty chat completion")
	}

	msg := resp.Choices[0].Message
	s.messages = append(msgs, msg)

	text, cites := splitSources(msg.Content)
	return chat.Reply{Text: text, Citations: cites}, nil
}

// sourcesMarker opens the reference block ChatSystemPrompt asks the model to
// append after its answer.
const sourcesMarker = "SOURCES:"

// splitSources separates a reply's trailing reference block from the answer
// text. Bullets read "<title> | <url>"; a bullet without a pipe is taken as a
// bare URL so the deduplicator can title it from the hostname. The marker
// only counts at the start of a line, and replies without a block come back
// unchanged. Malformed bullets pass through as raw citations; filtering them
// is the deduplicator's job.
func splitSources(content string) (string, []chat.RawCitation) {
	idx := strings.LastIndex(content, sourcesMarker)
	if idx < 0 || (idx > 0 && content[idx-1] != '\n') {
		return content, nil
	}

	var cites []chat.RawCitation
	for _, line := range strings.Split(content[idx+len(sourcesMarker):], "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		line = strings.TrimSpace(line[1:])
		if line == "" {
			continue
		}
		title, uri := "", line
		if p := strings.LastIndex(line, "|"); p >= 0 {
			title = strings.TrimSpace(line[:p])
			uri = strings.TrimSpace(line[p+1:])
		}
		cites = append(cites, chat.RawCitation{URI: uri, Title: title})
	}
	return strings.TrimRight(content[:idx], "\n\t "), cites
}
