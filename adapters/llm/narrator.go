package llm

import (
	"context"
	"fmt"
	"strings"

	"datasense/domain/usage"
	"datasense/ports"
)

const narrativeSystemPrompt = "You write short, plain-language data briefings for business users. " +
	"Do not invent numbers that are not in the brief."

const narrativePrompt = `Write a narrative of at most three short paragraphs explaining what this analysis found
and what the reader might look into next.

%s`

// Narrator writes a prose narrative from a markdown analysis brief
type Narrator struct {
	config   Config
	client   ports.LLMClient
	recorder ports.UsageRecorder
}

// NewNarrator creates a narrator on the given client
func NewNarrator(config Config, client ports.LLMClient, recorder ports.UsageRecorder) *Narrator {
	return &Narrator{config: config, client: client, recorder: recorder}
}

func (n *Narrator) Narrate(ctx context.Context, brief string) (string, error) {
	if strings.TrimSpace(brief) == "" {
		return "", fmt.Errorf("brief is empty")
	}
	resp, err := n.client.ChatCompletionWithUsage(ctx, n.config.Model, narrativeSystemPrompt, fmt.Sprintf(narrativePrompt, brief), n.config.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("narrative request: %w", err)
	}
	recordUsage(ctx, n.recorder, usage.OpNarrative, resp.Usage)
	return strings.TrimSpace(resp.Content), nil
}
