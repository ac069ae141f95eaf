package enrich

import (
	"fmt"
	"strings"
	"time"

	"github.com/rsarva/ContextAPI/internal/domain/ragModel"
	"github.com/rsarva/ContextAPI/internal/rag/llm"
)

func buildInstructions(now time.Time, sources []ragModel.Source) string {
	var sb strings.Builder
	sb.WriteString("You rewrite search queries for a retrieval system over ingested documents.\n")
	sb.WriteString("Today's date is ")
	sb.WriteString(now.UTC().Format("2006-01-02"))
	sb.WriteString(".\n\n")
	sb.WriteString("Rewrite the user's query into a self-contained search query: resolve pronouns ")
	sb.WriteString("and references using the conversation history, expand abbreviations, and keep the ")
	sb.WriteString("user's intent. Do not answer the question.\n\n")
	sb.WriteString("If the query contains a time expression (\"last week\", \"in March\", \"since 2024\"), ")
	sb.WriteString("resolve it against today's date into start_date and end_date as YYYY-MM-DD, and echo ")
	sb.WriteString("the original expression. Leave all three empty when the query has no time constraint.\n\n")

	if len(sources) > 0 {
		sb.WriteString("Known sources the user may refer to by name:\n")
		for _, s := range sources {
			sb.WriteString(fmt.Sprintf("- id %d: %s (%s)\n", s.Id, s.Name, s.Type))
		}
		sb.WriteString("When the query clearly names one of these sources, list its id in source_ids. ")
		sb.WriteString("Otherwise leave source_ids empty.\n")
	}
	return sb.String()
}

func buildPrompt(query string, history []ragModel.ChatMessage) string {
	var sb strings.Builder
	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, m := range history {
			sb.WriteString(m.Role)
			sb.WriteString(": ")
			sb.WriteString(m.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Query: ")
	sb.WriteString(query)
	return sb.String()
}

func responseSchema() *llm.Schema {
	return &llm.Schema{
		Type: "object",
		Properties: map[string]*llm.Schema{
			"enriched_query": {Type: "string"},
			"date_filter": {
				Type: "object",
				Properties: map[string]*llm.Schema{
					"start_date": {Type: "string"},
					"end_date":   {Type: "string"},
					"expression": {Type: "string"},
				},
			},
			"source_ids": {
				Type:  "array",
				Items: &llm.Schema{Type: "integer"},
			},
		},
		Required: []string{"enriched_query"},
	}
}
