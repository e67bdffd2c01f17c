package ai

import (
	"fmt"
	"strings"
)

// OutcomeKind tags the shape a provider integration surfaced its final
// answer in.
type OutcomeKind int

const (
	// KindFinalText means a dedicated final-output field was present.
	KindFinalText OutcomeKind = iota
	// KindMessageList means the answer was spread across message contents.
	KindMessageList
	// KindRaw means no recognizable shape; the opaque value is kept.
	KindRaw
)

// Outcome is the tagged union produced at the provider-integration
// boundary. Different integrations surface the final answer under
// different field names; all shape-sniffing happens in Interpret, and
// Normalize is the single place that flattens an Outcome to text.
type Outcome struct {
	Kind     OutcomeKind
	Text     string
	Messages []string
	Value    interface{}
}

// Interpret classifies a provider response into an Outcome.
// Preference order: the response's own content field, then well-known
// final-output keys in the raw payload, then message contents, then
// the opaque value itself.
func Interpret(resp *ChatResponse) Outcome {
	if resp == nil {
		return Outcome{Kind: KindRaw, Value: nil}
	}
	if resp.Content != "" {
		return Outcome{Kind: KindFinalText, Text: resp.Content}
	}
	return interpretValue(resp.Raw)
}

func interpretValue(v interface{}) Outcome {
	switch raw := v.(type) {
	case string:
		return Outcome{Kind: KindFinalText, Text: raw}
	case map[string]interface{}:
		for _, key := range []string{"output", "output_text", "final_output"} {
			if s, ok := raw[key].(string); ok && s != "" {
				return Outcome{Kind: KindFinalText, Text: s}
			}
		}
		if msgs, ok := raw["messages"].([]interface{}); ok {
			var texts []string
			for _, m := range msgs {
				if t := messageText(m); t != "" {
					texts = append(texts, t)
				}
			}
			if len(texts) > 0 {
				return Outcome{Kind: KindMessageList, Messages: texts}
			}
		}
		return Outcome{Kind: KindRaw, Value: raw}
	case []Message:
		var texts []string
		for _, m := range raw {
			if m.Content != "" {
				texts = append(texts, m.Content)
			}
		}
		if len(texts) > 0 {
			return Outcome{Kind: KindMessageList, Messages: texts}
		}
		return Outcome{Kind: KindRaw, Value: raw}
	case []string:
		if len(raw) > 0 {
			return Outcome{Kind: KindMessageList, Messages: raw}
		}
		return Outcome{Kind: KindRaw, Value: raw}
	default:
		return Outcome{Kind: KindRaw, Value: v}
	}
}

func messageText(m interface{}) string {
	switch msg := m.(type) {
	case string:
		return msg
	case Message:
		return msg.Content
	case map[string]interface{}:
		if s, ok := msg["content"].(string); ok {
			return s
		}
	}
	return ""
}

// Normalize flattens an Outcome to a non-empty string. Shape
// mismatches never escape as errors; the worst case is the value's
// string form.
func (o Outcome) Normalize() string {
	switch o.Kind {
	case KindFinalText:
		if o.Text != "" {
			return o.Text
		}
	case KindMessageList:
		if joined := strings.Join(o.Messages, "\n"); joined != "" {
			return joined
		}
	}
	if o.Value != nil {
		if s := fmt.Sprintf("%v", o.Value); s != "" {
			return s
		}
	}
	return "(empty response)"
}
