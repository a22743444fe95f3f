// Package assistant turns a generation request {type, data} into the chat
// messages sent to the LLM gateway. Every type validates its own input
// before anything leaves the server.
package assistant

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"growth_hub/internal/gateway"
)

// Generation types accepted by Build.
const (
	TypeMarketingCopy       = "marketing_copy"
	TypeChat                = "chat"
	TypeCampaignSuggestions = "campaign_suggestions"
	TypeProductDescription  = "product_description"
)

// Input limits, counted in characters.
const (
	MaxTextLen    = 2000
	MaxNameLen    = 200
	MaxHistory    = 20
	MaxListItems  = 20
	maxShortField = 50
)

// ErrUnknownType is returned for a type Build does not know.
var ErrUnknownType = errors.New("assistant: unknown generation type")

// ValidationError describes one invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("assistant: %s %s", e.Field, e.Reason)
}

type builder func(data map[string]any) ([]gateway.Message, error)

var builders = map[string]builder{
	TypeMarketingCopy:       marketingCopy,
	TypeChat:                chat,
	TypeCampaignSuggestions: campaignSuggestions,
	TypeProductDescription:  productDescription,
}

// Types lists the supported generation types in sorted order.
func Types() []string {
	types := make([]string, 0, len(builders))
	for t := range builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build validates data for kind and returns the messages to send upstream.
func Build(kind string, data map[string]any) ([]gateway.Message, error) {
	build, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	if data == nil {
		data = map[string]any{}
	}
	return build(data)
}

func marketingCopy(data map[string]any) ([]gateway.Message, error) {
	name, err := text(data, "product_name", MaxNameLen, true)
	if err != nil {
		return nil, err
	}
	description, err := text(data, "description", MaxTextLen, false)
	if err != nil {
		return nil, err
	}
	audience, err := text(data, "audience", MaxNameLen, false)
	if err != nil {
		return nil, err
	}
	tone, err := text(data, "tone", maxShortField, false)
	if err != nil {
		return nil, err
	}
	platform, err := text(data, "platform", maxShortField, false)
	if err != nil {
		return nil, err
	}
	if tone == "" {
		tone = "friendly"
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Write marketing copy for %q.", name)
	if description != "" {
		fmt.Fprintf(&user, "\nAbout the offer: %s", description)
	}
	if audience != "" {
		fmt.Fprintf(&user, "\nTarget audience: %s", audience)
	}
	if platform != "" {
		fmt.Fprintf(&user, "\nIt will be posted on %s; respect that platform's length and style.", platform)
	}
	fmt.Fprintf(&user, "\nTone: %s.", tone)

	return []gateway.Message{
		{Role: "system", Content: "You are a marketing copywriter for small businesses. Write punchy, honest copy with a clear call to action. Reply with the copy only."},
		{Role: "user", Content: user.String()},
	}, nil
}

func chat(data map[string]any) ([]gateway.Message, error) {
	message, err := text(data, "message", MaxTextLen, true)
	if err != nil {
		return nil, err
	}

	msgs := []gateway.Message{
		{Role: "system", Content: "You are a marketing assistant for small businesses: sellers, service providers and the investors who back them. Give practical, concise advice."},
	}

	raw, ok := data["history"]
	if ok && raw != nil {
		turns, ok := raw.([]any)
		if !ok {
			return nil, &ValidationError{Field: "history", Reason: "must be a list"}
		}
		if len(turns) > MaxHistory {
			return nil, &ValidationError{Field: "history", Reason: fmt.Sprintf("must have at most %d turns", MaxHistory)}
		}
		for i, turn := range turns {
			m, ok := turn.(map[string]any)
			if !ok {
				return nil, &ValidationError{Field: fmt.Sprintf("history[%d]", i), Reason: "must be an object"}
			}
			role, _ := m["role"].(string)
			if role != "user" && role != "assistant" {
				return nil, &ValidationError{Field: fmt.Sprintf("history[%d].role", i), Reason: "must be user or assistant"}
			}
			content, err := text(m, "content", MaxTextLen, true)
			if err != nil {
				var vErr *ValidationError
				if errors.As(err, &vErr) {
					vErr.Field = fmt.Sprintf("history[%d].%s", i, vErr.Field)
				}
				return nil, err
			}
			msgs = append(msgs, gateway.Message{Role: role, Content: content})
		}
	}

	return append(msgs, gateway.Message{Role: "user", Content: message}), nil
}

func campaignSuggestions(data map[string]any) ([]gateway.Message, error) {
	business, err := text(data, "business_name", MaxNameLen, true)
	if err != nil {
		return nil, err
	}
	goal, err := text(data, "goal", MaxTextLen, true)
	if err != nil {
		return nil, err
	}
	channels, err := list(data, "channels", maxShortField)
	if err != nil {
		return nil, err
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Business: %s\nGoal: %s", business, goal)
	if raw, ok := data["budget"]; ok && raw != nil {
		budget, ok := raw.(float64)
		if !ok || budget < 0 {
			return nil, &ValidationError{Field: "budget", Reason: "must be a non-negative number"}
		}
		fmt.Fprintf(&user, "\nBudget: %.2f", budget)
	}
	if len(channels) > 0 {
		fmt.Fprintf(&user, "\nChannels: %s", strings.Join(channels, ", "))
	}
	user.WriteString("\nSuggest three ad campaigns. For each give a name, the channel, the audience, a headline and how to split the budget.")

	return []gateway.Message{
		{Role: "system", Content: "You plan small-business ad campaigns. Be specific and realistic about what the budget can buy."},
		{Role: "user", Content: user.String()},
	}, nil
}

func productDescription(data map[string]any) ([]gateway.Message, error) {
	name, err := text(data, "name", MaxNameLen, true)
	if err != nil {
		return nil, err
	}
	category, err := text(data, "category", MaxNameLen, false)
	if err != nil {
		return nil, err
	}
	features, err := list(data, "features", MaxNameLen)
	if err != nil {
		return nil, err
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Write a product description for %q.", name)
	if category != "" {
		fmt.Fprintf(&user, "\nCategory: %s", category)
	}
	for _, f := range features {
		fmt.Fprintf(&user, "\n- %s", f)
	}

	return []gateway.Message{
		{Role: "system", Content: "You write clear marketplace listings. Two short paragraphs, no invented specifications."},
		{Role: "user", Content: user.String()},
	}, nil
}

// text reads a string field, trimmed, enforcing a character limit.
func text(data map[string]any, field string, max int, required bool) (string, error) {
	raw, ok := data[field]
	if !ok || raw == nil {
		if required {
			return "", &ValidationError{Field: field, Reason: "is required"}
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Field: field, Reason: "must be a string"}
	}
	s = strings.TrimSpace(s)
	if s == "" && required {
		return "", &ValidationError{Field: field, Reason: "is required"}
	}
	if utf8.RuneCountInString(s) > max {
		return "", &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", max)}
	}
	return s, nil
}

// list reads an optional list of strings.
func list(data map[string]any, field string, maxItemLen int) ([]string, error) {
	raw, ok := data[field]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &ValidationError{Field: field, Reason: "must be a list"}
	}
	if len(items) > MaxListItems {
		return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("must have at most %d items", MaxListItems)}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: "must be a string"}
		}
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > maxItemLen {
			return nil, &ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: fmt.Sprintf("must be at most %d characters", maxItemLen)}
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
