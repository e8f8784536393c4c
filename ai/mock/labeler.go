package mock

import (
	"context"
	"strings"
)

// MockTopicLabeler is a test double for ai.TopicLabeler.
// It allows custom behavior injection via function fields.
type MockTopicLabeler struct {
	// LabelTopicFunc is called by LabelTopic if set.
	// If nil, uses default keyword-rule behavior.
	LabelTopicFunc func(ctx context.Context, text string) (string, error)

	callCount int
}

// NewMockTopicLabeler creates a mock labeler with default keyword-rule behavior.
// Note: Returns concrete type to allow test assertions via GetMockLabeler().
func NewMockTopicLabeler() *MockTopicLabeler {
	return &MockTopicLabeler{}
}

// labelRules mirror the production keyword heuristics closely enough for
// ranking and prefix tests.
var labelRules = []struct {
	label    string
	keywords []string
}{
	{"document_check", []string{"护照", "签证", "passport", "visa"}},
	{"travel_plan", []string{"机票", "航班", "flight", "hotel", "trip"}},
	{"payment_instruction", []string{"转账", "付款", "transfer", "payment"}},
	{"profile_update", []string{"地址", "电话", "address", "phone", "email"}},
}

// LabelTopic returns a deterministic rule-based label.
func (m *MockTopicLabeler) LabelTopic(ctx context.Context, text string) (string, error) {
	m.callCount++

	if m.LabelTopicFunc != nil {
		return m.LabelTopicFunc(ctx, text)
	}

	lowered := strings.ToLower(text)
	for _, rule := range labelRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.label, nil
			}
		}
	}
	return "general", nil
}

// CallCount returns the number of times LabelTopic was called.
func (m *MockTopicLabeler) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockTopicLabeler) Reset() {
	m.callCount = 0
	m.LabelTopicFunc = nil
}
