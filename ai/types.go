package ai

// TopicLabels defines the canonical topic vocabulary for labelers.
// Prompt construction and rule-based fallbacks share this list.
var TopicLabels = []string{
	"document_check",
	"travel_plan",
	"payment_instruction",
	"profile_update",
	"general",
}
