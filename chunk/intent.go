package chunk

import "strings"

// Intent tags attached to span metadata and surfaced in the context prefix.
const (
	IntentDocumentCheck      = "document_check"
	IntentTravelPlan         = "travel_plan"
	IntentPaymentInstruction = "payment_instruction"
	IntentProfileUpdate      = "profile_update"
	IntentGeneral            = "general"
)

// intentRules are evaluated in order; the first rule with a keyword hit wins.
var intentRules = []struct {
	tag      string
	keywords []string
}{
	{
		tag: IntentDocumentCheck,
		keywords: []string{
			"护照", "签证", "证件", "过期", "续签",
			"passport", "visa", "expire", "renew",
		},
	},
	{
		tag: IntentTravelPlan,
		keywords: []string{
			"东京", "出国", "机票", "航班", "酒店", "行程", "旅行", "旅游",
			"flight", "hotel", "itinerary", "trip", "travel",
		},
	},
	{
		tag: IntentPaymentInstruction,
		keywords: []string{
			"转账", "汇款", "付款", "账单", "还款",
			"transfer", "payment", "remittance", "bill", "repay",
		},
	},
	{
		tag: IntentProfileUpdate,
		keywords: []string{
			"地址", "住址", "电话", "邮箱",
			"address", "phone", "email",
		},
	},
}

// DetectIntent classifies span text with ordered keyword rules.
// Returns IntentGeneral when no rule matches.
func DetectIntent(text string) string {
	lowered := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				return rule.tag
			}
		}
	}
	return IntentGeneral
}
