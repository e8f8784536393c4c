package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/recall/ai"
)

const topicResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "topic": {
      "type": "string",
      "pattern": "^[a-z]+(_[a-z]+)*$"
    }
  },
  "required": ["topic"],
  "additionalProperties": false
}`

const topicPromptTemplate = `Classify the topic of the given conversation excerpt and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Prefer one of the known topics: %s.
- If none of the known topics fits, invent a short lowercase label of 1-3 words joined by underscores.
- Classify by what the participants are trying to accomplish, not by incidental mentions.
- The excerpt may be in any language; the label is always English.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.



Example (document expiry):
Input: "user: 我的护照下个月到期 assistant: 建议尽快预约续签"
Output:
{"topic":"document_check"}

Example (trip booking, informal):
Input: "user: can u find me flights to tokyo next week"
Output:
{"topic":"travel_plan"}

Example (money movement):
Input: "user: 明天记得给房东转账三千 assistant: 好的，已经记下了"
Output:
{"topic":"payment_instruction"}

Example (contact details):
Input: "user: i moved, my new address is 12 Elm Street"
Output:
{"topic":"profile_update"}

Example (small talk):
Input: "user: nice weather today"
Output:
{"topic":"general"}`

// buildTopicPrompt creates the system prompt with the topic vocabulary embedded.
func buildTopicPrompt() string {
	return fmt.Sprintf(topicPromptTemplate,
		topicResponseSchema,
		strings.Join(ai.TopicLabels, ", "))
}
