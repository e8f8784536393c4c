package chunk

import (
	"strings"
	"time"
)

// At most this many participants are named in the context prefix.
const maxPrefixParticipants = 3

// contextPrefix synthesizes the retrieval prefix prepended to span text,
// shaped like "[context: 2026-08-01 alice,bob topic:document_check] ".
// Unknown fields degrade to the literal "unknown".
func contextPrefix(start time.Time, participants []string, intent string) string {
	date := "unknown"
	if !start.IsZero() {
		date = start.Format(time.DateOnly)
	}

	who := "unknown"
	if len(participants) > 0 {
		shown := participants
		if len(shown) > maxPrefixParticipants {
			shown = shown[:maxPrefixParticipants]
		}
		who = strings.Join(shown, ",")
	}

	if intent == "" {
		intent = IntentGeneral
	}

	return "[context: " + date + " " + who + " topic:" + intent + "] "
}
