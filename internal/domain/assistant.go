package domain

import "time"

type DialogRole string

const (
	RoleUser      DialogRole = "user"
	RoleAssistant DialogRole = "assistant"
)

// DialogMessage is one turn in an assistant dialog. Transcripts are
// append-only; messages are never edited or removed.
type DialogMessage struct {
	Role DialogRole
	Text string
	At   time.Time
}
