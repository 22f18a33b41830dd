package broadcast

import "github.com/rs/zerolog/log"

const (
	EventClearHistory = "clear_history"
	EventNewMessage   = "new_message"
)

// Broadcaster fans events out to the clients of one conversation. The real-time
// transport lives outside this module; implementations adapt it.
type Broadcaster interface {
	EmitToConversation(convoID, event string, payload any)
}

// LogBroadcaster records events for deployments without a transport attached.
type LogBroadcaster struct{}

func (LogBroadcaster) EmitToConversation(convoID, event string, payload any) {
	log.Debug().Str("convo_id", convoID).Str("event", event).Msg("broadcast event")
}
