// Package chat turns abstract chat events into replies. It knows nothing about
// any particular messaging platform; transports adapt their wire format to
// Inbound and render Reply back.
package chat

// Sender identifies who sent an event
type Sender struct {
	ExternalID string
	Handle     string
}

// Event is one inbound chat event. The set is closed: Command, Text, Callback.
type Event interface {
	isEvent()
}

// Command is a slash command such as /start. Name has no leading slash.
type Command struct {
	Name string
	Args []string
}

// Text is a free-text message
type Text struct {
	Body string
}

// Callback is a button press carrying the button's token
type Callback struct {
	Token string
}

func (Command) isEvent()  {}
func (Text) isEvent()     {}
func (Callback) isEvent() {}

// Inbound is an event together with its sender
type Inbound struct {
	Sender Sender
	Event  Event
}

// Button is a labelled action; Token is sent back in a Callback when pressed
type Button struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Reply is the response to one inbound event. Keyboard rows are shown in order.
type Reply struct {
	Text     string     `json:"text"`
	Keyboard [][]Button `json:"keyboard,omitempty"`
}
