package domain

// Command is a unit of work flowing through the relay pipeline. All
// commands for the shared channel are funneled into one sequencing worker
// so that the transcript order and every subscriber's delivery order are
// the same total order.
type Command interface {
	ConnectionID() string
}

// PostMessageCommand carries a chat message from an identified connection.
// Lang is filled by the moderation stage.
type PostMessageCommand struct {
	ConnID  string
	Sender  string
	Content string
	Lang    string
}

func (c PostMessageCommand) ConnectionID() string { return c.ConnID }

// SubscribeCommand attaches a connection's sink to the hub and announces
// the join. Processed by the sequencing worker so that the new subscriber
// observes its own JOIN before any later event.
type SubscribeCommand struct {
	ConnID      string
	DisplayName string
	Sink        EventSink
}

func (c SubscribeCommand) ConnectionID() string { return c.ConnID }

// UnsubscribeCommand detaches a connection and announces the departure.
// The departing connection is unsubscribed before the LEAVE broadcast, so
// it never observes its own departure.
type UnsubscribeCommand struct {
	ConnID      string
	DisplayName string
}

func (c UnsubscribeCommand) ConnectionID() string { return c.ConnID }
