package bot

// Inbound is one text message delivered by the chat transport.
type Inbound struct {
	UserID    int64
	Username  string
	FirstName string
	Text      string
	IsStart   bool // the /start command
}

// Keyboard selects which reply keyboard accompanies a reply.
type Keyboard int

const (
	KeyboardMain Keyboard = iota
	KeyboardCats
)

// Reply is the outbound response to one inbound message. Every well-formed
// inbound message produces exactly one Reply.
type Reply struct {
	Text     string
	Markdown bool
	Keyboard Keyboard
}
