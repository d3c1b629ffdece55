package commands

// Command describes a slash command shown in the Telegram command menu.
type Command struct {
	Description string
	// AdminOnly commands are listed only in the operator's chat.
	AdminOnly bool
	Hidden    bool
}
