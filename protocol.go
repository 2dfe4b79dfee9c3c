package drv8825

// Command flags understood by the firmware. A command is the flag, optional space-separated
// arguments, and a newline
const (
	FlagEnable    byte = 'E'
	FlagDisable   byte = 'D'
	FlagDirection byte = 'R'
	FlagForward   byte = 'F'
	FlagBackward  byte = 'B'
	FlagStatus    byte = 'S'
	FlagVerbose   byte = 'V'
	FlagHelp      byte = 'H'
)

// The last line of every reply starts with one of these. The reply is terminated by TerminationChar
const (
	ReplyOK    = "ok"
	ReplyError = "error: "
)
