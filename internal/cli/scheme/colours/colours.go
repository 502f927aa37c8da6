package colours

import "github.com/fatih/color"

// Console colours, one per kind of output.
var (
	Heading = color.New(color.FgCyan, color.Bold)
	Section = color.New(color.FgMagenta, color.Bold)
	Prompt  = color.New(color.FgGreen, color.Bold)

	// Item ids are coloured by availability.
	Available = color.New(color.FgGreen)
	Borrowed  = color.New(color.FgYellow)

	Success = color.New(color.FgGreen)
	Fine    = color.New(color.FgYellow, color.Bold)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed, color.Bold)
	Info    = color.New(color.FgBlue)
)
