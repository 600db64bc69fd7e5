package console

/*
group all simulator output related functions here
The idea is to run the console in a goroutine

requested functionality:
	- autoscroll buffer
	- display simulator status messages
	- other elements of the simulator should be able to send output
	  to the console using a string channel
*/

// Console is the output sink of the simulator. Two implementations are
// available: a gocui view backed one and a plain stdout one.
type Console interface {

	// WriteConsole displays a string on the console
	WriteConsole(msg string) error
}
