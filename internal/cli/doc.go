// Package cli implements the rtop command line.
//
// There is a single root command. Without flags it loads the config, opens
// the error log and runs the dashboard until the user quits:
//
//	rtop            - start the dashboard
//	rtop -m         - start without the memory and net boxes
//	rtop --debug    - log at DEBUG level
//	rtop -v         - print version information
//
// Startup failures print a pointer to the error log and exit with status 1.
package cli
