// Package cli is responsible for parsing command-line arguments, loading
// layered configuration, and handling process-level concerns like exit
// codes. It translates commands and flags into calls on the app package.
package cli
