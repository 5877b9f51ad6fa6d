// Package commands implements the rendezvous CLI.
//
// The device state lives encrypted in the home directory; every command
// loads it, performs its operation against the configured server, and
// saves it back. Pipeline events are printed to stdout as they arrive.
package commands
