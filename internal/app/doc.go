// Package app contains the application logic around the evaluation engine.
// It defines the App struct and its configuration, loads snapshots from
// files, renders results and serves evaluations over HTTP, decoupled from
// any specific entrypoint like a CLI.
package app
