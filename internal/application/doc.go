// Package application wires resolved settings, the logger and the API router
// into an HTTP server, keeping the main package focused on CLI parsing and
// process lifecycle.
package application
