// Package version contains information on the current version of the
// module's command-line tools. It is split out for easy reuse across
// cmd/predctl and cmd/predserver.
package version

// Current is the string representing the current version of boolpred.
const Current = "0.1.0"

// ServerCurrent is the string representing the current version of the
// predserver subscription server.
const ServerCurrent = "0.1.0"
