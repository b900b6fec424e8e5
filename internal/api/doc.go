// Package api defines the transport types shared between the daemon's HTTP
// surface and the CLI client, plus a thin service layer that maps project
// records into those types.
package api
