// Package webuictl manages an Open WebUI container through a container
// engine CLI.
package webuictl

// Version is the webuictl release version.
const Version = "0.3.0"
