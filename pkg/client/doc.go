// Package client wraps the luminad HTTP API for CLI usage. Each method
// maps to one endpoint, decodes the response envelope, and turns a
// success=false answer into an error carrying the device's message.
package client
