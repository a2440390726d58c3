// File: control/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package control exposes runtime observability for event loop threads:
// Prometheus collectors and named debug vars.
package control
