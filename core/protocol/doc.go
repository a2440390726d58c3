// File: core/protocol/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package protocol holds the fixed-layout wire codecs shared by the protocol
// layer, written against the api.WireBuffer cursor capability.
package protocol
