// Package protocol implements the binary wire protocol between a urlsync
// server and the thin browser client.
//
// The protocol carries exactly two flows: location patches from server to
// client (push/replace the address bar, restore a scroll offset) and
// location events from client to server (the handshake's initial location,
// popstate after back/forward, scroll reports).
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameEvent (0x01): Client → Server location events
//   - FramePatches (0x02): Server → Client location patches
//   - FrameControl (0x03): Ping/pong heartbeat
//
// # Encoding
//
//   - Varint: Compact encoding for small integers (protobuf-style)
//   - Length-prefixed: Strings prefixed with varint length
//   - Big-endian: Fixed-width integers (uint16)
//
// Decoding enforces allocation limits so a malicious length prefix cannot
// force a large allocation.
package protocol
