package chainxtgrpc

import "github.com/blockberries/chainxt/types"

// Request and response wrappers for the Node service. They exist only
// at the gRPC serialization boundary.

type ResolveBlockHashRequest struct {
	Index uint32 `cramberry:"1"`
}

// ResolveBlockHashResponse carries the hash when Found is set. An
// unproduced block is Found=false, not an error.
type ResolveBlockHashResponse struct {
	Found bool       `cramberry:"1"`
	Hash  types.Hash `cramberry:"2"`
}

type FetchEventLogRequest struct {
	Hash types.Hash `cramberry:"1"`
}

// EventLogEntry is one streamed log entry, still in its compact
// encoding. Parsing happens on the client so a corrupt entry only
// affects itself.
type EventLogEntry struct {
	Data []byte `cramberry:"1"`
}

type SubmitRequest struct {
	Payload []byte `cramberry:"1"`
}
