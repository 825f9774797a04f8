package types

import "fmt"

// BlockCursor is the poller's position in the block sequence. Index
// only ever moves forward, one block at a time. Hash is set once the
// block at Index has been resolved and cleared on advance.
type BlockCursor struct {
	Index uint32 `cramberry:"1"`
	Hash  *Hash  `cramberry:"2"`
}

// NewCursor returns an unresolved cursor at index.
func NewCursor(index uint32) BlockCursor {
	return BlockCursor{Index: index}
}

// Resolved returns a copy of the cursor carrying the block hash.
func (c BlockCursor) Resolved(h Hash) BlockCursor {
	return BlockCursor{Index: c.Index, Hash: &h}
}

// Advance returns the unresolved cursor for the next block.
func (c BlockCursor) Advance() BlockCursor {
	return BlockCursor{Index: c.Index + 1}
}

func (c BlockCursor) String() string {
	if c.Hash == nil {
		return fmt.Sprintf("#%d", c.Index)
	}
	return fmt.Sprintf("#%d (%s)", c.Index, c.Hash)
}
