package fx

import "errors"

// ErrNotPrepared is returned by Process when the processor has not seen a
// successful Prepare call (or was destroyed). The audio path must never
// operate on unsized delay and filter state.
var ErrNotPrepared = errors.New("fx: processor not prepared")
