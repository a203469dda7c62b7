package core

import "errors"

// ErrDuplicateConnection means a connection already has a live
// session. With correct lifecycle handling this never happens; it is a
// defensive check, not an expected runtime path, and it never crashes
// the process.
var ErrDuplicateConnection = errors.New("connection already has a session")
