package stratus

import "sync"

var (
	initOnce    sync.Once
	initSession *Session
	initErr     error
)

// Init opens the process-wide session on first use. Later calls return the
// same session and error without resolving, loading or logging again; their
// options are ignored.
func Init(opts Options) (*Session, error) {
	initOnce.Do(func() {
		initSession, initErr = Open(opts)
	})
	return initSession, initErr
}
