package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/roach88/gauntlet/internal/domain"
)

// Lock acquisition policy. Acquisition backs off geometrically between
// attempts; a lock file untouched for longer than lockStaleAfter is
// assumed to belong to a dead process and is broken.
const (
	lockRetries    = 100
	lockMinBackoff = 20 * time.Millisecond
	lockMaxBackoff = 2 * time.Second
	lockBackoff    = 1.2
	lockStaleAfter = 10 * time.Second
)

// fileLock is a filesystem-level advisory lock implemented as a sidecar
// file created with O_EXCL. It guards the document against concurrent
// writers from cooperating processes; in-process exclusion is handled
// separately by the store mutex.
type fileLock struct {
	path string
}

// acquire takes the lock, retrying with bounded backoff. It returns a
// LOCK_TIMEOUT domain error once the retry budget is exhausted.
func (l *fileLock) acquire(ctx context.Context) error {
	backoff := lockMinBackoff

	for attempt := 0; attempt < lockRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
			return f.Close()
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("acquire lock %s: %w", l.path, err)
		}

		l.breakIfStale()

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = time.Duration(float64(backoff) * lockBackoff)
		if backoff > lockMaxBackoff {
			backoff = lockMaxBackoff
		}
	}

	return &domain.Error{
		Code:    domain.ErrCodeLockTimeout,
		Message: fmt.Sprintf("could not acquire %s after %d attempts", l.path, lockRetries),
	}
}

// breakIfStale removes a lock file whose holder has apparently died.
// Best effort: a racing removal is harmless, the next acquire attempt
// re-checks.
func (l *fileLock) breakIfStale() {
	info, err := os.Stat(l.path)
	if err != nil {
		return
	}
	if time.Since(info.ModTime()) > lockStaleAfter {
		_ = os.Remove(l.path)
	}
}

// release drops the lock.
func (l *fileLock) release() {
	_ = os.Remove(l.path)
}
