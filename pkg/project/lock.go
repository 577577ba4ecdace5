package project

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultLockTimeout bounds how long Open waits for another process.
const DefaultLockTimeout = 5 * time.Second

const lockRetryInterval = 10 * time.Millisecond

var errLockTimeout = fmt.Errorf("lock timeout")

// fileLock is an exclusive flock on a sidecar .lock file.
type fileLock struct {
	path string
	file *os.File
}

// acquireLock takes an exclusive lock on path+".lock", retrying until the
// timeout expires or ctx is done.
func acquireLock(ctx context.Context, path string, timeout time.Duration) (*fileLock, error) {
	lockPath := path + ".lock"

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	for {
		err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &fileLock{path: lockPath, file: file}, nil
		}
		if err != unix.EWOULDBLOCK && err != unix.EINTR {
			_ = file.Close()
			return nil, err
		}
		if time.Now().After(deadline) {
			_ = file.Close()
			return nil, errLockTimeout
		}

		select {
		case <-ctx.Done():
			_ = file.Close()
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

// release drops the lock. The lock file itself is left in place so that a
// concurrent opener never locks an unlinked inode.
func (l *fileLock) release() error {
	if l.file == nil {
		return nil
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	return err
}
