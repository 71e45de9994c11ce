package assets

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// StaleLockThreshold is the age after which a deploy lock is assumed abandoned.
const StaleLockThreshold = 10 * time.Minute

// ErrLockHeld is returned when another deploy of the same file is in progress.
var ErrLockHeld = errors.New("deploy lock held: another deploy of this file is in progress")

// fileLock is an O_EXCL lock file next to a deploy destination.
type fileLock struct {
	path string
	file *os.File
}

// acquireLock creates path exclusively. A lock older than StaleLockThreshold,
// or one whose recorded holder pid no longer exists, is removed and creation
// is retried once.
func acquireLock(path string) (*fileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if stale, _ := isLockStale(path); !stale {
			return nil, ErrLockHeld
		}
		os.Remove(path)
		file, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err != nil {
			return nil, ErrLockHeld
		}
	}

	data := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(data); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	return &fileLock{path: path, file: file}, nil
}

// release closes and removes the lock file.
func (l *fileLock) release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

func isLockStale(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if time.Since(info.ModTime()) > StaleLockThreshold {
		return true, nil
	}
	pid, ok := lockHolder(path)
	if !ok || pid == os.Getpid() {
		return false, nil
	}
	alive, err := process.PidExists(int32(pid))
	if err != nil {
		return false, err
	}
	return !alive, nil
}

// lockHolder reads the pid line of a lock file. A lock still being written
// has no pid yet and reports ok=false.
func lockHolder(path string) (int, bool) {
	file, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		value, found := strings.CutPrefix(scanner.Text(), "pid=")
		if !found {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || pid <= 0 {
			return 0, false
		}
		return pid, true
	}
	return 0, false
}
