package lock

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	syncwrapErrors "github.com/bashhack/syncwrap/internal/errors"
)

// ownerFileName is the file inside a held lock directory that names the holder.
const ownerFileName = "owner"

// Name parts of the files kept next to the lock path.
const (
	acquireInfix  = ".acquire-"
	staleInfix    = ".stale-"
	releaseInfix  = ".release-"
	reclaimSuffix = ".reclaim"
)

// orphanAge is how old an ownerless staging directory must be before sweep
// removes it.
const orphanAge = time.Minute

// maxContentionRounds bounds how often TryAcquire re-examines a lock
// directory that changed under it before reporting it as held.
const maxContentionRounds = 3

// DirLock is a mutex built on atomic directory creation.
//
// A staging directory containing an owner file is prepared next to the lock
// path and renamed onto it. rename(2) succeeds onto a missing or empty
// directory and fails onto a non-empty one, so the lock path is never
// observed empty while held, and an empty directory left behind by an
// interrupted holder is simply taken over. A lock directory whose owner
// process is gone is stale and is reclaimed by the next acquirer, under an
// advisory lock on <path>.reclaim that is never removed. Staging
// directories and tombstones left by dead processes are swept on acquire.
type DirLock struct {
	path  string
	opts  Options
	pid   int
	alive func(pid int) bool
}

// NewDirLock creates a DirLock for path.
func NewDirLock(path string, opts Options) *DirLock {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &DirLock{
		path:  path,
		opts:  opts,
		pid:   os.Getpid(),
		alive: processAlive,
	}
}

// Path returns the lock directory path.
func (l *DirLock) Path() string {
	return l.path
}

// Acquire blocks until the lock directory is ours or ctx is done.
func (l *DirLock) Acquire(ctx context.Context) (Guard, error) {
	return retryUntilAcquired(ctx, l.path, l.opts, l.TryAcquire)
}

// TryAcquire attempts to take the lock without waiting for a live holder.
func (l *DirLock) TryAcquire(ctx context.Context) (Guard, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(l.path, err)
	}
	if err := ensureParent(l.path); err != nil {
		return nil, unavailable(l.path, err)
	}
	l.sweep()

	staging, token, err := l.stage()
	if err != nil {
		return nil, unavailable(l.path, err)
	}
	// After a successful rename staging no longer exists.
	defer func() { _ = os.RemoveAll(staging) }()

	lastHolder := 0
	for round := 0; round < maxContentionRounds; round++ {
		err := os.Rename(staging, l.path)
		if err == nil {
			return newGuard(func() error { return l.release(token) }), nil
		}
		if !isOccupied(err) {
			return nil, unavailable(l.path, err)
		}

		holder, err := readOwner(l.path)
		switch {
		case err == nil && l.alive(holder.pid):
			return nil, held(l.path, holder.pid)
		case err != nil && !isNotExist(err):
			return nil, unavailable(l.path, err)
		}

		reclaimed, pid, err := l.reclaim(holder.token)
		if err != nil {
			return nil, unavailable(l.path, err)
		}
		if !reclaimed {
			return nil, held(l.path, pid)
		}
		lastHolder = holder.pid
	}

	return nil, held(l.path, lastHolder)
}

// stage creates a populated directory ready to be renamed onto the lock path.
func (l *DirLock) stage() (string, string, error) {
	dir := filepath.Dir(l.path)
	base := filepath.Base(l.path)

	staging, err := os.MkdirTemp(dir, base+acquireInfix)
	if err != nil {
		return "", "", syncwrapErrors.Wrap(err, "failed to create staging directory")
	}

	token := fmt.Sprintf("%d\n%s\n%s\n", l.pid, l.opts.Owner, uuid.NewString())
	if err := os.WriteFile(filepath.Join(staging, ownerFileName), []byte(token), 0644); err != nil {
		_ = os.RemoveAll(staging)
		return "", "", syncwrapErrors.Wrap(err, "failed to write lock owner")
	}

	return staging, token, nil
}

// reclaim removes a stale lock directory whose owner file contained
// staleToken. Reclaimers serialize on an advisory lock next to the lock
// path, and the owner is read again while it is held: a directory is only
// moved aside if it still carries staleToken. Only reclaimers move a
// directory they do not own, so nothing can replace it in between.
//
// reclaimed is true when the lock path may now be free. When another
// process is reclaiming, or a live holder took the lock first, reclaimed is
// false and livePid names the holder if known.
func (l *DirLock) reclaim(staleToken string) (reclaimed bool, livePid int, err error) {
	mu := flock.New(l.path+reclaimSuffix, flock.SetPermissions(0644))
	locked, err := mu.TryLock()
	if err != nil {
		return false, 0, syncwrapErrors.Wrap(err, "failed to lock stale lock reclaim")
	}
	if !locked {
		return false, 0, nil
	}
	defer func() { _ = mu.Unlock() }()

	current, err := readOwner(l.path)
	switch {
	case isNotExist(err):
		// Released, or an empty directory the next rename replaces.
		return true, 0, nil
	case err != nil:
		return false, 0, err
	case current.token != staleToken:
		if l.alive(current.pid) {
			return false, current.pid, nil
		}
		// Another holder died too; the caller's next round reclaims it.
		return true, 0, nil
	}

	if err := checkLockDir(l.path); err != nil {
		if isNotExist(err) {
			return true, 0, nil
		}
		return false, 0, err
	}

	tomb := fmt.Sprintf("%s%s%s", l.path, staleInfix, uuid.NewString())
	if err := os.Rename(l.path, tomb); err != nil {
		if isNotExist(err) {
			return true, 0, nil
		}
		return false, 0, syncwrapErrors.Wrap(err, "failed to move stale lock aside")
	}
	if err := removeLockDir(tomb); err != nil {
		return false, 0, syncwrapErrors.Wrap(err, "failed to remove stale lock")
	}
	return true, 0, nil
}

// sweep removes staging directories and tombstones left next to the lock
// path by processes that died mid-acquire or mid-release. Entries whose
// owner is alive are kept; entries without an owner file are kept until
// they are older than orphanAge, since a live acquirer may still be
// writing it.
func (l *DirLock) sweep() {
	dir := filepath.Dir(l.path)
	base := filepath.Base(l.path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || !isScratchName(base, entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		holder, err := readOwner(path)
		switch {
		case err == nil:
			if l.alive(holder.pid) {
				continue
			}
		case isNotExist(err):
			info, statErr := entry.Info()
			if statErr != nil || time.Since(info.ModTime()) < orphanAge {
				continue
			}
		default:
			continue
		}

		if checkLockDir(path) != nil {
			continue
		}
		_ = removeLockDir(path)
	}
}

// isScratchName reports whether name is a staging directory or tombstone
// of the lock named base.
func isScratchName(base, name string) bool {
	for _, infix := range []string{acquireInfix, staleInfix, releaseInfix} {
		if strings.HasPrefix(name, base+infix) {
			return true
		}
	}
	return false
}

// release removes the lock directory if it still belongs to us.
func (l *DirLock) release(token string) error {
	current, err := readOwner(l.path)
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return syncwrapErrors.NewLockError(l.path, l.pid,
			syncwrapErrors.Wrap(err, "failed to read lock owner"))
	}
	if current.token != token {
		return syncwrapErrors.NewLockError(l.path, current.pid,
			syncwrapErrors.New("lock was taken over by another process"))
	}

	tomb := fmt.Sprintf("%s%s%s", l.path, releaseInfix, uuid.NewString())
	if err := os.Rename(l.path, tomb); err != nil {
		if isNotExist(err) {
			return nil
		}
		return syncwrapErrors.NewLockError(l.path, l.pid,
			syncwrapErrors.Wrap(err, "failed to release lock"))
	}
	if err := removeLockDir(tomb); err != nil {
		return syncwrapErrors.NewLockError(l.path, l.pid,
			syncwrapErrors.Wrap(err, "failed to remove released lock"))
	}
	return nil
}

// checkLockDir refuses directories that hold anything besides an owner file,
// so a lock path pointed at real data is never deleted.
func checkLockDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Name() != ownerFileName {
			return syncwrapErrors.Errorf("%s is not a lock directory: found %q", dir, entry.Name())
		}
	}
	return nil
}

// removeLockDir deletes a lock directory without ever recursing.
func removeLockDir(dir string) error {
	if err := os.Remove(filepath.Join(dir, ownerFileName)); err != nil && !isNotExist(err) {
		return err
	}
	if err := os.Remove(dir); err != nil && !isNotExist(err) {
		return err
	}
	return nil
}

type owner struct {
	pid   int
	token string
}

// readOwner parses the owner file of the lock directory at dir. A missing
// or malformed owner file yields a zero pid, which is never alive.
func readOwner(dir string) (owner, error) {
	data, err := os.ReadFile(filepath.Join(dir, ownerFileName))
	if err != nil {
		return owner{}, err
	}

	first, _, _ := strings.Cut(string(data), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		pid = 0
	}
	return owner{pid: pid, token: string(data)}, nil
}

func isOccupied(err error) bool {
	// ENOTEMPTY also matches fs.ErrExist.
	return syncwrapErrors.Is(err, fs.ErrExist)
}

func isNotExist(err error) bool {
	return syncwrapErrors.Is(err, fs.ErrNotExist)
}
