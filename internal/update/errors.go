package update

import "fmt"

// LockedError reports that a game executable could not be opened for
// exclusive write access, which usually means the game is still running.
type LockedError struct {
	File string
	Err  error
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s is locked - the game may still be running: %v", e.File, e.Err)
}

func (e *LockedError) Unwrap() error { return e.Err }

// AccessDeniedError reports that the installation directory itself is not
// writable.
type AccessDeniedError struct {
	Dir string
	Err error
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("cannot write to %s - check folder permissions: %v", e.Dir, e.Err)
}

func (e *AccessDeniedError) Unwrap() error { return e.Err }

// DownloadError reports a transport failure while streaming the release
// asset. The partial .part file is left on disk for the next launch's sweep;
// the destination is untouched.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("downloading %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ArchiveFormatError reports a corrupt or unreadable release asset.
type ArchiveFormatError struct {
	Path string
	Err  error
}

func (e *ArchiveFormatError) Error() string {
	return fmt.Sprintf("release archive %s is corrupt or unreadable: %v", e.Path, e.Err)
}

func (e *ArchiveFormatError) Unwrap() error { return e.Err }

// RollbackFailedError is fatal: an update failed and restoring the archived
// snapshot failed too, so the installation may be inconsistent.
type RollbackFailedError struct {
	Cause    error
	Rollback error
}

func (e *RollbackFailedError) Error() string {
	return fmt.Sprintf(
		"update failed and rollback also failed - the installation may be corrupted, reinstalling is recommended (update error: %v; rollback error: %v)",
		e.Cause, e.Rollback,
	)
}

func (e *RollbackFailedError) Unwrap() error { return e.Cause }
