package core

import (
	"fmt"

	"github.com/gofrs/flock"
)

// lockFile acquires an exclusive advisory lock on path, creating the file if
// needed. It returns an unlock function that must be called to release it.
func lockFile(path string) (unlock func() error, err error) {
	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}
	return fl.Unlock, nil
}

// rlockFile acquires a shared advisory lock on path. Readers holding it
// exclude writers in other processes but not each other.
func rlockFile(path string) (unlock func() error, err error) {
	fl := flock.New(path)
	if err := fl.RLock(); err != nil {
		return nil, fmt.Errorf("acquiring shared file lock: %w", err)
	}
	return fl.Unlock, nil
}
