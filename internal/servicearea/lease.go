package servicearea

import "sync"

// lease is a checked out license extension. Release checks it back in once no matter
// how many times it is called.
type lease struct {
	once    sync.Once
	release func() error
	err     error
}

func newLease(release func() error) *lease {
	return &lease{release: release}
}

func (l *lease) Release() error {
	l.once.Do(func() {
		l.err = l.release()
	})
	return l.err
}
