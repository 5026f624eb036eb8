package megabuffer

import "sync"

// Lease scopes a region to a block of code. Close releases the region exactly once; later
// calls are no-ops.
type Lease struct {
	region *Region
	once   sync.Once
	err    error
}

// Lease allocates a region and wraps it in a Lease. Callers should defer Close.
func (m *Megabuffer) Lease(size int) (*Lease, error) {
	region, err := m.AllocateRegion(size)
	if err != nil {
		return nil, err
	}
	return &Lease{region: region}, nil
}

func (l *Lease) Region() *Region {
	return l.region
}

func (l *Lease) Close() error {
	l.once.Do(func() {
		l.err = l.region.Release()
	})
	return l.err
}

// WithRegion allocates a region, passes it to fn and releases it when fn returns, whether or not
// fn fails
func WithRegion(m *Megabuffer, size int, fn func(region *Region) error) (err error) {
	lease, err := m.Lease(size)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := lease.Close()
		if err == nil {
			err = closeErr
		}
	}()

	return fn(lease.region)
}
