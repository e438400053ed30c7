package viddec

// Target is a backend surface with reference counted ownership. Owners are
// the picture being decoded, the reference lists of the drivers, input
// chunks and output slots. The surface is destroyed with the last release.
type Target struct {
	Surface Surface

	refs    int
	backend Backend
}

func newTarget(backend Backend, surface Surface) *Target {
	return &Target{Surface: surface, refs: 1, backend: backend}
}

func (t *Target) retain() *Target {
	t.refs++
	return t
}

func (t *Target) release() {
	if t.refs--; t.refs == 0 {
		t.backend.DestroyTarget(t.Surface)
		t.Surface = nil
	}
}

// shared - somebody besides the caller still owns the target
func (t *Target) shared() bool {
	return t.refs > 1
}

func releaseAll(targets []*Target) {
	for _, t := range targets {
		t.release()
	}
}
