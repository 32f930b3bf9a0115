package mem

// Context carries the process-wide well-known arenas as explicit fields
// instead of package globals: every constructor down the stack takes a
// *Context rather than reaching for a hidden global, which also keeps
// `go test -race` meaningful, since a package-level arena global would
// force the whole suite to either serialize on a hidden mutex or race
// silently.
type Context struct {
	persistent *Arena // well-known free-list arena: general long-lived allocations
	scratch    *Arena // well-known stack arena: scoped scratch (push/pop within a call tree)
	frame      *Arena // well-known linear arena: per-frame scratch, reset once per tick
}

// InitSizes holds the three well-known arena sizes.
type InitSizes struct {
	FreeListSize uint64
	StackSize    uint64
	FrameLinear  uint64
}

// DefaultInitSizes returns 4000 MiB persistent, 100 MiB scratch, and
// 100 MiB per-frame linear.
func DefaultInitSizes() InitSizes {
	const mib = 1 << 20
	return InitSizes{
		FreeListSize: 4000 * mib,
		StackSize:    100 * mib,
		FrameLinear:  100 * mib,
	}
}

// NewContext builds the three well-known arenas from sizes, each backed
// directly by the OS (no upstream) since they anchor the whole allocation
// tree for the process.
func NewContext(sizes InitSizes) (*Context, error) {
	persistent, err := New(Config{Policy: FreeList, Size: sizes.FreeListSize, BestFit: false})
	if err != nil {
		return nil, err
	}
	scratch, err := New(Config{Policy: Stack, Size: sizes.StackSize})
	if err != nil {
		return nil, err
	}
	frame, err := New(Config{Policy: Linear, Size: sizes.FrameLinear})
	if err != nil {
		return nil, err
	}
	return &Context{persistent: persistent, scratch: scratch, frame: frame}, nil
}

// Persistent returns the well-known free-list arena.
func (c *Context) Persistent() *Arena { return c.persistent }

// Scratch returns the well-known stack arena.
func (c *Context) Scratch() *Arena { return c.scratch }

// Frame returns the well-known per-frame linear arena.
func (c *Context) Frame() *Arena { return c.frame }

// SetPersistent replaces the well-known free-list arena. Panics if a
// differs in policy from the slot it is filling.
func (c *Context) SetPersistent(a *Arena) {
	assertPolicy(a, FreeList)
	c.persistent = a
}

// SetScratch replaces the well-known stack arena.
func (c *Context) SetScratch(a *Arena) {
	assertPolicy(a, Stack)
	c.scratch = a
}

// SetFrame replaces the well-known per-frame linear arena.
func (c *Context) SetFrame(a *Arena) {
	assertPolicy(a, Linear)
	c.frame = a
}

// ResetFrame rewinds the per-frame linear arena; called once per tick
// by the frame loop.
func (c *Context) ResetFrame() { c.frame.Reset() }

func assertPolicy(a *Arena, want Policy) {
	if a.PolicyTag() != want {
		panic("mem: arena policy " + a.PolicyTag().String() + " does not match slot role " + want.String())
	}
}
