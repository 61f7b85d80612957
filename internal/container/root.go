package container

// Root is the unique top of the tree; its children are Monitors.
type Root struct {
	Base
}

// NewRoot constructs the single Root instance created at startup.
func NewRoot() *Root {
	return &Root{Base: NewBase(KindRoot)}
}
