package container

// Split is an interior tiling node introducing a (possibly
// perpendicular) sub-direction. It may nest further Splits or
// TilingWindows.
type Split struct {
	Base
	direction  TilingDirection
	tilingSize float64
}

// NewSplit constructs a Split with the given direction. TilingSize is
// set by the caller (normally by wrap_in_split, per the mutation
// primitive contract).
func NewSplit(dir TilingDirection) *Split {
	return &Split{Base: NewBase(KindSplit), direction: dir, tilingSize: 1}
}

func (s *Split) Direction() TilingDirection     { return s.direction }
func (s *Split) SetDirection(d TilingDirection) { s.direction = d }
func (s *Split) TilingSize() float64            { return s.tilingSize }
func (s *Split) SetTilingSize(v float64)        { s.tilingSize = v }
