package metadata

// PoleZeroFilter is one instrument transfer-function stage described by its
// poles, zeros and normalization factor.
type PoleZeroFilter struct {
	Name                string
	UnitsIn             string
	UnitsOut            string
	Poles               []complex128
	Zeros               []complex128
	NormalizationFactor float64
}

// Clone returns an independent deep copy.
func (f *PoleZeroFilter) Clone() *PoleZeroFilter {
	out := *f
	out.Poles = append([]complex128(nil), f.Poles...)
	out.Zeros = append([]complex128(nil), f.Zeros...)

	return &out
}

// ChannelResponse is the ordered chain of filter stages that maps a
// channel's recorded counts back to physical units.
type ChannelResponse struct {
	Filters []*PoleZeroFilter
}

// NewChannelResponse creates a response chain over the given stages.
func NewChannelResponse(filters ...*PoleZeroFilter) *ChannelResponse {
	return &ChannelResponse{Filters: filters}
}

// Names returns the stage names in chain order.
func (cr *ChannelResponse) Names() []string {
	names := make([]string, len(cr.Filters))
	for i, f := range cr.Filters {
		names[i] = f.Name
	}

	return names
}

// Clone returns an independent deep copy of the chain.
func (cr *ChannelResponse) Clone() *ChannelResponse {
	out := &ChannelResponse{Filters: make([]*PoleZeroFilter, len(cr.Filters))}
	for i, f := range cr.Filters {
		out.Filters[i] = f.Clone()
	}

	return out
}
