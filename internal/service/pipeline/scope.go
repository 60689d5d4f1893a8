package pipeline

// RegionScope restricts rows by region name. The zero value matches every row, which
// is what tables without an English region (Wales) use. OnlyRegions() with no names
// matches nothing.
type RegionScope struct {
	restricted bool
	names      map[string]struct{}
}

func AnyRegion() RegionScope {
	return RegionScope{}
}

func OnlyRegions(names ...string) RegionScope {
	s := RegionScope{restricted: true, names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

func (s RegionScope) Match(region string) bool {
	if !s.restricted {
		return true
	}
	_, ok := s.names[region]
	return ok
}

// Empty reports whether the scope can match no row at all.
func (s RegionScope) Empty() bool {
	return s.restricted && len(s.names) == 0
}

// PartitionRule routes a local authority to the overflow or main boundary bucket by
// membership in a fixed list. The published boundary files were split this way, so
// the rule must not be replaced by a size computation. Ceiling is the row count the
// renderer accepts per bucket.
type PartitionRule struct {
	members map[string]struct{}
	Ceiling int
}

func NewPartitionRule(members []string, ceiling int) *PartitionRule {
	r := &PartitionRule{members: make(map[string]struct{}, len(members)), Ceiling: ceiling}
	for _, m := range members {
		r.members[m] = struct{}{}
	}
	return r
}

func (r *PartitionRule) Contains(la string) bool {
	if r == nil {
		return false
	}
	_, ok := r.members[la]
	return ok
}

func (r *PartitionRule) Select(la string) Partition {
	if r.Contains(la) {
		return PartitionOverflow
	}
	return PartitionMain
}

// Exceeds reports whether a bucket of n rows is over the renderer ceiling.
func (r *PartitionRule) Exceeds(n int) bool {
	return r != nil && r.Ceiling > 0 && n > r.Ceiling
}
