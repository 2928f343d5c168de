package design

import "sort"

// sortedSet keeps a slice of *Design sorted by a caller-supplied
// lexicographic key, supporting O(log n) lookup and O(n) insert/erase
// (the Design counts this library targets — low thousands per
// population — make a plain sorted slice simpler and cache-friendlier
// than a balanced tree, at the cost of linear insert).
type sortedSet struct {
	designs []*Design
	key     func(*Design) []float64
	prec    []int
}

func newSortedSet(key func(*Design) []float64, prec []int) *sortedSet {
	return &sortedSet{key: key, prec: prec}
}

func (s *sortedSet) search(d *Design) int {
	k := s.key(d)
	return sort.Search(len(s.designs), func(i int) bool {
		return !lexLess(s.key(s.designs[i]), k, s.prec)
	})
}

func (s *sortedSet) insert(d *Design) {
	i := s.search(d)
	s.designs = append(s.designs, nil)
	copy(s.designs[i+1:], s.designs[i:])
	s.designs[i] = d
}

func (s *sortedSet) erase(d *Design) bool {
	i := s.search(d)
	for i < len(s.designs) && s.designs[i] != d {
		i++
	}
	if i >= len(s.designs) {
		return false
	}
	s.designs = append(s.designs[:i], s.designs[i+1:]...)
	return true
}

func (s *sortedSet) contains(d *Design) bool {
	i := s.search(d)
	for i < len(s.designs) {
		k := s.key(s.designs[i])
		if !lexEqual(k, s.key(d), s.prec) {
			break
		}
		if s.designs[i] == d {
			return true
		}
		i++
	}
	return false
}

// findEqual returns the first Design already in the set whose key
// compares equal to d's, or nil. Used for clone detection on the
// DV-sort view.
func (s *sortedSet) findEqual(d *Design) *Design {
	i := s.search(d)
	if i < len(s.designs) && lexEqual(s.key(s.designs[i]), s.key(d), s.prec) {
		return s.designs[i]
	}
	return nil
}

func (s *sortedSet) size() int { return len(s.designs) }

func (s *sortedSet) slice() []*Design {
	out := make([]*Design, len(s.designs))
	copy(out, s.designs)
	return out
}

// DVSortSet is a population view ordered lexicographically by
// variable-representation vector.
type DVSortSet struct{ set *sortedSet }

// OFSortSet is a population view ordered lexicographically by
// objective vector.
type OFSortSet struct{ set *sortedSet }

func (s DVSortSet) Size() int        { return s.set.size() }
func (s DVSortSet) Designs() []*Design { return s.set.slice() }
func (s DVSortSet) Contains(d *Design) bool { return s.set.contains(d) }

// FindEqual returns a Design already present whose variable vector
// compares equal to d's (lexicographically, honoring per-variable
// precision), or nil.
func (s DVSortSet) FindEqual(d *Design) *Design { return s.set.findEqual(d) }

func (s OFSortSet) Size() int          { return s.set.size() }
func (s OFSortSet) Designs() []*Design { return s.set.slice() }
func (s OFSortSet) Contains(d *Design) bool { return s.set.contains(d) }
