package moderation

import "sort"

// Set — множество id. Объединение идемпотентно, порядок не важен.
type Set map[string]struct{}

// NewSet собирает множество из списков, пропуская пустые id.
func NewSet(lists ...[]string) Set {
	s := Set{}
	for _, l := range lists {
		for _, id := range l {
			s.Add(id)
		}
	}

	return s
}

func (s Set) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

func (s Set) Remove(id string) {
	delete(s, id)
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Union возвращает новое множество s ∪ other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}

	return out
}

// Clone — независимая копия.
func (s Set) Clone() Set {
	return s.Union(nil)
}

// Slice — отсортированный список id (стабильный вид для хранения и сравнения).
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}
