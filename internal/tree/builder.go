// Package tree превращает плоский список комментариев одной области в упорядоченный лес.
//
// Правила построения:
//   - записи без id отбрасываются (не фатально), их число возвращается в Forest.Dropped;
//     повторный id считается дублем и тоже отбрасывается (каждая запись ровно один раз);
//   - ParentID == "" или неразрешимый ParentID — узел становится корнем;
//   - циклы родителей (A→B→A) разрываются: второй посещённый узел цикла становится корнем;
//   - корни сортируются по created_at DESC, дети каждого узла — по created_at ASC;
//   - ReplyCount = число прямых детей.
//
// Лес всегда строится заново из плоского источника (арена узлов), без правки на месте.
package tree

import (
	"sort"
	"strings"

	"github.com/pribylovaa/discussion-service/internal/models"
)

// noParent — маркер «ребро к родителю ещё не назначено / узел корневой».
const noParent = -1

// Forest — результат построения: упорядоченные корни и индекс узлов по id.
type Forest struct {
	Roots   []*models.Node
	Total   int
	Dropped int

	index map[string]*models.Node
}

// Build строит лес из плоского списка записей. Вход не модифицируется.
func Build(records []models.Comment) *Forest {
	arena := make([]models.Node, 0, len(records))
	pos := make(map[string]int, len(records))
	dropped := 0

	for _, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			dropped++
			continue
		}

		if _, dup := pos[id]; dup {
			dropped++
			continue
		}

		rec.ID = id
		rec.ParentID = strings.TrimSpace(rec.ParentID)
		pos[id] = len(arena)
		arena = append(arena, models.Node{Comment: rec})
	}

	parent := make([]int, len(arena))
	for i := range parent {
		parent[i] = noParent
	}

	// Рёбра назначаются в порядке посещения. Граф назначенных рёбер остаётся ацикличным:
	// ребро i→p добавляется, только если i не встречается среди уже назначенных предков p.
	for i := range arena {
		if arena[i].IsRoot() {
			continue
		}

		p, ok := pos[arena[i].ParentID]
		if !ok || p == i {
			continue
		}

		if reachesAncestor(parent, p, i) {
			continue
		}

		parent[i] = p
	}

	f := &Forest{
		Total:   len(arena),
		Dropped: dropped,
		index:   make(map[string]*models.Node, len(arena)),
	}

	for i := range arena {
		n := &arena[i]
		f.index[n.ID] = n

		if parent[i] == noParent {
			f.Roots = append(f.Roots, n)
			continue
		}

		p := &arena[parent[i]]
		p.Children = append(p.Children, n)
	}

	sortNewestFirst(f.Roots)
	for i := range arena {
		arena[i].ReplyCount = len(arena[i].Children)
		sortOldestFirst(arena[i].Children)
	}

	return f
}

// reachesAncestor — встречается ли target на пути от start вверх по назначенным рёбрам.
func reachesAncestor(parent []int, start, target int) bool {
	for cur := start; cur != noParent; cur = parent[cur] {
		if cur == target {
			return true
		}
	}

	return false
}

func sortNewestFirst(nodes []*models.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

func sortOldestFirst(nodes []*models.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Find возвращает узел по id.
func (f *Forest) Find(id string) (*models.Node, bool) {
	if f == nil {
		return nil, false
	}

	n, ok := f.index[id]
	return n, ok
}

// IDs — id всех узлов леса (порядок не гарантируется).
func (f *Forest) IDs() []string {
	if f == nil {
		return nil
	}

	out := make([]string, 0, len(f.index))
	for id := range f.index {
		out = append(out, id)
	}

	return out
}

// Walk обходит лес в глубину в порядке отображения. fn == false — не спускаться в детей.
func (f *Forest) Walk(fn func(n *models.Node, depth int) bool) {
	if f == nil {
		return
	}

	var visit func(nodes []*models.Node, depth int)
	visit = func(nodes []*models.Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}

	visit(f.Roots, 0)
}

// Descendants — id всех потомков узла (без самого узла).
func (f *Forest) Descendants(id string) []string {
	n, ok := f.Find(id)
	if !ok {
		return nil
	}

	var out []string
	stack := append([]*models.Node(nil), n.Children...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur.ID)
		stack = append(stack, cur.Children...)
	}

	return out
}
