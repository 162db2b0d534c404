package tree

// Тесты построителя дерева (internal/tree/builder.go).
//
// Покрытие:
//  - порядок корней (DESC) и детей (ASC), ReplyCount = только прямые дети;
//  - неразрешимый родитель -> корень; записи без id и дубли отбрасываются;
//  - разрыв циклов (A<->B, самоссылка, длинный цикл) с гарантией завершения;
//  - каждая валидная запись встречается в лесу ровно один раз;
//  - вход не модифицируется.

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/discussion-service/internal/models"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// rec — быстрый хелпер сборки плоской записи; at — смещение в минутах от base.
func rec(id, parentID string, at int) models.Comment {
	return models.Comment{
		ID:        id,
		ContentID: "p1",
		AuthorID:  "u1",
		Body:      "body " + id,
		ParentID:  parentID,
		CreatedAt: base.Add(time.Duration(at) * time.Minute),
	}
}

func rootIDs(f *Forest) []string {
	out := make([]string, 0, len(f.Roots))
	for _, n := range f.Roots {
		out = append(out, n.ID)
	}
	return out
}

func childIDs(n *models.Node) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.ID)
	}
	return out
}

// countOccurrences — сколько раз каждый id встречается при полном обходе.
func countOccurrences(f *Forest) map[string]int {
	seen := map[string]int{}
	f.Walk(func(n *models.Node, _ int) bool {
		seen[n.ID]++
		return true
	})
	return seen
}

// Сценарий: c1 корень, c2 ответ на c1.
func TestBuild_SimpleReply(t *testing.T) {
	f := Build([]models.Comment{rec("c1", "", 1), rec("c2", "c1", 2)})

	require.Equal(t, []string{"c1"}, rootIDs(f))
	require.Equal(t, 1, f.Roots[0].ReplyCount)
	require.Equal(t, []string{"c2"}, childIDs(f.Roots[0]))
	require.Equal(t, 0, f.Roots[0].Children[0].ReplyCount)
	require.Equal(t, 2, f.Total)
	require.Zero(t, f.Dropped)
}

// Корни: T1<T2<T3 -> [T3, T2, T1].
func TestBuild_RootsNewestFirst(t *testing.T) {
	f := Build([]models.Comment{rec("t1", "", 1), rec("t3", "", 3), rec("t2", "", 2)})
	require.Equal(t, []string{"t3", "t2", "t1"}, rootIDs(f))
}

// Ответы: T1<T2 -> [T1, T2], независимо от порядка во входе.
func TestBuild_RepliesOldestFirst(t *testing.T) {
	f := Build([]models.Comment{rec("r", "", 0), rec("b", "r", 2), rec("a", "r", 1)})
	require.Equal(t, []string{"a", "b"}, childIDs(f.Roots[0]))
}

// Одинаковый created_at — детерминированный порядок по id.
func TestBuild_TieBreakByID(t *testing.T) {
	f := Build([]models.Comment{rec("a", "", 1), rec("b", "", 1), rec("x", "a", 5), rec("w", "a", 5)})
	require.Equal(t, []string{"b", "a"}, rootIDs(f))

	a, ok := f.Find("a")
	require.True(t, ok)
	require.Equal(t, []string{"w", "x"}, childIDs(a))
}

// ReplyCount считает только прямых детей.
func TestBuild_ReplyCountDirectOnly(t *testing.T) {
	f := Build([]models.Comment{
		rec("r", "", 0), rec("c1", "r", 1), rec("c2", "r", 2), rec("g1", "c1", 3), rec("g2", "c1", 4),
	})

	r, _ := f.Find("r")
	c1, _ := f.Find("c1")
	require.Equal(t, 2, r.ReplyCount)
	require.Equal(t, 2, c1.ReplyCount)
	require.ElementsMatch(t, []string{"c1", "c2", "g1", "g2"}, f.Descendants("r"))
}

// Неразрешимый родитель трактуется как корень, без ошибки.
func TestBuild_UnresolvedParentBecomesRoot(t *testing.T) {
	f := Build([]models.Comment{rec("a", "missing", 1), rec("b", "", 2)})
	require.Equal(t, []string{"b", "a"}, rootIDs(f))
	require.Zero(t, f.Dropped)
}

// Пустой родитель из пробелов — объявленный корень.
func TestBuild_BlankParentIsRoot(t *testing.T) {
	blank := rec("a", "  ", 1)
	require.True(t, blank.IsRoot())
	require.False(t, rec("b", "a", 2).IsRoot())

	f := Build([]models.Comment{blank, rec("b", "a", 2), rec("c", "", 3)})
	require.Equal(t, []string{"c", "a"}, rootIDs(f))
	require.Equal(t, []string{"b"}, childIDs(f.Roots[1]))
}

// Записи без id и дубли отбрасываются, их число возвращается.
func TestBuild_DropsMissingAndDuplicateIDs(t *testing.T) {
	f := Build([]models.Comment{rec("", "", 1), rec("  ", "", 1), rec("a", "", 2), rec("a", "", 3)})

	require.Equal(t, 2+1, f.Dropped)
	require.Equal(t, 1, f.Total)
	a, _ := f.Find("a")
	require.True(t, a.CreatedAt.Equal(base.Add(2*time.Minute)), "первое вхождение id побеждает")
}

// Цикл A->B->A: завершается, ровно один из {A,B} — корень (второй посещённый).
func TestBuild_TwoNodeCycle(t *testing.T) {
	f := Build([]models.Comment{rec("A", "B", 1), rec("B", "A", 2)})

	require.Equal(t, []string{"B"}, rootIDs(f))
	require.Equal(t, []string{"A"}, childIDs(f.Roots[0]))
	require.Equal(t, map[string]int{"A": 1, "B": 1}, countOccurrences(f))
}

// Самоссылка — корень.
func TestBuild_SelfParent(t *testing.T) {
	f := Build([]models.Comment{rec("A", "A", 1)})
	require.Equal(t, []string{"A"}, rootIDs(f))
	require.Zero(t, f.Roots[0].ReplyCount)
}

// Длинный цикл A->B->C->D->A плюс хвост к нему.
func TestBuild_LongCycleWithTail(t *testing.T) {
	f := Build([]models.Comment{
		rec("A", "B", 1), rec("B", "C", 2), rec("C", "D", 3), rec("D", "A", 4), rec("T", "C", 5),
	})

	require.Len(t, f.Roots, 1)
	seen := countOccurrences(f)
	require.Len(t, seen, 5)
	for id, n := range seen {
		require.Equalf(t, 1, n, "id %s", id)
	}
}

// Вход не модифицируется (ни порядок, ни поля).
func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := []models.Comment{rec("b", " a ", 2), rec("a", "", 1)}
	snapshot := append([]models.Comment(nil), in...)

	_ = Build(in)
	require.Equal(t, snapshot, in)
}

// Повторная сборка даёт независимые узлы (нет общих ссылок между лесами).
func TestBuild_RebuildHasNoAliasing(t *testing.T) {
	in := []models.Comment{rec("a", "", 1), rec("b", "a", 2)}
	f1 := Build(in)
	f2 := Build(in)

	f1.Roots[0].Children = nil
	require.Len(t, f2.Roots[0].Children, 1)
}

// Свойство: для случайных входов (включая циклы и мусорных родителей)
// каждая валидная запись встречается в лесу ровно один раз.
func TestBuild_EachRecordExactlyOnce_Random(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		n := 1 + rnd.Intn(40)
		in := make([]models.Comment, 0, n)
		for i := 0; i < n; i++ {
			parent := ""
			switch rnd.Intn(4) {
			case 0:
			case 1:
				parent = "ghost"
			default:
				parent = fmt.Sprintf("c%d", rnd.Intn(n))
			}
			in = append(in, rec(fmt.Sprintf("c%d", i), parent, rnd.Intn(10)))
		}

		f := Build(in)
		seen := countOccurrences(f)
		require.Len(t, seen, n)
		for id, cnt := range seen {
			require.Equalf(t, 1, cnt, "iter %d id %s", iter, id)
		}

		total := 0
		f.Walk(func(node *models.Node, _ int) bool {
			require.Equal(t, len(node.Children), node.ReplyCount)
			total++
			return true
		})
		require.Equal(t, f.Total, total)
	}
}

// Walk уважает отказ от спуска в детей.
func TestForest_WalkSkipsChildren(t *testing.T) {
	f := Build([]models.Comment{rec("r", "", 0), rec("c", "r", 1)})

	var visited []string
	f.Walk(func(n *models.Node, _ int) bool {
		visited = append(visited, n.ID)
		return false
	})
	require.Equal(t, []string{"r"}, visited)
}

// nil-лес безопасен для чтения.
func TestForest_NilSafe(t *testing.T) {
	var f *Forest
	_, ok := f.Find("x")
	require.False(t, ok)
	require.Nil(t, f.IDs())
	f.Walk(func(*models.Node, int) bool { t.Fatal("не должно вызываться"); return true })
}
