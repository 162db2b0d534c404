package moderation

import (
	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/tree"
)

// DeletedParentPolicy — что делать с ответами удалённого (надгробного) родителя.
type DeletedParentPolicy string

const (
	// DeletedParentHide — мягкое каскадное скрытие: ответ и его поддерево не отображаются.
	DeletedParentHide DeletedParentPolicy = "hide"
	// DeletedParentPromote — ответы остаются корнями (поведение билдера по умолчанию).
	DeletedParentPromote DeletedParentPolicy = "promote"
)

// Options — вход оверлея для одного зрителя.
type Options struct {
	Hidden        Set
	Tombstones    Set
	Collapsed     Set
	DeletedParent DeletedParentPolicy
	// Placeholders — вместо удаления оставлять «заглушку» hidden=true без тела и детей.
	Placeholders bool
	// Decorate вызывается для каждого попавшего в вывод узла (реакции, рендер тела, ключ).
	Decorate func(n *models.Node)
}

// Result — отрисуемый лес.
type Result struct {
	Roots   []*models.Node
	Visible int
	Hidden  int
}

// Apply накладывает модерацию на построенный лес и возвращает новый лес из копий узлов.
// Исходный лес не меняется: снятие скрытия — это просто повторный Apply по свежей сборке.
// Скрытие каскадное: потомки скрытого узла недостижимы.
func Apply(f *tree.Forest, opts Options) Result {
	var res Result
	if f == nil {
		return res
	}

	var visit func(nodes []*models.Node) []*models.Node
	visit = func(nodes []*models.Node) []*models.Node {
		out := make([]*models.Node, 0, len(nodes))
		for _, n := range nodes {
			if opts.hides(n) {
				res.Hidden++
				if opts.Placeholders {
					out = append(out, placeholder(n, opts.Decorate))
				}
				continue
			}

			cp := *n
			cp.Children = visit(n.Children)
			cp.Collapsed = opts.Collapsed.Has(n.ID)
			if opts.Decorate != nil {
				opts.Decorate(&cp)
			}

			res.Visible++
			out = append(out, &cp)
		}

		return out
	}

	res.Roots = visit(f.Roots)
	return res
}

func (o Options) hides(n *models.Node) bool {
	if o.Hidden.Has(n.ID) || o.Tombstones.Has(n.ID) {
		return true
	}

	if o.DeletedParent != DeletedParentPromote && n.ParentID != "" && o.Tombstones.Has(n.ParentID) {
		return true
	}

	return false
}

func placeholder(n *models.Node, decorate func(*models.Node)) *models.Node {
	cp := *n
	cp.Body = ""
	cp.BodyHTML = ""
	cp.Children = nil
	cp.Hidden = true
	if decorate != nil {
		decorate(&cp)
	}
	// Декоратор мог отрисовать тело; у заглушки его быть не должно.
	cp.Body = ""
	cp.BodyHTML = ""
	cp.ComputeKey()

	return &cp
}
