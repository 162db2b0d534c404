// Package models содержит доменные сущности discussion-service.
package models

import (
	"strings"
	"time"
)

// TempIDPrefix — префикс клиентских временных идентификаторов транзитных узлов.
const TempIDPrefix = "tmp-"

// Comment — плоская запись комментария (источник истинности — внешний слой данных).
// Важно:
//   - ParentID == "" означает корень; неразрешимый ParentID трактуется билдером как корень;
//   - ContentID — область (статья/видео/пост), в которой живёт ветка;
//   - Edited/UpdatedAt — единственные изменяемые здесь поля (само редактирование — внешнее);
//   - Deleted — маркер удалённой записи: тело пустое, в лес такая запись не попадает,
//     её id становится надгробием.
type Comment struct {
	ID        string    `json:"id"`
	ContentID string    `json:"content_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Edited    bool      `json:"edited"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// IsRoot — запись объявлена корневой (без учёта разрешимости родителя).
func (c Comment) IsRoot() bool {
	return strings.TrimSpace(c.ParentID) == ""
}

// IsTemporary — транзитная запись, созданная оптимистично до ответа сервера.
func (c Comment) IsTemporary() bool {
	return strings.HasPrefix(c.ID, TempIDPrefix)
}
