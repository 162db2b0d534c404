package models

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// Node — комментарий, дополненный вычисленными полями дерева и аннотациями отображения.
//   - ReplyCount — число ПРЯМЫХ детей (не всех потомков);
//   - Children — корни по убыванию created_at, дети по возрастанию;
//   - Key — ключ мемоизации по значению (id + хеш содержимого), а не по идентичности.
type Node struct {
	Comment
	ReplyCount int      `json:"reply_count"`
	Children   []*Node  `json:"children"`
	Collapsed  bool     `json:"collapsed"`
	Hidden     bool     `json:"hidden"`
	Pending    bool     `json:"pending,omitempty"`
	Fresh      bool     `json:"fresh,omitempty"`
	Reaction   Reaction `json:"reaction"`
	BodyHTML   string   `json:"body_html,omitempty"`
	Key        string   `json:"key"`
}

// ComputeKey пересчитывает Key по значениям полей узла.
// Дети в ключ не входят: у каждого узла свой ключ.
func (n *Node) ComputeKey() string {
	h := blake3.New()

	writeString := func(s string) {
		var l [8]byte
		binary.BigEndian.PutUint64(l[:], uint64(len(s)))
		_, _ = h.Write(l[:])
		_, _ = h.Write([]byte(s))
	}
	writeInt := func(v int64) {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(v))
		_, _ = h.Write(b[:])
	}
	writeBool := func(v bool) {
		if v {
			_, _ = h.Write([]byte{1})
			return
		}
		_, _ = h.Write([]byte{0})
	}

	writeString(n.Body)
	writeInt(n.UpdatedAt.UTC().UnixNano())
	writeBool(n.Edited)
	writeInt(int64(n.ReplyCount))
	writeInt(int64(n.Reaction.Count))
	writeBool(n.Reaction.ViewerLiked)
	writeBool(n.Collapsed)
	writeBool(n.Hidden)
	writeBool(n.Pending)
	writeBool(n.Fresh)

	sum := h.Sum(nil)
	n.Key = n.ID + ":" + hex.EncodeToString(sum[:8])

	return n.Key
}

// ContentHash — хеш только тела комментария; ключ кеша отрисовки markdown.
func ContentHash(body string) string {
	sum := blake3.Sum256([]byte(body))
	return hex.EncodeToString(sum[:16])
}

// View — снимок отрисованного леса для одной сессии.
type View struct {
	SessionID        string    `json:"session_id,omitempty"`
	ContentID        string    `json:"content_id"`
	State            string    `json:"state"`
	Roots            []*Node   `json:"roots"`
	Total            int       `json:"total"`
	Visible          int       `json:"visible"`
	Dropped          int       `json:"dropped"`
	Version          uint64    `json:"version"`
	AutoHideOnReport bool      `json:"auto_hide_on_report"`
	Advisory         string    `json:"advisory,omitempty"`
	BuiltAt          time.Time `json:"built_at"`
}
