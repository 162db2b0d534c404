// Package render превращает markdown-тело комментария в безопасный HTML.
// Результат мемоизируется по хешу содержимого: одинаковые тела не рендерятся повторно.
package render

import (
	"bytes"
	"html"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/pribylovaa/discussion-service/internal/models"
)

const defaultCacheSize = 1024

// Renderer — потокобезопасный рендерер тел комментариев.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  *lru.Cache[string, string]
}

// New создаёт рендерер с LRU-кешем на cacheSize записей (<= 0 — значение по умолчанию).
func New(cacheSize int) (*Renderer, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}

	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}

	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				goldhtml.WithHardWraps(),
				goldhtml.WithXHTML(),
			),
		),
		policy: policy,
		cache:  cache,
	}, nil
}

// Body возвращает санитизированный HTML для тела комментария.
// При ошибке конвертации отдаётся экранированный исходный текст.
func (r *Renderer) Body(body string) string {
	if body == "" {
		return ""
	}

	key := models.ContentHash(body)
	if out, ok := r.cache.Get(key); ok {
		return out
	}

	var buf bytes.Buffer
	out := ""
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		out = html.EscapeString(body)
	} else {
		out = string(r.policy.SanitizeBytes(buf.Bytes()))
	}

	r.cache.Add(key, out)
	return out
}

// Len — число закешированных тел.
func (r *Renderer) Len() int {
	return r.cache.Len()
}
