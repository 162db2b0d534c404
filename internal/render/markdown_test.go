package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderer_Body_Markdown(t *testing.T) {
	r, err := New(8)
	require.NoError(t, err)

	out := r.Body("**bold** and `code`")
	require.Contains(t, out, "<strong>bold</strong>")
	require.Contains(t, out, "<code>code</code>")
}

// Скрипты и обработчики событий вырезаются политикой UGC.
func TestRenderer_Body_Sanitizes(t *testing.T) {
	r, err := New(8)
	require.NoError(t, err)

	out := r.Body("hi <script>alert(1)</script> [x](https://x.test) [y](javascript:evil)")
	require.NotContains(t, out, "<script>")
	require.NotContains(t, out, "javascript:")
	require.True(t, strings.Contains(out, "noreferrer"), out)
}

// Повторный рендер того же тела берётся из кеша.
func TestRenderer_Body_Memoized(t *testing.T) {
	r, err := New(8)
	require.NoError(t, err)

	first := r.Body("same")
	second := r.Body("same")
	require.Equal(t, first, second)
	require.Equal(t, 1, r.Len())

	require.Empty(t, r.Body(""))
	require.Equal(t, 1, r.Len())
}
