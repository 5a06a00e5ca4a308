package fixtures

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelloViewPlainSubstitution(t *testing.T) {
	v := &HelloView{Name: "world"}
	out, err := v.Render()
	require.NoError(t, err)
	require.Equal(t, "Hello, world!", out)
}

func TestHelloViewEscapesSpecialCharacters(t *testing.T) {
	v := &HelloView{Name: `<>&"'/`}
	out, err := v.Render()
	require.NoError(t, err)
	require.Equal(t, "Hello, &lt;&gt;&amp;&quot;&#x27;&#x2f;!", out)
}

func TestEachViewIndexedKeyedIteration(t *testing.T) {
	v := &EachView{Items: []string{"a", "b", "c"}}
	out, err := v.Render()
	require.NoError(t, err)
	require.Equal(t, "0:a 1:b 2:c ", out)
}

func TestIfElseViewPicksElseIfBranch(t *testing.T) {
	v := &IfElseView{Cond: false, Other: true}
	out, err := v.Render()
	require.NoError(t, err)
	require.Equal(t, "e", out)
}

func TestIfElseViewPicksFinalElseBranch(t *testing.T) {
	v := &IfElseView{Cond: false, Other: false}
	out, err := v.Render()
	require.NoError(t, err)
	require.Equal(t, "n", out)
}

func TestIfElseViewPicksFirstBranch(t *testing.T) {
	v := &IfElseView{Cond: true, Other: true}
	out, err := v.Render()
	require.NoError(t, err)
	require.Equal(t, "y", out)
}

func TestLetViewBindsAndSubstitutes(t *testing.T) {
	v := &LetView{S: "foo"}
	out, err := v.Render()
	require.NoError(t, err)
	require.Equal(t, "foo", out)
}

func TestNestedViewEachWithContext(t *testing.T) {
	var item NestedItem
	item.Inner.Foo = 0
	item.Inner.Bar = 1
	v := &NestedView{Xs: []NestedItem{item}}
	out, err := v.Render()
	require.NoError(t, err)
	require.Equal(t, "0 1", out)
}

func TestEachViewEmptyIterableRendersNothing(t *testing.T) {
	v := &EachView{Items: nil}
	out, err := v.Render()
	require.NoError(t, err)
	require.Equal(t, "", out)
}

func TestWriteToMatchesRender(t *testing.T) {
	v := &HelloView{Name: "world"}
	var buf strings.Builder
	n, err := v.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(len("Hello, world!")), n)
	require.Equal(t, "Hello, world!", buf.String())
}
