package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML([]byte("Pick up **milk**\nand bread"), Options{})
	require.NoError(t, err)
	require.Equal(t, "<p>Pick up <strong>milk</strong><br>\nand bread</p>\n", string(out))
}

func TestRenderHTMLDropsRawHTML(t *testing.T) {
	out, err := RenderHTML([]byte("<script>alert(1)</script>\n\nok"), Options{})
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>")
}

func TestPlainText(t *testing.T) {
	src := "# Groceries\n\n- [x] milk\n- ~~eggs~~\n\nSee [the list](https://example.com/list)."
	got, err := PlainText([]byte(src), Options{GFM: true})
	require.NoError(t, err)
	require.Equal(t, "Groceries milk eggs See the list.", got)
}

func TestSummary(t *testing.T) {
	require.Equal(t, "", Summary("", 10))
	require.Equal(t, "short", Summary("*short*", 10))
	require.Equal(t, "a long…", Summary("a long description", 7))
	require.Equal(t, "a long description", Summary("a long description", 0))

	long := strings.Repeat("é", 20)
	require.Equal(t, strings.Repeat("é", 4)+"…", Summary(long, 5))
}

func TestExtractLinks_InlineLink(t *testing.T) {
	links := ExtractLinks([]byte("See [API](api.md) for details."), Options{})
	require.Len(t, links, 1)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.Equal(t, "api.md", links[0].Destination)
}

func TestExtractLinks_ImageAndAutoLink(t *testing.T) {
	links := ExtractLinks([]byte("![Receipt](receipt.png) <https://example.com/path>"), Options{})
	require.Len(t, links, 2)
	require.Equal(t, LinkKindImage, links[0].Kind)
	require.Equal(t, "receipt.png", links[0].Destination)
	require.Equal(t, LinkKindAuto, links[1].Kind)
	require.Equal(t, "https://example.com/path", links[1].Destination)
}

func TestExtractLinks_ReferenceLinkUsageAndDefinition(t *testing.T) {
	src := []byte("See [API][ref].\n\n[ref]: api.md\n")
	links := ExtractLinks(src, Options{})

	require.Len(t, links, 2)
	require.Equal(t, LinkKindInline, links[0].Kind)
	require.Equal(t, "api.md", links[0].Destination)
	require.Equal(t, LinkKindReferenceDefinition, links[1].Kind)
}

func TestExtractLinks_SkipsInlineCodeAndCodeBlocks(t *testing.T) {
	src := []byte("" +
		"Inline code: `[Link](./ignored-inline.md)`\n" +
		"\n" +
		"```\n" +
		"[Link](./ignored-fence.md)\n" +
		"```\n" +
		"\n" +
		"Real: [OK](./real.md)\n")

	links := ExtractLinks(src, Options{})
	require.Len(t, links, 1)
	require.Equal(t, "./real.md", links[0].Destination)
}
