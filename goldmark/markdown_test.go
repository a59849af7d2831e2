package goldmark_test

import (
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chat"
	"github.com/fwojciec/chat/goldmark"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func TestMain(m *testing.M) {
	// Force ANSI color output so styled elements produce visible escape
	// codes that we can assert against.
	lipgloss.SetColorProfile(termenv.ANSI)
	os.Exit(m.Run())
}

func TestRender(t *testing.T) {
	t.Parallel()

	theme := chat.DefaultTheme()

	t.Run("empty input returns empty string", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", goldmark.Render("", 80, theme))
	})

	t.Run("plain paragraph", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "hello world", strings.TrimSpace(stripANSI(goldmark.Render("hello world", 80, theme))))
	})

	t.Run("heading is styled", func(t *testing.T) {
		t.Parallel()
		heading := goldmark.Render("# Title", 80, theme)
		paragraph := goldmark.Render("Title", 80, theme)
		assert.Contains(t, stripANSI(heading), "Title")
		assert.NotEqual(t, heading, paragraph)
	})

	t.Run("emphasis", func(t *testing.T) {
		t.Parallel()
		for _, src := range []string{"**bold**", "*italic*", "***both***", "~~gone~~"} {
			result := goldmark.Render(src, 80, theme)
			word := strings.Trim(src, "*~")
			assert.Contains(t, stripANSI(result), word)
			assert.NotContains(t, stripANSI(result), "*")
			assert.NotContains(t, stripANSI(result), "~")
		}
	})

	t.Run("inline code", func(t *testing.T) {
		t.Parallel()
		result := goldmark.Render("run `go test`", 80, theme)
		assert.Contains(t, stripANSI(result), "run go test")
	})

	t.Run("fenced code block preserves content without reflow", func(t *testing.T) {
		t.Parallel()
		src := "```go\nfmt.Println(\"hello world\")\n```"
		result := goldmark.Render(src, 20, theme)
		assert.Contains(t, stripANSI(result), `fmt.Println("hello world")`)
	})

	t.Run("fenced code block is highlighted", func(t *testing.T) {
		t.Parallel()
		src := "```go\nfunc main() {\n\treturn\n}\n```"
		result := goldmark.Render(src, 80, theme)
		stripped := stripANSI(result)
		assert.Contains(t, stripped, "go\n")
		assert.Contains(t, stripped, "│ func main() {")
		assert.Contains(t, stripped, "│ \treturn")
		assert.Contains(t, stripped, "│ }")

		plain := goldmark.Render("```\nfunc main() {\n\treturn\n}\n```", 80, theme)
		assert.NotEqual(t, strings.Count(plain, "\x1b["), strings.Count(result, "\x1b["))
	})

	t.Run("code block keeps one gutter per line", func(t *testing.T) {
		t.Parallel()
		src := "```python\na = 1\nb = 2\n```"
		lines := strings.Split(stripANSI(goldmark.Render(src, 80, theme)), "\n")
		assert.Equal(t, []string{"python", "│ a = 1", "│ b = 2"}, lines)
	})

	t.Run("unknown code style falls back to a default style", func(t *testing.T) {
		t.Parallel()
		custom := theme
		custom.CodeStyle = "nosuchstyle"
		src := "```go\nfunc main() {}\n```"
		result := goldmark.Render(src, 80, custom)
		assert.Contains(t, stripANSI(result), "│ func main() {}")
		assert.Contains(t, result, "\x1b[")
	})

	t.Run("unknown language renders plain", func(t *testing.T) {
		t.Parallel()
		src := "```nosuchlang\nsome code\n```"
		result := goldmark.Render(src, 80, theme)
		assert.Contains(t, stripANSI(result), "│ some code")
	})

	t.Run("indented code block", func(t *testing.T) {
		t.Parallel()
		src := "paragraph\n\n    indented code\n    more code"
		result := stripANSI(goldmark.Render(src, 80, theme))
		assert.Contains(t, result, "│ indented code")
		assert.Contains(t, result, "│ more code")
	})

	t.Run("lists", func(t *testing.T) {
		t.Parallel()
		bullets := stripANSI(goldmark.Render("- one\n- two", 80, theme))
		assert.Contains(t, bullets, "- one")
		assert.Contains(t, bullets, "- two")

		ordered := stripANSI(goldmark.Render("3. first\n4. second", 80, theme))
		assert.Contains(t, ordered, "3. first")
		assert.Contains(t, ordered, "4. second")

		nested := stripANSI(goldmark.Render("- outer\n  - inner", 80, theme))
		assert.Contains(t, nested, "- outer")
		assert.Contains(t, nested, "  - inner")
	})

	t.Run("list item continuation lines are indented", func(t *testing.T) {
		t.Parallel()
		src := "- this is a very long list item that should wrap and have continuation lines properly indented"
		lines := strings.Split(stripANSI(goldmark.Render(src, 30, theme)), "\n")
		assert.True(t, strings.HasPrefix(lines[0], "- "))
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				assert.True(t, strings.HasPrefix(line, "  "), "continuation line should be indented: %q", line)
			}
		}
	})

	t.Run("blockquote has a bar on every line", func(t *testing.T) {
		t.Parallel()
		src := "> quoted words that go on long enough to wrap around"
		lines := strings.Split(stripANSI(goldmark.Render(src, 24, theme)), "\n")
		assert.Greater(t, len(lines), 1)
		for _, line := range lines {
			assert.True(t, strings.HasPrefix(line, "┃ "), "line %q", line)
		}
	})

	t.Run("links", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("[click](https://example.com)", 80, theme))
		assert.Contains(t, result, "click")
		assert.Contains(t, result, "(https://example.com)")

		bare := stripANSI(goldmark.Render("see https://go.dev now", 80, theme))
		assert.Contains(t, bare, "https://go.dev")
	})

	t.Run("image renders alt text and URL", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("![alt text](https://example.com/img.png)", 80, theme))
		assert.Contains(t, result, "alt text")
		assert.Contains(t, result, "example.com/img.png")
	})

	t.Run("paragraph wraps to width", func(t *testing.T) {
		t.Parallel()
		long := "word1 word2 word3 word4 word5 word6 word7 word8 word9 word10 word11 word12"
		result := goldmark.Render(long, 30, theme)
		assert.Contains(t, stripANSI(result), "word12")
		assert.Greater(t, len(strings.Split(result, "\n")), 1)
	})

	t.Run("blocks are separated by one blank line", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("first\n\nsecond", 80, theme))
		lines := strings.Split(result, "\n")
		assert.Len(t, lines, 3)
		assert.Equal(t, "", strings.TrimSpace(lines[1]))
	})

	t.Run("thematic break", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("above\n\n---\n\nbelow", 80, theme))
		assert.Contains(t, result, "above")
		assert.Contains(t, result, "───")
		assert.Contains(t, result, "below")
	})

	t.Run("width zero defaults to 80", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, stripANSI(goldmark.Render("hello world", 0, theme)), "hello world")
	})

	t.Run("unterminated fence while streaming", func(t *testing.T) {
		t.Parallel()
		result := stripANSI(goldmark.Render("Here:\n\n```go\nx := 1", 80, theme))
		assert.Contains(t, result, "Here:")
		assert.Contains(t, result, "│ x := 1")
	})
}

func TestRenderer_ConcurrentUse(t *testing.T) {
	t.Parallel()
	r := goldmark.New(chat.DefaultTheme())
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := r.Render("# hi\n\n```go\nx := 1\n```", 40)
			assert.Contains(t, stripANSI(out), "x := 1")
		}()
	}
	wg.Wait()
}
