// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termchat/internal/model"
	"github.com/jeranaias/termchat/internal/templating"
	"github.com/jeranaias/termchat/internal/ui/render/rendertest"
	"github.com/jeranaias/termchat/internal/ui/styles"
	"github.com/jeranaias/termchat/internal/util"
)

func msg(role model.Role, content string) model.Message {
	return model.Message{ID: content, Role: role, Content: content}
}

// fakeClock advances only when told to.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// =============================================================================
// THROTTLE TESTS
// =============================================================================

func TestThrottle(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	th := NewThrottle(100 * time.Millisecond).WithClock(clock.Now)

	assert.True(t, th.Allow(false), "first redraw always runs")

	clock.Advance(10 * time.Millisecond)
	assert.False(t, th.Allow(false), "second request 10ms later is dropped")
	assert.True(t, th.Allow(true), "forced request runs")

	clock.Advance(90 * time.Millisecond)
	assert.False(t, th.Allow(false), "interval restarts at the forced redraw")

	clock.Advance(10 * time.Millisecond)
	assert.True(t, th.Allow(false))
}

func TestThrottle_DisabledInterval(t *testing.T) {
	th := NewThrottle(0)
	assert.True(t, th.Allow(false))
	assert.True(t, th.Allow(false))
}

// =============================================================================
// LAYOUT AND WRAP TESTS
// =============================================================================

func TestLayout(t *testing.T) {
	l := Layout{Rows: 24, Cols: 80}
	assert.Equal(t, 79, l.Width())
	assert.Equal(t, 2, l.PaneTop())
	assert.Equal(t, 20, l.PaneBottom())
	assert.Equal(t, 21, l.BottomRuleRow())
	assert.Equal(t, 22, l.InputRow())
	assert.Equal(t, 23, l.HelpRow())
	assert.Equal(t, 19, l.PaneHeight())
	assert.True(t, l.Fits())
	assert.False(t, Layout{Rows: 5, Cols: 80}.Fits())
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{"fits", "hello", 10, []string{"hello"}},
		{"empty", "", 10, []string{""}},
		{"word boundary", "hello world", 5, []string{"hello", "world"}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"wide runes", "日本語です", 4, []string{"日本", "語で", "す"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.in, tt.width))
		})
	}
}

func TestWrapText_KeepsBlankLines(t *testing.T) {
	assert.Equal(t, []string{"a", "", "b"}, WrapText("a\n\nb", 10))
}

// =============================================================================
// COMPOSE TESTS
// =============================================================================

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tab at start", "\tx", "    x"},
		{"tab after text", "ab\tc", "ab  c"},
		{"escape and bell", "a\x1b[2Jb\x07", "a^[[2Jb^G"},
		{"carriage return", "X\rY", "X^MY"},
		{"delete", "a\x7fb", "a^?b"},
		{"c1 control dropped", "a\u009bb", "ab"},
		{"wide runes kept", "日\t本", "日  本"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestComposeMessage_NeutralizesControlSequences(t *testing.T) {
	m := msg(model.RoleAssistant, "hi\x1b]0;pwned\x07\x1b[2Jthere\tX\rY")
	lines := ComposeMessage(m, 40, nil)

	require.Len(t, lines, 1)
	assert.Equal(t, "AI: hi^[]0;pwned^G^[[2Jthere    X^MY", lines[0].Text)
	assert.Equal(t, 36, util.Width(lines[0].Text))

	r, s, _ := newTestRenderer(10, 40)
	r.Redraw(&Frame{Messages: []model.Message{m}}, true)
	for _, line := range s.Lines() {
		for _, c := range line {
			assert.False(t, c < 0x20 || c == 0x7f, "control character %q reached the surface", c)
		}
	}
	assert.True(t, s.Contains("there    X^MY"))
}

func TestComposeMessage_FileContentTabsExpanded(t *testing.T) {
	content := "see\n```file content: a.go\nfunc f() {\n\treturn\n}\n```"
	lines := ComposeMessage(msg(model.RoleUser, content), 40, nil)

	var texts []string
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	assert.Contains(t, texts, "    return")
}

func TestComposeMessage_LabelsAndTones(t *testing.T) {
	tests := []struct {
		msg  model.Message
		want Line
	}{
		{msg(model.RoleUser, "hi"), Line{"You: hi", styles.ToneUser}},
		{msg(model.RoleAssistant, "yo"), Line{"AI: yo", styles.ToneAssistant}},
		{msg(model.RoleSystem, "note"), Line{"System: note", styles.ToneSystem}},
		{model.Message{Role: model.RoleSystem, Content: "bad", Error: true}, Line{"System: bad", styles.ToneError}},
	}
	for _, tt := range tests {
		lines := ComposeMessage(tt.msg, 40, nil)
		require.Len(t, lines, 1)
		assert.Equal(t, tt.want, lines[0])
	}
}

func TestComposeMessage_NewlinesAndDisplay(t *testing.T) {
	display := func(s string) string { return strings.ReplaceAll(s, "{{:F/long/path/a.go}}", "{{:Fa.go}}") }
	lines := ComposeMessage(msg(model.RoleUser, "see {{:F/long/path/a.go}}\nthanks"), 40, display)

	assert.Equal(t, []Line{
		{"You: see {{:Fa.go}}", styles.ToneUser},
		{"thanks", styles.ToneUser},
	}, lines)
}

func TestComposeMessage_FileContentSegment(t *testing.T) {
	content := "check this\n```file content: a.txt\nline one\n```\nok?"
	lines := ComposeMessage(msg(model.RoleUser, content), 40, nil)

	assert.Equal(t, []Line{
		{"You: check this", styles.ToneUser},
		{"```file content: a.txt", styles.ToneFile},
		{"line one", styles.ToneFile},
		{"```", styles.ToneFile},
		{"ok?", styles.ToneUser},
	}, lines)
}

func TestTailStart(t *testing.T) {
	msgs := []model.Message{
		msg(model.RoleUser, "u1"),
		msg(model.RoleAssistant, "a1"),
		msg(model.RoleUser, "u2"),
		msg(model.RoleSystem, "s"),
		msg(model.RoleAssistant, "a2"),
	}
	assert.Equal(t, 2, tailStart(msgs))
	assert.Equal(t, 0, tailStart(msgs[:1]))
	assert.Equal(t, 1, tailStart([]model.Message{msg(model.RoleSystem, "s"), msg(model.RoleUser, "u")}))
	assert.Equal(t, 0, tailStart(nil))
}

// =============================================================================
// RENDERER TESTS
// =============================================================================

func newTestRenderer(rows, cols int) (*Renderer, *rendertest.Surface, *fakeClock) {
	surface := rendertest.New(rows, cols)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	r := NewRenderer(surface, NewThrottle(100*time.Millisecond).WithClock(clock.Now))
	return r, surface, clock
}

func TestRenderer_FullRedrawLayout(t *testing.T) {
	r, s, _ := newTestRenderer(10, 30)
	var msgs []model.Message
	for i := 0; i < 8; i++ {
		msgs = append(msgs, msg(model.RoleUser, string(rune('a'+i))))
	}
	f := &Frame{Header: "termchat", Messages: msgs, Prompt: "> ", Input: "draft", Cursor: 5, Help: "help"}

	require.True(t, r.Redraw(f, true))

	assert.Equal(t, "termchat", s.Line(0))
	assert.Equal(t, strings.Repeat("─", 29), s.Line(1))
	// Pane rows 2..6: the newest five messages, newest at the bottom.
	assert.Equal(t, "You: d", s.Line(2))
	assert.Equal(t, "You: h", s.Line(6))
	assert.Equal(t, strings.Repeat("─", 29), s.Line(7))
	assert.Equal(t, "> draft", s.Line(8))
	assert.Equal(t, "help", s.Line(9))

	row, col := s.Cursor()
	assert.Equal(t, 8, row)
	assert.Equal(t, 7, col)
}

func TestRenderer_FewMessagesSitAtBottom(t *testing.T) {
	r, s, _ := newTestRenderer(10, 30)
	r.Redraw(&Frame{Messages: []model.Message{msg(model.RoleAssistant, "only")}}, true)

	assert.Equal(t, "", s.Line(2))
	assert.Equal(t, "AI: only", s.Line(6))
}

func TestRenderer_ThrottlesFullRedraw(t *testing.T) {
	r, _, clock := newTestRenderer(10, 30)
	f := &Frame{}

	assert.True(t, r.Redraw(f, false))
	clock.Advance(10 * time.Millisecond)
	assert.False(t, r.Redraw(f, false))
	assert.True(t, r.Redraw(f, true))

	st := r.Stats()
	assert.Equal(t, 2, st.Full)
	assert.Equal(t, 1, st.Dropped)
}

func TestRenderer_RedrawInputLeavesPane(t *testing.T) {
	r, s, _ := newTestRenderer(10, 30)
	f := &Frame{Messages: []model.Message{msg(model.RoleUser, "hello")}, Prompt: "> "}
	r.Redraw(f, true)
	clears := s.Clears

	f.Input, f.Cursor = "typing", 6
	r.RedrawInput(f)

	assert.Equal(t, clears, s.Clears, "partial redraw never clears the screen")
	assert.Equal(t, "You: hello", s.Line(6))
	assert.Equal(t, "> typing", s.Line(8))
	assert.Equal(t, 1, r.Stats().Partial)
}

func TestRenderer_RedrawStreamUpdatesTail(t *testing.T) {
	r, s, _ := newTestRenderer(10, 30)
	msgs := []model.Message{
		msg(model.RoleSystem, "tip"),
		msg(model.RoleUser, "question"),
		msg(model.RoleAssistant, "Thinking..."),
	}
	f := &Frame{Messages: msgs, Prompt: "> "}
	r.Redraw(f, true)
	assert.Equal(t, "AI: Thinking...", s.Line(6))

	msgs[2].Content = "Partial"
	r.RedrawStream(f)

	assert.Equal(t, 1, r.Stats().Incremental)
	assert.Equal(t, "You: question", s.Line(5))
	assert.Equal(t, "AI: Partial", s.Line(6))
	assert.Equal(t, "System: tip", s.Line(4), "rows above the tail are untouched")
}

func TestRenderer_RedrawStreamGrowingTailRedrawsFully(t *testing.T) {
	r, s, clock := newTestRenderer(10, 30)
	msgs := []model.Message{msg(model.RoleUser, "q"), msg(model.RoleAssistant, "a")}
	f := &Frame{Messages: msgs}
	r.Redraw(f, true)

	clock.Advance(time.Second)
	msgs[1].Content = "a\nb"
	r.RedrawStream(f)

	assert.Equal(t, 2, r.Stats().Full)
	assert.Equal(t, 0, r.Stats().Incremental)
	assert.Equal(t, "b", s.Line(6))
}

func TestRenderer_TooSmall(t *testing.T) {
	r, s, _ := newTestRenderer(3, 30)
	r.Redraw(&Frame{}, true)
	assert.Equal(t, "terminal too small", s.Line(0))
}

func TestInputLine(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		cursor   int
		width    int
		wantLine string
		wantCol  int
	}{
		{"short", "abc", 3, 20, "> abc", 5},
		{"cursor mid", "abc", 1, 20, "> abc", 3},
		{"elided", "abcdefghij", 10, 8, "> ...ij", 7},
		{"wide", "日本", 2, 20, "> 日本", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col := InputLine("> ", tt.text, tt.cursor, nil, tt.width)
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestInputLine_CursorInsideShortenedToken(t *testing.T) {
	table := templating.NewTableAt("/work")
	token := table.Add("/elsewhere/dir/notes.txt")
	text := "a " + token

	tests := []struct {
		name    string
		cursor  int
		wantCol int
	}{
		{"before token", 2, 4},
		{"just inside token", 4, 19},
		{"deep inside token", 12, 19},
		{"after token", len([]rune(text)), 19},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, col := InputLine("> ", text, tt.cursor, table.Display, 40)
			assert.Equal(t, "> a {{:Fnotes.txt}}", line)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestInputLine_UnregisteredTagKeepsCursor(t *testing.T) {
	table := templating.NewTableAt("/work")
	line, col := InputLine("> ", "{{:Fx.txt}}", 3, table.Display, 40)
	assert.Equal(t, "> {{:Fx.txt}}", line)
	assert.Equal(t, 5, col)
}

func TestDrawList(t *testing.T) {
	r, s, _ := newTestRenderer(6, 30)
	r.DrawList(ListScreen{
		Title:    "Pick",
		Rows:     []Line{{Text: "one"}, {Text: "two"}, {Text: "three"}},
		Help:     "Enter: select",
		Selected: 1,
	})

	assert.Equal(t, "Pick", s.Line(0))
	assert.Equal(t, "  one", s.Line(1))
	assert.Equal(t, "> two", s.Line(2))
	assert.Equal(t, styles.ToneSelected, s.Tone(2))
	assert.Equal(t, "Enter: select", s.Line(5))
}

func TestComposeTranscript_Markdown(t *testing.T) {
	msgs := []model.Message{
		msg(model.RoleUser, "list please"),
		msg(model.RoleAssistant, "Items:\n\n- alpha\n- beta"),
	}
	lines := ComposeTranscript(msgs, 40, nil, NewMarkdown())

	require.NotEmpty(t, lines)
	assert.Equal(t, "You: list please", lines[0].Text)
	assert.Equal(t, "AI:", lines[1].Text)

	var body []string
	for _, l := range lines[2:] {
		assert.Equal(t, styles.ToneAssistant, l.Tone)
		body = append(body, l.Text)
	}
	joined := strings.Join(body, "\n")
	assert.Contains(t, joined, "alpha")
	assert.Contains(t, joined, "beta")
	assert.NotContains(t, joined, "\x1b[")
}
