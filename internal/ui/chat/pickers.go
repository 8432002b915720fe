// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/termchat/internal/model"
	"github.com/jeranaias/termchat/internal/storage"
	"github.com/jeranaias/termchat/internal/ui/input"
	"github.com/jeranaias/termchat/internal/ui/render"
	"github.com/jeranaias/termchat/internal/ui/styles"
)

// closeModal returns to the chat screen.
func (c *Controller) closeModal() {
	c.mode = ModeNormal
}

// =============================================================================
// FILE PICKER
// =============================================================================

func (c *Controller) openFilePicker(dir string, purpose filePurpose) {
	if err := c.files.Open(dir); err != nil {
		c.notice("Cannot open directory: "+err.Error(), true)
		return
	}
	c.purpose = purpose
	c.mode = ModeFilePicker
}

func (c *Controller) handleFileKey(k input.Key) {
	switch k.Type {
	case input.KeyUp:
		c.files.Up()
	case input.KeyDown:
		c.files.Down()
	case input.KeyLeft, input.KeyBackspace:
		c.files.Parent()
	case input.KeyCancel:
		c.closeModal()
	case input.KeySubmit:
		path, done, err := c.files.Activate()
		switch {
		case err != nil:
			c.notice("Cannot open directory: "+err.Error(), true)
		case done:
			c.closeModal()
			c.filePicked(path)
		}
	}
	c.refresh(true)
}

func (c *Controller) filePicked(path string) {
	switch c.purpose {
	case pickAttachment:
		token := c.table.Add(path)
		text := c.input.Text()
		if text != "" && !strings.HasSuffix(text, " ") {
			text += " "
		}
		c.input.SetText(text + token)
	case pickConversation:
		conv, err := c.opts.Store.Load(path)
		if err != nil {
			c.notice("Load failed: "+err.Error(), true)
			return
		}
		c.restore(conv, path)
	}
}

func (c *Controller) drawFiles() {
	c.files.SetVisibleRows(c.listCapacity())
	entries, sel := c.files.Visible()
	rows := make([]render.Line, len(entries))
	for i, e := range entries {
		tone := styles.ToneDefault
		if e.IsDir {
			tone = styles.ToneFile
		}
		rows[i] = render.Line{Text: e.Label(), Tone: tone}
	}
	title := c.files.Dir()
	if err := c.files.Err(); err != nil {
		title += " (error: " + err.Error() + ")"
	}
	c.renderer.DrawList(render.ListScreen{Title: title, Rows: rows, Help: helpFiles, Selected: sel})
}

// =============================================================================
// PROVIDER PICKER
// =============================================================================

func (c *Controller) handleProviderKey(k input.Key) {
	switch k.Type {
	case input.KeyUp:
		c.providers.Up()
	case input.KeyDown:
		c.providers.Down()
	case input.KeyCancel:
		c.closeModal()
	case input.KeySubmit:
		c.closeModal()
		if p, ok := c.providers.Selected(); ok {
			c.profile = p
			c.notice(fmt.Sprintf("Switched to: %s (%s)", p.Name, p.Model), false)
			c.logger.Info("provider switched", zap.String("provider", p.Name), zap.String("model", p.Model))
		}
	}
	c.refresh(true)
}

func (c *Controller) drawProviders() {
	c.providers.SetVisibleRows(c.listCapacity())
	labels, sel := c.providers.VisibleLabels()
	rows := make([]render.Line, len(labels))
	for i, l := range labels {
		rows[i] = render.Line{Text: l}
	}
	c.renderer.DrawList(render.ListScreen{Title: "Select provider:", Rows: rows, Help: helpList, Selected: sel})
}

// =============================================================================
// HISTORY BROWSER
// =============================================================================

func (c *Controller) handleHistoryKey(k input.Key) {
	switch k.Type {
	case input.KeyUp:
		c.history.Up()
	case input.KeyDown:
		c.history.Down()
	case input.KeyCancel:
		c.closeModal()
	case input.KeySubmit:
		if meta, ok := c.history.Selected(); ok {
			c.openTranscript(meta)
		}
	}
	c.refresh(true)
}

// reloadHistory re-lists the history directory, keeping the highlighted
// file when it still exists.
func (c *Controller) reloadHistory() {
	metas, err := c.opts.Store.List()
	if err != nil {
		c.logger.Debug("history reload failed", zap.Error(err))
		return
	}
	current, _ := c.history.Selected()
	c.history.SetItems(metas)
	for i, m := range metas {
		if m.Path == current.Path {
			c.history.Select(i)
			break
		}
	}
	if len(metas) == 0 {
		c.closeModal()
		c.notice(NoticeHistoryEmpty, false)
	}
	c.refresh(true)
}

func (c *Controller) drawHistory() {
	c.history.SetVisibleRows(c.listCapacity())
	metas, sel := c.history.Visible()
	rows := make([]render.Line, len(metas))
	for i, m := range metas {
		tone := styles.ToneDefault
		if m.Corrupt {
			tone = styles.ToneError
		}
		rows[i] = render.Line{Text: m.Label(), Tone: tone}
	}
	title := fmt.Sprintf("Saved conversations (%d)", c.history.Len())
	c.renderer.DrawList(render.ListScreen{Title: title, Rows: rows, Help: helpHistory, Selected: sel})
}

// =============================================================================
// TRANSCRIPT VIEWER
// =============================================================================

func (c *Controller) openTranscript(meta storage.ConversationMeta) {
	c.transcript = nil
	c.pagerWidth = 0
	conv, err := c.opts.Store.Load(meta.Path)
	if err != nil {
		c.pagerTitle = meta.Name
		c.transcript = []model.Message{model.NewNotice("Cannot read conversation: "+err.Error(), true)}
	} else {
		c.pagerTitle = fmt.Sprintf("%s (%s, %s)", conv.Title, conv.Provider, conv.Model)
		for _, m := range conv.Messages {
			if role, ok := model.ParseRole(m.Role); ok {
				c.transcript = append(c.transcript, model.NewMessage(role, m.Content))
			}
		}
	}
	c.mode = ModeTranscript
}

func (c *Controller) handleTranscriptKey(k input.Key) {
	switch k.Type {
	case input.KeyUp:
		c.pager.ScrollUp(1)
	case input.KeyDown:
		c.pager.ScrollDown(1)
	case input.KeyLeft:
		c.pager.PageUp()
	case input.KeyRight:
		c.pager.PageDown()
	case input.KeyCancel, input.KeySubmit:
		c.mode = ModeHistory
	}
	c.refresh(true)
}

func (c *Controller) drawTranscript() {
	rows, cols := c.renderer.Surface().Size()
	width := render.Layout{Rows: rows, Cols: cols}.Width()
	c.pager.SetVisibleRows(render.ListCapacity(rows))
	if width != c.pagerWidth {
		c.pager.SetLines(render.ComposeTranscript(c.transcript, width, nil, c.markdown))
		c.pagerWidth = width
	}
	title := c.pagerTitle
	if pos := c.pager.Position(); pos != "" {
		title += " " + pos
	}
	c.renderer.DrawPage(title, c.pager.Visible(), helpPage)
}
