// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/termchat/internal/cloud"
	"github.com/jeranaias/termchat/internal/model"
	"github.com/jeranaias/termchat/internal/storage"
	"github.com/jeranaias/termchat/internal/templating"
	"github.com/jeranaias/termchat/internal/ui/components"
	"github.com/jeranaias/termchat/internal/ui/input"
	"github.com/jeranaias/termchat/internal/ui/render"
	"github.com/jeranaias/termchat/internal/util"
)

// =============================================================================
// MODES
// =============================================================================

// Mode is the state of the session controller.
type Mode int

const (
	ModeNormal Mode = iota
	ModeCommand
	ModeConfirmPurge
	ModeFilePicker
	ModeProviderPicker
	ModeHistory
	ModeTranscript
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeCommand:
		return "command"
	case ModeConfirmPurge:
		return "confirm-purge"
	case ModeFilePicker:
		return "file-picker"
	case ModeProviderPicker:
		return "provider-picker"
	case ModeHistory:
		return "history"
	case ModeTranscript:
		return "transcript"
	default:
		return "unknown"
	}
}

// modal reports whether the mode owns the whole screen.
func (m Mode) modal() bool {
	return m >= ModeFilePicker
}

// filePurpose says what a file picked in ModeFilePicker is for.
type filePurpose int

const (
	pickAttachment filePurpose = iota
	pickConversation
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Controller.
type Options struct {
	// Profiles is the ordered provider list. Initial is the active one and
	// defaults to the first.
	Profiles []*cloud.Profile
	Initial  *cloud.Profile

	Exchanger Exchanger
	Store     *storage.Store
	Fetcher   *templating.Fetcher
	Table     *templating.Table

	Throttle           *render.Throttle
	MaxMessageLength   int
	ContextWindow      int
	StreamFPS          int
	MarkdownTranscript bool

	// WorkDir is where the file picker starts. Defaults to ".".
	WorkDir string

	// Notices are appended after the startup tips.
	Notices []string

	Logger *zap.Logger
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the session: the log, the editors, the pickers and the
// redraw policy. All of its methods run on the foreground loop; the only
// concurrent writer to the log is the Bridge.
type Controller struct {
	opts     Options
	logger   *zap.Logger
	log      *model.Log
	renderer *render.Renderer
	bridge   *Bridge
	table    *templating.Table
	expander *templating.Expander
	markdown *render.Markdown

	ctx     context.Context
	profile *cloud.Profile
	mode    Mode

	input   *components.LineEditor
	command *components.LineEditor
	saved   components.EditorState

	files      *components.FileBrowser
	purpose    filePurpose
	providers  *components.Selector[*cloud.Profile]
	history    *components.Selector[storage.ConversationMeta]
	pager      *components.Pager
	pagerTitle string
	pagerWidth int
	transcript []model.Message
}

// New creates a controller drawing on surface.
func New(surface render.Surface, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Table == nil {
		opts.Table = templating.NewTable()
	}
	if opts.Fetcher == nil {
		opts.Fetcher = templating.NewFetcher(templating.DefaultMaxFileSize, "")
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = 10
	}

	log := model.NewLog()
	c := &Controller{
		opts:     opts,
		logger:   logger,
		log:      log,
		renderer: render.NewRenderer(surface, opts.Throttle),
		bridge: NewBridge(opts.Exchanger, log, BridgeOptions{
			MaxResponseLength: opts.MaxMessageLength,
			StreamFPS:         opts.StreamFPS,
			Logger:            logger,
		}),
		table:     opts.Table,
		expander:  templating.NewExpander(opts.Fetcher, opts.Table),
		ctx:       context.Background(),
		profile:   opts.Initial,
		input:     components.NewLineEditor(true),
		command:   components.NewLineEditor(false),
		files:     components.NewFileBrowser(),
		providers: components.NewSelector((*cloud.Profile).String),
		history:   components.NewSelector(storage.ConversationMeta.Label),
		pager:     components.NewPager(),
	}
	if c.profile == nil && len(opts.Profiles) > 0 {
		c.profile = opts.Profiles[0]
	}
	if opts.MarkdownTranscript {
		c.markdown = render.NewMarkdown()
	}

	for _, n := range startupNotices {
		c.log.Append(model.NewNotice(n, false))
	}
	for _, n := range opts.Notices {
		c.log.Append(model.NewNotice(n, false))
	}
	return c
}

// Log returns the conversation log.
func (c *Controller) Log() *model.Log { return c.log }

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Profile returns the active provider profile.
func (c *Controller) Profile() *cloud.Profile { return c.profile }

// Renderer returns the renderer, for redraw statistics.
func (c *Controller) Renderer() *render.Renderer { return c.renderer }

// Bridge returns the streaming bridge.
func (c *Controller) Bridge() *Bridge { return c.bridge }

// InputText returns the main input buffer.
func (c *Controller) InputText() string { return c.input.Text() }

// =============================================================================
// MAIN LOOP
// =============================================================================

// Run is the foreground loop. It returns nil when the user exits or keys is
// closed, and ctx.Err() when ctx ends. A running exchange is cancelled and
// waited for before Run returns.
func (c *Controller) Run(ctx context.Context, keys <-chan input.Key, resize <-chan struct{}) error {
	ctx, cancel := context.WithCancel(ctx)
	defer c.bridge.Wait()
	defer cancel()
	c.ctx = ctx

	var historyChanged <-chan struct{}
	if c.opts.Store != nil {
		ch, err := c.opts.Store.Watch(ctx, storage.DefaultWatchDebounce)
		if err != nil {
			c.logger.Debug("history watch unavailable", zap.Error(err))
		} else {
			historyChanged = ch
		}
	}

	c.logger.Info("session started", zap.Stringer("profile", c.profile))
	c.refresh(true)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case k, ok := <-keys:
			if !ok {
				return nil
			}
			if c.HandleKey(k) {
				c.logger.Info("session ended", zap.Int("messages", c.log.Len()))
				return nil
			}

		case u := <-c.bridge.Updates():
			c.applyUpdate(u)

		case <-resize:
			c.refresh(true)

		case <-historyChanged:
			if c.mode == ModeHistory {
				c.reloadHistory()
			}
		}
	}
}

// HandleKey processes one key and reports whether the session should end.
func (c *Controller) HandleKey(k input.Key) bool {
	switch c.mode {
	case ModeNormal:
		return c.handleNormalKey(k)
	case ModeCommand:
		return c.handleCommandKey(k)
	case ModeConfirmPurge:
		c.handlePurgeAnswer(k)
	case ModeFilePicker:
		c.handleFileKey(k)
	case ModeProviderPicker:
		c.handleProviderKey(k)
	case ModeHistory:
		c.handleHistoryKey(k)
	case ModeTranscript:
		c.handleTranscriptKey(k)
	}
	return false
}

// applyUpdate redraws after the bridge changed the log. Modal screens are
// left alone; the chat screen is redrawn when they close.
func (c *Controller) applyUpdate(u Update) {
	if c.mode.modal() {
		return
	}
	switch u.Kind {
	case UpdateDelta:
		c.renderer.RedrawStream(c.frame())
	default:
		c.renderer.Redraw(c.frame(), true)
	}
}

// =============================================================================
// NORMAL AND COMMAND INPUT
// =============================================================================

func (c *Controller) handleNormalKey(k input.Key) bool {
	switch k.Type {
	case input.KeyCancel:
		return true
	case input.KeySubmit:
		c.send()
		return false
	case input.KeyCommand:
		c.saved = c.input.State()
		c.command.Reset()
		c.mode = ModeCommand
	default:
		editKey(c.input, k)
	}
	c.renderer.RedrawInput(c.frame())
	return false
}

func (c *Controller) handleCommandKey(k input.Key) bool {
	switch k.Type {
	case input.KeyCancel:
		c.leaveCommandMode()
	case input.KeySubmit:
		line := c.command.Submit()
		c.leaveCommandMode()
		return c.execute(line)
	case input.KeyUp, input.KeyDown, input.KeyCommand:
	default:
		editKey(c.command, k)
	}
	c.renderer.RedrawInput(c.frame())
	return false
}

func (c *Controller) leaveCommandMode() {
	c.command.Reset()
	c.input.Restore(c.saved)
	c.mode = ModeNormal
}

// editKey applies an editing key to e. Recall only affects editors that
// keep history.
func editKey(e *components.LineEditor, k input.Key) {
	switch k.Type {
	case input.KeyRune:
		e.Insert(k.Rune)
	case input.KeyBackspace:
		e.DeleteBackward()
	case input.KeyLeft:
		e.MoveLeft()
	case input.KeyRight:
		e.MoveRight()
	case input.KeyUp:
		e.RecallPrevious()
	case input.KeyDown:
		e.RecallNext()
	}
}

// =============================================================================
// SENDING
// =============================================================================

// send submits the main input. The log keeps the typed text with its
// compact tags; only the copy handed to the provider is expanded.
func (c *Controller) send() {
	if strings.TrimSpace(c.input.Text()) == "" {
		return
	}
	if c.bridge.Busy() {
		c.notice(NoticeBusy, false)
		c.refresh(true)
		return
	}
	if c.profile == nil {
		c.notice("No provider configured", true)
		c.refresh(true)
		return
	}

	typed := c.input.Submit()
	if c.opts.MaxMessageLength > 0 {
		typed, _ = util.ClampRunes(typed, c.opts.MaxMessageLength, MessageTruncatedMarker)
	}
	c.log.Append(model.NewMessage(model.RoleUser, typed))

	window := c.log.Window(c.opts.ContextWindow)
	for i := range window {
		if window[i].Role != model.RoleUser {
			continue
		}
		exp := c.expander.Expand(window[i].Content)
		for _, e := range exp.Errors {
			c.logger.Debug("file tag not expanded", zap.String("path", e.Path), zap.Error(e.Err))
		}
		window[i].Content = exp.Text
	}

	placeholder := model.NewMessage(model.RoleAssistant, ThinkingPlaceholder)
	c.log.Append(placeholder)

	err := c.bridge.Start(c.ctx, Exchange{
		Profile:       c.profile,
		Messages:      window,
		PlaceholderID: placeholder.ID,
		Epoch:         c.log.Epoch(),
	})
	if err != nil {
		c.log.Remove(c.log.Epoch(), placeholder.ID)
		c.notice(describeError(err), true)
	}
	c.refresh(true)
}

// =============================================================================
// DRAWING
// =============================================================================

// notice appends a system message, cut to the message length limit.
func (c *Controller) notice(text string, isError bool) {
	if c.opts.MaxMessageLength > 0 {
		text, _ = util.ClampRunes(text, c.opts.MaxMessageLength, noticeTruncatedMarker)
	}
	c.log.Append(model.NewNotice(text, isError))
}

// frame builds the chat screen for the current state.
func (c *Controller) frame() *render.Frame {
	f := &render.Frame{
		Header:   headerText(c.profile),
		Messages: c.log.Snapshot(),
		Display:  c.table.Display,
		Prompt:   promptNormal,
		Input:    c.input.Text(),
		Cursor:   c.input.Cursor(),
		Help:     helpNormal,
	}
	switch c.mode {
	case ModeCommand:
		f.Prompt = promptCommand
		f.Input = c.command.Text()
		f.Cursor = c.command.Cursor()
		f.Help = helpCommand
	case ModeConfirmPurge:
		f.Prompt = "Confirm (y/n): "
		f.Input = ""
		f.Cursor = 0
		f.Help = NoticePurgeConfirm
	}
	return f
}

// refresh redraws whatever the current mode shows. Only the chat screen is
// subject to the throttle.
func (c *Controller) refresh(force bool) {
	switch c.mode {
	case ModeFilePicker:
		c.drawFiles()
	case ModeProviderPicker:
		c.drawProviders()
	case ModeHistory:
		c.drawHistory()
	case ModeTranscript:
		c.drawTranscript()
	default:
		c.renderer.Redraw(c.frame(), force)
	}
}

func (c *Controller) listCapacity() int {
	rows, _ := c.renderer.Surface().Size()
	return render.ListCapacity(rows)
}
