// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/termchat/internal/cloud"
	"github.com/jeranaias/termchat/internal/model"
	"github.com/jeranaias/termchat/internal/storage"
	"github.com/jeranaias/termchat/internal/ui/components"
	"github.com/jeranaias/termchat/internal/ui/input"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler runs a command with its argument (the text after the
// command word, trimmed). It reports whether the session should end.
type CommandHandler func(c *Controller, arg string) bool

// Command is one entry of the registry.
type Command struct {
	Name    string
	Aliases []string
	Handler CommandHandler
}

// commands is the registry, in the order they are listed in help text.
var commands = []Command{
	{Name: "file", Aliases: []string{"f"}, Handler: handleFileCommand},
	{Name: "provider", Aliases: []string{"p"}, Handler: handleProviderCommand},
	{Name: "clear", Aliases: []string{"cr"}, Handler: handleClearCommand},
	{Name: "save", Aliases: []string{"s"}, Handler: handleSaveCommand},
	{Name: "load", Aliases: []string{"l"}, Handler: handleLoadCommand},
	{Name: "history", Aliases: []string{"h"}, Handler: handleHistoryCommand},
	{Name: "clean", Aliases: []string{"cn", "purge"}, Handler: handleCleanCommand},
	{Name: "exit", Aliases: []string{"quit", "q"}, Handler: handleExitCommand},
}

// ResolveCommand finds the command for word. An exact name or alias wins;
// otherwise word must be a prefix of exactly one command's name or alias.
// When several commands match, their names are returned as candidates.
func ResolveCommand(word string) (cmd *Command, candidates []string) {
	word = strings.ToLower(word)
	for i := range commands {
		if commands[i].Name == word {
			return &commands[i], nil
		}
		for _, a := range commands[i].Aliases {
			if a == word {
				return &commands[i], nil
			}
		}
	}

	var matched []*Command
	for i := range commands {
		names := append([]string{commands[i].Name}, commands[i].Aliases...)
		for _, n := range names {
			if strings.HasPrefix(n, word) {
				matched = append(matched, &commands[i])
				break
			}
		}
	}
	if len(matched) == 1 {
		return matched[0], nil
	}
	for _, m := range matched {
		candidates = append(candidates, m.Name)
	}
	return nil, candidates
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, cmd := range commands {
		names[i] = cmd.Name
	}
	return names
}

// execute runs one line of command input.
func (c *Controller) execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		c.renderer.RedrawInput(c.frame())
		return false
	}
	word, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	cmd, candidates := ResolveCommand(word)
	if cmd == nil {
		switch {
		case len(candidates) > 1:
			c.notice(fmt.Sprintf("Ambiguous command %q: %s", word, strings.Join(candidates, ", ")), true)
		default:
			msg := "Unknown command: " + word
			if s := components.Suggest(word, commandNames()); len(s) > 0 {
				msg += " (did you mean: " + s[0] + "?)"
			}
			c.notice(msg, true)
		}
		c.refresh(true)
		return false
	}

	c.logger.Debug("command", zap.String("name", cmd.Name), zap.Bool("arg", arg != ""))
	if cmd.Handler(c, arg) {
		return true
	}
	c.refresh(true)
	return false
}

// =============================================================================
// HANDLERS
// =============================================================================

func handleFileCommand(c *Controller, _ string) bool {
	c.openFilePicker(c.opts.WorkDir, pickAttachment)
	return false
}

func handleProviderCommand(c *Controller, _ string) bool {
	if len(c.opts.Profiles) == 0 {
		c.notice("No providers configured", true)
		return false
	}
	c.providers.SetItems(c.opts.Profiles)
	for i, p := range c.opts.Profiles {
		if p == c.profile {
			c.providers.Select(i)
		}
	}
	c.mode = ModeProviderPicker
	return false
}

func handleClearCommand(c *Controller, _ string) bool {
	c.bridge.Cancel()
	c.log.Clear()
	c.table.Clear()
	c.notice(NoticeCleared, false)
	return false
}

func handleSaveCommand(c *Controller, name string) bool {
	if c.opts.Store == nil {
		c.notice("History is not available", true)
		return false
	}
	conv := &storage.StoredConversation{Messages: storedMessages(c.log.Persistable())}
	if c.profile != nil {
		conv.Provider = c.profile.Name
		conv.Model = c.profile.Model
	}
	path, err := c.opts.Store.Save(name, conv)
	if err != nil {
		c.notice("Save failed: "+err.Error(), true)
		return false
	}
	c.notice("Conversation saved to: "+path, false)
	return false
}

func handleLoadCommand(c *Controller, name string) bool {
	if c.opts.Store == nil {
		c.notice("History is not available", true)
		return false
	}
	if name == "" {
		c.openFilePicker(c.opts.Store.BaseDir, pickConversation)
		return false
	}
	conv, path, err := c.opts.Store.LoadNamed(name)
	if err != nil {
		c.notice("Load failed: "+err.Error(), true)
		return false
	}
	c.restore(conv, path)
	return false
}

func handleHistoryCommand(c *Controller, _ string) bool {
	if c.opts.Store == nil {
		c.notice("History is not available", true)
		return false
	}
	metas, err := c.opts.Store.List()
	if err != nil {
		c.notice("Cannot list history: "+err.Error(), true)
		return false
	}
	if len(metas) == 0 {
		c.notice(NoticeHistoryEmpty, false)
		return false
	}
	c.history.SetItems(metas)
	c.mode = ModeHistory
	return false
}

func handleCleanCommand(c *Controller, _ string) bool {
	if c.opts.Store == nil {
		c.notice("History is not available", true)
		return false
	}
	c.notice(NoticePurgeConfirm, false)
	c.mode = ModeConfirmPurge
	return false
}

func handleExitCommand(_ *Controller, _ string) bool {
	return true
}

// handlePurgeAnswer acts on the key typed after the purge question. Only
// y or Y deletes anything.
func (c *Controller) handlePurgeAnswer(k input.Key) {
	c.mode = ModeNormal
	if k.Type == input.KeyRune && (k.Rune == 'y' || k.Rune == 'Y') {
		if err := c.opts.Store.Purge(); err != nil {
			c.notice("Purge failed: "+err.Error(), true)
		} else {
			c.notice(NoticePurged, false)
		}
	} else {
		c.notice(NoticePurgeCancelled, false)
	}
	c.refresh(true)
}

// =============================================================================
// CONVERSATION RESTORE
// =============================================================================

func storedMessages(msgs []model.Message) []storage.StoredMessage {
	out := make([]storage.StoredMessage, len(msgs))
	for i, m := range msgs {
		out[i] = storage.StoredMessage{Role: m.Role.String(), Content: m.Content}
	}
	return out
}

// restore replaces the conversation with a loaded one, rebuilds the
// placeholder table and switches to the stored provider when possible.
func (c *Controller) restore(conv *storage.StoredConversation, path string) {
	c.bridge.Cancel()

	msgs := make([]model.Message, 0, len(conv.Messages))
	var texts []string
	for _, m := range conv.Messages {
		role, ok := model.ParseRole(m.Role)
		if !ok || !role.Persisted() {
			continue
		}
		msgs = append(msgs, model.NewMessage(role, m.Content))
		if role == model.RoleUser {
			texts = append(texts, m.Content)
		}
	}
	c.log.Reset(msgs)
	c.table.Rebuild(texts...)

	c.notice("Loaded conversation: "+filepath.Base(path), false)
	c.notice(fmt.Sprintf("Provider: %s, model: %s", conv.Provider, conv.Model), false)

	switch p := c.matchProfile(conv.Provider, conv.Model); {
	case p != nil:
		c.profile = p
	case c.profile != nil:
		c.notice(fmt.Sprintf("Provider %q is not configured; keeping %s", conv.Provider, c.profile.Name), true)
	}
	c.logger.Info("conversation loaded", zap.String("path", path), zap.Int("messages", len(msgs)))
}

// matchProfile finds the profile for a stored provider and model: an exact
// match, else a profile with the same name using the stored model.
func (c *Controller) matchProfile(name, model string) *cloud.Profile {
	for _, p := range c.opts.Profiles {
		if p.Name == name && p.Model == model {
			return p
		}
	}
	for _, p := range c.opts.Profiles {
		if strings.EqualFold(p.Name, name) {
			return p.WithModel(model)
		}
	}
	return nil
}
