// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-secure-folder/internal/config"
	"github.com/MKhiriev/go-secure-folder/internal/crypto"
	"github.com/MKhiriev/go-secure-folder/internal/service"
	"github.com/MKhiriev/go-secure-folder/models"
)

const defaultKeyFileName = "secure-folder.key"

type screen int

const (
	screenBrowser screen = iota
	screenHistory
)

type appModel struct {
	ctx     context.Context
	engine  service.Engine
	fs      service.FileSystemService
	appInfo service.AppInfoService

	statusTimeout time.Duration
	keyLength     crypto.KeyLength

	screen  screen
	dir     string
	entries []models.DirEntry
	cursor  int

	prompt  promptModel
	heldKey *crypto.Secret

	running       []*service.Operation
	polling       bool
	spinner       spinner.Model
	lastContainer string

	status statusLine
	seq    int

	history       []models.HistoryRecord
	historyOffset int

	showBuildInfo bool
	width         int
	height        int
}

func newAppModel(ctx context.Context, services *service.ClientServices, cfg config.ClientApp, keyLength crypto.KeyLength) appModel {
	dir := cfg.RootDir
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if !keyLength.Valid() {
		keyLength = crypto.DefaultKeyLength
	}

	s := spinner.New()
	s.Spinner = spinner.MiniDot

	return appModel{
		ctx:           ctx,
		engine:        services.Engine,
		fs:            services.FileSystem,
		appInfo:       services.AppInfo,
		statusTimeout: cfg.StatusTimeout,
		keyLength:     keyLength,
		dir:           dir,
		spinner:       s,
	}
}

func (m appModel) Init() tea.Cmd {
	return m.cmdLoadDir(m.dir)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case dirLoadedMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, humanizeError(msg.err))
		}
		if msg.dir != m.dir {
			m.cursor = 0
		}
		m.dir = msg.dir
		m.entries = msg.entries
		m.cursor = clampCursor(m.cursor, len(m.entries))
		return m, nil

	case opStartedMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, humanizeError(msg.err))
		}
		m.running = append(m.running, msg.op)
		cmds := []tea.Cmd{m.setStatus(statusInfo, fmt.Sprintf("%s %s...", operationVerb(msg.op.Kind), filepath.Base(msg.op.Target)))}
		if !m.polling {
			m.polling = true
			cmds = append(cmds, cmdPoll(), m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case opPollMsg:
		return m.pollOperations()

	case spinner.TickMsg:
		if len(m.running) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case folderCreatedMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, humanizeError(msg.err))
		}
		return m, tea.Batch(
			m.setStatus(statusSuccess, "Created "+filepath.Base(msg.path)),
			m.cmdLoadDir(m.dir),
		)

	case keySavedMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, humanizeError(msg.err))
		}
		return m, tea.Batch(
			m.setStatus(statusSuccess, "Key saved to "+msg.path),
			m.cmdLoadDir(m.dir),
		)

	case keyLoadedMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, humanizeError(msg.err))
		}
		m.replaceKey(msg.key)
		return m, m.setStatus(statusSuccess, "Key loaded from "+filepath.Base(msg.path))

	case copiedMsg:
		if msg.err != nil {
			return m, m.setStatus(statusError, "Clipboard: "+msg.err.Error())
		}
		return m, m.setStatus(statusSuccess, "Copied "+msg.text)

	case clearStatusMsg:
		if msg.seq == m.status.seq {
			m.status = statusLine{}
		}
		return m, nil
	}

	if m.prompt.active() {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt.active() {
		return m.handlePromptKey(msg)
	}

	if m.showBuildInfo {
		switch {
		case key.Matches(msg, keys.quit):
			return m.quit()
		case key.Matches(msg, keys.esc, keys.buildInfo):
			m.showBuildInfo = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.quit):
		return m.quit()
	case key.Matches(msg, keys.buildInfo):
		m.showBuildInfo = true
		return m, nil
	case key.Matches(msg, keys.history):
		if m.screen == screenHistory {
			m.screen = screenBrowser
			return m, nil
		}
		m.screen = screenHistory
		m.history = m.engine.History()
		m.historyOffset = 0
		return m, nil
	case key.Matches(msg, keys.keyLength):
		m.keyLength = nextKeyLength(m.keyLength)
		return m, m.setStatus(statusInfo, fmt.Sprintf("New containers use %d-bit keys", m.keyLength.Bits()))
	case key.Matches(msg, keys.cancel):
		return m.cancelRunning()
	case key.Matches(msg, keys.copy):
		if m.lastContainer == "" {
			return m, m.setStatus(statusWarning, errNothingToCopy.Error())
		}
		return m, cmdCopyToClipboard(m.lastContainer)
	}

	if m.screen == screenHistory {
		return m.handleHistoryKey(msg)
	}
	return m.handleBrowserKey(msg)
}

func (m appModel) handleBrowserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.enter):
		if e, ok := m.selected(); ok && e.IsDir {
			return m, m.cmdLoadDir(e.Path)
		}
	case key.Matches(msg, keys.back):
		if parent := filepath.Dir(m.dir); parent != m.dir {
			return m, m.cmdLoadDir(parent)
		}
	case key.Matches(msg, keys.refresh):
		return m, m.cmdLoadDir(m.dir)

	case key.Matches(msg, keys.encrypt):
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.prompt = newPrompt(promptEncryptKey, "Key for "+e.Name, m.reuseHint(), e.Path, true)
		return m, textinput.Blink
	case key.Matches(msg, keys.decrypt):
		e, ok := m.selected()
		if !ok || e.IsDir {
			return m, nil
		}
		m.prompt = newPrompt(promptDecryptKey, "Key for "+e.Name, m.reuseHint(), e.Path, true)
		return m, textinput.Blink
	case key.Matches(msg, keys.newFolder):
		m.prompt = newPrompt(promptFolderName, "New folder in "+m.dir, "", m.dir, false)
		return m, textinput.Blink
	case key.Matches(msg, keys.saveKey):
		if m.heldKey == nil {
			return m, m.setStatus(statusWarning, errNoKeyHeld.Error())
		}
		m.prompt = newPrompt(promptSavePath, "Save key to", "", "", false)
		m.prompt.input.SetValue(filepath.Join(m.dir, defaultKeyFileName))
		return m, textinput.Blink
	case key.Matches(msg, keys.loadKey):
		m.prompt = newPrompt(promptLoadPath, "Load key from", "", "", false)
		if e, ok := m.selected(); ok && !e.IsDir {
			m.prompt.input.SetValue(e.Path)
		} else {
			m.prompt.input.SetValue(filepath.Join(m.dir, defaultKeyFileName))
		}
		return m, textinput.Blink
	}
	return m, nil
}

func (m appModel) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.prompt.value()
		return m.quit()
	case tea.KeyEsc:
		m.prompt.value()
		m.prompt = promptModel{}
		return m, nil
	case tea.KeyEnter:
		return m.submitPrompt()
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.update(msg)
	return m, cmd
}

func (m appModel) submitPrompt() (tea.Model, tea.Cmd) {
	value := m.prompt.value()
	p := m.prompt
	m.prompt = promptModel{}

	switch p.kind {
	case promptEncryptKey, promptDecryptKey:
		secret := m.takeKey(value)
		if secret == nil {
			return m, m.setStatus(statusWarning, errNoKeyHeld.Error())
		}
		if p.kind == promptEncryptKey {
			return m, m.cmdEncrypt(p.target, secret, m.keyLength)
		}
		return m, m.cmdDecrypt(p.target, secret)

	case promptFolderName:
		return m, m.cmdCreateFolder(p.target, value)

	case promptSavePath, promptLoadPath:
		path := strings.TrimSpace(value)
		if path == "" {
			return m, m.setStatus(statusWarning, "A file path is required")
		}
		next := promptSavePassphrase
		if p.kind == promptLoadPath {
			next = promptLoadPassphrase
		}
		m.prompt = newPrompt(next, "Passphrase for "+filepath.Base(path), "", path, true)
		return m, textinput.Blink

	case promptSavePassphrase:
		if m.heldKey == nil {
			return m, m.setStatus(statusWarning, errNoKeyHeld.Error())
		}
		return m, m.cmdSaveKey(m.heldKey.Clone(), crypto.NewSecretFromString(value), p.target)

	case promptLoadPassphrase:
		return m, m.cmdLoadKey(p.target, crypto.NewSecretFromString(value))
	}
	return m, nil
}

func (m appModel) pollOperations() (tea.Model, tea.Cmd) {
	var (
		cmds     []tea.Cmd
		still    []*service.Operation
		finished bool
	)
	for _, op := range m.running {
		select {
		case <-op.Done():
			finished = true
			cmds = append(cmds, m.finishOperation(op))
		default:
			still = append(still, op)
		}
	}
	m.running = still

	if finished {
		cmds = append(cmds, m.cmdLoadDir(m.dir))
		if m.screen == screenHistory {
			m.history = m.engine.History()
		}
	}
	if len(m.running) > 0 {
		cmds = append(cmds, cmdPoll())
	} else {
		m.polling = false
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) finishOperation(op *service.Operation) tea.Cmd {
	name := filepath.Base(op.Target)
	err := op.Err()

	switch {
	case err == nil:
		if op.Kind == models.OperationEncrypt {
			m.lastContainer = op.Output()
		}
		if msg := op.Record().Message; msg != "" {
			return m.setStatus(statusWarning, name+": "+msg)
		}
		return m.setStatus(statusSuccess, fmt.Sprintf("%s: done, wrote %s", name, filepath.Base(op.Output())))
	case models.KindOf(err) == models.KindCancelled:
		return m.setStatus(statusWarning, name+": cancelled, nothing was written")
	default:
		return m.setStatus(statusError, name+": "+humanizeError(err))
	}
}

func (m appModel) cancelRunning() (tea.Model, tea.Cmd) {
	if len(m.running) == 0 {
		return m, m.setStatus(statusWarning, "Nothing is running")
	}
	for _, op := range m.running {
		m.engine.Cancel(op)
	}
	return m, m.setStatus(statusWarning, "Cancelling...")
}

func (m appModel) quit() (tea.Model, tea.Cmd) {
	for _, op := range m.running {
		m.engine.Cancel(op)
	}
	return m, tea.Quit
}

func (m appModel) selected() (models.DirEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return models.DirEntry{}, false
	}
	return m.entries[m.cursor], true
}

func (m appModel) reuseHint() string {
	if m.heldKey == nil {
		return ""
	}
	return "leave empty to use the loaded key"
}

// takeKey returns the key for one operation. A typed key also becomes the
// held key; an empty answer reuses the held one.
func (m *appModel) takeKey(typed string) *crypto.Secret {
	if typed == "" {
		if m.heldKey == nil {
			return nil
		}
		return m.heldKey.Clone()
	}
	k := crypto.NewSecretFromString(typed)
	m.replaceKey(k.Clone())
	return k
}

func (m *appModel) replaceKey(k *crypto.Secret) {
	m.heldKey.Destroy()
	m.heldKey = k
}

func (m *appModel) dropKey() {
	m.heldKey.Destroy()
	m.heldKey = nil
}

// setStatus shows text and schedules its removal. A newer message
// resets the timer.
func (m *appModel) setStatus(level statusLevel, text string) tea.Cmd {
	m.seq++
	m.status = statusLine{level: level, text: text, seq: m.seq}
	if m.statusTimeout <= 0 {
		return nil
	}
	return cmdClearStatus(m.seq, m.statusTimeout)
}

func nextKeyLength(l crypto.KeyLength) crypto.KeyLength {
	switch l {
	case crypto.KeyLength128:
		return crypto.KeyLength192
	case crypto.KeyLength192:
		return crypto.KeyLength256
	default:
		return crypto.KeyLength128
	}
}

func operationVerb(k models.OperationKind) string {
	if k == models.OperationDecrypt {
		return "Decrypting"
	}
	return "Encrypting"
}

func clampCursor(c, n int) int {
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}
