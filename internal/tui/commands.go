package tui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-secure-folder/internal/crypto"
)

const pollInterval = 150 * time.Millisecond

func (m appModel) cmdLoadDir(dir string) tea.Cmd {
	ctx, fs := m.ctx, m.fs
	return func() tea.Msg {
		entries, err := fs.List(ctx, dir)
		return dirLoadedMsg{dir: dir, entries: entries, err: err}
	}
}

// cmdEncrypt and cmdDecrypt own key: the engine copies it before returning.
func (m appModel) cmdEncrypt(path string, key *crypto.Secret, length crypto.KeyLength) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		defer key.Destroy()
		op, err := engine.Encrypt(ctx, path, key, length)
		return opStartedMsg{op: op, err: err}
	}
}

func (m appModel) cmdDecrypt(path string, key *crypto.Secret) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		defer key.Destroy()
		op, err := engine.Decrypt(ctx, path, key)
		return opStartedMsg{op: op, err: err}
	}
}

func (m appModel) cmdCreateFolder(parent, name string) tea.Cmd {
	ctx, fs := m.ctx, m.fs
	return func() tea.Msg {
		path, err := fs.CreateFolder(ctx, parent, name)
		return folderCreatedMsg{path: path, err: err}
	}
}

func (m appModel) cmdSaveKey(key, passphrase *crypto.Secret, destination string) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		defer key.Destroy()
		defer passphrase.Destroy()
		err := engine.SaveKey(ctx, key, passphrase, destination)
		return keySavedMsg{path: destination, err: err}
	}
}

func (m appModel) cmdLoadKey(source string, passphrase *crypto.Secret) tea.Cmd {
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		defer passphrase.Destroy()
		key, err := engine.LoadKey(ctx, source, passphrase)
		return keyLoadedMsg{key: key, path: source, err: err}
	}
}

func cmdPoll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return opPollMsg{}
	})
}

func cmdClearStatus(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func cmdCopyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{text: text, err: clipboard.WriteAll(text)}
	}
}
