package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	esc       key.Binding
	encrypt   key.Binding
	decrypt   key.Binding
	cancel    key.Binding
	newFolder key.Binding
	saveKey   key.Binding
	loadKey   key.Binding
	keyLength key.Binding
	history   key.Binding
	copy      key.Binding
	refresh   key.Binding
	buildInfo key.Binding
	quit      key.Binding
}

var keys = keyMap{
	up:        key.NewBinding(key.WithKeys("up", "k")),
	down:      key.NewBinding(key.WithKeys("down", "j")),
	enter:     key.NewBinding(key.WithKeys("enter", "right", "l")),
	back:      key.NewBinding(key.WithKeys("backspace", "left", "h")),
	esc:       key.NewBinding(key.WithKeys("esc")),
	encrypt:   key.NewBinding(key.WithKeys("e")),
	decrypt:   key.NewBinding(key.WithKeys("d")),
	cancel:    key.NewBinding(key.WithKeys("x")),
	newFolder: key.NewBinding(key.WithKeys("n")),
	saveKey:   key.NewBinding(key.WithKeys("s")),
	loadKey:   key.NewBinding(key.WithKeys("o")),
	keyLength: key.NewBinding(key.WithKeys("L")),
	history:   key.NewBinding(key.WithKeys("tab")),
	copy:      key.NewBinding(key.WithKeys("c")),
	refresh:   key.NewBinding(key.WithKeys("r")),
	buildInfo: key.NewBinding(key.WithKeys("v")),
	quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
}
