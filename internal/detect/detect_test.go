package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentPrefix(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		firstLine string
		want      string
	}{
		{name: "dotfile name", path: "/home/u/.zshrc", want: "#"},
		{name: "plain name", path: "bashrc", want: "#"},
		{name: "xresources name", path: "/home/u/.Xresources", want: "!"},
		{name: "vimrc name", path: ".vimrc", want: `"`},
		{name: "shell extension", path: "install.sh", want: "#"},
		{name: "c extension", path: "main.c", want: "//"},
		{name: "ini extension", path: "settings.ini", want: ";"},
		{name: "reg extension", path: "tweak.reg", want: ";"},
		{name: "vim extension", path: "plugin.vim", want: `"`},
		{name: "hashbang python", path: "tool", firstLine: "#!/usr/bin/python", want: "#"},
		{name: "hashbang env node", path: "tool", firstLine: "#!/usr/bin/env node", want: "//"},
		{name: "hashbang unknown interpreter", path: "tool", firstLine: "#!/usr/bin/lua", want: "#"},
		{name: "unknown file", path: "mystery.xyz", want: "#"},
		{name: "extension beats hashbang", path: "script.vim", firstLine: "#!/bin/sh", want: `"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommentPrefix(tt.path, tt.firstLine))
		})
	}
}
