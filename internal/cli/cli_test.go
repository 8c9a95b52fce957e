package cli

import (
	"io"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"render", "geometry", "preview", "serve", "cache", "completion"}
	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			for _, cmd := range root.Commands() {
				if cmd.Name() == name {
					return
				}
			}
			t.Errorf("root command is missing %q", name)
		})
	}
}
