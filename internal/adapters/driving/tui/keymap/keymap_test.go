package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		key  string
		want bool
		name string
	}{
		{"enter", true, "submit"},
		{"esc", true, "cancel"},
		{"ctrl+c", true, "cancel"},
		{"ctrl+u", true, "clear"},
		{"q", false, "cancel"},
	}

	bindings := map[string]func(string) bool{
		"submit": func(s string) bool { return Matches(s, km.Submit) },
		"cancel": func(s string) bool { return Matches(s, km.Cancel) },
		"clear":  func(s string) bool { return Matches(s, km.Clear) },
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, bindings[tt.name](tt.key))
		})
	}
}

func TestKeyMap_ShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	assert.Len(t, help, 3)
	assert.Equal(t, "enter", help[0].Help().Key)
	assert.Equal(t, "esc", help[2].Help().Key)
}
