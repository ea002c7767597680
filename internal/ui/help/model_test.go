package help

import (
	"strings"
	"testing"

	"github.com/nhle/task-tracker/internal/keys"
)

func TestViewGroupsBindings(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 120, 30)
	v := m.View()
	for _, want := range []string{"Tasks", "Stopwatch", "General", "start/stop", "reset timer", "logout"} {
		if !strings.Contains(v, want) {
			t.Errorf("help view missing %q", want)
		}
	}
}
