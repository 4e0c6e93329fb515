package cli

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var browseNames = []string{"Alice", "Albert", "Bob", "Carla", "Dan", "Eve", "Alfred"}

// renderNames pages browseNames two at a time, keeping names containing query.
func renderNames(w io.Writer, query string, page int) int {
	var kept []string
	for _, n := range browseNames {
		if strings.Contains(strings.ToLower(n), strings.ToLower(query)) {
			kept = append(kept, n)
		}
	}
	total := max(1, (len(kept)+1)/2)
	start := min((page-1)*2, len(kept))
	end := min(start+2, len(kept))
	fmt.Fprintf(w, "page %d/%d: %s", page, total, strings.Join(kept[start:end], ","))
	return total
}

func newTestBrowser(t *testing.T) (browseModel, chan tea.Msg) {
	t.Helper()
	msgs := make(chan tea.Msg, 8)
	m := newBrowseModel("", 5*time.Millisecond, renderNames)
	m.send = func(msg tea.Msg) { msgs <- msg }
	return m, msgs
}

func browseUpdate(m browseModel, msg tea.Msg) browseModel {
	next, _ := m.Update(msg)
	return next.(browseModel)
}

func TestBrowsePagesWithinBounds(t *testing.T) {
	m, _ := newTestBrowser(t)
	assert.Equal(t, 4, m.totalPages)
	assert.Contains(t, m.View(), "page 1/4: Alice,Albert")

	m = browseUpdate(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1, m.page)

	for i := 0; i < 5; i++ {
		m = browseUpdate(m, tea.KeyMsg{Type: tea.KeyRight})
	}
	assert.Equal(t, 4, m.page)
	assert.Contains(t, m.View(), "page 4/4: Alfred")
}

func TestBrowseFiltersAfterDebounce(t *testing.T) {
	m, msgs := newTestBrowser(t)
	m = browseUpdate(m, tea.KeyMsg{Type: tea.KeyRight})

	m = browseUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = browseUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	// Nothing applies until the debounced message is delivered.
	assert.Empty(t, m.query)

	var got tea.Msg
	select {
	case got = <-msgs:
	case <-time.After(time.Second):
		t.Fatal("debounced filter never fired")
	}
	require.Equal(t, filterAppliedMsg{query: "al"}, got)
	select {
	case extra := <-msgs:
		t.Fatalf("superseded keystroke still fired: %v", extra)
	case <-time.After(20 * time.Millisecond):
	}

	m = browseUpdate(m, got)
	assert.Equal(t, "al", m.query)
	assert.Equal(t, 1, m.page)
	assert.Equal(t, 2, m.totalPages)
	assert.Contains(t, m.View(), "page 1/2: Alice,Albert")
}

func TestBrowseEscClearsThenQuits(t *testing.T) {
	m, msgs := newTestBrowser(t)
	m = browseUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bob")})
	m = browseUpdate(m, <-msgs)
	require.Equal(t, "bob", m.query)

	m = browseUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.search.Value())
	m = browseUpdate(m, <-msgs)
	assert.Empty(t, m.query)
	assert.False(t, m.quitting)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(browseModel)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
