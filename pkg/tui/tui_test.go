package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

type counterTabState struct {
	presses int
}

// counterTab is a minimal kind for exercising the tab runtime: it counts
// bind activations in its per-tab state. Its "q" bind collides with the
// global quit bind on purpose.
type counterTab struct{}

func (counterTab) Title() string { return "Counter" }

func (counterTab) Render(c *framework.Context, id TabID, width, height int) string {
	state := State[counterTabState](c, id)
	return fmt.Sprintf("presses: %d", state.presses)
}

func (counterTab) Keybinds() []KeyBind {
	return []KeyBind{
		NewKeyBind("bump", "bump", " "),
		NewKeyBind("steal-quit", "steal quit", "q"),
	}
}

func (counterTab) HandleKey(c *framework.Context, bind string, id TabID) {
	state := State[counterTabState](c, id)
	state.presses++
}

type echoTabState struct {
	text string
}

// echoTab enters text-input mode on "e" and accumulates typed runes until
// esc.
type echoTab struct{}

func (echoTab) Title() string { return "Echo" }

func (echoTab) Render(c *framework.Context, id TabID, width, height int) string {
	return State[echoTabState](c, id).text
}

func (echoTab) Keybinds() []KeyBind {
	return []KeyBind{NewKeyBind("edit", "edit", "e")}
}

func (echoTab) HandleKey(c *framework.Context, bind string, id TabID) {
	t, _ := framework.GetResource[Tui](c)
	t.SetTextInput(true)
}

func (echoTab) HandleText(c *framework.Context, key string, id TabID) {
	if key == "esc" {
		t, _ := framework.GetResource[Tui](c)
		t.SetTextInput(false)
		return
	}
	State[echoTabState](c, id).text += key
}

func newTestSession(t *testing.T) (*framework.Context, *Tui) {
	t.Helper()
	c := framework.New()
	require.NoError(t, c.AddPlugin(TuiPlugin{}))
	require.NoError(t, RegisterKind[counterTabState](c, "Counter", counterTab{}))
	require.NoError(t, RegisterKind[echoTabState](c, "Echo", echoTab{}))

	framework.AddResource(c, NewTui())
	session, ok := framework.GetResource[Tui](c)
	require.True(t, ok)
	return c, session
}

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune{r}})
}

func TestAddTabAllocatesDistinctIds(t *testing.T) {
	c, session := newTestSession(t)

	first, err := session.AddTab(c, "Counter")
	require.NoError(t, err)
	second, err := session.AddTab(c, "Counter")
	require.NoError(t, err)

	assert.Equal(t, TabID(1), first)
	assert.Equal(t, TabID(2), second)
}

func TestArenaStateIsPerTab(t *testing.T) {
	c, session := newTestSession(t)
	first, err := session.AddTab(c, "Counter")
	require.NoError(t, err)
	second, err := session.AddTab(c, "Counter")
	require.NoError(t, err)

	State[counterTabState](c, first).presses = 10

	assert.Equal(t, 10, State[counterTabState](c, first).presses)
	assert.Equal(t, 0, State[counterTabState](c, second).presses, "sibling tab state is independent")
}

func TestSetTabResetsState(t *testing.T) {
	c, session := newTestSession(t)
	id, err := session.AddTab(c, "Counter")
	require.NoError(t, err)
	State[counterTabState](c, id).presses = 5

	require.NoError(t, session.SetTab(c, id, "Echo"))

	tab, ok := session.Selected()
	require.True(t, ok)
	assert.Equal(t, id, tab.ID, "id survives the kind swap")
	assert.Equal(t, "Echo", tab.Kind)

	// Swapping back lands on fresh state.
	require.NoError(t, session.SetTab(c, id, "Counter"))
	assert.Equal(t, 0, State[counterTabState](c, id).presses)
}

func TestCloseTabClampsSelection(t *testing.T) {
	c, session := newTestSession(t)
	_, err := session.AddTab(c, "Counter")
	require.NoError(t, err)
	last, err := session.AddTab(c, "Echo")
	require.NoError(t, err)

	require.NoError(t, session.CloseTab(c, last))

	tab, ok := session.Selected()
	require.True(t, ok)
	assert.Equal(t, "Counter", tab.Kind)

	assert.ErrorIs(t, session.CloseTab(c, last), ErrNoTab, "closing a dead id is an error")
}

func TestDeadTabIdIsErrNoTab(t *testing.T) {
	c, session := newTestSession(t)
	id, err := session.AddTab(c, "Counter")
	require.NoError(t, err)
	require.NoError(t, session.CloseTab(c, id))

	assert.ErrorIs(t, session.SetTab(c, id, "Echo"), ErrNoTab)
	assert.ErrorIs(t, session.CloseTab(c, id), ErrNoTab)
}

func TestIdsNotReusedAfterClose(t *testing.T) {
	c, session := newTestSession(t)
	first, err := session.AddTab(c, "Counter")
	require.NoError(t, err)
	require.NoError(t, session.CloseTab(c, first))

	second, err := session.AddTab(c, "Counter")
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestCycleWrapsAround(t *testing.T) {
	c, session := newTestSession(t)
	_, err := session.AddTab(c, "Counter")
	require.NoError(t, err)
	_, err = session.AddTab(c, "Echo")
	require.NoError(t, err)

	session.CycleNext()
	tab, _ := session.Selected()
	assert.Equal(t, "Counter", tab.Kind)

	session.CyclePrev()
	tab, _ = session.Selected()
	assert.Equal(t, "Echo", tab.Kind)
}

func TestGlobalBindWinsOverTabBind(t *testing.T) {
	c, session := newTestSession(t)
	id, err := session.AddTab(c, "Counter")
	require.NoError(t, err)

	m := newModel(c)
	m.Update(keyMsg('q'))

	assert.True(t, session.ShouldQuit(), "q is the global quit even though the tab binds it")
	assert.Equal(t, 0, State[counterTabState](c, id).presses)
}

func TestTabBindDispatch(t *testing.T) {
	c, session := newTestSession(t)
	id, err := session.AddTab(c, "Counter")
	require.NoError(t, err)

	m := newModel(c)
	m.Update(keyMsg(' '))
	m.Update(keyMsg(' '))

	assert.Equal(t, 2, State[counterTabState](c, id).presses)
	assert.False(t, session.ShouldQuit())
}

func TestUnboundKeyDropped(t *testing.T) {
	c, session := newTestSession(t)
	id, err := session.AddTab(c, "Counter")
	require.NoError(t, err)

	m := newModel(c)
	m.Update(keyMsg('z'))

	assert.Equal(t, 0, State[counterTabState](c, id).presses)
	assert.False(t, session.ShouldQuit())
}

func TestTextInputModeSuspendsGlobalBinds(t *testing.T) {
	c, session := newTestSession(t)
	id, err := session.AddTab(c, "Echo")
	require.NoError(t, err)

	m := newModel(c)
	m.Update(keyMsg('e'))
	require.True(t, session.TextInput())

	m.Update(keyMsg('q'))
	assert.False(t, session.ShouldQuit(), "q goes to the tab while typing")
	assert.Equal(t, "q", State[echoTabState](c, id).text)

	m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyEsc}))
	assert.False(t, session.TextInput())

	m.Update(keyMsg('q'))
	assert.True(t, session.ShouldQuit())
}

func TestNewTabKeyOpensChooser(t *testing.T) {
	c, session := newTestSession(t)
	_, err := session.AddTab(c, "Counter")
	require.NoError(t, err)

	m := newModel(c)
	m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyCtrlT}))

	tab, ok := session.Selected()
	require.True(t, ok)
	assert.Equal(t, ChooserKind, tab.Kind)
	assert.Len(t, session.Tabs(), 2)
}

func TestChooserOpensSelectedKind(t *testing.T) {
	c, session := newTestSession(t)
	id, err := session.AddTab(c, ChooserKind)
	require.NoError(t, err)

	m := newModel(c)
	// Counter is first, Echo second; move down once and open.
	m.Update(keyMsg('j'))
	m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyEnter}))

	tab, ok := session.Selected()
	require.True(t, ok)
	assert.Equal(t, id, tab.ID)
	assert.Equal(t, "Echo", tab.Kind)
}

func TestCloseLastTabReopensChooser(t *testing.T) {
	c, session := newTestSession(t)
	_, err := session.AddTab(c, "Counter")
	require.NoError(t, err)

	m := newModel(c)
	m.Update(tea.KeyMsg(tea.Key{Type: tea.KeyCtrlW}))

	tab, ok := session.Selected()
	require.True(t, ok)
	assert.Equal(t, ChooserKind, tab.Kind)
}

func TestTuiCommandAddsResource(t *testing.T) {
	c := framework.New()
	require.NoError(t, c.AddPlugin(TuiPlugin{}))

	resp, err := c.Execute("tui")
	require.NoError(t, err)

	text, ok := resp.Text()
	require.True(t, ok)
	assert.Equal(t, "Opening TUI session...", text)
	assert.True(t, framework.HasResource[Tui](c))
}

func TestViewRendersTabsAndFooter(t *testing.T) {
	c, session := newTestSession(t)
	id, err := session.AddTab(c, "Counter")
	require.NoError(t, err)
	State[counterTabState](c, id).presses = 3

	view := newModel(c).View()
	assert.Contains(t, view, "Counter")
	assert.Contains(t, view, "presses: 3")
	assert.Contains(t, view, "quit")
}
