package ui

import (
	"fmt"
	goio "io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/g026r/pocket-gallery/pkg/io"
)

var (
	blue              = lipgloss.AdaptiveColor{Light: "#006699", Dark: "#00ccff"}
	red               = lipgloss.AdaptiveColor{Light: "#992200", Dark: "#ff8800"}
	grey              = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).PaddingLeft(2).PaddingRight(2).Background(blue).Foreground(lipgloss.AdaptiveColor{Light: "#aaaaaa", Dark: "#111111"})
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(blue)
	subduedStyle      = itemStyle.Foreground(grey)
	errorStyle        = lipgloss.NewStyle().Foreground(red).PaddingLeft(4)
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
)

type menuItem struct {
	text string
	key  menuKey
}

func (m menuItem) FilterValue() string {
	return m.text
}

func (m menuItem) String() string {
	return m.text
}

var settingsOptions = []list.Item{
	menuItem{"Resolution", cfgResolution},
	menuItem{"Render previews", cfgPreviews},
	menuItem{"Save settings", cfgSave},
	menuItem{"Back", back},
}

// configDelegate is the settings menu renderer. It shows the current value next to each setting,
// which is why it needs the config pointer.
type configDelegate struct {
	*io.Config
}

func (d configDelegate) Height() int                             { return 1 }
func (d configDelegate) Spacing() int                            { return 0 }
func (d configDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d configDelegate) Render(w goio.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(menuItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i)
	switch i.key {
	case cfgResolution:
		str = fmt.Sprintf("%s: %s", str, d.UI.Resolution)
	case cfgPreviews:
		str = fmt.Sprintf("%s: %s", str, onOff(d.UI.RenderPreviews))
	default:
	}

	render(w, m, index, str)
}

func render(w goio.Writer, m list.Model, index int, str string) {
	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func NewSettingsMenu(c *io.Config) *list.Model {
	cm := list.New(settingsOptions, configDelegate{c}, 0, 0)
	cm.Title = "Gallery > Settings"
	cm.SetShowStatusBar(false)
	cm.Styles.Title = titleStyle
	cm.Styles.HelpStyle = helpStyle
	cm.Styles.PaginationStyle = paginationStyle
	cm.SetFilteringEnabled(false)
	cm.KeyMap.Quit.SetEnabled(false)
	cm.KeyMap.Quit.SetKeys()

	return &cm
}
