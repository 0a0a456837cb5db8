package logger

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
)

func getDefaultStyles() *charmlog.Styles {
	styles := charmlog.DefaultStyles()
	levels := map[charmlog.Level]string{
		charmlog.DebugLevel: "63",
		charmlog.InfoLevel:  "86",
		charmlog.WarnLevel:  "192",
		charmlog.ErrorLevel: "204",
	}
	for lvl, color := range levels {
		styles.Levels[lvl] = lipgloss.NewStyle().
			SetString(strings.ToUpper(lvl.String())).
			Bold(true).
			MaxWidth(5).
			Foreground(lipgloss.Color(color))
	}
	styles.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styles.Timestamp = lipgloss.NewStyle().Faint(true)
	return styles
}
