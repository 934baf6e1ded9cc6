package utils

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Log is usable before Init so packages and tests can log freely.
var Log = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.DateTime,
})

// Init sets the level and the badge styles. Component loggers copy Log, so
// take them after Init.
func Init(level string) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	Log.SetLevel(lvl)

	styles := log.DefaultStyles()
	styles.Levels[log.DebugLevel] = badge("DEBUG", "#1E90FF80", "#FFFFFFFF")
	styles.Levels[log.InfoLevel] = badge("INFO🌟", "#90EE9080", "#006400FF")
	styles.Levels[log.WarnLevel] = badge("WARN🍪", "#FFD70080", "#000000FF")
	styles.Levels[log.ErrorLevel] = badge("ERROR🔥", "#FF0000FF", "#00FFFF00")
	styles.Levels[log.FatalLevel] = badge("FATAL⚡️", "#000000FF", "#00FFFF00")
	Log.SetStyles(styles)
}

func badge(label, bg, fg string) lipgloss.Style {
	return lipgloss.NewStyle().
		SetString(label).
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg)).Bold(true)
}

// Component returns a sub-logger whose lines are prefixed with name.
func Component(name string) *log.Logger {
	return Log.WithPrefix(name)
}
