package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"      _             __ _", "#818cf8"},
		{"  ___| |_ ___ _ __ / _| | _____      __", "#a78bfa"},
		{" / __| __/ _ \\ '_ \\| |_| |/ _ \\ \\ /\\ / /", "#c084fc"},
		{" \\__ \\ ||  __/ |_) |  _| | (_) \\ V  V /", "#e879f9"},
		{" |___/\\__\\___| .__/|_| |_|\\___/ \\_/\\_/", "#f472b6"},
		{"             |_|", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StatusLabel colours a run status for terminal output.
func StatusLabel(status string) string {
	p := termenv.EnvColorProfile()
	color := "#22c55e"
	switch status {
	case "failed":
		color = "#ef4444"
	case "incomplete":
		color = "#eab308"
	}
	return termenv.String(status).Foreground(p.Color(color)).Bold().String()
}
