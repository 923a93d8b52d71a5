package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"charhub/pkg/models"
)

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("8")).
	Padding(0, 1).
	Width(36)

var (
	nameStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	aliveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	deadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderCard draws one character card.
func RenderCard(c models.Character) string {
	lines := []string{nameStyle.Render(c.Name)}
	if c.Image != "" {
		lines = append(lines, mutedStyle.Render(c.Image))
	}
	lines = append(lines,
		"Species: "+c.Species,
		"Gender: "+c.Gender,
		"Status: "+statusStyle(c.Status).Render(c.Status),
	)
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// RenderCards writes one card per character, or a short note when there is
// nothing to show.
func RenderCards(w io.Writer, list []models.Character) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("no characters"))
		return err
	}
	for _, c := range list {
		if _, err := fmt.Fprintln(w, RenderCard(c)); err != nil {
			return err
		}
	}
	return nil
}

func statusStyle(status string) lipgloss.Style {
	switch models.NormalizeStatus(status) {
	case models.StatusAlive:
		return aliveStyle
	case models.StatusDead:
		return deadStyle
	default:
		return mutedStyle
	}
}
