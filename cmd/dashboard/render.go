package main

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/microfix/dashboard/internal/collection"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Underline(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(64)
)

// renderCard draws one link card. A card without an image shows
// defaultImage instead.
func renderCard(it collection.Item, defaultImage string) string {
	image := it.ImageURL
	if strings.TrimSpace(image) == "" {
		image = defaultImage
	}

	lines := []string{
		titleStyle.Render(it.Title),
		urlStyle.Render(it.URL),
	}
	if it.Description != "" {
		lines = append(lines, it.Description)
	}
	if len(it.Tags) > 0 {
		tags := make([]string, len(it.Tags))
		for i, t := range it.Tags {
			tags[i] = tagStyle.Render(t)
		}
		lines = append(lines, strings.Join(tags, " "))
	}
	lines = append(lines,
		dimStyle.Render("image: "+image),
		dimStyle.Render(it.ID+" · "+time.UnixMilli(it.CreatedAt).Format("2006-01-02 15:04")),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderCards(items []collection.Item, defaultImage string) string {
	cards := make([]string, len(items))
	for i, it := range items {
		cards[i] = renderCard(it, defaultImage)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}
