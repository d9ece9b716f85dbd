package local

import "github.com/microfix/dashboard/internal/collection"

// seedItems fills an empty store on first use so the dashboard has something
// to show.
func seedItems() []collection.Item {
	return []collection.Item{
		{
			ID:          "3f0c6a52-4c1e-4f7b-9a51-0d2f1f7c9a01",
			Title:       "Snake",
			URL:         "https://snake.microfix.dev",
			Description: "Classic snake in the browser, keyboard and touch controls.",
			ImageURL:    "",
			Tags:        []string{"Game"},
			CreatedAt:   1714521600000,
		},
		{
			ID:          "8b7e2d44-1a9f-4c36-b0e7-6c5d2f8a9b02",
			Title:       "Pomodoro Timer",
			URL:         "https://focus.microfix.dev",
			Description: "Minimal 25/5 focus timer with desktop notifications.",
			ImageURL:    "",
			Tags:        []string{"Utility"},
			CreatedAt:   1717200000000,
		},
		{
			ID:          "c41a9e07-7d25-4b8e-8f13-2e6b0a4d7c03",
			Title:       "Pixel Paint",
			URL:         "https://paint.microfix.dev",
			Description: "Tiny pixel-art editor that exports PNG sprites.",
			ImageURL:    "",
			Tags:        []string{"Game", "Creative"},
			CreatedAt:   1719792000000,
		},
	}
}
