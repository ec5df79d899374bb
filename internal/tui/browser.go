package tui

import (
	"fmt"
	"io"

	"github.com/pkg/browser"
)

func init() {
	// xdg-open and friends print to the inherited stdio, which is the
	// terminal the panel is drawing on.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// openBrowser opens url in the desktop's default browser.
func openBrowser(url string) error {
	if err := browser.OpenURL(url); err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	return nil
}
