package ui

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// NewProgressBar returns an indeterminate spinner-style bar for row streaming.
func NewProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Exporting rows"),
		progressbar.OptionEnableColorCodes(false),
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionShowBytes(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(15),
	)
}
