package utils

import "github.com/schollz/progressbar/v3"

// Standard progress bar descriptions
const (
	DescResolving     = "Resolving"
	DescFetching      = "Fetching"
	DescMaterializing = "Materializing"
)

// NewProgressBar creates a consistently styled progress bar.
//
// A negative total switches to indeterminate (spinner) mode; a known total
// shows the item count and iteration rate.
func NewProgressBar(total int, description string) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, opts...)
}
