package main

import (
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/vidmetrics"
	"github.com/fwojciec/vidmetrics/rod"
	"github.com/fwojciec/vidmetrics/xlsx"
)

// defaultURL is observed when no target is configured.
const defaultURL = "https://www.tiktok.com/@audracoteee/video/7403581594914606378?is_from_webapp=1"

// CLI defines the command-line interface structure for Kong.
// Every flag can also be set from the environment or a JSON config file.
type CLI struct {
	URLs     []string      `name:"url" short:"u" env:"VIDMETRICS_URLS" default:"${default_url}" help:"Video page URL to observe (repeatable)"`
	Interval time.Duration `short:"i" env:"VIDMETRICS_INTERVAL" default:"10m" help:"Time between ticks"`
	Once     bool          `help:"Run a single tick and exit"`

	Store  string `enum:"xlsx,sqlite" default:"xlsx" env:"VIDMETRICS_STORE" help:"Persistence backend (${enum})"`
	Output string `short:"o" env:"VIDMETRICS_OUTPUT" help:"Output file (default: ${default_xlsx} or ${default_db})"`
	Sheet  string `default:"${default_sheet}" help:"Worksheet name for the xlsx store"`

	NavTimeout     time.Duration `default:"30s" help:"Bound on navigation and network idle wait"`
	ElementTimeout time.Duration `default:"30s" help:"Bound on the wait for the wait selector"`
	WaitSelector   string        `default:"${wait_selector}" help:"Element that must appear before metrics are read"`

	ViewsSelector    string `default:"${views_selector}" help:"CSS selector of the views counter"`
	LikesSelector    string `default:"${likes_selector}" help:"CSS selector of the likes counter"`
	CommentsSelector string `default:"${comments_selector}" help:"CSS selector of the comments counter"`
	SharesSelector   string `default:"${shares_selector}" help:"CSS selector of the shares counter"`

	BrowserBin string  `env:"VIDMETRICS_BROWSER_BIN" help:"Chrome/Chromium binary (default: auto-detect)"`
	NoSandbox  bool    `env:"VIDMETRICS_NO_SANDBOX" help:"Disable the Chrome sandbox (containers running as root)"`
	Rate       float64 `default:"1" help:"Maximum page loads per second per host (0 disables)"`

	LogLevel  string `enum:"debug,info,warn,error" default:"info" env:"VIDMETRICS_LOG_LEVEL" help:"Log level (${enum})"`
	LogFormat string `enum:"text,json" default:"text" env:"VIDMETRICS_LOG_FORMAT" help:"Log format (${enum})"`
}

// vars supplies defaults that cannot be spelled inside struct tags.
func vars() kong.Vars {
	sel := vidmetrics.DefaultSelectors()
	return kong.Vars{
		"default_url":       defaultURL,
		"default_xlsx":      xlsx.DefaultPath,
		"default_db":        defaultDBPath,
		"default_sheet":     xlsx.DefaultSheet,
		"wait_selector":     rod.DefaultWaitSelector,
		"views_selector":    sel.Views,
		"likes_selector":    sel.Likes,
		"comments_selector": sel.Comments,
		"shares_selector":   sel.Shares,
	}
}

const defaultDBPath = "tiktok_video_metadata.db"

// Selectors returns the configured metric selectors.
func (c *CLI) Selectors() vidmetrics.Selectors {
	return vidmetrics.Selectors{
		Views:    c.ViewsSelector,
		Likes:    c.LikesSelector,
		Comments: c.CommentsSelector,
		Shares:   c.SharesSelector,
	}
}

// OutputPath returns the output file, defaulting by store kind.
func (c *CLI) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	if c.Store == "sqlite" {
		return defaultDBPath
	}
	return xlsx.DefaultPath
}
