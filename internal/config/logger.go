package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

func parseLevel(s string) (log.Level, error) {
	lvl, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return lvl, nil
}

// NewLogger builds the root logger described by c.
func (c LogConfig) NewLogger(w io.Writer) (*log.Logger, error) {
	lvl, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "soundlink",
	})
	switch c.Format {
	case "", "text":
		logger.SetFormatter(log.TextFormatter)
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		return nil, fmt.Errorf("log.format %q is not one of %v", c.Format, formats)
	}
	return logger, nil
}
