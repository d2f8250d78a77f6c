package log

import (
	"fmt"
	"io"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultMaxSizeMB = 100

// FileAppenderOpt is decoded from the options map of a "file" appender.
// MaxSize is in megabytes and MaxAge in days.
type FileAppenderOpt struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// newFileAppender returns a size-rotated log file writer.
func newFileAppender(options map[string]interface{}) (io.Writer, error) {
	var opt FileAppenderOpt
	if err := mapstructure.Decode(options, &opt); err != nil {
		return nil, fmt.Errorf("file appender options: %w", err)
	}
	if opt.Filename == "" {
		return nil, fmt.Errorf("file appender requires 'filename' option")
	}
	if opt.MaxSize <= 0 {
		opt.MaxSize = defaultMaxSizeMB
	}
	return &lumberjack.Logger{
		Filename:   opt.Filename,
		MaxSize:    opt.MaxSize,
		MaxBackups: opt.MaxBackups,
		MaxAge:     opt.MaxAge,
		Compress:   opt.Compress,
	}, nil
}
