package log

const (
	DefaultPattern    = "%time [%level] %caller: %msg %field\n"
	DefaultTimeLayout = "2006-01-02 15:04:05.000"
)

type LoggerConfig struct {
	Level     string           `mapstructure:"level" yaml:"level"`
	Pattern   string           `mapstructure:"pattern" yaml:"pattern"`
	Time      string           `mapstructure:"time" yaml:"time"`
	Caller    bool             `mapstructure:"caller" yaml:"caller"`
	Appenders []AppenderConfig `mapstructure:"appenders" yaml:"appenders"`
	Formatter *FormatterConfig `mapstructure:"formatter" yaml:"formatter,omitempty"`
}

type AppenderConfig struct {
	Type    string                 `mapstructure:"type" yaml:"type"`
	Options map[string]interface{} `mapstructure:"options" yaml:"options,omitempty"`
}

// FormatterConfig switches output to the prefixed text formatter.
type FormatterConfig struct {
	EnableColors   bool `mapstructure:"enable_colors" yaml:"enable_colors,omitempty"`
	FullTimestamp  bool `mapstructure:"full_timestamp" yaml:"full_timestamp,omitempty"`
	DisableSorting bool `mapstructure:"disable_sorting" yaml:"disable_sorting,omitempty"`
}

// DefaultConfig logs info and above to stdout.
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:   "info",
		Pattern: DefaultPattern,
		Time:    DefaultTimeLayout,
		Appenders: []AppenderConfig{
			{Type: AppenderConsole},
		},
	}
}
