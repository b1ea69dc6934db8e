// Package common wires logging, configuration and API client construction
// shared by all encephalon commands.
package common

import (
	"bytes"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/iCardioAI/encephalon-examples/pkg/config"
	"github.com/iCardioAI/encephalon-examples/pkg/format"
	"github.com/iCardioAI/encephalon-examples/pkg/httpclient"
	"github.com/iCardioAI/encephalon-examples/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version information - set via ldflags during build
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Log configuration
var (
	originalTermState *term.State
	JsonLogOutput     bool
	LogFile           string
	LogColor          bool
	LogDebug          bool
	LogLevel          string
	IgnoreProxy       bool
)

// Connection configuration, resolved against environment variables and the
// config file by config.Resolve.
var (
	ApiURL     string
	ApiToken   string
	ConfigFile string
)

// TerminalRestorer is a function that can be called to restore terminal state
var TerminalRestorer func()

// CustomWriter wraps an os.File with proper cross-platform newline handling
type CustomWriter struct {
	Writer *os.File
}

func (cw *CustomWriter) Write(p []byte) (n int, err error) {
	originalLen := len(p)

	if bytes.HasSuffix(p, []byte("\n")) {
		p = bytes.TrimSuffix(p, []byte("\n"))
	}

	// necessary as to: https://github.com/rs/zerolog/blob/master/log.go#L474
	newlineChars := []byte("\n")
	if runtime.GOOS == "windows" {
		newlineChars = []byte("\n\r")
	}

	modified := append(p, newlineChars...)

	written, err := cw.Writer.Write(modified)
	if err != nil {
		return 0, err
	}

	if written != len(modified) {
		return 0, io.ErrShortWrite
	}

	return originalLen, nil
}

// FatalHook is a zerolog hook that restores terminal state before fatal exits
type FatalHook struct{}

func (h FatalHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.FatalLevel {
		if TerminalRestorer != nil {
			TerminalRestorer()
		}
	}
}

// SaveTerminalState saves the current terminal state for later restoration
func SaveTerminalState() {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		state, err := term.GetState(int(os.Stdin.Fd()))
		if err == nil {
			originalTermState = state
		}
	}
}

// RestoreTerminalState restores the terminal to its saved state
func RestoreTerminalState() {
	if originalTermState != nil {
		_ = term.Restore(int(os.Stdin.Fd()), originalTermState)
	}
}

// InitLogger initializes the zerolog logger with the configured options
func InitLogger(cmd *cobra.Command) {
	defaultOut := &CustomWriter{Writer: os.Stdout}
	colorEnabled := LogColor

	if LogFile != "" {
		// #nosec G304 - User-provided log file path via --logfile flag, user controls their own filesystem
		runLogFile, err := os.OpenFile(
			LogFile,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			format.FileUserReadWrite,
		)
		if err != nil {
			panic(err)
		}
		defaultOut = &CustomWriter{Writer: runLogFile}

		rootFlags := cmd.Root().PersistentFlags()
		if !rootFlags.Changed("color") {
			colorEnabled = false
		}
	}

	fatalHook := FatalHook{}

	if JsonLogOutput {
		// For JSON output the FindingLevelWriter rewrites the level field directly
		findingWriter := logging.NewFindingLevelWriter(defaultOut)
		logging.SetGlobalFindingWriter(findingWriter)
		log.Logger = zerolog.New(findingWriter).With().Timestamp().Logger().Hook(fatalHook)
	} else {
		// For console output the JSON is transformed before the ConsoleWriter formats it
		output := zerolog.ConsoleWriter{
			Out:         defaultOut,
			TimeFormat:  time.RFC3339,
			NoColor:     !colorEnabled,
			FormatLevel: formatLevelWithFindingColor(colorEnabled),
		}
		findingWriter := logging.NewFindingLevelWriter(&output)
		logging.SetGlobalFindingWriter(findingWriter)
		log.Logger = zerolog.New(findingWriter).With().Timestamp().Logger().Hook(fatalHook)
	}
}

// formatLevelWithFindingColor returns a level formatter that adds a distinct
// color for the "finding" level. Findings use bright magenta so clinically
// notable results stand out between info lines.
func formatLevelWithFindingColor(colorEnabled bool) zerolog.Formatter {
	return func(i interface{}) string {
		var level string
		if ll, ok := i.(string); ok {
			level = ll
		} else {
			return ""
		}

		if !colorEnabled {
			return level
		}

		if level == "finding" {
			return "\x1b[35m" + level + "\x1b[0m"
		}

		switch level {
		case "trace":
			return "\x1b[90m" + level + "\x1b[0m"
		case "debug":
			return level
		case "info":
			return "\x1b[32m" + level + "\x1b[0m"
		case "warn":
			return "\x1b[33m" + level + "\x1b[0m"
		case "error", "fatal", "panic":
			return "\x1b[31m" + level + "\x1b[0m"
		default:
			return level
		}
	}
}

// SetGlobalLogLevel sets the global log level based on the configured options
func SetGlobalLogLevel() {
	if LogLevel != "" {
		level, err := logging.ParseLevel(LogLevel)
		if err != nil {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			log.Warn().Str("logLevelSpecified", LogLevel).Msg("Invalid log level, defaulting to info")
			return
		}
		zerolog.SetGlobalLevel(level)
		log.Debug().Str("logLevel", level.String()).Msg("Log level set explicitly")
		return
	}

	if LogDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("Log level set to debug (-v)")
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// AddCommonFlags adds the logging, output and connection flags shared by all
// commands to the root command
func AddCommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&JsonLogOutput, "json", "", false, "Use JSON as log output format")
	cmd.PersistentFlags().StringVarP(&LogFile, "logfile", "l", "", "Log output to a file")
	cmd.PersistentFlags().BoolVarP(&LogDebug, "verbose", "v", false, "Enable debug logging (shortcut for --log-level=debug)")
	cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Set log level globally (trace, debug, info, warn, error). Example: --log-level=warn")
	cmd.PersistentFlags().BoolVar(&LogColor, "color", true, "Enable colored log output (auto-disabled when using --logfile)")
	cmd.PersistentFlags().BoolVar(&IgnoreProxy, "ignore-proxy", false, "Ignore HTTP_PROXY environment variable")

	cmd.PersistentFlags().StringVar(&ApiURL, "url", "", "Encephalon API base URL, e.g. https://us2.encephalon.ai (env: "+config.EnvURL+")")
	cmd.PersistentFlags().StringVar(&ApiToken, "token", "", "Encephalon API token (env: "+config.EnvToken+")")
	cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Path to the config file (default: ~/.encephalon.yml)")
}

// SetupPersistentPreRun sets up the PersistentPreRun handler for logging initialization
func SetupPersistentPreRun(cmd *cobra.Command) {
	cmd.PersistentPreRun = func(c *cobra.Command, args []string) {
		InitLogger(c)
		SetGlobalLogLevel()
		httpclient.SetIgnoreProxy(IgnoreProxy)
		go logging.ShortcutListeners(nil)
	}
}

// ResolveConfig resolves the connection configuration from flags, environment
// variables and the config file. Commands cannot proceed without a valid URL
// and token, so resolution failures are fatal.
func ResolveConfig() config.Config {
	cfg, err := config.Resolve(ApiURL, ApiToken, ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed resolving configuration")
	}
	return cfg
}

// BuildClient resolves the configuration and returns a ready API client
func BuildClient() client.EncephalonApiClient {
	return client.NewClient(ResolveConfig())
}

// Run executes the common startup sequence and runs the provided root command
func Run(rootCmd *cobra.Command) {
	SaveTerminalState()
	defer RestoreTerminalState()

	TerminalRestorer = RestoreTerminalState

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
