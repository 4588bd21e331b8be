package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init wires the global zerolog logger to two sinks: a human-readable
// console writer and a rotating file, so a run started from cron still
// leaves a trail even with nothing attached to stderr. verbose forces
// debug level regardless of the VERBOSE environment variable.
func Init(verbose bool) {
	loadBinaryEnv()

	level := zerolog.InfoLevel
	if verbose || os.Getenv("VERBOSE") == "true" {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	console := consoleSink()
	file, err := fileSink()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).
		With().
		Timestamp().
		Logger()

	log.Info().Msg("logging initialized")
}

func loadBinaryEnv() {
	exePath, err := os.Executable()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(filepath.Dir(exePath), ".env"))
}

func consoleSink() io.Writer {
	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339Nano,
		NoColor:    !isTerminal,
	}
}

func fileSink() (io.Writer, error) {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exePath, err := os.Executable(); err == nil {
			dataPath = filepath.Dir(exePath)
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %q: %w", logDir, err)
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "floodpipe.log"),
		MaxSize:    32, // megabytes
		MaxBackups: 14,
		MaxAge:     90, // days, one run per day per §5 deployment cadence
		Compress:   true,
	}, nil
}
