package initializer

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// setupLogger points the global logger at the configured file.
// If the path ends with .log then messages are appended to that file.
// Otherwise a new log file with a timestamp attached to its name is created
// in the given path. An empty path logs to stderr, stdout belongs to the
// dashboard. The returned file is nil for stderr.
func setupLogger(cfg *config.Log) (*os.File, error) {
	var (
		logFile *os.File
		err     error
	)
	switch {
	case cfg.FilePath == "":
	case strings.HasSuffix(cfg.FilePath, ".log"):
		logFile, err = os.OpenFile(cfg.FilePath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			return nil, errors.Errorf("not able to open or create log file: %v", cfg.FilePath)
		}
	default:
		path := cfg.FilePath + "_" + strconv.Itoa(int(time.Now().Unix())) + ".log"
		logFile, err = os.Create(path)
		if err != nil {
			return nil, errors.Errorf("not able to create log file: %v", path)
		}
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	switch cfg.Level {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if logFile != nil {
		log.Logger = zerolog.New(logFile).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	log.Info().Msg("logger setup is done")
	return logFile, nil
}

// logErrStack logs the error with its stack trace.
func logErrStack(err error) {
	log.Error().Stack().Err(errors.WithStack(err)).Msg("")
}
