// internal/logger/logger.go
//
// Structured logger (Zap + Lumberjack).
//
// Context
// -------
// The service always writes to stdout so container runtimes can collect
// events.  When LOG_DIR is set the same events are also written to
// `<dir>/YYYY-MM-DD.log`, with rotation, compression, and retention handled
// by Lumberjack.
//
// ENABLE_GOOGLE_CLOUD_LOGGING switches the JSON keys to the names Cloud
// Logging's structured-log agent recognises (`severity`, `message`, `time`)
// so levels show up correctly in the console without a custom parser.
//
// Usage
// -----
//
//	boot := logger.Bootstrap()          // before config exists
//	log, err := logger.New(cfg.Logging, os.Stdout)
//	if err != nil { … }
//	log.Infow("server listening", "addr", addr)
//
// Notes
// -----
// • Unknown LOG_LEVEL values fall back to info.
// • LOG_FORMAT=json (default) or console; anything else is treated as json.
// • New installs the logger as the process-wide default via zap.ReplaceGlobals.
// • Oxford commas, two spaces after periods.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/formapi/internal/config"
)

// Bootstrap returns a console logger at info level for the few lines
// written before configuration is built.
func Bootstrap() *zap.SugaredLogger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig(false)),
		zapcore.Lock(os.Stdout),
		zap.InfoLevel,
	)
	z := zap.New(core)
	zap.ReplaceGlobals(z)
	return z.Sugar()
}

// New builds the configured logger.  stdout is the primary sink; a file
// sink is added when cfg.Dir is non-empty.
func New(cfg config.Logging, stdout zapcore.WriteSyncer) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := encoderConfig(cfg.GoogleCloud)
	encoder := zapcore.NewJSONEncoder(encCfg)
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, stdout, level)}
	errOut := stdout

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, err
		}
		fileSink := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    50, // MB
			MaxBackups: 7,  // keep last seven files
			MaxAge:     14, // days
			Compress:   true,
		})
		// Files are always JSON regardless of the stdout format.
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileSink, level))
		errOut = fileSink
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(errOut),
	)

	// Make this the global logger so zap.S() works everywhere after startup.
	zap.ReplaceGlobals(z)

	s := z.Sugar()
	s.Debugw("logger online",
		"level", level.String(),
		"format", cfg.Format,
		"dir", cfg.Dir,
		"google_cloud", cfg.GoogleCloud,
	)
	return s, nil
}

func encoderConfig(googleCloud bool) zapcore.EncoderConfig {
	if googleCloud {
		return zapcore.EncoderConfig{
			TimeKey:      "time",
			LevelKey:     "severity",
			MessageKey:   "message",
			CallerKey:    "caller",
			EncodeTime:   zapcore.RFC3339NanoTimeEncoder,
			EncodeLevel:  zapcore.CapitalLevelEncoder,
			EncodeCaller: zapcore.ShortCallerEncoder,
		}
	}
	return zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}
