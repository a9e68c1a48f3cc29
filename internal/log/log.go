package log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables read at startup.
const (
	EnvLogFile  = "SPECK_LOG_FILE"
	EnvLogLevel = "SPECK_LOG_LEVEL"
)

var mLogger *zap.SugaredLogger
var mLoglevel zap.AtomicLevel
var lk sync.Mutex

// Logger returns a named child of the process-wide logger.
func Logger(name string) *zap.SugaredLogger {
	lk.Lock()
	defer lk.Unlock()
	return mLogger.Named(name)
}

func init() {
	mLoglevel = zap.NewAtomicLevel()

	// stderr, so that command output on stdout stays clean
	debugWriter, _, err := zap.Open("stderr")
	if err != nil {
		panic(fmt.Sprintf("unable to open logging output: %v", err))
	}

	lf := os.Getenv(EnvLogFile)
	if lf != "" {
		debugWriter = getLogWriter(lf)
	}

	core := zapcore.NewCore(getEncoder(), debugWriter, mLoglevel)
	mLogger = zap.New(core, zap.AddCaller()).Sugar()

	mLoglevel.SetLevel(zapcore.InfoLevel)
	if lv := os.Getenv(EnvLogLevel); lv != "" {
		if err := SetLogLevel(lv); err != nil {
			mLogger.Warnw("ignoring log level from environment", "value", lv, "error", err)
		}
	}
}

func getEncoder() zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "sub",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	return zapcore.NewJSONEncoder(encoderConfig)
}

func getLogWriter(filename string) zapcore.WriteSyncer {
	lumberJackLogger := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100, //MB
		MaxBackups: 3,
		MaxAge:     30, //days
		Compress:   false,
	}
	return zapcore.AddSync(lumberJackLogger)
}

// SetLogLevel changes the level of every logger obtained from Logger.
func SetLogLevel(level string) error {
	lk.Lock()
	defer lk.Unlock()

	l := zapcore.InfoLevel
	switch level {
	case "debug", "DEBUG":
		l = zapcore.DebugLevel
	case "info", "INFO", "": // make the zero value useful
		l = zapcore.InfoLevel
	case "warn", "WARN":
		l = zapcore.WarnLevel
	case "error", "ERROR":
		l = zapcore.ErrorLevel
	case "dpanic", "DPANIC":
		l = zapcore.DPanicLevel
	case "panic", "PANIC":
		l = zapcore.PanicLevel
	case "fatal", "FATAL":
		l = zapcore.FatalLevel
	default:
		return xerrors.Errorf("level %s is not supported", level)
	}

	mLoglevel.SetLevel(l)
	return nil
}

// GetLogLevel returns the current level name.
func GetLogLevel() string {
	return mLoglevel.Level().String()
}
