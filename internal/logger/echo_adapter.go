package logger

import (
	"fmt"
	"io"
	"sync/atomic"

	echo_log "github.com/labstack/gommon/log"
)

// EchoLoggerAdapter routes echo's internal logging into a module Logger.
//
//	e := echo.New()
//	e.Logger = logger.NewEchoLoggerAdapter(central.Module("echo"))
type EchoLoggerAdapter struct {
	logger Logger
	level  atomic.Uint32
}

// NewEchoLoggerAdapter wraps log; a nil log falls back to a stdout logger
func NewEchoLoggerAdapter(log Logger) *EchoLoggerAdapter {
	if log == nil {
		log = NewSlogLogger(nil, LogLevelInfo, nil)
	}
	a := &EchoLoggerAdapter{logger: log}
	a.level.Store(uint32(echo_log.INFO))
	return a
}

// Output is unused; output routing belongs to the Logger
func (a *EchoLoggerAdapter) Output() io.Writer { return io.Discard }

// SetOutput is a no-op
func (a *EchoLoggerAdapter) SetOutput(_ io.Writer) {}

// Prefix is unused; the module name scopes the output
func (a *EchoLoggerAdapter) Prefix() string { return "" }

// SetPrefix is a no-op
func (a *EchoLoggerAdapter) SetPrefix(_ string) {}

// SetHeader is a no-op
func (a *EchoLoggerAdapter) SetHeader(_ string) {}

// Level reports the last level echo asked for
func (a *EchoLoggerAdapter) Level() echo_log.Lvl {
	return echo_log.Lvl(a.level.Load())
}

// SetLevel records the level; filtering stays with the Logger configuration
func (a *EchoLoggerAdapter) SetLevel(v echo_log.Lvl) {
	a.level.Store(uint32(v))
}

func (a *EchoLoggerAdapter) Print(i ...any)                    { a.logger.Info(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Printf(format string, args ...any) { a.logger.Info(fmt.Sprintf(format, args...)) }
func (a *EchoLoggerAdapter) Printj(j echo_log.JSON)            { a.logger.Info("echo", Any("data", j)) }

func (a *EchoLoggerAdapter) Debug(i ...any)                    { a.logger.Debug(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Debugf(format string, args ...any) { a.logger.Debug(fmt.Sprintf(format, args...)) }
func (a *EchoLoggerAdapter) Debugj(j echo_log.JSON)            { a.logger.Debug("echo", Any("data", j)) }

func (a *EchoLoggerAdapter) Info(i ...any)                    { a.logger.Info(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Infof(format string, args ...any) { a.logger.Info(fmt.Sprintf(format, args...)) }
func (a *EchoLoggerAdapter) Infoj(j echo_log.JSON)            { a.logger.Info("echo", Any("data", j)) }

func (a *EchoLoggerAdapter) Warn(i ...any)                    { a.logger.Warn(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Warnf(format string, args ...any) { a.logger.Warn(fmt.Sprintf(format, args...)) }
func (a *EchoLoggerAdapter) Warnj(j echo_log.JSON)            { a.logger.Warn("echo", Any("data", j)) }

func (a *EchoLoggerAdapter) Error(i ...any)                    { a.logger.Error(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Errorf(format string, args ...any) { a.logger.Error(fmt.Sprintf(format, args...)) }
func (a *EchoLoggerAdapter) Errorj(j echo_log.JSON)            { a.logger.Error("echo", Any("data", j)) }

// Fatal logs and panics so the recover middleware or main can shut down cleanly
func (a *EchoLoggerAdapter) Fatal(i ...any) {
	a.Panic(i...)
}

func (a *EchoLoggerAdapter) Fatalf(format string, args ...any) {
	a.Panicf(format, args...)
}

func (a *EchoLoggerAdapter) Fatalj(j echo_log.JSON) {
	a.Panicj(j)
}

func (a *EchoLoggerAdapter) Panic(i ...any) {
	msg := fmt.Sprint(i...)
	a.logger.Error(msg)
	panic(msg)
}

func (a *EchoLoggerAdapter) Panicf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Error(msg)
	panic(msg)
}

func (a *EchoLoggerAdapter) Panicj(j echo_log.JSON) {
	a.logger.Error("echo panic", Any("data", j))
	panic(fmt.Sprintf("%v", j))
}
