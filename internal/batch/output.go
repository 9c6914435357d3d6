package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger logs to stderr and, when logFile is set, also to a rotated JSON
// file.
func NewLogger(logFile string, verbose bool) *zap.Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if logFile != "" {
		lj := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(lj),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...))
}

// PrintSummary writes a colored run summary.
func PrintSummary(w io.Writer, s Summary) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %d projects in %s\n", bold("Batch complete:"), s.Total, s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  %s %d\n", green("created"), s.Created)
	if s.Failed == 0 {
		return
	}
	fmt.Fprintf(w, "  %s %d\n", red("failed"), s.Failed)
	for _, f := range s.Failures {
		fmt.Fprintf(w, "    line %d %q: %v\n", f.Entry.Line, f.Entry.Name, f.Err)
	}
}
