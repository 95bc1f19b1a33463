// Package logger provides phrasemine's conventions on top of
// charmbracelet/log: one prefixed logger per pipeline stage, so a run's
// output reads as a sequence of named stages rather than an undifferentiated
// stream. New reads the process-wide level once, when it is called, and
// switches on caller reporting by itself when that level is debug or lower.
// The stage loggers that packages create at initialization therefore keep
// the level in force at program start; a later change of the global level,
// such as the one cmd/phrasemine's -v flag makes, does not reach them.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// Stage names used to prefix loggers handed to the mining pipeline.
const (
	StageCorpus      = "corpus"
	StageVocab       = "vocab"
	StagePhrase      = "phrase"
	StageCollocation = "collocation"
	StageSink        = "sink"
	StageConfig      = "config"
	StageIOFormats   = "ioformats"
	StageCLI         = "cli"
)

// New creates a charm logger prefixed with stage, at the global log level
// in force when New is called; later changes to the global level do not
// affect the returned logger. Caller reporting turns on automatically at
// debug level, where a bare stage prefix stops being enough to find the
// offending line.
func New(stage string) *log.Logger {
	level := log.GetLevel()
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          stage,
		ReportCaller:    level <= log.DebugLevel,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           level,
	})
}
