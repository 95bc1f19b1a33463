/*
Package main implements the phrasemine command-line driver.

phrasemine finds the top-N frequent phrases in a tokenized corpus using a
suffix array and LCP table, then streams sentence- and window-bounded
collocations between those phrases. It accepts either a single path to a
plain-text corpus (vocabulary, corpus, and suffix array are built in
memory) or three paths to pre-built binary vocabulary, corpus, and
suffix-array files.

# Config

Runtime options are managed via a `phrasemine.toml` file covering mining
parameters, the suffix-array comparison ceiling, and a cli.default_mode
setting. Mining flags given on the command line override the file's
values. cli.default_mode is validated but not consulted: the input mode
follows from the number of path arguments. A default configuration is
created automatically if one does not exist.

# Inspector

Passing -inspect drops into an interactive loop for looking up a phrase's
rank and frequency after a mining pass completes, useful for manually
sanity-checking results.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/joshua-mt/phrasemine/internal/cli"
	"github.com/joshua-mt/phrasemine/internal/ioformats"
	"github.com/joshua-mt/phrasemine/pkg/collocation"
	"github.com/joshua-mt/phrasemine/pkg/config"
	"github.com/joshua-mt/phrasemine/pkg/corpus"
	"github.com/joshua-mt/phrasemine/pkg/phrase"
	"github.com/joshua-mt/phrasemine/pkg/sarray"
	"github.com/joshua-mt/phrasemine/pkg/sink"
	"github.com/joshua-mt/phrasemine/pkg/vocab"
)

const (
	Version = "0.1.0"
	AppName = "phrasemine"
	gh      = "https://github.com/joshua-mt/phrasemine"
)

// sigHandler traps SIGINT/SIGTERM for a clean exit message.
func sigHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
	}()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigHandler(cancel)

	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "phrasemine.toml", "Path to config.toml file")
	verbose := flag.Bool("v", false, "Toggle verbose logging")
	inspect := flag.Bool("inspect", false, "Drop into an interactive rank/frequency lookup after mining")
	minFrequency := flag.Int("min-frequency", defaultConfig.Mining.MinFrequency, "Minimum phrase frequency")
	maxPhrases := flag.Int("max-phrases", defaultConfig.Mining.MaxPhrases, "Maximum number of frequent phrases to keep")
	maxPhraseLength := flag.Int("max-phrase-length", defaultConfig.Mining.MaxPhraseLength, "Maximum phrase length in tokens")
	windowSize := flag.Int("window-size", defaultConfig.Mining.WindowSize, "Collocation window size in tokens")
	minNonterminalSpan := flag.Int("min-nonterminal-span", defaultConfig.Mining.MinNonterminalSpan, "Minimum nonterminal span tag carried with each collocation")
	out := flag.String("out", "", "Path to write MessagePack output (default: stdout)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, err := config.InitConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-frequency":
			cfg.Mining.MinFrequency = *minFrequency
		case "max-phrases":
			cfg.Mining.MaxPhrases = *maxPhrases
		case "max-phrase-length":
			cfg.Mining.MaxPhraseLength = *maxPhraseLength
		case "window-size":
			cfg.Mining.WindowSize = *windowSize
		case "min-nonterminal-span":
			cfg.Mining.MinNonterminalSpan = *minNonterminalSpan
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Errorf("invalid configuration: %v", err)
		os.Exit(2)
	}

	args := flag.Args()
	v, c, sa, err := loadInputs(cfg, args)
	if err != nil {
		log.Errorf("%v", err)
		exitCode := 1
		if isUsageError(err) {
			exitCode = 2
		}
		os.Exit(exitCode)
	}

	lcp, err := sarray.BuildLCP(c, sa)
	if err != nil {
		log.Errorf("failed to build LCP table: %v", err)
		os.Exit(1)
	}

	fp, rm, err := phrase.Extract(c, sa, lcp, phrase.Params{
		MinFrequency:    cfg.Mining.MinFrequency,
		MaxPhrases:      cfg.Mining.MaxPhrases,
		MaxPhraseLength: cfg.Mining.MaxPhraseLength,
	})
	if err != nil {
		log.Errorf("phrase extraction failed: %v", err)
		os.Exit(1)
	}
	log.Infof("extracted %d frequent phrases", fp.Len())

	w, closeOut, err := openOutput(*out)
	if err != nil {
		log.Errorf("failed to open output: %v", err)
		os.Exit(1)
	}
	defer closeOut()

	writer := sink.NewWriter(w)
	if err := writer.WriteFrequentPhrases(fp); err != nil {
		log.Errorf("failed to write frequent phrases: %v", err)
		os.Exit(1)
	}

	collocations := collocation.Enumerate(ctx, c, fp, rm, collocation.Params{
		MaxPhraseLength:    cfg.Mining.MaxPhraseLength,
		WindowSize:         cfg.Mining.WindowSize,
		MinNonterminalSpan: cfg.Mining.MinNonterminalSpan,
	})
	if err := writer.DrainCollocations(ctx, collocations); err != nil {
		log.Errorf("collocation stream failed: %v", err)
		os.Exit(1)
	}

	if *inspect {
		inspector := cli.NewInspector(v, fp, rm)
		if err := inspector.Start(); err != nil {
			log.Debugf("inspector exited: %v", err)
		}
	}
}

type usageError struct{ error }

func isUsageError(err error) bool {
	_, ok := err.(usageError)
	return ok
}

// loadInputs dispatches on argument count per the CLI surface: one path
// builds vocabulary, corpus, and suffix array from plain text in memory;
// three paths load pre-built binary files.
func loadInputs(cfg *config.Config, args []string) (*vocab.Vocabulary, *corpus.Corpus, *sarray.SuffixArray, error) {
	switch len(args) {
	case 1:
		text, err := os.ReadFile(args[0])
		if err != nil {
			return nil, nil, nil, fmt.Errorf("reading corpus text: %w", err)
		}
		v := vocab.New()
		c, err := vocab.BuildCorpus(v, string(text))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("building corpus: %w", err)
		}
		sa, err := sarray.Build(c, cfg.Corpus.MaxCmp)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("building suffix array: %w", err)
		}
		return v, c, sa, nil
	case 3:
		v, err := readVocabFile(args[0])
		if err != nil {
			return nil, nil, nil, err
		}
		c, err := readCorpusFile(args[1])
		if err != nil {
			return nil, nil, nil, err
		}
		sa, err := readSarrayFile(args[2])
		if err != nil {
			return nil, nil, nil, err
		}
		return v, c, sa, nil
	default:
		return nil, nil, nil, usageError{fmt.Errorf("expected 1 plain-text path or 3 binary paths (vocab corpus sarray), got %d arguments", len(args))}
	}
}

func readVocabFile(path string) (*vocab.Vocabulary, error) {
	if err := ioformats.ValidateFileSize(path, 8); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening vocabulary file: %w", err)
	}
	defer f.Close()
	return ioformats.ReadVocabulary(f)
}

func readCorpusFile(path string) (*corpus.Corpus, error) {
	if err := ioformats.ValidateFileSize(path, 8); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file: %w", err)
	}
	defer f.Close()
	return ioformats.ReadCorpus(f)
}

func readSarrayFile(path string) (*sarray.SuffixArray, error) {
	if err := ioformats.ValidateFileSize(path, 12); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening suffix array file: %w", err)
	}
	defer f.Close()
	return ioformats.ReadSuffixArray(f)
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print(fmt.Sprintf("[%s] Frequent phrase discovery and collocation mining", AppName))
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use --help to see available options")
	logger.Print("")
	logger.Print("Find out more at", "gh", gh)
}
