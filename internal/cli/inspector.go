// Package cli provides an interactive debug loop over a built
// FrequentPhrases table: type a phrase (tokens separated by spaces using
// the vocabulary's words), press Enter, and see its rank and frequency.
// Not part of the mining pipeline's core contract; a sanity-check aid for
// manually inspecting results without wiring up the full sink.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joshua-mt/phrasemine/internal/logger"
	"github.com/joshua-mt/phrasemine/pkg/corpus"
	"github.com/joshua-mt/phrasemine/pkg/phrase"
	"github.com/joshua-mt/phrasemine/pkg/vocab"
)

var log = logger.New(logger.StageCLI)

// Inspector reads whitespace-separated phrases from stdin and reports
// their rank and frequency against a built FrequentPhrases/RankMap pair.
type Inspector struct {
	vocab        *vocab.Vocabulary
	fp           *phrase.FrequentPhrases
	rm           *phrase.RankMap
	requestCount int
}

// NewInspector builds an Inspector over the result of a completed
// extraction pass.
func NewInspector(v *vocab.Vocabulary, fp *phrase.FrequentPhrases, rm *phrase.RankMap) *Inspector {
	return &Inspector{vocab: v, fp: fp, rm: rm}
}

// Start begins the read-eval-print loop. It reads one line at a time from
// stdin and reports the looked-up phrase's rank and frequency, looping
// until stdin closes or a read error occurs.
func (in *Inspector) Start() error {
	log.Print("phrasemine inspector")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a space-separated phrase and press Enter (Ctrl+D to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		in.handleLine(line)
	}
}

func (in *Inspector) handleLine(line string) {
	in.requestCount++

	rank, freq, found, err := in.Lookup(line)
	switch {
	case err != nil:
		log.Warnf("%v", err)
	case !found:
		log.Printf("%q is not in the frequent-phrase table", line)
	default:
		log.Printf("%q: rank=%d frequency=%d", line, rank, freq)
	}
}

// Lookup resolves a whitespace-separated phrase against the vocabulary
// and reports its rank and frequency. err is non-nil only if line
// contains a word absent from the vocabulary; found is false if the
// phrase is well-formed but not present in the frequent-phrase table.
func (in *Inspector) Lookup(line string) (rank uint16, freq int, found bool, err error) {
	words := strings.Fields(line)
	ids := make([]corpus.TokenID, 0, len(words))
	for _, w := range words {
		id := in.vocab.LookupOnly(w)
		if id == vocab.UnknownID {
			return 0, 0, false, fmt.Errorf("cli: unknown word %q", w)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, 0, false, nil
	}

	candidate := phrase.FromTokens(ids)
	freq, found = in.fp.Frequency(candidate)
	if !found {
		return 0, 0, false, nil
	}
	rank, _ = in.rm.Rank(candidate)
	return rank, freq, true, nil
}
