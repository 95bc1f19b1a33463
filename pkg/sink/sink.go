// Package sink streams mining results to an io.Writer: it emits the
// frequent-phrase table as (frequency, token-ids) pairs in
// frequency-descending order, and emits the collocation stream as
// fixed-shape records (the 4-tuple plus the min-nonterminal-span tag),
// one MessagePack value per call so a caller can
// consume the collocation channel without pre-materializing it. The
// wire format is not a compatibility contract across versions.
//
// Follows pkg/server/server.go's sendResponse pattern: buffer one
// MessagePack-encoded value and write it atomically. This sink is
// producer-only, with no request/response round trip.
package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/joshua-mt/phrasemine/internal/logger"
	"github.com/joshua-mt/phrasemine/pkg/collocation"
	"github.com/joshua-mt/phrasemine/pkg/phrase"
)

var log = logger.New(logger.StageSink)

// PhraseRecord is the wire shape of one frequent-phrase entry.
type PhraseRecord struct {
	Frequency int     `msgpack:"freq"`
	TokenIDs  []int32 `msgpack:"tokens"`
}

// CollocationRecord is the wire shape of one collocation record.
type CollocationRecord struct {
	Rank1              uint16 `msgpack:"r1"`
	Rank2              uint16 `msgpack:"r2"`
	Pos1               int    `msgpack:"p1"`
	Pos2               int    `msgpack:"p2"`
	MinNonterminalSpan int    `msgpack:"mns"`
}

// Writer streams phrase and collocation records to an io.Writer as
// MessagePack values, one value per call.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for streaming output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrequentPhrases emits fp's entries, one MessagePack value per
// entry, in fp's iteration order (frequency-descending).
func (s *Writer) WriteFrequentPhrases(fp *phrase.FrequentPhrases) error {
	for i := 0; i < fp.Len(); i++ {
		p, freq := fp.At(i)
		tokens := p.Tokens()
		ids := make([]int32, len(tokens))
		for j, t := range tokens {
			ids[j] = int32(t)
		}
		if err := s.encode(PhraseRecord{Frequency: freq, TokenIDs: ids}); err != nil {
			log.Errorf("failed to write frequent phrase %d: %v", i, err)
			return fmt.Errorf("sink: writing frequent phrase %d: %w", i, err)
		}
	}
	log.Debugf("wrote %d frequent phrases", fp.Len())
	return nil
}

// WriteCollocation emits one collocation record.
func (s *Writer) WriteCollocation(rec collocation.Record) error {
	return s.encode(CollocationRecord{
		Rank1:              rec.Rank1,
		Rank2:              rec.Rank2,
		Pos1:               rec.Pos1,
		Pos2:               rec.Pos2,
		MinNonterminalSpan: rec.MinNonterminalSpan,
	})
}

// DrainCollocations consumes ch, writing every record until it closes or
// ctx is cancelled. The first error from either the stream or the
// encoder stops the drain.
func (s *Writer) DrainCollocations(ctx context.Context, ch <-chan collocation.Result) error {
	count := 0
	for {
		select {
		case <-ctx.Done():
			log.Debugf("drain cancelled after %d records", count)
			return ctx.Err()
		case res, ok := <-ch:
			if !ok {
				log.Debugf("drained %d collocation records", count)
				return nil
			}
			if res.Err != nil {
				log.Errorf("collocation stream failed after %d records: %v", count, res.Err)
				return fmt.Errorf("sink: collocation stream: %w", res.Err)
			}
			if err := s.WriteCollocation(res.Record); err != nil {
				log.Errorf("failed to write collocation record %d: %v", count, err)
				return err
			}
			count++
		}
	}
}

func (s *Writer) encode(v any) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := s.w.Write(buf.Bytes())
	return err
}
