// Package ioformats reads and writes the binary envelope shared by
// vocabulary, corpus, and suffix-array files: a little-endian int32 magic
// word identifying the file kind, an int32 record-count header, then
// fixed- or length-prefixed records. Modeled on
// pkg/dictionary/loader.go's dict_XXXX.bin framing, generalized from one
// record shape to three, and on pkg/dictionary/formats.go's
// stat-then-header validation.
package ioformats

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/joshua-mt/phrasemine/internal/logger"
	"github.com/joshua-mt/phrasemine/pkg/corpus"
	"github.com/joshua-mt/phrasemine/pkg/sarray"
	"github.com/joshua-mt/phrasemine/pkg/vocab"
)

var log = logger.New(logger.StageIOFormats)

// Magic words identify which binary envelope a file holds.
const (
	magicVocab  int32 = 0x564f4331 // "VOC1"
	magicCorpus int32 = 0x434f5231 // "COR1"
	magicSarray int32 = 0x53415231 // "SAR1"
)

// MaxRecordCountValidation bounds the record-count header against
// corrupt or adversarial files; a header claiming more records than this
// is rejected before any allocation is attempted.
const MaxRecordCountValidation = 100_000_000

// wordBufPool reuses length-prefixed word buffers across vocabulary reads
// instead of reallocating a byte slice per record.
var wordBufPool = sync.Pool{
	New: func() any { return make([]byte, 0, 64) },
}

func validateHeader(kind string, magic, wantMagic, count int32) error {
	if magic != wantMagic {
		return fmt.Errorf("ioformats: %s file has bad magic %#x, want %#x", kind, uint32(magic), uint32(wantMagic))
	}
	if count < 0 {
		return fmt.Errorf("ioformats: %s file has negative record count %d", kind, count)
	}
	if count > MaxRecordCountValidation {
		return fmt.Errorf("ioformats: %s file claims %d records, exceeding validation ceiling %d", kind, count, MaxRecordCountValidation)
	}
	return nil
}

// WriteVocabulary writes v's ordinary entries (excluding the two reserved
// IDs) to w as a length-prefixed word list.
func WriteVocabulary(w io.Writer, v *vocab.Vocabulary) error {
	words := v.Words()
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, magicVocab); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(words))); err != nil {
		return err
	}
	for _, word := range words {
		if len(word) > 65535 {
			return fmt.Errorf("ioformats: vocabulary word %q exceeds 65535 bytes", word)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(word))); err != nil {
			return err
		}
		if _, err := bw.WriteString(word); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		log.Errorf("failed to flush vocabulary file: %v", err)
		return err
	}
	log.Debugf("wrote vocabulary: %d entries", len(words))
	return nil
}

// ReadVocabulary reads a vocabulary file previously written by
// WriteVocabulary.
func ReadVocabulary(r io.Reader) (*vocab.Vocabulary, error) {
	br := bufio.NewReader(r)
	var magic, count int32
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("ioformats: reading vocabulary magic: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("ioformats: reading vocabulary count: %w", err)
	}
	if err := validateHeader("vocabulary", magic, magicVocab, count); err != nil {
		log.Errorf("%v", err)
		return nil, err
	}
	words := make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		var wordLen uint16
		if err := binary.Read(br, binary.LittleEndian, &wordLen); err != nil {
			return nil, fmt.Errorf("ioformats: reading word length at entry %d: %w", i, err)
		}
		buf := wordBufPool.Get().([]byte)
		if cap(buf) < int(wordLen) {
			buf = make([]byte, wordLen)
		} else {
			buf = buf[:wordLen]
		}
		if _, err := io.ReadFull(br, buf); err != nil {
			wordBufPool.Put(buf[:0])
			return nil, fmt.Errorf("ioformats: reading word at entry %d: %w", i, err)
		}
		words = append(words, string(buf))
		wordBufPool.Put(buf[:0])
	}
	log.Debugf("read vocabulary: %d entries", len(words))
	return vocab.FromWords(words), nil
}

// WriteCorpus writes c's token sequence and sentence boundaries to w.
func WriteCorpus(w io.Writer, c *corpus.Corpus) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, magicCorpus); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(c.Length())); err != nil {
		return err
	}
	for i := 0; i < c.Length(); i++ {
		if err := binary.Write(bw, binary.LittleEndian, int32(c.Token(i))); err != nil {
			return err
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(c.NumSentences())); err != nil {
		return err
	}
	for s := 0; s < c.NumSentences(); s++ {
		if err := binary.Write(bw, binary.LittleEndian, int32(c.SentenceStart(s))); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		log.Errorf("failed to flush corpus file: %v", err)
		return err
	}
	log.Debugf("wrote corpus: %d tokens, %d sentences", c.Length(), c.NumSentences())
	return nil
}

// ReadCorpus reads a corpus file previously written by WriteCorpus.
func ReadCorpus(r io.Reader) (*corpus.Corpus, error) {
	br := bufio.NewReader(r)
	var magic, tokenCount int32
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("ioformats: reading corpus magic: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &tokenCount); err != nil {
		return nil, fmt.Errorf("ioformats: reading corpus token count: %w", err)
	}
	if err := validateHeader("corpus", magic, magicCorpus, tokenCount); err != nil {
		log.Errorf("%v", err)
		return nil, err
	}
	tokens := make([]corpus.TokenID, tokenCount)
	for i := range tokens {
		var id int32
		if err := binary.Read(br, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("ioformats: reading token %d: %w", i, err)
		}
		tokens[i] = corpus.TokenID(id)
	}
	var sentenceCount int32
	if err := binary.Read(br, binary.LittleEndian, &sentenceCount); err != nil {
		return nil, fmt.Errorf("ioformats: reading sentence count: %w", err)
	}
	if sentenceCount < 0 || sentenceCount > MaxRecordCountValidation {
		err := fmt.Errorf("ioformats: corpus file claims %d sentences, exceeding validation ceiling", sentenceCount)
		log.Errorf("%v", err)
		return nil, err
	}
	starts := make([]int, sentenceCount)
	for i := range starts {
		var start int32
		if err := binary.Read(br, binary.LittleEndian, &start); err != nil {
			return nil, fmt.Errorf("ioformats: reading sentence start %d: %w", i, err)
		}
		starts[i] = int(start)
	}
	c, err := corpus.New(tokens, starts)
	if err != nil {
		log.Errorf("corpus file failed validation: %v", err)
		return nil, err
	}
	log.Debugf("read corpus: %d tokens, %d sentences", c.Length(), c.NumSentences())
	return c, nil
}

// WriteSuffixArray writes sa to w.
func WriteSuffixArray(w io.Writer, sa *sarray.SuffixArray) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, magicSarray); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(sa.Size())); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(sa.MaxCmp())); err != nil {
		return err
	}
	for i := 0; i < sa.Size(); i++ {
		if err := binary.Write(bw, binary.LittleEndian, int32(sa.SA(i))); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		log.Errorf("failed to flush suffix array file: %v", err)
		return err
	}
	log.Debugf("wrote suffix array: %d entries, maxCmp=%d", sa.Size(), sa.MaxCmp())
	return nil
}

// ReadSuffixArray reads a suffix-array file previously written by
// WriteSuffixArray.
func ReadSuffixArray(r io.Reader) (*sarray.SuffixArray, error) {
	br := bufio.NewReader(r)
	var magic, n, maxCmp int32
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("ioformats: reading suffix array magic: %w", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("ioformats: reading suffix array size: %w", err)
	}
	if err := validateHeader("suffix array", magic, magicSarray, n); err != nil {
		log.Errorf("%v", err)
		return nil, err
	}
	if err := binary.Read(br, binary.LittleEndian, &maxCmp); err != nil {
		return nil, fmt.Errorf("ioformats: reading suffix array maxCmp: %w", err)
	}
	sa := make([]int, n)
	for i := range sa {
		var v int32
		if err := binary.Read(br, binary.LittleEndian, &v); err != nil {
			return nil, fmt.Errorf("ioformats: reading suffix array entry %d: %w", i, err)
		}
		sa[i] = int(v)
	}
	result, err := sarray.New(sa, int(maxCmp))
	if err != nil {
		log.Errorf("suffix array file failed validation: %v", err)
		return nil, err
	}
	log.Debugf("read suffix array: %d entries, maxCmp=%d", result.Size(), result.MaxCmp())
	return result, nil
}

// ValidateFileSize is a cheap pre-flight check: a file smaller than
// minSize cannot possibly hold a valid header plus any records.
func ValidateFileSize(path string, minSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		log.Errorf("failed to stat %s: %v", path, err)
		return err
	}
	if info.Size() < minSize {
		err := fmt.Errorf("ioformats: %s is too small (%d bytes, want at least %d)", path, info.Size(), minSize)
		log.Errorf("%v", err)
		return err
	}
	return nil
}
