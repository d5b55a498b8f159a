package sentiment

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

//go:embed lexicon/finance_lexicon.txt
var lexiconFS embed.FS

const bundledLexicon = "lexicon/finance_lexicon.txt"

// Lexicon maps lower-cased tokens to a valence in roughly [-4, 4].
type Lexicon map[string]float64

// BundledLexicon returns the finance-tuned lexicon shipped with the binary.
func BundledLexicon() (Lexicon, error) {
	data, err := lexiconFS.ReadFile(bundledLexicon)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled lexicon: %w", err)
	}
	return ParseLexicon(bytes.NewReader(data))
}

// LoadLexicon reads a VADER-format lexicon file.
func LoadLexicon(path string) (Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon: %w", err)
	}
	defer f.Close()

	lexicon, err := ParseLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon %s: %w", path, err)
	}
	return lexicon, nil
}

// ParseLexicon reads lines of "token<TAB>mean[<TAB>...]". Blank lines and lines
// starting with '#' are ignored; extra columns (std, raw ratings) are dropped.
func ParseLexicon(r io.Reader) (Lexicon, error) {
	lexicon := make(Lexicon)
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected token and valence", lineNo)
		}

		token := strings.ToLower(strings.TrimSpace(fields[0]))
		valence, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid valence %q: %w", lineNo, fields[1], err)
		}
		if token == "" {
			return nil, fmt.Errorf("line %d: empty token", lineNo)
		}

		lexicon[token] = valence
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	if len(lexicon) == 0 {
		return nil, fmt.Errorf("lexicon is empty")
	}

	return lexicon, nil
}
