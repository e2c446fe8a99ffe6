package moderation

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

//go:embed words.txt
var defaultWords []byte

// DefaultWords returns the built-in word list.
func DefaultWords() []string {
	words, _ := parseWords(bytes.NewReader(defaultWords))
	return words
}

// LoadWords reads a newline-separated word list from path on fs. Blank
// lines and lines starting with '#' are ignored.
func LoadWords(fs afero.Fs, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	words, err := parseWords(f)
	if err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}
	return words, nil
}

// Load builds a Filter from the word list at path, or from the built-in
// list when path is empty.
func Load(fs afero.Fs, path string) (*Filter, error) {
	words := DefaultWords()
	if path != "" {
		var err error
		if words, err = LoadWords(fs, path); err != nil {
			return nil, err
		}
	}
	return NewFilter(words)
}

func parseWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}
