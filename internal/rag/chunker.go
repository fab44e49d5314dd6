package rag

import (
	"bufio"
	"iter"
	"strings"
	"unicode/utf8"
)

// Chunk splits text into chunks of whole trimmed lines joined by a space.
// Blank lines are dropped. A buffer is flushed when appending the next line
// would push it past chunkSize characters, so a line longer than chunkSize
// becomes its own chunk. The sequence can be ranged over more than once.
func Chunk(text string, chunkSize int) iter.Seq[string] {
	return func(yield func(string) bool) {
		var buffer []string
		currentLen := 0
		for line := range lines(text) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			n := utf8.RuneCountInString(line)
			if currentLen+n > chunkSize && len(buffer) > 0 {
				if !yield(strings.Join(buffer, " ")) {
					return
				}
				buffer = buffer[:0]
				currentLen = 0
			}
			buffer = append(buffer, line)
			currentLen += n
		}
		if len(buffer) > 0 {
			yield(strings.Join(buffer, " "))
		}
	}
}

func lines(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		sc := bufio.NewScanner(strings.NewReader(text))
		sc.Buffer(make([]byte, 0, 64*1024), len(text)+1)
		sc.Split(scanLines)
		for sc.Scan() {
			if !yield(sc.Text()) {
				return
			}
		}
	}
}

// scanLines treats \n, \r\n and a lone \r as line breaks.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		switch b {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			return 0, nil, nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
