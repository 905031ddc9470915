package codestats

import (
	"os"
	"sync"
)

var initOnce sync.Once

// ProcessFile counts one file and adds it to its role and language. The
// language is detected from the file name and content when empty.
func (a *sccAnalyzer) ProcessFile(filename string, language string, content []byte) {
	if content == nil {
		data, err := os.ReadFile(filename)
		if err != nil {
			return
		}
		content = data
	}
	stats, ok := countFile(filename, content)
	if !ok {
		return
	}
	if language == "" {
		language = DetectLanguage(filename, content)
	}
	if language == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.addUnsafe(filename, language, stats)
}
