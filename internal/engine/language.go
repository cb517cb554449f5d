package engine

import (
	"path/filepath"
	"sort"
	"strings"
)

var extToLanguage = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".cpp":  "cpp",
	".c":    "c",
	".h":    "cpp",
	".hpp":  "cpp",
	".cs":   "csharp",
	".java": "java",
	".mq5":  "mql5",
	".mqh":  "mql5",
	".rs":   "rust",
	".go":   "go",
	".rb":   "ruby",
	".php":  "php",
}

// DetectLanguage maps a filename to a language by extension, or "unknown".
func DetectLanguage(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if lang, ok := extToLanguage[ext]; ok {
		return lang
	}
	return "unknown"
}

// Language groups the extensions recognized for one language.
type Language struct {
	Name       string
	Extensions []string
}

// SupportedLanguages returns the recognition catalog, sorted by name.
func SupportedLanguages() []Language {
	byName := make(map[string][]string)
	for ext, lang := range extToLanguage {
		byName[lang] = append(byName[lang], ext)
	}

	out := make([]Language, 0, len(byName))
	for name, exts := range byName {
		sort.Strings(exts)
		out = append(out, Language{Name: name, Extensions: exts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
