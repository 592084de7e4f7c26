package collector

import (
	"path/filepath"
	"strings"
)

// DefaultLanguage is returned for any extension without a dedicated mapping.
const DefaultLanguage = "text"

var languageByExt = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".kt":    "kotlin",
	".rb":    "ruby",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".php":   "php",
	".swift": "swift",
	".scala": "scala",
	".sh":    "shell",
	".bash":  "shell",
	".sql":   "sql",
	".html":  "html",
	".css":   "css",
	".scss":  "css",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".md":    "markdown",
	".txt":   "text",
}

// LanguageForPath derives a language tag from the lowercased file extension.
// The mapping is total: unknown extensions map to DefaultLanguage.
func LanguageForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return DefaultLanguage
}

// RecognizedExt reports whether the extension is part of the source
// allow-list. Files outside the allow-list are not collected.
func RecognizedExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := languageByExt[ext]
	return ok
}
