package reasoning

import (
	"fmt"
	"strings"
)

// FilePayload is one file embedded into a prompt, already truncated by the
// caller's batch policy.
type FilePayload struct {
	Path     string
	Language string
	Content  string
}

const codebaseSystem = `You are a senior software architect reviewing a codebase.
Respond with a single JSON object and nothing else, using exactly this shape:
{
  "languages": {"<language name>": <fraction of codebase, all values summing to about 1.0>},
  "architecture": "<short description of the architecture and main patterns>",
  "issues": [{"type": "<tag>", "severity": "high|medium|low", "file": "<path>", "description": "<text>", "line": <number, optional>}],
  "suggestions": [{"type": "<tag>", "title": "<text>", "description": "<text>", "file": "<path, optional>", "proposed_change": "<text, optional>"}]
}`

const documentSystem = `You are a senior engineer adding documentation to one source file.
Return the complete file with documentation comments added and nothing removed.
Respond with a single JSON object and nothing else, using exactly this shape:
{"content": "<the full documented file>", "changes": [{"description": "<what was added>", "line": <number, optional>}]}`

const improveSystem = `You are a senior engineer improving one source file.
Keep behavior identical unless fixing a clear bug.
Respond with a single JSON object and nothing else, using exactly this shape:
{"content": "<the full improved file>", "changes": [{"description": "<what changed and why>", "line": <number, optional>}]}`

// CodebaseSystem returns the fixed instruction for whole-codebase analysis.
func CodebaseSystem() string { return codebaseSystem }

// DocumentSystem returns the fixed instruction for the document path.
func DocumentSystem() string { return documentSystem }

// ImproveSystem returns the fixed instruction for the improve path.
func ImproveSystem() string { return improveSystem }

// BuildCodebasePrompt renders the file batch into the analysis prompt.
func BuildCodebasePrompt(files []FilePayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following codebase of %d files.\n\n", len(files))
	b.WriteString("File listing:\n")
	for _, f := range files {
		fmt.Fprintf(&b, "- %s (%s)\n", f.Path, f.Language)
	}
	b.WriteString("\nFile contents (possibly truncated):\n")
	for _, f := range files {
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", f.Path, f.Content)
	}
	return b.String()
}

// BuildRewritePrompt renders a single file for the document/improve paths.
func BuildRewritePrompt(f FilePayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\nLanguage: %s\n\n%s\n", f.Path, f.Language, f.Content)
	return b.String()
}
