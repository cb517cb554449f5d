package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/avelling/codescope/internal/domain"
)

const (
	maxScanFileSize = 1 << 20 // files larger than this are skipped, not read
	maxFindings     = 50
	largeFileLines  = 600
	deepNestIndent  = 24
	longLineLen     = 160
)

var ErrUnknownPhase = fmt.Errorf("unknown analysis phase")

type securityRule struct {
	name    string
	pattern *regexp.Regexp
}

var securityRules = []securityRule{
	{"hardcoded-password", regexp.MustCompile(`(?i)password\s*[:=]\s*["'][^"']{4,}["']`)},
	{"hardcoded-secret", regexp.MustCompile(`(?i)(secret|api[_-]?key|token)\s*[:=]\s*["'][^"']{8,}["']`)},
	{"weak-hash", regexp.MustCompile(`(?i)\b(md5|sha1)\s*\(`)},
	{"sql-concat", regexp.MustCompile(`(?i)(select|insert|update|delete)\s.*["']\s*\+`)},
	{"private-key", regexp.MustCompile(`-----BEGIN (RSA |EC )?PRIVATE KEY-----`)},
}

var manifestNames = map[string]string{
	"go.mod":           "go",
	"go.sum":           "go",
	"package.json":     "javascript",
	"requirements.txt": "python",
	"pyproject.toml":   "python",
	"Cargo.toml":       "rust",
	"pom.xml":          "java",
	"Gemfile":          "ruby",
	"composer.json":    "php",
}

// Analyzer is the deterministic engine: regex and structure heuristics
// over the files of a target directory. It holds no per-session state, so
// one instance serves every runner concurrently.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

type sourceFile struct {
	path     string
	language string
	content  []byte
}

func (a *Analyzer) RunPhase(ctx context.Context, phase domain.Phase, target string) (PhaseResult, error) {
	switch phase.ID {
	case "security_scan":
		return a.securityScan(ctx, target)
	case "performance_analysis":
		return a.performanceAnalysis(ctx, target)
	case "code_quality":
		return a.codeQuality(ctx, target)
	case "dependency_check":
		return a.dependencyCheck(ctx, target)
	case "final_report":
		return a.finalReport(ctx, target)
	default:
		return PhaseResult{}, fmt.Errorf("%w: %s", ErrUnknownPhase, phase.ID)
	}
}

func (a *Analyzer) securityScan(ctx context.Context, target string) (PhaseResult, error) {
	files, err := collectSourceFiles(ctx, target)
	if err != nil {
		return PhaseResult{}, err
	}

	findings := make([]map[string]any, 0)
	total := 0
	for _, f := range files {
		for _, warning := range ScanContent(f.path, f.content) {
			total++
			if len(findings) < maxFindings {
				findings = append(findings, map[string]any{"file": f.path, "warning": warning})
			}
		}
	}

	return PhaseResult{
		Phase: "security_scan",
		Payload: map[string]any{
			"vulnerabilities": total,
			"findings":        findings,
		},
	}, nil
}

// ScanContent applies the security rules to one file and returns a warning
// per matching line. Shared with the upload endpoint.
func ScanContent(name string, content []byte) []string {
	var warnings []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		for _, rule := range securityRules {
			if rule.pattern.MatchString(line) {
				warnings = append(warnings, fmt.Sprintf("%s at %s:%d", rule.name, filepath.Base(name), lineNo))
			}
		}
	}
	return warnings
}

func (a *Analyzer) performanceAnalysis(ctx context.Context, target string) (PhaseResult, error) {
	files, err := collectSourceFiles(ctx, target)
	if err != nil {
		return PhaseResult{}, err
	}

	issues := 0
	hotspots := make([]string, 0)
	for _, f := range files {
		lines := bytes.Split(f.content, []byte("\n"))
		if len(lines) > largeFileLines {
			issues++
			hotspots = appendCapped(hotspots, fmt.Sprintf("%s: %d lines", f.path, len(lines)))
		}
		deep := 0
		long := 0
		for _, line := range lines {
			if indentWidth(line) >= deepNestIndent {
				deep++
			}
			if len(line) > longLineLen {
				long++
			}
		}
		if deep > 10 {
			issues++
			hotspots = appendCapped(hotspots, fmt.Sprintf("%s: deeply nested code", f.path))
		}
		if long > 20 {
			issues++
			hotspots = appendCapped(hotspots, fmt.Sprintf("%s: many long lines", f.path))
		}
	}

	return PhaseResult{
		Phase: "performance_analysis",
		Payload: map[string]any{
			"performance_issues": issues,
			"hotspots":           hotspots,
		},
	}, nil
}

func (a *Analyzer) codeQuality(ctx context.Context, target string) (PhaseResult, error) {
	files, err := collectSourceFiles(ctx, target)
	if err != nil {
		return PhaseResult{}, err
	}

	codeLines, commentLines := 0, 0
	for _, f := range files {
		for _, raw := range bytes.Split(f.content, []byte("\n")) {
			line := strings.TrimSpace(string(raw))
			switch {
			case line == "":
			case strings.HasPrefix(line, "//"), strings.HasPrefix(line, "#"), strings.HasPrefix(line, "/*"), strings.HasPrefix(line, "*"):
				commentLines++
			default:
				codeLines++
			}
		}
	}

	ratio := 0.0
	if codeLines > 0 {
		ratio = float64(commentLines) / float64(codeLines)
	}
	// Score rewards a comment ratio up to 25%; beyond that adds nothing.
	score := 70 + int(ratio*120)
	if score > 100 {
		score = 100
	}
	if codeLines == 0 {
		score = 0
	}

	return PhaseResult{
		Phase: "code_quality",
		Payload: map[string]any{
			"quality_score": score,
			"code_lines":    codeLines,
			"comment_lines": commentLines,
		},
	}, nil
}

func (a *Analyzer) dependencyCheck(ctx context.Context, target string) (PhaseResult, error) {
	if err := ctx.Err(); err != nil {
		return PhaseResult{}, err
	}

	manifests := make([]string, 0)
	err := filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := manifestNames[d.Name()]; ok {
			rel, relErr := filepath.Rel(target, path)
			if relErr != nil {
				rel = path
			}
			manifests = append(manifests, rel)
		}
		return nil
	})
	if err != nil {
		return PhaseResult{}, fmt.Errorf("dependency check on %s: %w", target, err)
	}

	return PhaseResult{
		Phase: "dependency_check",
		Payload: map[string]any{
			"manifests":      manifests,
			"manifest_count": len(manifests),
		},
	}, nil
}

func (a *Analyzer) finalReport(ctx context.Context, target string) (PhaseResult, error) {
	files, err := collectSourceFiles(ctx, target)
	if err != nil {
		return PhaseResult{}, err
	}

	languages := make(map[string]int)
	for _, f := range files {
		languages[f.language]++
	}

	return PhaseResult{
		Phase: "final_report",
		Payload: map[string]any{
			"files_analyzed": len(files),
			"languages":      languages,
		},
	}, nil
}

// Summarize folds per-phase payloads into the completion summary.
func (a *Analyzer) Summarize(results []PhaseResult, elapsed time.Duration) Summary {
	s := Summary{ProcessingTime: elapsed.Seconds()}
	for _, r := range results {
		switch r.Phase {
		case "security_scan":
			s.VulnerabilitiesFound = payloadInt(r.Payload, "vulnerabilities")
		case "performance_analysis":
			s.PerformanceIssues = payloadInt(r.Payload, "performance_issues")
		case "code_quality":
			s.QualityScore = payloadInt(r.Payload, "quality_score")
		case "final_report":
			s.FilesAnalyzed = payloadInt(r.Payload, "files_analyzed")
		}
	}
	return s
}

func payloadInt(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func collectSourceFiles(ctx context.Context, target string) ([]sourceFile, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("analysis target %s: %w", target, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("analysis target %s: not a directory", target)
	}

	var files []sourceFile
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		lang := DetectLanguage(d.Name())
		if lang == "unknown" {
			return nil
		}
		fi, err := d.Info()
		if err != nil || fi.Size() > maxScanFileSize {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		files = append(files, sourceFile{path: path, language: lang, content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", target, err)
	}
	return files, nil
}

func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", "__pycache__", ".venv", "target":
		return true
	}
	return false
}

func indentWidth(line []byte) int {
	width := 0
	for _, b := range line {
		switch b {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return 0
}

func appendCapped(list []string, item string) []string {
	if len(list) >= maxFindings {
		return list
	}
	return append(list, item)
}
