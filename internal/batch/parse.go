package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

// Entry is one project to create.
type Entry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Line        int    `yaml:"-"`
}

// Manifest is the YAML input format.
type Manifest struct {
	Projects []Entry `yaml:"projects"`
}

// LoadFile reads entries from path. Files ending in .yaml or .yml are parsed
// as a Manifest, anything else as name|description lines.
func LoadFile(path string, log *zap.Logger) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseManifest(f, log)
	default:
		return ParseLines(f, log)
	}
}

// ParseLines reads one "name|description" entry per line. Blank lines are
// skipped with a warning; malformed lines are logged and skipped.
func ParseLines(r io.Reader, log *zap.Logger) ([]Entry, error) {
	var (
		out []Entry
		n   int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			log.Warn("skipping empty line", zap.Int("line", n))
			continue
		}

		e, err := parseLine(line)
		if err != nil {
			log.Error("invalid line", zap.Int("line", n), zap.String("content", line), zap.Error(err))
			continue
		}
		e.Line = n
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return out, nil
}

func parseLine(line string) (Entry, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 2 {
		return Entry{}, &domain.ValidationError{Field: "line", Reason: fmt.Sprintf("expected name|description, got %d fields", len(parts))}
	}
	return Entry{
		Name:        strings.TrimSpace(parts[0]),
		Description: strings.TrimSpace(parts[1]),
	}, nil
}

// ParseManifest reads a YAML manifest. Entries without a name are logged and
// skipped.
func ParseManifest(r io.Reader, log *zap.Logger) ([]Entry, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	out := make([]Entry, 0, len(m.Projects))
	for i, e := range m.Projects {
		e.Line = i + 1
		e.Name = strings.TrimSpace(e.Name)
		e.Description = strings.TrimSpace(e.Description)
		if e.Name == "" {
			log.Error("invalid manifest entry", zap.Int("index", e.Line),
				zap.Error(&domain.ValidationError{Field: "name", Reason: "must not be empty"}))
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
