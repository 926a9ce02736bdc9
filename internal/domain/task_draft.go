package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidParentRef is returned when a draft's parent reference cannot be resolved.
var ErrInvalidParentRef = fmt.Errorf("%w: invalid parent reference", ErrValidation)

// ErrInvalidDeadline is returned when a draft's deadline cannot be parsed.
var ErrInvalidDeadline = fmt.Errorf("%w: invalid deadline", ErrValidation)

// TaskDraft represents a task to be created from file input.
// ParentRef is either a relative index (1-based, within the same file)
// or an absolute task ID.
// Fields are ordered to minimize memory padding.
type TaskDraft struct {
	Deadline    time.Time
	Title       string
	Description string
	ParentRef   string
	Priority    Priority
}

// draftFrontmatter is the YAML header of a draft block.
type draftFrontmatter struct {
	Title    string `yaml:"title"`
	Deadline string `yaml:"deadline"`
	Priority string `yaml:"priority"`
	Parent   string `yaml:"parent"`
}

// frontmatterKeys are the keys that may start a new block after a "---" line.
var frontmatterKeys = []string{"title:", "deadline:", "priority:", "parent:"}

// ParseTaskDrafts parses a markdown file containing one or more task definitions.
// Tasks are separated by frontmatter blocks starting with "---".
//
// Format:
//
//	---
//	title: Release 1.0
//	deadline: 2026-03-01
//	priority: high
//	---
//	Description here.
//
//	---
//	title: Write changelog
//	deadline: 2026-02-20
//	parent: 1
//	---
//
// Parent references:
//   - Relative: "parent: 1" refers to the 1st task in this file
//   - Absolute: any non-numeric value is an existing task ID ("#" prefix optional, quoted)
func ParseTaskDrafts(content string) ([]TaskDraft, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	blocks := splitTaskBlocks(content)
	if len(blocks) == 0 {
		return nil, ErrNoTasksInFile
	}

	drafts := make([]TaskDraft, 0, len(blocks))
	for i, block := range blocks {
		draft, err := parseTaskBlock(block)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// splitTaskBlocks splits content into separate task blocks.
// Each returned block holds the frontmatter lines, a "---" line and the body.
func splitTaskBlocks(content string) []string {
	var blocks []string
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var current []string
	inBlock := false
	headerClosed := false

	for i, line := range lines {
		if line != "---" {
			if inBlock {
				current = append(current, line)
			}
			continue
		}

		switch {
		case !inBlock:
			inBlock = true
			headerClosed = false
			current = []string{}
		case !headerClosed:
			headerClosed = true
			current = append(current, line)
		case i+1 < len(lines) && isFrontmatterKey(lines[i+1]):
			blocks = append(blocks, strings.Join(current, "\n"))
			headerClosed = false
			current = []string{}
		default:
			// A horizontal rule inside the description
			current = append(current, line)
		}
	}

	if inBlock && len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}

	return blocks
}

func isFrontmatterKey(line string) bool {
	for _, key := range frontmatterKeys {
		if strings.HasPrefix(line, key) {
			return true
		}
	}
	return false
}

// parseTaskBlock parses a single "frontmatter --- body" block.
func parseTaskBlock(block string) (TaskDraft, error) {
	header, body, _ := strings.Cut(block, "\n---")
	if strings.HasPrefix(block, "---") {
		header, body = "", strings.TrimPrefix(block, "---")
	}

	var fm draftFrontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return TaskDraft{}, fmt.Errorf("%w: frontmatter: %v", ErrValidation, err)
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		return TaskDraft{}, ErrEmptyTitle
	}

	deadline, err := ParseDeadline(fm.Deadline)
	if err != nil {
		return TaskDraft{}, err
	}

	priority := PriorityMedium
	if fm.Priority != "" {
		priority, err = ParsePriority(strings.TrimSpace(fm.Priority))
		if err != nil {
			return TaskDraft{}, err
		}
	}

	return TaskDraft{
		Title:       title,
		Description: strings.Trim(body, "\n"),
		Deadline:    deadline,
		Priority:    priority,
		ParentRef:   strings.TrimSpace(fm.Parent),
	}, nil
}

// ParseDeadline parses a deadline in RFC3339 or YYYY-MM-DD form.
// A date without time is taken as the end of that day in UTC.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDeadline
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Add(24*time.Hour - time.Second), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDeadline, s)
}

// ResolveParentRef resolves a parent reference to an actual task ID.
// ref can be:
//   - A relative index (1-based) referring to an earlier task in the same file: "1", "2"
//   - An absolute task ID, optionally prefixed with "#"
//
// createdIDs maps relative index (1-based) to created task ID.
// An empty ref resolves to the empty ID (root task).
func ResolveParentRef(ref string, createdIDs map[int]string) (string, error) {
	if ref == "" {
		return "", nil
	}

	n, err := strconv.Atoi(ref)
	if err == nil {
		id, ok := createdIDs[n]
		if !ok {
			return "", fmt.Errorf("%w: %q does not refer to an earlier task in the file", ErrInvalidParentRef, ref)
		}
		return id, nil
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		return "", ErrInvalidParentRef
	}

	id := strings.TrimPrefix(ref, "#")
	if id == "" {
		return "", ErrInvalidParentRef
	}
	return id, nil
}
