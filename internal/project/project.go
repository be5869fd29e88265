// Package project reads and inspects Ralph project markdown files.
package project

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tOgg1/ralph/internal/models"
)

// Checklist line patterns. The checked marker is case-insensitive,
// the unchecked marker requires a literal space between the brackets.
var (
	checkedRe   = regexp.MustCompile(`^\s*-\s*\[[xX]\]`)
	uncheckedRe = regexp.MustCompile(`^\s*-\s*\[ \]`)
)

// ParseTaskProgress counts markdown checklist items in content.
// Lines matching `- [x]` count as completed, the union of `- [ ]` and
// `- [x]` lines counts as total. Everything else is ignored.
func ParseTaskProgress(content string) models.TaskProgress {
	progress := models.TaskProgress{}

	for _, line := range strings.Split(content, "\n") {
		switch {
		case checkedRe.MatchString(line):
			progress.Completed++
			progress.Total++
		case uncheckedRe.MatchString(line):
			progress.Total++
		}
	}

	return progress
}

// ReadTaskProgress parses the project file at path. A missing or
// unreadable file yields zero progress rather than an error; the loop
// treats that as an iteration-local condition.
func ReadTaskProgress(path string) models.TaskProgress {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.TaskProgress{}
	}
	return ParseTaskProgress(string(content))
}

// Task is a single checklist item.
type Task struct {
	Text string
	Done bool
}

// ParseTasks returns all checklist items in document order.
func ParseTasks(content string) []Task {
	var tasks []Task
	for _, line := range strings.Split(content, "\n") {
		done := checkedRe.MatchString(line)
		if !done && !uncheckedRe.MatchString(line) {
			continue
		}
		idx := strings.Index(line, "]")
		tasks = append(tasks, Task{
			Text: strings.TrimSpace(line[idx+1:]),
			Done: done,
		})
	}
	return tasks
}

// RemainingTasks returns the text of unchecked checklist items, in order.
func RemainingTasks(content string) []string {
	var tasks []string
	for _, line := range strings.Split(content, "\n") {
		if uncheckedRe.MatchString(line) {
			idx := strings.Index(line, "]")
			tasks = append(tasks, strings.TrimSpace(line[idx+1:]))
		}
	}
	return tasks
}

const templateFormat = `# Ralph Project: %s

## Description
Describe what you're building and any high-level context.

## Tasks
- [ ] First task
- [ ] Second task
- [ ] Third task

## Notes
Additional context, constraints, or preferences for the assistant.
`

// InitProjectFile writes a template project file to path.
func InitProjectFile(path, name string) error {
	if name == "" {
		name = "My Project"
	}
	content := fmt.Sprintf(templateFormat, name)
	return os.WriteFile(path, []byte(content), 0o644)
}
