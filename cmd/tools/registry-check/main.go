// cmd/tools/registry-check/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/validation"
	"mission-workers/pkg/registry"
)

func main() {
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listPath := listCmd.String("path", "", "Registry file (defaults to the embedded catalog)")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", "", "Registry file (defaults to the embedded catalog)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := load(*listPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		list(reg)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := load(*validatePath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		problems := check(reg)
		if len(problems) > 0 {
			fmt.Println("Registry validation failed:")
			for _, p := range problems {
				fmt.Printf("  - %s\n", p)
			}
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "help":
		fallthrough
	default:
		help()
	}
}

func load(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(path)
}

func list(reg *registry.ActivityRegistry) {
	acts := append([]registry.Activity(nil), reg.Activities...)
	sort.Slice(acts, func(i, j int) bool {
		if acts[i].Category != acts[j].Category {
			return acts[i].Category < acts[j].Category
		}
		return acts[i].TaskType < acts[j].TaskType
	})
	for _, a := range acts {
		fmt.Printf("%-12s %-26s %-8s %s\n", a.Category, a.TaskType, a.Timeout, strings.Join(a.ErrorCodes, ","))
	}
}

// check returns every problem found in reg; an empty result means the
// catalog can be served by the worker manager.
func check(reg *registry.ActivityRegistry) []string {
	var problems []string
	if len(reg.Activities) == 0 {
		return []string{"registry contains no activities"}
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range reg.Activities {
		if a.ID == "" {
			problems = append(problems, "activity missing required field: id")
			continue
		}
		if ids[a.ID] {
			problems = append(problems, fmt.Sprintf("duplicate activity id: %s", a.ID))
		}
		ids[a.ID] = true

		if a.TaskType == "" {
			problems = append(problems, fmt.Sprintf("%s: missing taskType", a.ID))
		} else if taskTypes[a.TaskType] {
			problems = append(problems, fmt.Sprintf("%s: duplicate taskType %s", a.ID, a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if a.Category == "" {
			problems = append(problems, fmt.Sprintf("%s: missing category", a.ID))
		}
		if a.InputSchema == nil {
			problems = append(problems, fmt.Sprintf("%s: missing inputSchema", a.ID))
		}
		if _, err := a.TimeoutDuration(); err != nil {
			problems = append(problems, fmt.Sprintf("%s: invalid timeout %q", a.ID, a.Timeout))
		}
		for _, code := range a.ErrorCodes {
			if !knownCode(errors.ErrorCode(code)) {
				problems = append(problems, fmt.Sprintf("%s: unknown error code %s", a.ID, code))
			}
		}
	}

	if len(problems) == 0 {
		if _, err := validation.NewValidator(reg); err != nil {
			problems = append(problems, fmt.Sprintf("input schemas: %v", err))
		}
	}
	return problems
}

func knownCode(code errors.ErrorCode) bool {
	return errors.IsBusinessError(code) || errors.IsRetryableErrorCode(code) || code == errors.ErrCodeInternal
}

func help() {
	fmt.Println(`
Usage: registry-check <command> [flags]

Commands:
  list      Print the activities by category
  validate  Check ids, task types, timeouts, error codes and input schemas
  help      Show this help message

Examples:
  registry-check validate
  registry-check list -path pkg/registry/activities.json`)
}
