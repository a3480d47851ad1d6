// Package commands provides CLI command implementations.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blackms/taskrouter-go/internal/application/engine"
	"github.com/blackms/taskrouter-go/internal/shared"
)

// ConfigPath is the engine configuration file shared by all commands. Bound to
// the root command's persistent --config flag.
var ConfigPath string

func newEngine() (*engine.Engine, error) {
	cfg, err := engine.LoadConfig(ConfigPath)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return eng, nil
}

func loadTasks(path string) ([]shared.TaskRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}
	var tasks []shared.TaskRequest
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse tasks file: %w", err)
	}
	return tasks, nil
}

func loadContext(path string) (shared.SchedulingContext, error) {
	var ctx shared.SchedulingContext
	if path == "" {
		return ctx, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ctx, fmt.Errorf("failed to read context file: %w", err)
	}
	if err := json.Unmarshal(data, &ctx); err != nil {
		return ctx, fmt.Errorf("failed to parse context file: %w", err)
	}
	return ctx, nil
}

// taskFromFlags builds a single task from the common single-task flags used by
// score, priority, and classify.
func taskFromFlags(id, description, domain string, tags []string, files int, hours float64, specs, patterns bool) shared.TaskRequest {
	if id == "" {
		id = shared.GenerateID("task")
	}
	return shared.TaskRequest{
		ID:                  id,
		Description:         description,
		Tags:                tags,
		EstimatedFiles:      files,
		EstimatedHours:      hours,
		Domain:              domain,
		HasDetailedSpecs:    specs,
		HasExistingPatterns: patterns,
		SubmittedAt:         shared.Now(),
	}
}

// loadSingleTaskContext builds a minimal scheduling context for one task.
func loadSingleTaskContext(taskID string, dependents int) shared.SchedulingContext {
	if dependents <= 0 {
		return shared.SchedulingContext{}
	}
	return shared.SchedulingContext{
		Dependents: map[string]int{taskID: dependents},
	}
}

func printJSON(v interface{}) {
	output, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(output))
}
