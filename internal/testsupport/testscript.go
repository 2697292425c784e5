package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/amonks/tasktracker/task"
	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce sync.Once
	taskPath  string
	buildErr  error
)

// BuildTask builds the task binary once and returns its path.
func BuildTask(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "task-bin-")
		if err != nil {
			buildErr = err
			return
		}

		taskPath = filepath.Join(binDir, "task")
		cmd := exec.Command("go", "build", "-o", taskPath, "./cmd/task")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build task: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return taskPath
}

// SetupScriptEnv configures common environment variables for testscript.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("TASK", BuildTask(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("NO_COLOR", "1")
	return nil
}

// CmdTaskField checks a field of the task with the given id in a JSON task
// listing.
//
//	taskfield FILE ID FIELD VALUE
//
// FIELD is one of description, status, or deleted (true/false).
func CmdTaskField(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) != 4 {
		ts.Fatalf("usage: taskfield FILE ID FIELD VALUE")
	}

	var items []task.Task
	if err := json.Unmarshal([]byte(ts.ReadFile(args[0])), &items); err != nil {
		ts.Fatalf("parse task list: %v", err)
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		ts.Fatalf("parse id: %v", err)
	}

	var found *task.Task
	for i := range items {
		if items[i].ID == id {
			found = &items[i]
			break
		}
	}
	if found == nil {
		ts.Fatalf("task %d not found", id)
	}

	var got string
	switch args[2] {
	case "description":
		got = found.Description
	case "status":
		got = string(found.Status)
	case "deleted":
		got = strconv.FormatBool(found.IsDeleted())
	default:
		ts.Fatalf("unknown field %q", args[2])
	}

	if matched := got == args[3]; matched == neg {
		if neg {
			ts.Fatalf("task %d %s unexpectedly %q", id, args[2], got)
		}
		ts.Fatalf("task %d %s = %q, want %q", id, args[2], got, args[3])
	}
}

// CmdTaskCount checks the number of tasks in a JSON task listing.
//
//	taskcount FILE N
func CmdTaskCount(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("taskcount does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: taskcount FILE N")
	}

	var items []task.Task
	if err := json.Unmarshal([]byte(ts.ReadFile(args[0])), &items); err != nil {
		ts.Fatalf("parse task list: %v", err)
	}
	want, err := strconv.Atoi(args[1])
	if err != nil {
		ts.Fatalf("parse count: %v", err)
	}
	if len(items) != want {
		ts.Fatalf("expected %d tasks, got %d", want, len(items))
	}
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
