package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amonks/tasktracker/internal/editor"
	"github.com/amonks/tasktracker/internal/listflags"
	"github.com/amonks/tasktracker/task"
	"github.com/spf13/cobra"
)

// task add
var addCmd = &cobra.Command{
	Use:   "add [description]...",
	Short: "Add a new task (use - to read the description from stdin, or no arguments to open $EDITOR)",
	Args:  cobra.ArbitraryArgs,
	RunE:  runAdd,
}

// task update
var updateCmd = &cobra.Command{
	Use:   "update <id> [description]...",
	Short: "Change the description of a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpdate,
}

var (
	updateDescription string
	updateEdit        bool
)

// task delete
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Mark a task as deleted, keeping it in the list",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

// task remove
var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a task permanently",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

// task mark-in-progress
var markInProgressCmd = &cobra.Command{
	Use:   "mark-in-progress <id>",
	Short: "Set a task's status to IN_PROGRESS",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkInProgress,
}

// task mark-done
var markDoneCmd = &cobra.Command{
	Use:   "mark-done <id>",
	Short: "Set a task's status to DONE",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkDone,
}

// task list
var listCmd = &cobra.Command{
	Use:       "list [todo|in-progress|done]",
	Short:     "List tasks, optionally filtered by status",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: task.StatusKeywords(),
	RunE:      runList,
}

var listJSON bool

// task show
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single task",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var showJSON bool

func init() {
	rootCmd.AddCommand(addCmd, updateCmd, deleteCmd, removeCmd,
		markInProgressCmd, markDoneCmd, listCmd, showCmd)

	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description (use - to read from stdin)")
	updateCmd.Flags().BoolVarP(&updateEdit, "edit", "e", false, "Edit the description in $EDITOR")
	addDescriptionFlagAliases(updateCmd)

	listflags.AddJSONFlag(listCmd, &listJSON)
	listflags.AddJSONFlag(showCmd, &showJSON)
}

func runAdd(cmd *cobra.Command, args []string) error {
	var (
		description string
		err         error
	)
	if len(args) == 0 {
		if !editor.IsInteractive() {
			return fmt.Errorf("%w: description required (pass it as arguments or use -)", task.ErrInvalidArgument)
		}
		description, err = editor.EditDescription(editor.TaskData{})
	} else {
		description, err = resolveDescriptionFromStdin(strings.Join(args, " "), cmd.InOrStdin())
	}
	if err != nil {
		return err
	}

	svc, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	created, err := svc.Add(cmd.Context(), description)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s\n", created.ID, created.Description)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	description := strings.Join(args[1:], " ")
	if updateEdit {
		if description != "" || cmd.Flags().Changed("description") {
			return fmt.Errorf("--edit cannot be combined with a description")
		}
		return runUpdateInEditor(cmd, id)
	}
	if cmd.Flags().Changed("description") {
		if description != "" {
			return fmt.Errorf("give the description as arguments or with --description, not both")
		}
		description = updateDescription
	}
	description, err = resolveDescriptionFromStdin(description, cmd.InOrStdin())
	if err != nil {
		return err
	}

	svc, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	return svc.Update(cmd.Context(), id, description)
}

func runUpdateInEditor(cmd *cobra.Command, id int) error {
	svc, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	current, err := svc.Show(cmd.Context(), id)
	if err != nil {
		return err
	}
	description, err := editor.EditDescription(editor.DataFromTask(current))
	if err != nil {
		return err
	}
	return svc.Update(cmd.Context(), id, description)
}

func runDelete(cmd *cobra.Command, args []string) error {
	return runWithID(cmd, args, (*task.Service).Delete)
}

func runRemove(cmd *cobra.Command, args []string) error {
	return runWithID(cmd, args, (*task.Service).Remove)
}

func runMarkInProgress(cmd *cobra.Command, args []string) error {
	return runWithID(cmd, args, (*task.Service).MarkInProgress)
}

func runMarkDone(cmd *cobra.Command, args []string) error {
	return runWithID(cmd, args, (*task.Service).MarkDone)
}

func runList(cmd *cobra.Command, args []string) error {
	svc, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	var tasks []task.Task
	if len(args) == 1 {
		tasks, err = svc.ListByStatus(cmd.Context(), args[0])
	} else {
		tasks, err = svc.List(cmd.Context())
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		return writeJSON(out, tasks)
	}

	fmt.Fprint(out, formatTaskTable(tasks, now()))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	svc, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	t, err := svc.Show(cmd.Context(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		return writeJSON(out, t)
	}

	fmt.Fprint(out, formatTaskDetail(t, now()))
	return nil
}

// runWithID opens the service and applies op to the task id in args[0].
func runWithID(cmd *cobra.Command, args []string, op func(*task.Service, context.Context, int) error) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	svc, release, err := openService(cmd)
	if err != nil {
		return err
	}
	defer release()

	return op(svc, cmd.Context(), id)
}

func parseTaskID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid task id %q", task.ErrInvalidArgument, arg)
	}
	return id, nil
}

// resolveDescriptionFromStdin reads the description from in when it is "-".
func resolveDescriptionFromStdin(description string, in io.Reader) (string, error) {
	if description != "-" {
		return description, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read description from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func writeJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
