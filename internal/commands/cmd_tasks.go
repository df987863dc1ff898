package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/sadopc/focusflow/internal/store"
)

type TasksCmd struct {
	flags *Flags
	rt    *Runtime

	// flags
	all        bool
	jsonOutput bool
	estimate   int
}

// NewTasksCmd creates a new tasks command
func NewTasksCmd(flags *Flags, rt *Runtime) *TasksCmd {
	return &TasksCmd{flags: flags, rt: rt}
}

// Register adds the tasks command to the application
func (cmd *TasksCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tasks",
		Usage:     "List and manage tasks",
		UsageText: "focusflow tasks [--all] [--json] | add | done | reopen | rm",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "include completed tasks",
				Destination: &cmd.all,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runList,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a task to the end of the list",
				UsageText: "focusflow tasks add [--estimate N] <title>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "estimate",
						Aliases:     []string{"e"},
						Usage:       "estimated pomodoros",
						Value:       1,
						Destination: &cmd.estimate,
					},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "done",
				Usage:     "Mark a task completed",
				UsageText: "focusflow tasks done <id>",
				Action:    cmd.setCompleted(true),
			},
			{
				Name:      "reopen",
				Usage:     "Move a completed task back to the active list",
				UsageText: "focusflow tasks reopen <id>",
				Action:    cmd.setCompleted(false),
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				UsageText: "focusflow tasks rm <id>",
				Action:    cmd.runDelete,
			},
		},
	})

	return app
}

// taskInfo is the JSON output format for focusflow tasks --json.
type taskInfo struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Estimated int    `json:"estimated_pomodoros"`
	Done      int    `json:"completed_pomodoros"`
	Completed bool   `json:"completed"`
}

func (cmd *TasksCmd) runList(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() > 0 {
		return fmt.Errorf("unknown tasks command %q", c.Args().First())
	}

	tasks, err := cmd.rt.Store.ListTasks(cmd.all)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		enc := json.NewEncoder(out)
		for _, t := range tasks {
			info := taskInfo{
				ID:        t.ID,
				Title:     t.Title,
				Estimated: t.EstimatedPomodoros,
				Done:      t.CompletedPomodoros,
				Completed: t.Completed,
			}
			if err := enc.Encode(info); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		fmt.Fprintf(os.Stderr, "No tasks found\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tPOMODOROS\tSTATUS")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d/%d\t%s\n", t.ID, t.Title, t.CompletedPomodoros, t.EstimatedPomodoros, taskStatus(t))
	}
	return w.Flush()
}

func (cmd *TasksCmd) runAdd(ctx context.Context, c *cli.Command) error {
	title := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if title == "" {
		return fmt.Errorf("task title is required")
	}

	t, err := cmd.rt.App.AddTask(title, cmd.estimate)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Added task %d: %s\n", t.ID, t.Title)
	return nil
}

func (cmd *TasksCmd) setCompleted(done bool) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		id, err := taskIDArg(c)
		if err != nil {
			return err
		}
		if err := cmd.rt.App.SetTaskCompleted(id, done); err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}
		verb := "Completed"
		if !done {
			verb = "Reopened"
		}
		_, _ = fmt.Fprintf(c.Root().Writer, "%s task %d\n", verb, id)
		return nil
	}
}

func (cmd *TasksCmd) runDelete(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}
	if err := cmd.rt.App.DeleteTask(id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Deleted task %d\n", id)
	return nil
}

func taskIDArg(c *cli.Command) (int64, error) {
	if c.Args().Len() != 1 {
		return 0, fmt.Errorf("expected exactly one task id")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id %q", c.Args().First())
	}
	return id, nil
}

func taskStatus(t store.Task) string {
	switch {
	case t.Completed:
		return "done"
	case t.CompletedPomodoros > 0:
		return "in progress"
	default:
		return "todo"
	}
}
