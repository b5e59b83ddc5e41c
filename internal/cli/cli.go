package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"moku/internal/config"
	"moku/internal/storage"
	"moku/internal/ui"
)

// Options binds the command tree to its collaborators. RunEditor defaults to
// the interactive editor and is replaceable in tests.
type Options struct {
	Store     *storage.Store
	Config    config.Config
	Version   string
	RunEditor func(*storage.Store, config.Config) error
}

func NewRoot(opts Options) *cobra.Command {
	root := &cobra.Command{
		Use:          "moku",
		Short:        "Terminal task tracker",
		Long:         "moku tracks short text tasks from the terminal.\nRun it without arguments for the interactive editor, or use the add/list subcommands for scripting.",
		Version:      opts.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			run := opts.RunEditor
			if run == nil {
				run = ui.Run
			}
			return run(opts.Store, opts.Config)
		},
	}
	root.AddCommand(newAddCmd(opts), newListCmd(opts))
	return root
}

func newAddCmd(opts Options) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return errors.New("title cannot be empty")
			}
			tasks, err := loadTasks(opts.Store)
			if err != nil {
				return err
			}
			t := storage.Task{
				ID:          opts.Store.NextID(),
				Title:       title,
				Description: strings.TrimSpace(description),
			}
			tasks = append(tasks, t)
			if err := opts.Store.Save(tasks); err != nil {
				return err
			}
			cmd.Printf("Added task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional task description")
	return cmd
}

func newListCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadTasks(opts.Store)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				cmd.Println("No tasks.")
				return nil
			}
			for _, t := range tasks {
				mark := " "
				if t.Completed {
					mark = "x"
				}
				line := fmt.Sprintf("[%s] %d %s", mark, t.ID, t.Title)
				if t.Description != "" {
					line += " - " + t.Description
				}
				cmd.Println(line)
			}
			return nil
		},
	}
}

// loadTasks recovers from a corrupt file by warning and starting empty; other
// read failures abort the command.
func loadTasks(st *storage.Store) ([]storage.Task, error) {
	tasks, err := st.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrCorrupt) {
			return nil, err
		}
		log.Warn("task file is corrupt, starting with an empty list", "path", st.Path())
		return nil, nil
	}
	return tasks, nil
}
