package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"calendo/internal/calendar"
	"calendo/internal/controller"
	"calendo/internal/filter"
	"calendo/internal/todo"
	"calendo/internal/ui"
)

// withController opens a session and hands fn a controller that prints to
// the command's stdout. No calendar view is registered.
func withController(app *App, cmd *cobra.Command, fn func(*session, *controller.Controller) error) error {
	s, err := app.open()
	if err != nil {
		return err
	}
	defer s.Close()
	ctrl := controller.New(s.store,
		controller.WithListView(printer{w: cmd.OutOrStdout()}),
		controller.WithLogger(s.log),
	)
	return fn(s, ctrl)
}

func newAddCmd(app *App) *cobra.Command {
	var (
		date     string
		priority string
		desc     string
		done     bool
	)
	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a todo and show its day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := todo.Todo{
				Title:       strings.TrimSpace(strings.Join(args, " ")),
				Description: strings.TrimSpace(desc),
				Date:        todo.Today(),
				Completed:   done,
			}
			if date != "" {
				d, err := todo.ParseDate(date)
				if err != nil {
					return err
				}
				t.Date = d
			}
			p, err := todo.ParsePriority(priority)
			if err != nil {
				return err
			}
			t.Priority = p
			if err := t.Validate(); err != nil {
				return err
			}
			return withController(app, cmd, func(_ *session, ctrl *controller.Controller) error {
				saved, err := ctrl.SaveTodo(t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added #%d\n", saved.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day of the todo, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "high, medium or low")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().BoolVar(&done, "done", false, "Create the todo already completed")
	return cmd
}

func newDayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "day [DATE]",
		Short: "List the todos of one day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := todo.Today()
			if len(args) == 1 {
				var err error
				if d, err = todo.ParseDate(args[0]); err != nil {
					return err
				}
			}
			return withController(app, cmd, func(_ *session, ctrl *controller.Controller) error {
				return ctrl.OnDateSelected(d)
			})
		},
	}
}

func newSearchCmd(app *App) *cobra.Command {
	var (
		keyword  string
		from     string
		to       string
		priority string
		status   string
	)
	cmd := &cobra.Command{
		Use:   "search [QUERY...]",
		Short: "Search todos across all days",
		Long: strings.TrimSpace(`
Search todos across all days. The query takes bare words as a title keyword
plus from:, to:, on:, p: and status: terms. Flags override query terms.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.ParseQuery(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if keyword != "" {
				f.Keyword = keyword
			}
			if from != "" {
				d, err := todo.ParseDate(from)
				if err != nil {
					return err
				}
				f.StartDate = &d
			}
			if to != "" {
				d, err := todo.ParseDate(to)
				if err != nil {
					return err
				}
				f.EndDate = &d
			}
			if priority != "" {
				p, err := todo.ParsePriority(priority)
				if err != nil {
					return err
				}
				f.Priority = &p
			}
			if cmd.Flags().Changed("status") {
				if f.Completed, err = filter.ParseStatus(status); err != nil {
					return err
				}
			}
			return withController(app, cmd, func(_ *session, ctrl *controller.Controller) error {
				return ctrl.ApplyFilter(f)
			})
		},
	}
	cmd.Flags().StringVar(&keyword, "keyword", "", "Case-insensitive title substring")
	cmd.Flags().StringVar(&from, "from", "", "Earliest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Latest date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "high, medium or low")
	cmd.Flags().StringVar(&status, "status", "all", "done, open or all")
	return cmd
}

func newCalendarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Print a month with its priority markers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := todo.Today()
			m := calendar.MonthOf(today)
			if len(args) == 1 {
				var err error
				if m, err = calendar.ParseMonth(args[0]); err != nil {
					return err
				}
			}
			s, err := app.open()
			if err != nil {
				return err
			}
			defer s.Close()
			g, err := calendar.NewAggregator(s.store).Build(m)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderCalendar(g, todo.Date{}, today))
			return nil
		},
	}
}

func newDoneCmd(app *App, completed bool) *cobra.Command {
	use, short := "done ID", "Mark a todo completed"
	if !completed {
		use, short = "undo ID", "Mark a todo open again"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withController(app, cmd, func(s *session, ctrl *controller.Controller) error {
				t, err := s.store.FindByID(id)
				if err != nil {
					return err
				}
				if _, err := ctrl.UpdateTodoCompleted(t, completed); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "#%d %s: %s\n", id, humanDone(completed), t.Title)
				return nil
			})
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withController(app, cmd, func(s *session, ctrl *controller.Controller) error {
				t, err := s.store.FindByID(id)
				if err != nil {
					return err
				}
				// Show the todo's day once it is gone.
				ctrl.SetListView(nil)
				if err := ctrl.OnDateSelected(t.Date); err != nil {
					return err
				}
				ctrl.SetListView(printer{w: cmd.OutOrStdout()})
				if err := ctrl.DeleteTodo(t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d: %s\n", id, t.Title)
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "open"
}
