package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smaraba1/payroll-processing/internal/access"
	"github.com/smaraba1/payroll-processing/internal/dto"
	"github.com/smaraba1/payroll-processing/internal/editor"
	"github.com/smaraba1/payroll-processing/internal/weeksheet"
)

const editHelp = `Commands:
  show                     print the week
  week YYYY-MM-DD          start over on the week containing the date
  add DAY                  add a row to DAY (mon, tuesday, ...)
  rm N                     remove row N
  set N FIELD VALUE        FIELD is project, hours, task or notes
  projects                 list the projects you can book on
  save                     validate and save, then exit
  quit                     exit without saving`

var fieldAliases = map[string]weeksheet.Field{
	"project": weeksheet.FieldProject,
	"hours":   weeksheet.FieldHours,
	"task":    weeksheet.FieldTaskType,
	"type":    weeksheet.FieldTaskType,
	"notes":   weeksheet.FieldNotes,
}

func newTimesheetEditCmd(app *App) *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "edit [ID]",
		Short: "Edit a week line by line; commands are read from stdin",
		Long: `Opens the timesheet ID, or a new week when ID is omitted, and reads
editing commands from stdin until 'save' or 'quit'.

` + editHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, api, err := app.authorize(access.EditOwnTimesheets)
			if err != nil {
				return err
			}

			ed := editor.New(api, sess.UserID, app.now(), app.Logger)
			if len(args) == 1 {
				if err := ed.Open(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			if week != "" {
				ed.Sheet().SetAnchor(week)
			}

			s := &editSession{ed: ed, out: cmd.OutOrStdout(), logger: app.Logger}
			s.loadProjects(cmd.Context())
			return s.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVarP(&week, "week", "w", "", "Start on the week containing this date")
	return cmd
}

// editSession is one pass of the line editor over an Editor.
type editSession struct {
	ed       *editor.Editor
	out      io.Writer
	logger   *zap.Logger
	projects []dto.ProjectResponse
	names    map[string]string
}

func (s *editSession) loadProjects(ctx context.Context) {
	projects, err := s.ed.Projects(ctx)
	if err != nil {
		s.logger.Warn("could not load projects", zap.Error(err))
		fmt.Fprintln(s.out, errorStyle.Render("Projects unavailable: "+err.Error()))
		return
	}
	s.projects = projects
	s.names = make(map[string]string, len(projects))
	for _, p := range projects {
		s.names[p.ID] = p.Name
	}
}

// run reads commands until save succeeds, quit, or EOF.
func (s *editSession) run(ctx context.Context, in io.Reader) error {
	printSheet(s.out, s.ed.Sheet(), s.names)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stop, err := s.exec(ctx, line)
		if err != nil {
			fmt.Fprintln(s.out, errorStyle.Render(err.Error()))
		}
		if stop {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if !s.ed.Done() {
		fmt.Fprintln(s.out, mutedStyle.Render("Input ended; unsaved changes discarded."))
	}
	return nil
}

// exec runs one command. stop is true once the session is over.
func (s *editSession) exec(ctx context.Context, line string) (stop bool, err error) {
	fields := strings.Fields(line)
	sheet := s.ed.Sheet()

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "help", "?":
		fmt.Fprintln(s.out, editHelp)

	case "show":
		printSheet(s.out, sheet, s.names)

	case "week":
		if len(fields) != 2 {
			return false, errors.New("usage: week YYYY-MM-DD")
		}
		sheet.SetAnchor(fields[1])
		printSheet(s.out, sheet, s.names)

	case "add":
		if len(fields) != 2 {
			return false, errors.New("usage: add DAY")
		}
		day, err := parseDay(fields[1])
		if err != nil {
			return false, err
		}
		if err := sheet.AddEntry(day); err != nil {
			return false, err
		}
		printSheet(s.out, sheet, s.names)

	case "rm", "remove":
		if len(fields) != 2 {
			return false, errors.New("usage: rm N")
		}
		i, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("row must be a number: %q", fields[1])
		}
		if err := sheet.RemoveEntry(i); err != nil {
			return false, err
		}
		printSheet(s.out, sheet, s.names)

	case "set":
		if len(fields) < 3 {
			return false, errors.New("usage: set N FIELD VALUE")
		}
		i, err := strconv.Atoi(fields[1])
		if err != nil {
			return false, fmt.Errorf("row must be a number: %q", fields[1])
		}
		field, ok := fieldAliases[strings.ToLower(fields[2])]
		if !ok {
			return false, fmt.Errorf("unknown field %q", fields[2])
		}
		value := strings.Join(fields[3:], " ")
		if field == weeksheet.FieldProject {
			value = s.resolveProject(value)
		}
		if err := sheet.UpdateEntry(i, field, value); err != nil {
			return false, err
		}
		printSheet(s.out, sheet, s.names)

	case "projects":
		printProjects(s.out, s.projects)

	case "save":
		return s.save(ctx)

	case "quit", "exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
	return false, nil
}

func (s *editSession) save(ctx context.Context) (bool, error) {
	ts, err := s.ed.Save(ctx)

	var invalid *editor.LocalValidationError
	switch {
	case errors.As(err, &invalid):
		for _, msg := range sortedMessages(invalid.Errors) {
			fmt.Fprintln(s.out, errorStyle.Render(msg))
		}
		return false, nil
	case err != nil:
		return false, err
	}

	fmt.Fprintln(s.out, okStyle.Render(fmt.Sprintf("Saved timesheet %s (%s).", ts.ID, ts.Status)))
	return true, nil
}

// resolveProject accepts a project name (case-insensitive) or ID.
func (s *editSession) resolveProject(v string) string {
	for _, p := range s.projects {
		if strings.EqualFold(p.Name, v) {
			return p.ID
		}
	}
	return v
}

// parseDay accepts a weekday name or its first three letters.
func parseDay(v string) (weeksheet.DayIndex, error) {
	v = strings.ToLower(v)
	if len(v) >= 3 {
		for i, name := range weeksheet.DayNames {
			if strings.HasPrefix(strings.ToLower(name), v) {
				return weeksheet.DayIndex(i), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown day %q", v)
}

// sortedMessages renders validation errors in key order, naming the row for
// per-entry rules.
func sortedMessages(errs weeksheet.ValidationErrors) []string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		var row int
		if _, err := fmt.Sscanf(k, "entry-%d-project", &row); err == nil {
			msgs = append(msgs, fmt.Sprintf("row %d: %s", row, errs[k]))
			continue
		}
		msgs = append(msgs, errs[k])
	}
	return msgs
}
