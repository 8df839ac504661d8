package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/volatiletech/null/v8"

	"github.com/masomo/planner/core/assignment"
	"github.com/masomo/planner/core/course"
)

var (
	errHelp = errors.New("help provided")
)

type commandLine struct {
	courseSvc     course.Service
	assignmentSvc assignment.Service
	migrator      migrator // nil unless the postgres store is used
	out           io.Writer
	table         bool // tabular output; JSON otherwise
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  courses - list courses, newest first")
	fmt.Fprintln(cli.out, "  assignments [-course ID] - list assignments by due date")
	fmt.Fprintln(cli.out, "  toggle -id ID [-completed=false] - mark an assignment (in)complete")
	fmt.Fprintln(cli.out, "  migrate up|down|version - manage the postgres schema")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	assignmentsCmd := flag.NewFlagSet("assignments", flag.ContinueOnError)
	assignmentsCourse := assignmentsCmd.String("course", "", "Only list the assignments of this course.")

	toggleCmd := flag.NewFlagSet("toggle", flag.ContinueOnError)
	toggleID := toggleCmd.Int("id", 0, "The assignment's id.")
	toggleCompleted := toggleCmd.Bool("completed", true, "The new completion state.")

	for _, fs := range []*flag.FlagSet{assignmentsCmd, toggleCmd} {
		fs.SetOutput(cli.out)
	}

	ctx := context.Background()

	switch args[1] {
	case "courses":
		return cli.listCourses(ctx)
	case "assignments":
		if err := assignmentsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listAssignments(ctx, *assignmentsCourse)
	case "toggle":
		if err := toggleCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *toggleID <= 0 {
			toggleCmd.Usage()
			return errHelp
		}
		return cli.toggle(ctx, *toggleID, *toggleCompleted)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) listCourses(ctx context.Context) error {
	courses, err := cli.courseSvc.QueryAll(ctx)
	if err != nil {
		return err
	}
	if !cli.table {
		return cli.printJSON(courses)
	}
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tINSTRUCTOR\tCREDITS\tSEMESTER\tSCHEDULE")
	for _, c := range courses {
		schedule := "-"
		if len(c.Schedule) > 0 {
			s := c.Schedule[0]
			schedule = fmt.Sprintf("%s %s-%s %s", s.Day, s.StartTime, s.EndTime, s.Location)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", c.ID, c.Name, c.Instructor, c.Credits, c.Semester, schedule)
	}
	return w.Flush()
}

func (cli *commandLine) listAssignments(ctx context.Context, courseID string) error {
	var (
		assignments []assignment.Assignment
		err         error
	)
	if courseID != "" {
		assignments, err = cli.assignmentSvc.QueryByCourse(ctx, courseID)
	} else {
		assignments, err = cli.assignmentSvc.QueryAll(ctx)
	}
	if err != nil {
		return err
	}
	if !cli.table {
		return cli.printJSON(assignments)
	}
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOURSE\tTITLE\tDUE\tPRIORITY\tDONE\tGRADE")
	for _, a := range assignments {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\t%s\n",
			a.ID, a.CourseID, a.Title, a.DueDate, a.Priority, a.Completed, formatGrade(a.Grade))
	}
	return w.Flush()
}

func (cli *commandLine) toggle(ctx context.Context, id int, completed bool) error {
	a, err := cli.assignmentSvc.ToggleComplete(ctx, id, completed)
	if err != nil {
		return err
	}
	if !cli.table {
		return cli.printJSON(a)
	}
	fmt.Fprintf(cli.out, "assignment %d %q: completed=%t\n", a.ID, a.Title, a.Completed)
	return nil
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatGrade(grade null.Float64) string {
	if !grade.Valid {
		return "-"
	}
	return strconv.FormatFloat(grade.Float64, 'f', -1, 64)
}
