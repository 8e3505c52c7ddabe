package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dell121212/laberaer/pkg/domain"
)

func dutyCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duty",
		Short: "Inspect and update the duty roster",
	}
	cmd.AddCommand(dutyTodayCmd(s), dutyMonthCmd(s), dutyStatusCmd(s))
	return cmd
}

func dutyTodayCmd(s *session) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's schedule; with --name, whether a reminder is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster := s.App().Service.Duty
			out := cmd.OutOrStdout()
			today := roster.Today()
			sched, ok := roster.ScheduleForDate(today)
			if !ok {
				fprintf(out, "%s no duty scheduled\n", today)
				return nil
			}
			printSchedule(out, sched)
			if name == "" {
				return nil
			}
			if roster.IsReminderDue(name) {
				fprintf(out, "%s %s is on duty today\n", warnMark("reminder"), name)
			} else if sched.HasMember(name) {
				fprintf(out, "%s is on duty today (%s)\n", name, sched.Status)
			} else {
				fprintf(out, "%s is not on duty today\n", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Member name to check")
	return cmd
}

func dutyMonthCmd(s *session) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "month",
		Short: "List the schedules of a month with status totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster := s.App().Service.Duty
			ref := roster.Today().Time()
			if month != "" {
				parsed, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("month %q: want YYYY-MM", month)
				}
				ref = parsed
			}
			schedules := roster.Month(ref.Year(), ref.Month())
			w := table(cmd.OutOrStdout())
			fprintf(w, "DATE\tSTATUS\tMEMBERS\tTASKS\tID\n")
			for _, d := range schedules {
				fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Date, statusMark(d.Status), strings.Join(d.Members, ","), strings.Join(d.Tasks, ","), d.ID)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			st := roster.Stats()
			fprintf(cmd.OutOrStdout(), "total %d: %d completed, %d pending, %d skipped\n", st.Total, st.Completed, st.Pending, st.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current)")
	return cmd
}

func dutyStatusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id|date> <pending|completed|skipped>",
		Short: "Set the status of a schedule (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roster := s.App().Service.Duty
			id := args[0]
			if day, err := domain.ParseDate(id); err == nil {
				sched, ok := roster.ScheduleForDate(day)
				if !ok {
					return domain.NotFoundError{Entity: domain.EntityDuty, ID: string(day)}
				}
				id = sched.ID
			}
			status := domain.DutyStatus(strings.ToLower(args[1]))
			switch status {
			case domain.DutyPending, domain.DutyCompleted, domain.DutySkipped:
			default:
				return fmt.Errorf("unknown status %q", args[1])
			}
			sched, err := roster.SetStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			printSchedule(cmd.OutOrStdout(), sched)
			return nil
		},
	}
}

func printSchedule(out io.Writer, d domain.DutySchedule) {
	fprintf(out, "%s [%s] %s: %s\n", d.Date, statusMark(d.Status), strings.Join(d.Members, ","), strings.Join(d.Tasks, ","))
	if d.Notes != "" {
		fprintf(out, "  %s\n", dimMark(d.Notes))
	}
}
