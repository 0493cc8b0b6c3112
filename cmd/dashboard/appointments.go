package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appointmenthandler "github.com/jwalitptl/clinic-dashboard/internal/handler/appointment"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/service/appointment"
)

func newAppointmentsCmd(opts *rootOptions) *cobra.Command {
	var (
		q        appointmenthandler.ListQuery
		clock24h bool
	)

	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "Print the appointment schedule grouped by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFlags(&q); err != nil {
				return err
			}

			a, err := newApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var so appointment.ScheduleOptions
			if cmd.Flags().Changed("24h") {
				so.Clock24h = &clock24h
			}

			sched, err := a.appointments.Schedule(cmd.Context(), model.AppointmentFilter{
				Name:   q.Name,
				Status: q.Status,
			}, so)
			if err != nil && !sched.Stale {
				return errors.New(sched.Error)
			}
			if sched.Stale {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s Showing cached results.\n", sched.Error)
			}

			return printSchedule(cmd.OutOrStdout(), sched)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&q.Name, "name", "", "Match any part of the patient name")
	flags.StringVar(&q.Status, "status", "", "Appointment status or all")
	flags.BoolVar(&clock24h, "24h", false, "Render times on a 24-hour clock")

	return cmd
}

func printSchedule(out io.Writer, sched *appointment.Schedule) error {
	if sched.Total == 0 {
		_, err := fmt.Fprintln(out, "No appointments found.")
		return err
	}

	for _, g := range sched.Groups {
		fmt.Fprintf(out, "%s (%s)\n", g.Label, g.Date)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, c := range g.Appointments {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%d min\t%s\n",
				c.Time, c.PatientName, c.StatusLabel, c.Duration, dash(c.Provider))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "%d appointment(s)\n", sched.Total)
	return err
}
