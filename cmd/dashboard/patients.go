package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"

	patienthandler "github.com/jwalitptl/clinic-dashboard/internal/handler/patient"
	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/search"
	"github.com/jwalitptl/clinic-dashboard/internal/service/patient"
)

func newPatientsCmd(opts *rootOptions) *cobra.Command {
	var (
		q      patienthandler.ListQuery
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Search patients and print the matching cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFlags(&q); err != nil {
				return err
			}

			a, err := newApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("remote") {
				remote = a.cfg.Search.Remote
			}

			filters := q.Filters()
			params, _ := filters.Params()
			res, err := a.patients.Search(cmd.Context(), &params, remote)
			if err != nil && !res.Stale {
				return errors.New(res.Error)
			}
			if res.Stale {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s Showing cached results.\n", res.Error)
			}

			return printPatients(cmd.OutOrStdout(), res, filters.Effective())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&q.Name, "name", "", "Match any part of the patient name")
	flags.StringVar(&q.Identifier, "identifier", "", "Match any part of an identifier value")
	flags.StringVar(&q.BirthDate, "birthdate", "", "Exact birth date (YYYY-MM-DD)")
	flags.StringVar(&q.Gender, "gender", "", "male, female, other, unknown or all")
	flags.StringVar(&q.Active, "active", "", "true, false or all")
	flags.BoolVar(&remote, "remote", false, "Forward criteria to the FHIR API before filtering")

	return cmd
}

func printPatients(out io.Writer, res *patient.Result, active []search.ActiveFilter) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGENDER\tBIRTH DATE\tIDENTIFIER\tSTATUS")
	for _, c := range patient.Cards(res.Patients) {
		status := "Inactive"
		if c.Active {
			status = "Active"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, dash(c.Gender), dash(c.BirthDate), dash(c.Identifier), status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	summary := fmt.Sprintf("%d patient(s)", res.Total)
	if len(active) > 0 {
		parts := make([]string, 0, len(active))
		for _, f := range active {
			parts = append(parts, f.Key+"="+f.Value)
		}
		summary += " matching " + strings.Join(parts, ", ")
	}
	_, err := fmt.Fprintln(out, summary)
	return err
}

// validateFlags runs the same rules the HTTP query strings are bound with.
func validateFlags(q interface{}) error {
	config := middleware.DefaultValidationConfig()
	if err := middleware.RegisterValidators(config); err != nil {
		return err
	}

	err := binding.Validator.ValidateStruct(q)
	if err == nil {
		return nil
	}
	fields := config.FieldErrors(err)
	if len(fields) == 0 {
		return err
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fmt.Sprintf("--%s: %s", f.Field, f.Message))
	}
	return fmt.Errorf("invalid flags: %s", strings.Join(msgs, "; "))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
