package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-calendar/internal/clinic"
)

func weekCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the slot grid for the week containing --date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			cal := newCalendar()
			cal.CurrentDate = day
			return printJSON(cmd, cal.Week())
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "any day of the week, YYYY-MM-DD (default today)")
	return cmd
}

func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List and edit weekly availability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, clinicApp.Service.AvailableSlots())
		},
	}

	var date, slot string
	addFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&date, "date", "", "a day with the target weekday, YYYY-MM-DD")
		c.Flags().StringVar(&slot, "time", "", "slot start, HH:MM")
		_ = c.MarkFlagRequired("time")
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Open a weekly slot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return newCalendar().AddSlotAvailability(cmd.Context(), day, slot)
		},
	}
	addFlags(add)

	remove := &cobra.Command{
		Use:   "remove",
		Short: "Close a weekly slot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			cal := newCalendar()
			cal.SelectSlot(day, slot)
			return cal.RemoveSelectedAvailability(cmd.Context())
		},
	}
	addFlags(remove)

	check := &cobra.Command{
		Use:   "check",
		Short: "Report whether a slot is open",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"date":      day.Format("2006-01-02"),
				"time":      slot,
				"available": clinicApp.Service.IsSlotAvailable(day, slot),
			})
		},
	}
	addFlags(check)

	cmd.AddCommand(add, remove, check)
	return cmd
}

func bookCmd() *cobra.Command {
	var (
		date, slot, patientID, notes string
		recurring                    bool
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Schedule a patient into a slot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			cal := newCalendar()
			cal.SelectSlot(day, slot)
			cal.SelectedPatientID = patientID
			cal.Notes = notes
			cal.Recurring = recurring

			created, err := cal.ScheduleNewAppointment(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, created)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "appointment day, YYYY-MM-DD")
	cmd.Flags().StringVar(&slot, "time", "", "slot start, HH:MM")
	cmd.Flags().StringVar(&patientID, "patient", "", "patient id")
	cmd.Flags().StringVar(&notes, "notes", "", "appointment notes")
	cmd.Flags().BoolVar(&recurring, "recurring", false, fmt.Sprintf("also book the next %d weeks", clinic.RecurringWeeks))
	return cmd
}

func reserveCmd() *cobra.Command {
	var date, slot, notes string
	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Block a slot without a patient",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			cal := newCalendar()
			cal.SelectSlot(day, slot)
			cal.Notes = notes

			created, err := cal.ReserveTimeSlot(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, created)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day, YYYY-MM-DD")
	cmd.Flags().StringVar(&slot, "time", "", "slot start, HH:MM")
	cmd.Flags().StringVar(&notes, "notes", "", "reason for the reservation")
	return cmd
}

func appointmentsCmd() *cobra.Command {
	var patientID string
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List appointments and change their status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if patientID != "" {
				return printJSON(cmd, clinicApp.Service.PatientAppointments(patientID))
			}
			return printJSON(cmd, clinicApp.Service.Appointments())
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "only this patient's appointments")

	transition := func(use, short string, run func(*clinic.Calendar, *cobra.Command) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <appointment-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := clinicApp.Service.GetAppointment(args[0])
				if err != nil {
					return err
				}
				cal := newCalendar()
				cal.SelectAppointment(a)
				if err := run(cal, cmd); err != nil {
					return err
				}
				updated, err := clinicApp.Service.GetAppointment(a.ID)
				if err != nil {
					return err
				}
				return printJSON(cmd, updated)
			},
		}
	}

	complete := transition("complete", "Mark an appointment completed and paid", func(c *clinic.Calendar, cmd *cobra.Command) error {
		return c.CompleteAppointment(cmd.Context())
	})
	cancel := transition("cancel", "Cancel an appointment", func(c *clinic.Calendar, cmd *cobra.Command) error {
		return c.CancelAppointment(cmd.Context())
	})
	noShow := transition("no-show", "Mark the patient as absent", func(c *clinic.Calendar, cmd *cobra.Command) error {
		return c.MarkNoShow(cmd.Context())
	})

	var (
		newPatient, notes string
		recurring         bool
	)
	update := transition("update", "Change an appointment's patient, notes or recurring flag", func(c *clinic.Calendar, cmd *cobra.Command) error {
		flags := cmd.Flags()
		if flags.Changed("patient") {
			c.SelectedPatientID = newPatient
		}
		if flags.Changed("notes") {
			c.Notes = notes
		}
		if flags.Changed("recurring") {
			c.Recurring = recurring
		}
		return c.UpdateAppointment(cmd.Context())
	})
	update.Flags().StringVar(&newPatient, "patient", "", "new patient id")
	update.Flags().StringVar(&notes, "notes", "", "new notes")
	update.Flags().BoolVar(&recurring, "recurring", false, "recurring flag")

	cmd.AddCommand(complete, cancel, noShow, update)
	return cmd
}

func patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Manage the patient registry",
	}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "Search patients by name, email or notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd, clinicApp.Service.ListPatients(query))
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "search text")

	var in clinic.NewPatientInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a new patient",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cal := newCalendar()
			cal.OpenNewPatientDialog()
			cal.NewPatient = in
			p, err := cal.SaveNewPatient(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "full name")
	add.Flags().StringVar(&in.Email, "email", "", "email address")
	add.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	add.Flags().StringVar(&in.Notes, "notes", "", "initial notes")

	var notes string
	notesCmd := &cobra.Command{
		Use:   "notes <patient-id>",
		Short: "Overwrite a patient's medical notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clinicApp.Service.UpdateMedicalNotes(cmd.Context(), args[0], notes)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
	notesCmd.Flags().StringVar(&notes, "set", "", "new notes")

	status := &cobra.Command{
		Use:   "status <patient-id> <active|inactive|waiting>",
		Short: "Change a patient's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clinicApp.Service.SetPatientStatus(cmd.Context(), args[0], clinic.PatientStatus(args[1]))
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}

	cmd.AddCommand(list, add, notesCmd, status)
	return cmd
}

func paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Record and list payments",
	}

	var (
		patientID, amount, date, status, appointmentID, method, notes string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a payment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("amount %q is not a number", amount)
			}
			in := clinic.NewPaymentInput{
				PatientID: patientID,
				Amount:    value,
				Status:    clinic.PaymentStatus(status),
				Method:    method,
				Notes:     notes,
			}
			if date != "" {
				if in.Date, err = parseDay(date); err != nil {
					return err
				}
			}
			if appointmentID != "" {
				in.AppointmentID = &appointmentID
			}

			p, err := clinicApp.Service.RecordPayment(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}
	add.Flags().StringVar(&patientID, "patient", "", "patient id")
	add.Flags().StringVar(&amount, "amount", "", "amount, e.g. 150.00")
	add.Flags().StringVar(&date, "date", "", "payment day, YYYY-MM-DD (default now)")
	add.Flags().StringVar(&status, "status", "", "paid, pending, overdue or refunded (default pending)")
	add.Flags().StringVar(&appointmentID, "appointment", "", "related appointment id")
	add.Flags().StringVar(&method, "method", "", "payment method")
	add.Flags().StringVar(&notes, "notes", "", "notes")
	_ = add.MarkFlagRequired("amount")

	var filter clinic.PaymentFilter
	var filterStatus, filterDate string
	list := &cobra.Command{
		Use:   "list",
		Short: "List payments, newest first, with the paid total",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Status = clinic.PaymentStatus(filterStatus)
			if filterDate != "" {
				day, err := parseDay(filterDate)
				if err != nil {
					return err
				}
				filter.Date = &day
			}
			payments, total := clinicApp.Service.ListPayments(filter)
			return printJSON(cmd, map[string]any{
				"payments":  payments,
				"totalPaid": total.StringFixed(2),
			})
		},
	}
	list.Flags().StringVarP(&filter.Query, "query", "q", "", "search patient name or notes")
	list.Flags().StringVar(&filterStatus, "status", "", "only this status")
	list.Flags().StringVar(&filterDate, "date", "", "only this day, YYYY-MM-DD")

	cmd.AddCommand(add, list)
	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show this month's figures and the next appointments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := clinicApp.Service
			now := svc.Now()
			return printJSON(cmd, map[string]any{
				"financial":    svc.FinancialSummary(now),
				"appointments": svc.AppointmentSummary(now),
				"next":         svc.NextAppointments(now, 4),
			})
		},
	}
}
