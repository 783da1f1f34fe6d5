package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/braxlabs/facet/internal/fallback"
	"github.com/braxlabs/facet/internal/ghl"
)

var appointmentsCmd = &cobra.Command{
	Use:   "appointments",
	Short: "Calendar and booking operations",
}

var (
	apptCalendar string
	apptContact  string
	apptStart    string
	apptEnd      string
)

var appointmentsBookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book an appointment slot for a contact",
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := parseSlot(apptStart, apptEnd)
		if err != nil {
			return err
		}
		conf, err := facetApp.CRM.ScheduleAppointment(cmd.Context(), apptCalendar, slot, apptContact)
		return emit(fallback.OpScheduling, conf, err)
	},
}

var (
	slotsFrom string
	slotsTo   string
)

var appointmentsSlotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List open booking slots on a calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		window, err := parseSlot(slotsFrom, slotsTo)
		if err != nil {
			return err
		}
		slots, err := facetApp.CRM.AvailableSlots(cmd.Context(), apptCalendar, window.Start, window.End)
		return emit(fallback.OpScheduling, slots, err)
	},
}

// parseSlot parses two RFC3339 timestamps into a slot.
func parseSlot(from, to string) (ghl.Slot, error) {
	start, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return ghl.Slot{}, fmt.Errorf("invalid start time %q (want RFC3339): %w", from, err)
	}
	end, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return ghl.Slot{}, fmt.Errorf("invalid end time %q (want RFC3339): %w", to, err)
	}
	return ghl.Slot{Start: start, End: end}, nil
}

func init() {
	appointmentsCmd.PersistentFlags().StringVar(&apptCalendar, "calendar", "", "calendar ID (defaults to configured calendar)")

	appointmentsBookCmd.Flags().StringVar(&apptContact, "contact", "", "contact ID to book for")
	appointmentsBookCmd.Flags().StringVar(&apptStart, "start", "", "slot start (RFC3339)")
	appointmentsBookCmd.Flags().StringVar(&apptEnd, "end", "", "slot end (RFC3339)")

	appointmentsSlotsCmd.Flags().StringVar(&slotsFrom, "from", "", "window start (RFC3339)")
	appointmentsSlotsCmd.Flags().StringVar(&slotsTo, "to", "", "window end (RFC3339)")

	appointmentsCmd.AddCommand(appointmentsBookCmd, appointmentsSlotsCmd)
	rootCmd.AddCommand(appointmentsCmd)
}
