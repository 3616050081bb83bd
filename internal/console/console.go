package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hackgods/physio-booking/internal/appointment"
	"github.com/hackgods/physio-booking/internal/clinic"
	"github.com/hackgods/physio-booking/internal/report"
)

// errInputClosed ends the session when stdin runs out.
var errInputClosed = errors.New("input closed")

var mainMenu = []string{
	"Add patient",
	"Delete patient",
	"Book an appointment",
	"Change or cancel a booking",
	"Attend a treatment appointment",
	"Print appointment report",
	"Print physiotherapist report",
	"Exit",
}

const banner = `
+-----------------------------------+
|     -  Boost Physio Clinic  -     |
+-----------------------------------+
`

// Console is the front desk: a line-oriented menu over the directory and the booking engine.
type Console struct {
	in     *bufio.Scanner
	out    io.Writer
	dir    *clinic.Directory
	engine *appointment.Engine
	log    zerolog.Logger
}

func New(in io.Reader, out io.Writer, dir *clinic.Directory, engine *appointment.Engine, logger zerolog.Logger) *Console {
	return &Console{
		in:     bufio.NewScanner(in),
		out:    out,
		dir:    dir,
		engine: engine,
		log:    logger.With().Str("component", "console").Logger(),
	}
}

// Run shows the main menu until the user exits, input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.println(banner)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		choice, err := c.choose("Main menu", mainMenu)
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		if choice == len(mainMenu)-1 {
			c.println("Goodbye.")
			return nil
		}

		c.printf("\n----- * %s * -----\n\n", mainMenu[choice])

		switch choice {
		case 0:
			err = c.addPatient()
		case 1:
			err = c.deletePatient()
		case 2:
			err = c.bookAppointment(ctx)
		case 3:
			err = c.manageBooking(ctx)
		case 4:
			err = c.attendAppointment(ctx)
		case 5:
			err = c.appointmentReport()
		case 6:
			c.physiotherapistReport()
		}
		if errors.Is(err, errInputClosed) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) addPatient() error {
	c.println("Please provide the patient's details")

	name, err := c.prompt("Patient's full name")
	if err != nil {
		return err
	}
	address, err := c.prompt("Address")
	if err != nil {
		return err
	}
	tel, err := c.prompt("Telephone")
	if err != nil {
		return err
	}

	id, err := c.dir.AddPatient(name, address, tel)
	switch {
	case err == nil:
		c.printf("Patient registered with ID %d\n", id)
	case errors.Is(err, clinic.ErrNameTooShort):
		c.println("Patient name too short")
	case errors.Is(err, clinic.ErrInvalidAddress):
		c.println("Invalid address. Address is too short")
	case errors.Is(err, clinic.ErrInvalidTelephone):
		c.println("Invalid telephone number. It must be at least 7 digits, e.g. +4476810546")
	case errors.Is(err, clinic.ErrPatientExists):
		c.println("This patient has already been registered")
	default:
		return err
	}
	return nil
}

func (c *Console) deletePatient() error {
	id, err := c.promptID("Patient ID")
	if err != nil {
		return err
	}
	if c.dir.DeletePatient(id) {
		c.println("Patient deleted")
	} else {
		c.println("Patient not found")
	}
	return nil
}

func (c *Console) bookAppointment(ctx context.Context) error {
	id, err := c.promptID("Patient ID")
	if err != nil {
		return err
	}
	patient, ok := c.dir.Patient(id)
	if !ok {
		c.println("No patient found with this ID")
		return nil
	}

	how, err := c.choose("How would you like to search?", []string{"By physiotherapist name", "By area of expertise"})
	if err != nil {
		return err
	}

	var physios []*clinic.Physiotherapist
	if how == 0 {
		term, err := c.prompt("Physiotherapist name")
		if err != nil {
			return err
		}
		physios = c.dir.PhysiotherapistsByName(term)
	} else {
		term, err := c.prompt("Area of expertise")
		if err != nil {
			return err
		}
		physios = c.dir.PhysiotherapistsByExpertise(term)
	}
	if len(physios) == 0 {
		c.println("No physiotherapists found")
		return nil
	}

	options := make([]string, 0, len(physios))
	for _, p := range physios {
		options = append(options, fmt.Sprintf("%s (Expertise: %s, Tel: %s)", p.FullName, strings.Join(p.Expertise, ", "), p.Tel))
	}
	pick, err := c.choose("Choose a physiotherapist", options)
	if err != nil {
		return err
	}
	physio := physios[pick]

	timetable := physio.Timetable()
	if len(timetable) == 0 {
		c.println("This physiotherapist has no timetable")
		return nil
	}
	options = make([]string, 0, len(timetable))
	for _, s := range timetable {
		availability := "Available"
		if s.IsBooked() {
			availability = "Booked"
		}
		options = append(options, fmt.Sprintf("%s | %s | %s", s.Treatment(), report.FormatTime(s.Timestamp()), availability))
	}
	pick, err = c.choose("Select a time slot", options)
	if err != nil {
		return err
	}

	apptID, err := c.engine.Book(ctx, patient, timetable[pick])
	switch {
	case err == nil:
		c.printAppointment(ctx, apptID)
	case errors.Is(err, appointment.ErrSlotAlreadyBooked):
		c.println("This timetable slot is not available for booking")
	case errors.Is(err, appointment.ErrPatientTimeConflict):
		c.println("Booking failed. This patient already has a booking at this time")
	default:
		return err
	}
	return nil
}

func (c *Console) manageBooking(ctx context.Context) error {
	action, err := c.choose("Manage appointment", []string{"Cancel appointment", "Rebook appointment", "Back to main menu"})
	if err != nil {
		return err
	}
	if action == 2 {
		return nil
	}

	id, err := c.promptID("Appointment ID")
	if err != nil {
		return err
	}

	if action == 0 {
		err := c.engine.Cancel(ctx, id)
		switch {
		case err == nil:
			c.println("Appointment cancelled")
		case errors.Is(err, appointment.ErrAppointmentNotFound):
			c.println("Appointment not found")
		case errors.Is(err, appointment.ErrCancelled):
			c.println("This appointment is already cancelled")
		case errors.Is(err, appointment.ErrCannotCancelAttended):
			c.println("The patient has already attended this appointment, it cannot be cancelled")
		default:
			return err
		}
		return nil
	}

	rebooked, err := c.engine.Rebook(ctx, id)
	switch {
	case err == nil:
		c.println("Appointment rebooked")
		c.printAppointment(ctx, rebooked)
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		c.println("Appointment not found")
	case errors.Is(err, appointment.ErrNotCancelled):
		c.println("Only cancelled appointments can be rebooked")
	case errors.Is(err, appointment.ErrSlotNoLongerAvailable):
		c.println("The time slot has been taken by another patient. Please book a new appointment")
	case errors.Is(err, appointment.ErrPatientTimeConflict):
		c.println("The patient already has another booking at this time")
	default:
		return err
	}
	return nil
}

func (c *Console) attendAppointment(ctx context.Context) error {
	id, err := c.promptID("Appointment ID")
	if err != nil {
		return err
	}

	err = c.engine.Attend(ctx, id)
	switch {
	case err == nil:
		c.println("Appointment attended")
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		c.println("Appointment not found")
	case errors.Is(err, appointment.ErrAlreadyAttended):
		c.println("Appointment already attended")
	case errors.Is(err, appointment.ErrCancelled):
		c.println("This appointment has been cancelled. Try rebooking it")
	default:
		return err
	}
	return nil
}

func (c *Console) appointmentReport() error {
	scope, err := c.choose("Appointment report", []string{"All physiotherapists", "One physiotherapist"})
	if err != nil {
		return err
	}

	var physio *clinic.Physiotherapist
	if scope == 1 {
		physios := c.dir.Physiotherapists()
		if len(physios) == 0 {
			c.println("No physiotherapists registered")
			return nil
		}
		names := make([]string, 0, len(physios))
		for _, p := range physios {
			names = append(names, p.FullName)
		}
		pick, err := c.choose("Choose a physiotherapist", names)
		if err != nil {
			return err
		}
		physio = physios[pick]
	}

	rows := report.Appointments(c.engine, physio)
	if len(rows) == 0 {
		c.println("No appointments to report")
		return nil
	}
	for _, r := range rows {
		c.printf("#%d | %s | %s | %s | %s | %s\n", r.AppointmentID, r.Physiotherapist, r.Treatment, r.Patient, r.Time, r.Status)
	}
	return nil
}

func (c *Console) physiotherapistReport() {
	for _, r := range report.Physiotherapists(c.dir, c.engine) {
		c.printf("%-30s attended: %d\n", r.Name, r.Attended)
	}
}

func (c *Console) printAppointment(ctx context.Context, id int) {
	appt, err := c.engine.Get(ctx, id)
	if err != nil {
		c.log.Warn().Err(err).Int("appointment_id", id).Msg("appointment vanished after booking")
		c.printf("Appointment ID: %d\n", id)
		return
	}

	c.printf("Appointment ID: %d\n", appt.ID)
	c.printf("Status: %s\n", report.StatusLabel(appt.Status))
	if p, ok := appt.Patient.(*clinic.Patient); ok {
		c.printf("Patient: %s (ID %d)\n", p.FullName, p.ID)
	}
	if s, ok := appt.Slot.(*clinic.TimetableSlot); ok {
		c.printf("Physiotherapist: %s\n", s.Physiotherapist().FullName)
		c.printf("Treatment: %s\n", s.Treatment())
		c.printf("Date & time: %s\n", report.FormatTime(s.Timestamp()))
	}
	c.println("Please arrive 10 minutes early for your session")
}

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// prompt asks until a non-empty answer is given.
func (c *Console) prompt(label string) (string, error) {
	for {
		c.printf("%s: ", label)
		line, err := c.readLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		c.println("A value is required")
	}
}

func (c *Console) promptID(label string) (int, error) {
	for {
		line, err := c.prompt(label)
		if err != nil {
			return 0, err
		}
		id, err := strconv.Atoi(line)
		if err == nil && id > 0 {
			return id, nil
		}
		c.println("IDs are whole numbers, e.g. 10000")
	}
}

// choose lists options numbered from 1 and returns the zero-based index picked.
func (c *Console) choose(title string, options []string) (int, error) {
	c.println(title)
	for i, o := range options {
		c.printf("  %d. %s\n", i+1, o)
	}
	for {
		line, err := c.prompt("Choose an option")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		c.printf("Please enter a number between 1 and %d\n", len(options))
	}
}

func (c *Console) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
