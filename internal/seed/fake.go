package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/hackgods/petcare-booking/internal/adoption"
	"github.com/hackgods/petcare-booking/internal/app"
	"github.com/hackgods/petcare-booking/internal/appointment"
	"github.com/hackgods/petcare-booking/internal/catalog"
	"github.com/hackgods/petcare-booking/internal/customer"
	"github.com/hackgods/petcare-booking/internal/pet"
	"github.com/hackgods/petcare-booking/internal/records"
)

type FakeOptions struct {
	Customers int
	Days      int
	Start     time.Time
	Seed      uint64
}

type FakeReport struct {
	Services     int
	Customers    int
	Appointments int
	Conflicts    int
	ClientPets   int
	Vaccines     int
	AdoptionPets int
}

var defaultServices = []struct {
	name     string
	desc     string
	duration int
}{
	{"Banho", "Banho completo com secagem", 60},
	{"Tosa", "Tosa higiênica ou completa", 90},
	{"Consulta", "Consulta veterinária geral", 30},
	{"Vacinação", "Aplicação de vacinas", 20},
}

// NewFakeCommand creates the fake command.
func NewFakeCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		opts  FakeOptions
		start string
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:          "fake",
		Short:        "Generate fake services, customers, pets and appointments",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Start = time.Now()
			if start != "" {
				t, err := time.Parse(appointment.DayLayout, start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				opts.Start = t
			}
			opts.Seed = seed
			if opts.Seed == 0 {
				opts.Seed = uint64(time.Now().UnixNano())
			}

			a, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := Fake(cmd.Context(), a, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"services=%d customers=%d appointments=%d conflicts=%d client_pets=%d vaccines=%d adoption_pets=%d\n",
				report.Services, report.Customers, report.Appointments, report.Conflicts,
				report.ClientPets, report.Vaccines, report.AdoptionPets)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Customers, "customers", 50, "number of customers to create")
	cmd.Flags().IntVar(&opts.Days, "days", 14, "spread appointments over this many days")
	cmd.Flags().StringVar(&start, "start", "", "first appointment day (YYYY-MM-DD), default today")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed, 0 for time based")

	return cmd
}

// Fake fills the store through the regular services, so every record obeys
// the same rules as one created over HTTP.
func Fake(ctx context.Context, a *app.App, opts FakeOptions) (FakeReport, error) {
	var report FakeReport
	f := gofakeit.New(opts.Seed)

	if opts.Days <= 0 {
		opts.Days = 1
	}

	if err := a.EnsureDefaults(ctx); err != nil {
		return report, fmt.Errorf("time slots: %w", err)
	}
	slots, err := a.Catalog.ListTimeSlots(ctx)
	if err != nil {
		return report, err
	}
	if len(slots) == 0 {
		return report, errors.New("no time slots configured")
	}

	var serviceIDs []string
	for _, s := range defaultServices {
		svc, err := a.Catalog.CreateService(ctx, catalog.ServiceInput{
			Name:        s.name,
			Description: s.desc,
			Price:       f.Price(40, 250),
			Duration:    s.duration,
		})
		if err != nil {
			return report, fmt.Errorf("create service %q: %w", s.name, err)
		}
		serviceIDs = append(serviceIDs, svc.ID)
		report.Services++
	}

	for i := 0; i < opts.Customers; i++ {
		c, err := a.Customers.Register(ctx, customer.Input{
			Name:     f.Name(),
			Whatsapp: "55" + f.Phone(),
			Address:  fmt.Sprintf("%s, %s", f.Street(), f.City()),
		})
		if errors.Is(err, customer.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return report, fmt.Errorf("register customer: %w", err)
		}
		report.Customers++

		petName := f.PetName()
		petType := f.RandomString([]string{"cachorro", "gato"})
		breed := f.Dog()
		if petType == "gato" {
			breed = f.Cat()
		}
		age := fmt.Sprint(f.Number(1, 15))

		bookings := f.Number(1, 2)
		for b := 0; b < bookings; b++ {
			day := opts.Start.AddDate(0, 0, f.Number(0, opts.Days-1))
			slot := slots[f.Number(0, len(slots)-1)]

			appt, err := a.Appointments.SubmitBooking(ctx, appointment.BookingInput{
				ServiceID:     serviceIDs[f.Number(0, len(serviceIDs)-1)],
				Date:          day.Format(appointment.DayLayout),
				Time:          slot.Time,
				PetName:       petName,
				PetType:       petType,
				PetBreed:      breed,
				PetAge:        age,
				PetWeight:     fmt.Sprint(f.Number(2, 40)),
				OwnerName:     c.Name,
				OwnerWhatsapp: c.Whatsapp,
				OwnerAddress:  c.Address,
			})
			if errors.Is(err, appointment.ErrSlotConflict) {
				report.Conflicts++
				continue
			}
			if err != nil {
				return report, fmt.Errorf("book: %w", err)
			}
			report.Appointments++

			if f.Number(0, 2) == 0 {
				status := records.StatusConfirmed
				if f.Bool() {
					status = records.StatusCancelled
				}
				if _, err := a.Appointments.ChangeStatus(ctx, appt.ID, status, appointment.Staff()); err != nil {
					return report, fmt.Errorf("set status: %w", err)
				}
			}
		}

		if f.Bool() {
			cp, err := a.Pets.Register(ctx, pet.Input{
				Name:          petName,
				Type:          petType,
				Breed:         breed,
				Age:           age,
				OwnerWhatsapp: c.Whatsapp,
				Notes:         strings.TrimSpace(f.RandomString([]string{"", "alérgico a frango", "medroso"})),
			})
			if err != nil {
				return report, fmt.Errorf("register pet: %w", err)
			}
			report.ClientPets++

			given := opts.Start.AddDate(0, -f.Number(1, 11), 0)
			_, err = a.Pets.AddVaccine(ctx, cp.ID, pet.VaccineInput{
				Name:     f.RandomString([]string{"V10", "Antirrábica", "Giárdia", "V4"}),
				Date:     given.Format(appointment.DayLayout),
				NextDate: given.AddDate(1, 0, 0).Format(appointment.DayLayout),
			})
			if err != nil {
				return report, fmt.Errorf("add vaccine: %w", err)
			}
			report.Vaccines++
		}
	}

	listings := f.Number(2, 5)
	for i := 0; i < listings; i++ {
		_, err := a.Adoption.Add(ctx, adoption.Input{
			Name:        f.PetName(),
			Description: f.RandomString([]string{"", "dócil e brincalhão", "castrado e vacinado"}),
			Age:         fmt.Sprintf("%d meses", f.Number(2, 36)),
			Type:        f.RandomString([]string{"Cachorro", "Gato"}),
		})
		if err != nil {
			return report, fmt.Errorf("list adoption pet: %w", err)
		}
		report.AdoptionPets++
	}

	a.Log.Info("fake data seeded",
		"services", report.Services,
		"customers", report.Customers,
		"appointments", report.Appointments,
		"conflicts", report.Conflicts,
	)
	return report, nil
}
