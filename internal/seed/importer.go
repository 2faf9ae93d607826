package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hackgods/petcare-booking/internal/app"
	"github.com/hackgods/petcare-booking/internal/records"
	"github.com/hackgods/petcare-booking/internal/store"
)

type ImportReport struct {
	Imported map[string]int // collection key -> record count
	Skipped  []string       // keys in the dump that are not collections
}

// collection copies one typed collection between backends, failing with a
// *store.ParseError when the source does not decode.
type collection struct {
	key  string
	copy func(ctx context.Context, from, to store.Backend) (int, error)
}

func typed[T any](key string) collection {
	return collection{
		key: key,
		copy: func(ctx context.Context, from, to store.Backend) (int, error) {
			items, err := store.LoadStrict[T](ctx, from, key)
			if err != nil {
				return 0, err
			}
			return len(items), store.SaveCollection(ctx, to, key, items)
		},
	}
}

var collections = []collection{
	typed[records.Service](records.KeyServices),
	typed[records.TimeSlot](records.KeyTimeSlots),
	typed[records.Appointment](records.KeyAppointments),
	typed[records.Customer](records.KeyCustomers),
	typed[records.Pet](records.KeyCustomerPets),
	typed[records.ClientPet](records.KeyClientPets),
	typed[records.Vaccine](records.KeyPetVaccines),
	typed[records.AdoptionPet](records.KeyAdoptionPets),
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dump.json>",
		Short: "Import a browser local-storage dump",
		Long: `Import a JSON object mapping local-storage keys to values. Values may be
the raw arrays or the JSON-encoded strings the browser stores. Nothing is
written unless every collection in the dump decodes.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := openApp(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := Import(cmd.Context(), a, f)
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(report.Imported))
			for k := range report.Imported {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", k, report.Imported[k])
			}
			for _, k := range report.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %s\n", k)
			}
			return nil
		},
	}
}

// Import validates every collection in the dump before overwriting the
// matching collections in the app's store. Collections absent from the dump
// are left alone.
func Import(ctx context.Context, a *app.App, r io.Reader) (ImportReport, error) {
	report := ImportReport{Imported: map[string]int{}}

	var dump map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return report, fmt.Errorf("decode dump: %w", err)
	}

	staging := store.NewMemoryBackend()
	known := map[string]bool{}
	for _, c := range collections {
		known[c.key] = true
	}
	for key, raw := range dump {
		if !known[key] {
			report.Skipped = append(report.Skipped, key)
			continue
		}
		value, err := unwrapString(raw)
		if err != nil {
			return report, &store.ParseError{Key: key, Err: err}
		}
		if err := staging.Put(ctx, key, value); err != nil {
			return report, err
		}
	}
	sort.Strings(report.Skipped)

	// Decode everything first so a bad collection leaves the target untouched.
	validated := store.NewMemoryBackend()
	var errs []error
	for _, c := range collections {
		if _, ok := dump[c.key]; !ok {
			continue
		}
		n, err := c.copy(ctx, staging, validated)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report.Imported[c.key] = n
	}
	if err := errors.Join(errs...); err != nil {
		return ImportReport{Imported: map[string]int{}}, fmt.Errorf("refusing import: %w", err)
	}

	for _, c := range collections {
		if _, ok := report.Imported[c.key]; !ok {
			continue
		}
		err := a.Locker.WithLock(ctx, c.key, func(ctx context.Context) error {
			_, err := c.copy(ctx, validated, a.Backend)
			return err
		})
		if err != nil {
			return report, fmt.Errorf("write %s: %w", c.key, err)
		}
		a.Log.Info("collection imported", "key", c.key, "count", report.Imported[c.key])
	}

	return report, nil
}

// unwrapString returns the JSON text inside a string value, which is how the
// browser stores every collection, or raw itself otherwise.
func unwrapString(raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed, nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, err
	}
	return []byte(s), nil
}
