package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/schedule"
	"github.com/dosewatch/dosewatch/pkg/store"
)

// importCalendar reads an iCalendar file and creates a dose for every event
// whose summary names a registered medicine
func importCalendar(st *store.SQLiteStore, log *zap.Logger, path string) error {
	ctx := context.Background()

	meds, err := st.ListMedicines(ctx)
	if err != nil {
		return err
	}
	byName := make(map[string]string, len(meds))
	for _, m := range meds {
		byName[strings.ToLower(m.Name)] = m.ID
		byName[strings.ToLower(m.Label())] = m.ID
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open calendar: %w", err)
	}
	defer f.Close()

	imp := &schedule.Importer{
		Resolve: func(summary string) (string, bool) {
			id, ok := byName[strings.ToLower(summary)]
			return id, ok
		},
		Log: log,
	}
	doses, err := imp.Import(f)
	if err != nil {
		return err
	}

	for _, d := range doses {
		if err := st.CreateDose(ctx, d); err != nil {
			return fmt.Errorf("store imported dose: %w", err)
		}
	}
	log.Info("calendar imported", zap.String("path", path), zap.Int("doses", len(doses)))
	return nil
}
