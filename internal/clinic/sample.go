package clinic

import (
	"errors"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
)

type SeedOptions struct {
	Seed             uint64
	Patients         int
	Physiotherapists int
}

// Seed fills the directory with generated physiotherapists and patients, then lays out
// their timetable. The same options always produce the same clinic.
func Seed(dir *Directory, opts SeedOptions) error {
	faker := gofakeit.New(opts.Seed)

	for range opts.Physiotherapists {
		expertise := pickExpertise(faker, faker.Number(2, 3))
		dir.AddPhysiotherapist(faker.Name(), fakeAddress(faker), faker.Phone(), expertise)
	}

	added := 0
	for attempts := 0; added < opts.Patients; attempts++ {
		if attempts > opts.Patients*10 {
			return fmt.Errorf("seed patients: gave up after %d attempts with %d/%d added", attempts, added, opts.Patients)
		}
		_, err := dir.AddPatient(faker.Name(), fakeAddress(faker), "+44"+faker.Phone())
		if errors.Is(err, ErrPatientExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed patient: %w", err)
		}
		added++
	}

	GenerateTimetable(dir, TimetableStart)
	return nil
}

func pickExpertise(faker *gofakeit.Faker, n int) []string {
	picked := make([]string, 0, n)
	seen := make(map[int]struct{}, n)
	for len(picked) < n {
		i := faker.Number(0, len(ExpertiseAreas)-1)
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		picked = append(picked, ExpertiseAreas[i])
	}
	return picked
}

func fakeAddress(faker *gofakeit.Faker) string {
	return faker.Street() + ", " + faker.City()
}
