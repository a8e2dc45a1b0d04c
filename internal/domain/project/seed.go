package project

import (
	"time"

	"github.com/google/uuid"
)

// SeedProject builds the demo project with dates relative to now.
func SeedProject(now time.Time) Project {
	at := func(days int) *time.Time {
		t := now.Add(time.Duration(days) * day)
		return &t
	}
	return Project{
		ID:                uuid.NewString(),
		Code:              "LTC-GARDEN-10807",
		Name:              "Garden Residences (new plumbing)",
		ResponsiblePerson: "Wang Xiaoming",
		Previous: PreviousPeriod{
			Period: Period{
				Activity: "Foundation structure and exterior walls",
				Start:    at(-30),
				End:      at(-15),
				Notes:    "Soft ground during piling, extra grouting was added.",
			},
			Remark: "Structure complete, inspection passed.",
		},
		Planned: Period{
			Activity: "Interior piping layout and waterproofing",
			Start:    at(-14),
			End:      at(1),
			Notes:    "Plumbing materials delivered, please verify quantities.",
		},
		Next: Period{
			Activity: "Interior masonry and tiling",
			Start:    at(2),
			End:      at(16),
			Notes:    "Confirm tile samples with the supplier in advance.",
		},
		LastUpdateDate: &now,
	}
}
