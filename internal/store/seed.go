package store

import (
	"time"

	models "io.winapps.depttimeline/internal/models/entry"
)

// SeedEntries is the example set written on the first read of an empty
// local store so a first-time visitor never sees an empty timeline.
func SeedEntries(now time.Time) []models.Entry {
	ms := now.UnixMilli()
	return []models.Entry{
		{
			ID:          "1",
			Title:       "National Hackathon Winners",
			Description: "Our final year students secured 1st place in the Smart India Hackathon 2023, developing an AI-based solution for waste management.",
			Category:    models.CategoryStudent,
			Date:        "2023-11-15",
			Year:        2023,
			Featured:    true,
			CreatedAt:   ms,
			MediaURL:    "https://images.unsplash.com/photo-1531482615713-2afd69097998?auto=format&fit=crop&q=80&w=800",
		},
		{
			ID:          "2",
			Title:       "International Conference on AI",
			Description: `Dr. Sarah Smith presented her paper on "Ethical AI Frameworks" at the IEEE International Conference in Singapore.`,
			Category:    models.CategoryFaculty,
			Date:        "2023-09-20",
			Year:        2023,
			CreatedAt:   ms - 10000,
		},
		{
			ID:          "3",
			Title:       `Annual Tech Fest "Technova"`,
			Description: "A 3-day technical symposium featuring coding contests, robotics workshops, and guest lectures from industry leaders.",
			Category:    models.CategoryEvent,
			Date:        "2024-03-10",
			Year:        2024,
			Featured:    true,
			CreatedAt:   ms - 20000,
			MediaURL:    "https://images.unsplash.com/photo-1540575467063-178a50c2df87?auto=format&fit=crop&q=80&w=800",
		},
		{
			ID:          "4",
			Title:       "MoU with Google Cloud",
			Description: "The department has signed a Memorandum of Understanding with Google Cloud to set up a Center of Excellence on campus.",
			Category:    models.CategoryCollab,
			Date:        "2024-01-15",
			Year:        2024,
			Featured:    true,
			CreatedAt:   ms - 30000,
		},
	}
}
