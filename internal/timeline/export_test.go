package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	models "io.winapps.depttimeline/internal/models/entry"
)

func TestExportCriteria_Apply(t *testing.T) {
	entries := []models.Entry{
		{ID: "jan", Date: "2024-01-01", Category: models.CategoryEvent},
		{ID: "mar", Date: "2024-03-15T10:00:00Z", Category: models.CategoryStudent},
		{ID: "jun", Date: "2024-06-30", Category: models.CategoryEvent},
	}

	cases := []struct {
		name     string
		criteria ExportCriteria
		want     []string
	}{
		{"no bounds", ExportCriteria{}, []string{"jun", "mar", "jan"}},
		{"inclusive bounds", ExportCriteria{Start: "2024-01-01", End: "2024-03-15"}, []string{"mar", "jan"}},
		{"start only", ExportCriteria{Start: "2024-02-01"}, []string{"jun", "mar"}},
		{"category", ExportCriteria{Category: models.CategoryEvent}, []string{"jun", "jan"}},
		{"nothing", ExportCriteria{Start: "2025-01-01"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(tc.criteria.Apply(entries)))
		})
	}
}

func TestExportCriteria_Validate(t *testing.T) {
	assert.NoError(t, ExportCriteria{Start: "2024-01-01", End: "2024-01-01"}.Validate())
	assert.Error(t, ExportCriteria{Start: "01/01/2024"}.Validate())
	assert.Error(t, ExportCriteria{Start: "2024-02-01", End: "2024-01-01"}.Validate())
	assert.Error(t, ExportCriteria{Category: "ALUMNI"}.Validate())
	assert.NoError(t, ExportCriteria{Category: All}.Validate())
}
