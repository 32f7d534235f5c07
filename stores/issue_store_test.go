package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPageClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"defaults", Page{}, Page{Page: 1, Limit: 10}},
		{"negative page", Page{Page: -3, Limit: 20}, Page{Page: 1, Limit: 20}},
		{"zero limit", Page{Page: 2, Limit: 0}, Page{Page: 2, Limit: 10}},
		{"oversized limit", Page{Page: 2, Limit: 500}, Page{Page: 2, Limit: 10}},
		{"in range", Page{Page: 7, Limit: 25}, Page{Page: 7, Limit: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp())
		})
	}
}

func TestBuildFilter(t *testing.T) {
	t.Run("empty filters", func(t *testing.T) {
		assert.Equal(t, bson.M{}, buildFilter(IssueFilters{}))
	})

	t.Run("all treated as no filter", func(t *testing.T) {
		filter := buildFilter(IssueFilters{Status: "all", Category: "all", Priority: "all"})
		assert.Equal(t, bson.M{}, filter)
	})

	t.Run("exact matches", func(t *testing.T) {
		filter := buildFilter(IssueFilters{
			Status:        "pending",
			Category:      "road",
			ReporterEmail: "citizen@example.com",
			AssignedEmail: "staff@example.com",
		})

		assert.Equal(t, "pending", filter["status"])
		assert.Equal(t, "road", filter["category"])
		assert.Equal(t, "citizen@example.com", filter["reporterEmail"])
		assert.Equal(t, "staff@example.com", filter["assignedTo.email"])
	})

	t.Run("search spans title description location", func(t *testing.T) {
		filter := buildFilter(IssueFilters{Search: "pothole"})

		or, ok := filter["$or"].([]bson.M)
		assert.True(t, ok)
		assert.Len(t, or, 3)
		for _, clause := range or {
			for _, v := range clause {
				regex := v.(bson.M)
				assert.Equal(t, "pothole", regex["$regex"])
				assert.Equal(t, "i", regex["$options"])
			}
		}
	})
}
