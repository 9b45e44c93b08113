package leads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/seo-leads/internal/model"
)

var (
	day1 = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	day2 = time.Date(2026, 3, 4, 17, 5, 0, 0, time.UTC)
)

func TestMerge_NewRecord(t *testing.T) {
	got := Merge(nil, model.Fragment{Name: "Acme", Email: "info@acme.com"}, "https://acme.com", day1)

	assert.Equal(t, "https://acme.com", got.Website)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "info@acme.com", got.Email)
	assert.Equal(t, "", got.Phone)
	assert.Equal(t, "2026-03-01", got.DateCaptured)
	assert.Equal(t, "2026-03-01", got.DateUpdated)
}

func TestMerge_FreshWins(t *testing.T) {
	old := &model.Lead{Website: "https://acme.com", Email: "old@acme.com", DateCaptured: "2026-01-01"}
	got := Merge(old, model.Fragment{Email: "new@acme.com"}, "https://acme.com", day2)
	assert.Equal(t, "new@acme.com", got.Email)
}

func TestMerge_NonDestructive(t *testing.T) {
	old := &model.Lead{
		Website:      "https://acme.com",
		Name:         "Acme",
		Phone:        "+1-555-0100",
		Facebook:     "https://facebook.com/acme",
		DateCaptured: "2026-01-01",
	}
	got := Merge(old, model.Fragment{}, "https://acme.com", day2)

	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "+1-555-0100", got.Phone)
	assert.Equal(t, "https://facebook.com/acme", got.Facebook)
}

func TestMerge_DateCapturedStable(t *testing.T) {
	first := Merge(nil, model.Fragment{Name: "Acme"}, "https://acme.com", day1)
	second := Merge(&first, model.Fragment{Name: "Acme Corp"}, "https://acme.com", day2)

	assert.Equal(t, "2026-03-01", second.DateCaptured)
	assert.Equal(t, "2026-03-04", second.DateUpdated)
}

func TestMerge_NoOpStillTouchesDateUpdated(t *testing.T) {
	old := &model.Lead{Website: "https://acme.com", DateCaptured: "2026-03-01", DateUpdated: "2026-03-01"}
	got := Merge(old, model.Fragment{}, "https://acme.com", day2)
	assert.Equal(t, "2026-03-04", got.DateUpdated)
}

func TestMerge_Idempotent(t *testing.T) {
	fresh := model.Fragment{Name: "Acme", Email: "info@acme.com", YouTube: "https://youtube.com/acme"}
	once := Merge(nil, fresh, "https://acme.com", day1)
	twice := Merge(&once, fresh, "https://acme.com", day1)
	assert.Equal(t, once, twice)
}

func TestMerge_AllFieldsFollowFreshness(t *testing.T) {
	old := &model.Lead{
		Website: "https://acme.com", Name: "n", Email: "e", Phone: "p", Address: "a",
		Country: "c", City: "ci", Zip: "z", Facebook: "f", Instagram: "i",
		Twitter: "t", LinkedIn: "l", YouTube: "y", DateCaptured: "2026-01-01",
	}
	fresh := model.Fragment{
		Name: "N", Email: "E", Phone: "P", Address: "A", Country: "C", City: "CI",
		Zip: "Z", Facebook: "F", Instagram: "I", Twitter: "T", LinkedIn: "L", YouTube: "Y",
	}
	got := Merge(old, fresh, "https://acme.com", day2)

	assert.Equal(t, model.Lead{
		Website: "https://acme.com", Name: "N", Email: "E", Phone: "P", Address: "A",
		Country: "C", City: "CI", Zip: "Z", Facebook: "F", Instagram: "I",
		Twitter: "T", LinkedIn: "L", YouTube: "Y",
		DateCaptured: "2026-01-01", DateUpdated: "2026-03-04",
	}, got)
}

func TestMerge_DoesNotMutateOld(t *testing.T) {
	old := &model.Lead{Website: "https://acme.com", Name: "Acme", DateCaptured: "2026-01-01"}
	_ = Merge(old, model.Fragment{Name: "Other"}, "https://acme.com", day2)
	assert.Equal(t, "Acme", old.Name)
	assert.Equal(t, "", old.DateUpdated)
}
