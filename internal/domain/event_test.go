package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFields_NormalizeDepartments(t *testing.T) {
	t.Run("primary_is_first_of_list", func(t *testing.T) {
		f := EventFields{DepartmentIDs: []int64{3, 7}}
		f.NormalizeDepartments()
		require.NotNil(t, f.DepartmentID)
		assert.Equal(t, int64(3), *f.DepartmentID)
	})

	t.Run("scalar_backfills_list", func(t *testing.T) {
		id := int64(5)
		f := EventFields{DepartmentID: &id}
		f.NormalizeDepartments()
		assert.Equal(t, []int64{5}, f.DepartmentIDs)
	})

	t.Run("explicit_empty_list_clears_scalar", func(t *testing.T) {
		id := int64(5)
		f := EventFields{DepartmentID: &id, DepartmentIDs: []int64{5}}
		f.SetDepartmentIDs(nil)
		assert.Nil(t, f.DepartmentID)
		assert.Nil(t, f.DepartmentIDs)
	})

	t.Run("nothing_set_stays_nil", func(t *testing.T) {
		f := EventFields{}
		f.NormalizeDepartments()
		assert.Nil(t, f.DepartmentID)
		assert.Nil(t, f.DepartmentIDs)
	})
}

func TestEventFields_Validate(t *testing.T) {
	valid := func() EventFields {
		ds, _ := ParseDate("2024-06-01")
		return EventFields{
			Title:     "Board games night",
			DateStart: ds,
			DateEnd:   ds,
			TimeStart: "18:00",
			TimeEnd:   "21:00",
		}
	}

	t.Run("ok", func(t *testing.T) {
		f := valid()
		assert.NoError(t, f.Validate())
	})

	t.Run("date_end_defaults_to_date_start", func(t *testing.T) {
		f := valid()
		f.DateEnd = time.Time{}
		require.NoError(t, f.Validate())
		assert.Equal(t, f.DateStart, f.DateEnd)
	})

	t.Run("date_end_before_start", func(t *testing.T) {
		f := valid()
		de, _ := ParseDate("2024-05-31")
		f.DateEnd = de
		assert.Error(t, f.Validate())
	})

	t.Run("bad_time", func(t *testing.T) {
		f := valid()
		f.TimeEnd = "24:61"
		assert.Error(t, f.Validate())
	})

	t.Run("missing_title", func(t *testing.T) {
		f := valid()
		f.Title = "  "
		assert.Error(t, f.Validate())
	})
}
