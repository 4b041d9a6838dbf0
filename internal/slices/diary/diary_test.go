package diary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/wellbeing-journal/internal/models"
)

func TestReduce_UpsertSuccess_ОбновляетТолькоСвоюДату(t *testing.T) {
	s := Initial()
	existing := models.DiaryEntry{Morning: models.MorningEntry{Point1: "old"}}
	s.Entries["2026-08-27"] = existing

	entry := models.DiaryEntry{Morning: models.MorningEntry{Point1: "grateful"}}
	s = Reduce(s, UpsertEntrySuccess{Date: "2026-08-28", Entry: entry})

	assert.Equal(t, entry, s.Entries["2026-08-28"])
	assert.Equal(t, existing, s.Entries["2026-08-27"])
	assert.Len(t, s.Entries, 2)
}

func TestReduce_UpsertSuccess_RoundTrip(t *testing.T) {
	entry := models.DiaryEntry{
		Morning: models.MorningEntry{Point1: "п1", Point2: "п2", Point3: "п3", Affirmation: "а"},
		Evening: models.EveningEntry{GoodDeed: "дело"},
	}
	s := Reduce(Initial(), UpsertEntrySuccess{Date: "2026-08-28", Entry: entry})
	assert.Equal(t, entry, s.Entries["2026-08-28"])
}

func TestReduce_FetchSuccess_ПерезаписываетДату(t *testing.T) {
	s := Initial()
	s.Entries["2026-08-28"] = models.DiaryEntry{Morning: models.MorningEntry{Point1: "stale"}}

	fresh := models.DiaryEntry{Morning: models.MorningEntry{Point1: "fresh"}}
	s = Reduce(s, FetchEntrySuccess{Date: "2026-08-28", Entry: fresh})

	assert.Equal(t, fresh, s.Entries["2026-08-28"])
	assert.False(t, s.IsLoading)
}

func TestReduce_FetchAllSuccess(t *testing.T) {
	entries := map[string]models.DiaryEntry{
		"2026-08-01": {Morning: models.MorningEntry{Point1: "a"}},
		"2026-08-02": {Evening: models.EveningEntry{GoodDeed: "b"}},
	}
	s := Reduce(Initial(), FetchAllSuccess{Entries: entries})
	assert.Equal(t, entries, s.AllEntries)
}

func TestReduce_Failure(t *testing.T) {
	s := Reduce(Initial(), FetchEntryFailure{Message: "not found"})
	assert.False(t, s.IsLoading)
	assert.Equal(t, "not found", s.Err)
}

func TestDiaryEntry_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		entry models.DiaryEntry
		want  bool
	}{
		{"полностью пустая запись", models.DiaryEntry{}, true},
		{
			"одно утреннее поле",
			models.DiaryEntry{Morning: models.MorningEntry{Point1: "grateful"}},
			false,
		},
		{
			"одно вечернее поле",
			models.DiaryEntry{Evening: models.EveningEntry{LessonLearned: "урок"}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.IsEmpty())
		})
	}
}
