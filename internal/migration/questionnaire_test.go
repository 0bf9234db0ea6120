package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

func questionnaire(catOrder, questionOrder int, optionOrders []int, idBase int, checked ...int) models.Questionnaire {
	var opts []models.Option
	for i, o := range optionOrders {
		opt := models.Option{ID: idBase + i, Order: o}
		for _, c := range checked {
			if c == o {
				opt.Checked = true
			}
		}
		opts = append(opts, opt)
	}
	return models.Questionnaire{Categories: []models.Category{
		{ID: idBase + 100, Order: 1, Questions: []models.Question{{ID: idBase + 200, Order: 1, Options: []models.Option{{ID: idBase + 300, Order: 1}}}}},
		{ID: idBase + 101, Order: catOrder, Questions: []models.Question{{ID: idBase + 201, Order: questionOrder, Options: opts}}},
	}}
}

func TestReplayQuestionnaire_MatchesByOrder(t *testing.T) {
	saved := questionnaire(2, 1, []int{1, 2, 3}, 10, 3)
	fresh := questionnaire(2, 1, []int{3, 1, 2}, 5000)

	require.NoError(t, replayQuestionnaire(&saved, &fresh))

	var checked []int
	for _, c := range fresh.Categories {
		for _, q := range c.Questions {
			for _, o := range q.Options {
				if o.Checked {
					checked = append(checked, o.ID)
				}
			}
		}
	}
	assert.Equal(t, []int{5000}, checked, "only the option with order 3 is checked, whatever its id")
}

func TestReplayQuestionnaire_ClearsDefaults(t *testing.T) {
	saved := questionnaire(2, 1, []int{1, 2}, 10, 2)
	fresh := questionnaire(2, 1, []int{1, 2}, 5000, 1)

	require.NoError(t, replayQuestionnaire(&saved, &fresh))
	opts := fresh.Categories[1].Questions[0].Options
	assert.False(t, opts[0].Checked)
	assert.True(t, opts[1].Checked)
}

func TestReplayQuestionnaire_Mismatch(t *testing.T) {
	tests := []struct {
		name    string
		fresh   models.Questionnaire
		message string
	}{
		{"missing category", questionnaire(4, 1, []int{1, 2, 3}, 5000), "no category with order 2"},
		{"missing question", questionnaire(2, 9, []int{1, 2, 3}, 5000), "category order 2: no question with order 1"},
		{"missing option", questionnaire(2, 1, []int{1, 2}, 5000), "no option with order 3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			saved := questionnaire(2, 1, []int{1, 2, 3}, 10, 3)
			err := replayQuestionnaire(&saved, &tc.fresh)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrStructuralMismatch)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestReplayQuestionnaire_UncheckedNeedNoMatch(t *testing.T) {
	saved := questionnaire(2, 1, []int{1, 2, 3}, 10)
	fresh := questionnaire(7, 7, []int{7}, 5000)
	assert.NoError(t, replayQuestionnaire(&saved, &fresh))
}
