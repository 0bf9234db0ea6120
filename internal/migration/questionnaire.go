package migration

import (
	"fmt"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

// replayQuestionnaire marks in fresh exactly the options checked in saved.
// Categories, questions and options are matched on their order at each
// level; ids differ between questionnaire instances. A checked option with
// no counterpart is a structural mismatch.
func replayQuestionnaire(saved, fresh *models.Questionnaire) error {
	for ci := range fresh.Categories {
		for qi := range fresh.Categories[ci].Questions {
			opts := fresh.Categories[ci].Questions[qi].Options
			for oi := range opts {
				opts[oi].Checked = false
			}
		}
	}

	for _, sc := range saved.Categories {
		for _, sq := range sc.Questions {
			for _, so := range sq.Options {
				if !so.Checked {
					continue
				}
				opt, err := locateOption(fresh, sc.Order, sq.Order, so.Order)
				if err != nil {
					return err
				}
				opt.Checked = true
			}
		}
	}
	return nil
}

func locateOption(q *models.Questionnaire, catOrder, questionOrder, optionOrder int) (*models.Option, error) {
	for ci := range q.Categories {
		cat := &q.Categories[ci]
		if cat.Order != catOrder {
			continue
		}
		for qi := range cat.Questions {
			question := &cat.Questions[qi]
			if question.Order != questionOrder {
				continue
			}
			for oi := range question.Options {
				if question.Options[oi].Order == optionOrder {
					return &question.Options[oi], nil
				}
			}
			return nil, fmt.Errorf("%w: category order %d, question order %d: no option with order %d",
				apperrors.ErrStructuralMismatch, catOrder, questionOrder, optionOrder)
		}
		return nil, fmt.Errorf("%w: category order %d: no question with order %d",
			apperrors.ErrStructuralMismatch, catOrder, questionOrder)
	}
	return nil, fmt.Errorf("%w: no category with order %d", apperrors.ErrStructuralMismatch, catOrder)
}
