package learning

import (
	"gorm.io/gorm"
)

const scanBatchSize = 500

// collectInBatches pages through q by primary key and stops early when the
// request context is cancelled. Callers must not rely on row order.
func collectInBatches[T any](q *gorm.DB) ([]*T, error) {
	out := []*T{}
	var batch []*T
	res := q.FindInBatches(&batch, scanBatchSize, func(tx *gorm.DB, _ int) error {
		if ctx := tx.Statement.Context; ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		out = append(out, batch...)
		return nil
	})
	if res.Error != nil {
		return nil, res.Error
	}
	return out, nil
}

func sumColumn(q *gorm.DB, column string) (int64, error) {
	var total int64
	if err := q.Select("COALESCE(SUM(" + column + "), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
