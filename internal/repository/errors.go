package repository

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = stderrors.New("record not found")
	ErrDuplicate         = stderrors.New("duplicate record")
	ErrReferenced        = stderrors.New("record is referenced by other rows")
	ErrInsufficientStock = stderrors.New("insufficient product stock")
	ErrInsufficientLot   = stderrors.New("insufficient stock entry quantity")
	ErrStatusConflict    = stderrors.New("order status changed concurrently")
)

// translate maps gorm/driver failures onto the package sentinels and
// attaches a stack to anything else.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, op)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(ErrDuplicate, op)
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Wrap(ErrReferenced, op)
	default:
		return errors.Wrap(err, op)
	}
}

// expectRows turns a zero-row conditional update into sentinel.
func expectRows(res *gorm.DB, sentinel error, op string) error {
	if res.Error != nil {
		return translate(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(sentinel, op)
	}
	return nil
}
