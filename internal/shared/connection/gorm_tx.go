package connection

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// GormOnTx returns a handle whose statements all run on tx. A Session with a
// Context clones the Statement, so swapping its ConnPool leaves db untouched.
func GormOnTx(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	gtx := db.Session(&gorm.Session{
		Context:                context.Background(),
		NewDB:                  true,
		SkipDefaultTransaction: true,
	})
	gtx.Statement.ConnPool = tx
	return gtx
}
