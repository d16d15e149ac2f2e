package trust

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/letsencrypt/borp"

	"github.com/cardsim/termauth/cvc"
)

// MySQLStore persists trust points in a MySQL table via a borp DbMap.
type MySQLStore struct {
	dbMap *borp.DbMap
}

var _ Store = (*MySQLStore)(nil)

// NewMySQLStore opens driverName/dataSourceName and maps the trust_points
// table. Schema management (CREATE TABLE) is left to migrations; this
// only registers the table/column mapping borp needs.
func NewMySQLStore(driverName, dataSourceName string) (*MySQLStore, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("trust: opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("trust: pinging database: %w", err)
	}

	dbMap := &borp.DbMap{Db: db, Dialect: borp.MySQLDialect{Engine: "InnoDB", Encoding: "UTF8MB4"}}
	table := dbMap.AddTableWithName(pointRow{}, "trust_points").SetKeys(false, "TerminalType")
	table.SetVersionCol("LockCol")
	table.ColMap("CurrentCert").SetMaxSize(4096)
	table.ColMap("PreviousCert").SetMaxSize(4096)

	return &MySQLStore{dbMap: dbMap}, nil
}

func (s *MySQLStore) Get(terminalType cvc.OID) (Point, bool) {
	var row pointRow
	err := s.dbMap.SelectOne(context.Background(), &row, "SELECT * FROM trust_points WHERE terminal_type_oid = ?", string(terminalType))
	if err != nil {
		return Point{}, false
	}
	point, err := pointFromRow(&row)
	if err != nil {
		return Point{}, false
	}
	return point, true
}

// Rollover upserts the trust point for terminalType inside a transaction,
// so a concurrent Get never observes a partially-applied rollover.
func (s *MySQLStore) Rollover(terminalType cvc.OID, newCVCA *cvc.Certificate) error {
	ctx := context.Background()
	tx, err := s.dbMap.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("trust: beginning transaction: %w", err)
	}

	var existing pointRow
	err = tx.SelectOne(ctx, &existing, "SELECT * FROM trust_points WHERE terminal_type_oid = ? FOR UPDATE", string(terminalType))
	switch err {
	case nil:
		point, parseErr := pointFromRow(&existing)
		if parseErr != nil {
			tx.Rollback()
			return fmt.Errorf("trust: decoding existing trust point: %w", parseErr)
		}
		next := rowFromPoint(terminalType, Point{Current: newCVCA, Previous: point.Current})
		next.LockCol = existing.LockCol
		if _, updateErr := tx.Update(ctx, next); updateErr != nil {
			tx.Rollback()
			return fmt.Errorf("trust: updating trust point: %w", updateErr)
		}
	case sql.ErrNoRows:
		row := rowFromPoint(terminalType, Point{Current: newCVCA})
		if insertErr := tx.Insert(ctx, row); insertErr != nil {
			tx.Rollback()
			return fmt.Errorf("trust: inserting trust point: %w", insertErr)
		}
	default:
		tx.Rollback()
		return fmt.Errorf("trust: loading existing trust point: %w", err)
	}

	return tx.Commit()
}
