package trust

import "github.com/cardsim/termauth/cvc"

// pointRow is the borp-mapped row for a trust point: certificates are
// stored as their PSO:Verify Certificate command-data encoding
// (cvc.Marshal), since that's both how they arrived over the wire and
// how cvc.ParseCertificate reconstructs them.
type pointRow struct {
	TerminalType string `db:"terminal_type_oid"`
	CurrentCert  []byte `db:"current_cert"`
	PreviousCert []byte `db:"previous_cert"`
	LockCol      int64  `db:"lockCol"`
}

func rowFromPoint(terminalType cvc.OID, p Point) *pointRow {
	row := &pointRow{TerminalType: string(terminalType)}
	if p.Current != nil {
		row.CurrentCert = cvc.Marshal(p.Current)
	}
	if p.Previous != nil {
		row.PreviousCert = cvc.Marshal(p.Previous)
	}
	return row
}

func pointFromRow(row *pointRow) (Point, error) {
	var p Point
	if len(row.CurrentCert) > 0 {
		cert, err := cvc.ParseCertificate(row.CurrentCert)
		if err != nil {
			return Point{}, err
		}
		p.Current = cert
	}
	if len(row.PreviousCert) > 0 {
		cert, err := cvc.ParseCertificate(row.PreviousCert)
		if err != nil {
			return Point{}, err
		}
		p.Previous = cert
	}
	return p, nil
}
