// Package feed implements the CSV wire format for transaction records and
// balance snapshots: columns type,client,tx,amount in, columns
// client,available,held,total,locked out.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledgerline/ledgerline/internal/amount"
	"github.com/ledgerline/ledgerline/internal/ledger"
)

// ErrMalformedRecord wraps every per-row decode failure. Rows failing with
// it are skippable; any other read error is fatal to the stream.
var ErrMalformedRecord = errors.New("malformed record")

// Reader decodes transaction records from CSV. Leading and trailing
// whitespace is tolerated in every field, and an optional header row is
// skipped.
type Reader struct {
	csv   *csv.Reader
	first bool
}

// NewReader wraps an input stream.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Records legitimately carry 3 or 4 fields depending on type.
	cr.FieldsPerRecord = -1
	return &Reader{csv: cr, first: true}
}

// Read returns the next decoded transaction. It returns io.EOF at end of
// input and errors wrapping ErrMalformedRecord for rows that should be
// skipped rather than aborting the stream.
func (r *Reader) Read() (ledger.Transaction, error) {
	for {
		fields, err := r.csv.Read()
		if err != nil {
			if err == io.EOF {
				return ledger.Transaction{}, io.EOF
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return ledger.Transaction{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
			}
			return ledger.Transaction{}, err
		}

		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if r.first {
			r.first = false
			if len(fields) > 0 && strings.EqualFold(fields[0], "type") {
				continue
			}
		}

		return decode(fields)
	}
}

func decode(fields []string) (ledger.Transaction, error) {
	if len(fields) < 3 {
		return ledger.Transaction{}, fmt.Errorf("%w: expected at least 3 fields, got %d", ErrMalformedRecord, len(fields))
	}

	kind, err := ledger.ParseKind(fields[0])
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	clientID, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("%w: client id %q", ErrMalformedRecord, fields[1])
	}

	txID, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("%w: transaction id %q", ErrMalformedRecord, fields[2])
	}

	tx := ledger.Transaction{
		Kind:     kind,
		ClientID: uint16(clientID),
		TxID:     uint32(txID),
	}

	if kind.HasAmount() {
		if len(fields) < 4 || fields[3] == "" {
			return ledger.Transaction{}, fmt.Errorf("%w: %s without amount", ErrMalformedRecord, kind)
		}
		amt, err := amount.Parse(fields[3])
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
		tx.Amount = amt
	}

	return tx, nil
}

// WriteSnapshot renders balance rows as CSV with a header. Amounts carry
// exactly four fractional digits, locked renders as a boolean literal.
func WriteSnapshot(w io.Writer, rows []ledger.Snapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.ClientID), 10),
			row.Available.String(),
			row.Held.String(),
			row.Total.String(),
			strconv.FormatBool(row.Locked),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
