// =============================================================================
// Payroll to Batch Transfer Converter - Batch Mapper
// =============================================================================
//
// This module turns payroll line items into batch transfer rows.
//
// MAPPING PIPELINE:
//   1. Group records by (email, last name, first name, currency)
//   2. Sum each group's normalized amounts (unparsed cells count as zero)
//   3. Resolve the currency route; groups without one are dropped
//   4. Build the batch transfer fields for the group
//   5. Conform the fields to the output schema (fill, drop, reorder)
//
// The mapper is a pure function of its inputs. It holds no state between
// calls and is safe to call from concurrent conversions.
//
// =============================================================================

package mapper

import (
	"sort"

	"github.com/ginjaninja78/payroll-batch-converter/internal/amount"
	"github.com/ginjaninja78/payroll-batch-converter/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// OUTPUT COLUMNS
// =============================================================================

// Columns produced for every qualifying group.
const (
	ColTransferTo      = "Transfer to"
	ColTransferMethod  = "Transfer method"
	ColRecipientCcy    = "Currency recipient gets"
	ColTransferAmount  = "Transfer amount in currency recipient gets"
	ColPayerCcy        = "Currency you pay"
	ColSwiftFeeOption  = "SWIFT fee option"
	ColFeePaidBy       = "Fee paid by"
	ColAccountName     = "Account name"
	ColTransferPurpose = "Transfer purpose"
	ColReference       = "Reference"
	ColRecipientType   = "Recipient type"
	ColCountryOrRegion = "Country / region"
)

// Fixed values written to every row.
const (
	PayerCurrency   = "AUD"
	FeePaidBy       = "Payer"
	TransferPurpose = "Payroll"
	RecipientType   = "Business"
	SwiftFeeOur     = "OUR"
)

// ProducedColumns lists the columns the mapper fills, in construction order.
var ProducedColumns = []string{
	ColTransferTo,
	ColTransferMethod,
	ColRecipientCcy,
	ColTransferAmount,
	ColPayerCcy,
	ColSwiftFeeOption,
	ColFeePaidBy,
	ColAccountName,
	ColTransferPurpose,
	ColReference,
	ColRecipientType,
	ColCountryOrRegion,
}

// =============================================================================
// GROUPING
// =============================================================================

// GroupKey identifies one recipient-currency group. Fields compare as exact
// strings: no case folding and no whitespace trimming.
type GroupKey struct {
	Email     string
	LastName  string
	FirstName string
	Currency  string
}

// KeyOf returns the group key of a record.
func KeyOf(r types.PayrollRecord) GroupKey {
	return GroupKey{
		Email:     r.Email,
		LastName:  r.LastName,
		FirstName: r.FirstName,
		Currency:  r.Currency,
	}
}

// less orders keys field by field.
func (k GroupKey) less(o GroupKey) bool {
	if k.Email != o.Email {
		return k.Email < o.Email
	}
	if k.LastName != o.LastName {
		return k.LastName < o.LastName
	}
	if k.FirstName != o.FirstName {
		return k.FirstName < o.FirstName
	}
	return k.Currency < o.Currency
}

// Group is a recipient-currency group with its aggregate amount.
type Group struct {
	Key GroupKey

	// Total is the sum of all parsed amounts in the group.
	Total decimal.Decimal

	// Records is the number of payroll records in the group.
	Records int

	// Unparsed is the number of amount cells that did not parse.
	Unparsed int
}

// GroupRecords partitions records by GroupKey and sums each group's amounts.
// Groups are returned sorted by key, so the result does not depend on the
// order of records.
func GroupRecords(records []types.PayrollRecord) []Group {
	index := make(map[GroupKey]*Group)

	for _, r := range records {
		key := KeyOf(r)
		g, ok := index[key]
		if !ok {
			g = &Group{Key: key, Total: decimal.Zero}
			index[key] = g
		}

		a := amount.Normalize(r.Amount)
		if !a.IsParsed() {
			g.Unparsed++
		}
		g.Total = g.Total.Add(a.OrZero())
		g.Records++
	}

	groups := make([]Group, 0, len(index))
	for _, g := range index {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key.less(groups[j].Key)
	})

	return groups
}

// =============================================================================
// ROW CONSTRUCTION
// =============================================================================

// BuildFields builds the batch transfer fields for a group that has a route.
func BuildFields(g Group, route Route) types.Fields {
	fullName := g.Key.FirstName + " " + g.Key.LastName

	swiftFee := ""
	if route.Method == MethodSWIFT {
		swiftFee = SwiftFeeOur
	}

	return types.Fields{
		ColTransferTo:      route.Country,
		ColTransferMethod:  string(route.Method),
		ColRecipientCcy:    g.Key.Currency,
		ColTransferAmount:  g.Total,
		ColPayerCcy:        PayerCurrency,
		ColSwiftFeeOption:  swiftFee,
		ColFeePaidBy:       FeePaidBy,
		ColAccountName:     fullName,
		ColTransferPurpose: TransferPurpose,
		ColReference:       "Payroll - " + fullName,
		ColRecipientType:   RecipientType,
		ColCountryOrRegion: route.Country,
	}
}

// Conform materializes fields against schema: columns missing from fields
// get "", fields not in schema are dropped, and the order is schema order.
func Conform(fields types.Fields, schema []string) types.Row {
	row := types.Row{
		Columns: schema,
		Values:  make([]any, len(schema)),
	}
	for i, col := range schema {
		if v, ok := fields[col]; ok {
			row.Values[i] = v
		} else {
			row.Values[i] = ""
		}
	}
	return row
}

// =============================================================================
// MAP
// =============================================================================

// Report summarizes one mapping run.
type Report struct {
	// Records is the number of payroll records mapped.
	Records int

	// Groups is the number of recipient-currency groups found.
	Groups int

	// RowsEmitted is the number of output rows.
	RowsEmitted int

	// DroppedGroups counts groups without a route, per currency code.
	DroppedGroups map[string]int

	// UnparsedAmounts is the number of amount cells counted as zero.
	UnparsedAmounts int
}

// Dropped returns the total number of dropped groups.
func (r Report) Dropped() int {
	n := 0
	for _, c := range r.DroppedGroups {
		n += c
	}
	return n
}

// Map converts payroll records into batch transfer rows conforming to
// schema. One row is emitted per recipient-currency group that has a route.
func Map(records []types.PayrollRecord, schema []string) []types.Row {
	rows, _ := MapWithReport(records, schema)
	return rows
}

// MapWithReport is Map plus a summary of what was grouped, dropped and
// counted as zero.
func MapWithReport(records []types.PayrollRecord, schema []string) ([]types.Row, Report) {
	report := Report{
		Records:       len(records),
		DroppedGroups: make(map[string]int),
	}

	columns := append([]string(nil), schema...)

	groups := GroupRecords(records)
	report.Groups = len(groups)

	rows := make([]types.Row, 0, len(groups))
	for _, g := range groups {
		report.UnparsedAmounts += g.Unparsed

		route, ok := LookupRoute(g.Key.Currency)
		if !ok {
			report.DroppedGroups[g.Key.Currency]++
			continue
		}

		rows = append(rows, Conform(BuildFields(g, route), columns))
	}

	report.RowsEmitted = len(rows)
	return rows, report
}
