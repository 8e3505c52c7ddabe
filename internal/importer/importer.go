// Package importer drives bulk creation of records parsed from a sheet.
package importer

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/dell121212/laberaer/internal/core"
	"github.com/dell121212/laberaer/internal/spreadsheet"
	"github.com/dell121212/laberaer/pkg/domain"
)

// Creator is the store surface the importer needs.
type Creator[T any] interface {
	Create(ctx context.Context, draft T) (T, error)
}

// Auditor appends the summary entry of an import.
type Auditor interface {
	Record(ctx context.Context, verb domain.Verb, module domain.EntityType, detail string) domain.AuditEntry
}

// PrepareFunc adjusts a parsed draft before it is created. An error rejects
// the row.
type PrepareFunc[T any] func(ctx context.Context, draft *T) error

// Options configures one import run. Audit is required.
type Options[T any] struct {
	Audit   Auditor
	Logger  core.Logger
	Prepare PrepareFunc[T]
}

// Result aggregates an import run.
type Result struct {
	Total   int               `json:"totalRows"`
	Created int               `json:"createdCount"`
	Errors  []domain.RowError `json:"errors"`
}

// Detail renders the import audit detail for total rows.
func Detail(total int) string {
	return fmt.Sprintf("从Excel导入%d条数据", total)
}

// Import parses rows with sheet and creates every valid draft through store,
// one at a time in row order. Parse, prepare and create failures are
// collected as row errors. One import entry summarizing the total row count
// is appended once every row has been processed.
func Import[T any](ctx context.Context, sheet spreadsheet.Sheet[T], store Creator[T], rows []spreadsheet.Row, opts Options[T]) Result {
	logger := opts.Logger
	if logger == nil {
		logger = core.NopLogger()
	}
	drafts, rowErrs := sheet.Parse(rows)
	res := Result{Total: len(rows), Errors: rowErrs}

	for _, d := range drafts {
		draft := d.Value
		if opts.Prepare != nil {
			if err := opts.Prepare(ctx, &draft); err != nil {
				res.Errors = append(res.Errors, domain.RowError{Row: d.Row, Reason: err.Error()})
				continue
			}
		}
		if _, err := store.Create(ctx, draft); err != nil {
			logger.Debug("import row rejected", "entity", string(sheet.Entity), "row", d.Row, "error", err.Error())
			res.Errors = append(res.Errors, domain.RowError{Row: d.Row, Reason: err.Error()})
			continue
		}
		res.Created++
	}
	slices.SortStableFunc(res.Errors, func(a, b domain.RowError) int { return cmp.Compare(a.Row, b.Row) })

	if opts.Audit != nil {
		opts.Audit.Record(ctx, domain.VerbImport, sheet.Entity, Detail(res.Total))
	}
	logger.Info("import finished", "entity", string(sheet.Entity), "rows", res.Total, "created", res.Created, "rejected", len(res.Errors))
	return res
}
