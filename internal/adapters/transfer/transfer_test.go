package transfer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dell121212/laberaer/internal/blob"
	"github.com/dell121212/laberaer/internal/core"
	"github.com/dell121212/laberaer/internal/spreadsheet"
	"github.com/dell121212/laberaer/pkg/domain"
)

var exportDay = time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *core.Service
	blobs blob.Store
	xfer  *Service
	ctx   context.Context
}

func newFixture(t *testing.T, blobs blob.Store, opts ...Option) fixture {
	t.Helper()
	svc := core.NewInMemoryService(core.WithClock(core.ClockFunc(func() time.Time { return exportDay })))
	ctx := context.Background()
	admin, err := svc.Actors.EnsureAdmin(ctx)
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	return fixture{svc: svc, blobs: blobs, xfer: New(svc, blobs, opts...), ctx: core.WithActor(ctx, admin)}
}

func (f fixture) addMembers(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := f.svc.Members.Create(f.ctx, domain.Member{Name: n, Group: "G", Phone: "1"}); err != nil {
			t.Fatalf("create member: %v", err)
		}
	}
}

func TestExportWritesDatedFile(t *testing.T) {
	f := newFixture(t, blob.NewMemory())
	f.addMembers(t, "Alice", "Bob")

	art, err := f.xfer.Export(f.ctx, domain.EntityMember, spreadsheet.FormatXLSX)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if art.Key != "成员名单_2024-03-07.xlsx" || art.Rows != 2 || art.ContentType != blob.ContentTypeXLSX || art.URL != "" {
		t.Fatalf("unexpected artifact %+v", art)
	}
	head, _ := f.svc.Audit.Head()
	if head.Verb != domain.VerbExport || head.Module != domain.EntityMember || head.Detail != "导出2条数据到Excel" {
		t.Fatalf("unexpected audit head %+v", head)
	}

	info, payload, err := f.xfer.Fetch(f.ctx, art.Key)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if info.Metadata["entity"] != "member" || info.Metadata["rows"] != "2" {
		t.Fatalf("unexpected metadata %v", info.Metadata)
	}
	table, err := spreadsheet.XLSX{}.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if table.Headers[0] != "姓名" || len(table.Rows) != 2 {
		t.Fatalf("unexpected table %+v", table)
	}
}

func TestExportSameDayReplacesFile(t *testing.T) {
	f := newFixture(t, blob.NewMemory())
	f.addMembers(t, "Alice")
	if _, err := f.xfer.Export(f.ctx, domain.EntityMember, spreadsheet.FormatCSV); err != nil {
		t.Fatalf("Export: %v", err)
	}
	f.addMembers(t, "Bob")
	art, err := f.xfer.Export(f.ctx, domain.EntityMember, spreadsheet.FormatCSV)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	infos, err := f.xfer.Artifacts(f.ctx, "成员名单_")
	if err != nil || len(infos) != 1 || infos[0].Key != "成员名单_2024-03-07.csv" {
		t.Fatalf("expected one export file, got %+v %v", infos, err)
	}
	if art.Rows != 2 || len(f.svc.Audit.Filter(domain.EntityMember, domain.VerbExport)) != 2 {
		t.Fatalf("each export is audited")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newFixture(t, blob.NewMemory())
	oyster, err := src.svc.Strains.Create(src.ctx, domain.Strain{
		Name: "平菇", ScientificName: "Pleurotus ostreatus", Kind: "fungus", Source: "wild",
		PreservationMethod: "freeze", PreservationTemperature: "-80C", Location: "A-1", AddedBy: "Li",
	})
	if err != nil {
		t.Fatalf("create strain: %v", err)
	}
	if _, err := src.svc.Duty.Create(src.ctx, domain.DutySchedule{
		Date: "2024-03-08", Members: []string{"Alice", "Bob"}, Tasks: []string{"sweep"}, Status: domain.DutyPending,
	}); err != nil {
		t.Fatalf("create duty: %v", err)
	}

	for _, entity := range []domain.EntityType{domain.EntityStrain, domain.EntityDuty} {
		art, err := src.xfer.Export(src.ctx, entity, spreadsheet.FormatXLSX)
		if err != nil {
			t.Fatalf("Export %s: %v", entity, err)
		}
		_, payload, err := src.xfer.Fetch(src.ctx, art.Key)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		dst := newFixture(t, blob.NewMemory())
		res, err := dst.xfer.Import(dst.ctx, entity, art.Key, payload)
		if err != nil {
			t.Fatalf("Import %s: %v", entity, err)
		}
		if res.Total != 1 || res.Created != 1 || len(res.Errors) != 0 {
			t.Fatalf("%s: unexpected result %+v", entity, res)
		}
		if entity == domain.EntityStrain {
			got := dst.svc.Strains.List()[0]
			want := oyster.Stamp(got.ID, got.AddedAt, got.UpdatedAt)
			if got.Name != want.Name || got.Location != want.Location || got.AddedBy != "Li" {
				t.Fatalf("strain changed across round trip: %+v", got)
			}
		}
		imports := dst.svc.Audit.Filter(entity, domain.VerbImport)
		if len(imports) != 1 || imports[0].Detail != "从Excel导入1条数据" {
			t.Fatalf("unexpected import audit %+v", imports)
		}
	}
}

func TestTemplateDownloadAndImport(t *testing.T) {
	f := newFixture(t, blob.NewMemory())
	art, err := f.xfer.Template(f.ctx, domain.EntityMember, spreadsheet.FormatCSV)
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if art.Key != "成员名单导入模板.csv" || art.Rows != 1 || art.Format != spreadsheet.FormatCSV {
		t.Fatalf("unexpected artifact %+v", art)
	}
	head, _ := f.svc.Audit.Head()
	if head.Verb != domain.VerbDownload || head.Detail != "下载成员名单导入模板" {
		t.Fatalf("unexpected audit head %+v", head)
	}
	_, payload, err := f.xfer.Fetch(f.ctx, art.Key)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	res, err := f.xfer.Import(f.ctx, domain.EntityMember, art.Key, payload)
	if err != nil || res.Created != 1 {
		t.Fatalf("template should import one member: %+v %v", res, err)
	}
}

func TestImportStrainStampsActor(t *testing.T) {
	f := newFixture(t, blob.NewMemory())
	payload, err := spreadsheet.CSV{}.Encode(spreadsheet.Table{
		Headers: []string{"name", "scientificName", "source", "preservationMethod", "preservationTemperature", "location"},
		Rows:    [][]string{{"n", "s", "src", "m", "t", "l"}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	res, err := f.xfer.Import(f.ctx, domain.EntityStrain, "strains.csv", payload)
	if err != nil || res.Created != 1 {
		t.Fatalf("Import: %+v %v", res, err)
	}
	got := f.svc.Strains.List()[0]
	if got.AddedBy != core.DefaultAdminName || got.Kind != spreadsheet.DefaultStrainKind {
		t.Fatalf("unexpected strain %+v", got)
	}
}

func TestImportDeniedBeforeDecoding(t *testing.T) {
	f := newFixture(t, blob.NewMemory())
	bob, err := f.svc.Actors.Register(f.ctx, "Bob")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := f.svc.Actors.SetBlocked(f.ctx, bob.ID, true); err != nil {
		t.Fatalf("SetBlocked: %v", err)
	}
	_, err = f.xfer.Import(core.WithActor(context.Background(), bob), domain.EntityMember, "m.xlsx", []byte("garbage"))
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if len(f.svc.Audit.Filter("", domain.VerbImport)) != 0 {
		t.Fatalf("denied import must not be audited")
	}
}

func TestImportRejectsUnsupportedFiles(t *testing.T) {
	f := newFixture(t, blob.NewMemory())
	if _, err := f.xfer.Import(f.ctx, domain.EntityMember, "legacy.xls", nil); !errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if _, err := f.xfer.Import(f.ctx, domain.EntityMember, "broken.xlsx", []byte("nope")); err == nil || !strings.Contains(err.Error(), "broken.xlsx") {
		t.Fatalf("expected decode error, got %v", err)
	}
	if _, err := f.xfer.Import(f.ctx, domain.EntityAudit, "a.csv", []byte("x\n1\n")); !errors.Is(err, ErrNoSheet) {
		t.Fatalf("expected ErrNoSheet, got %v", err)
	}
}

func TestExportRejectsUnknownEntityAndFormat(t *testing.T) {
	f := newFixture(t, blob.NewMemory())
	if _, err := f.xfer.Export(f.ctx, domain.EntityAudit, spreadsheet.FormatXLSX); !errors.Is(err, ErrNoSheet) {
		t.Fatalf("expected ErrNoSheet, got %v", err)
	}
	if _, err := f.xfer.Template(f.ctx, domain.EntityAudit, spreadsheet.FormatXLSX); !errors.Is(err, ErrNoSheet) {
		t.Fatalf("expected ErrNoSheet, got %v", err)
	}
	if _, err := f.xfer.Export(f.ctx, domain.EntityMember, "ods"); !errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if n := len(f.svc.Audit.Filter("", domain.VerbExport)); n != 0 {
		t.Fatalf("failed exports must not be audited, got %d", n)
	}
}

func TestExportToS3PresignsURL(t *testing.T) {
	f := newFixture(t, blob.NewFakeS3(), WithURLExpiry(time.Hour))
	f.addMembers(t, "Alice")
	art, err := f.xfer.Export(f.ctx, domain.EntityMember, spreadsheet.FormatXLSX)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(art.URL, "X-Amz-Expires=3600") {
		t.Fatalf("expected presigned url, got %q", art.URL)
	}
	if _, payload, err := f.xfer.Fetch(f.ctx, art.Key); err != nil || len(payload) == 0 {
		t.Fatalf("Fetch: %v", err)
	}
}
