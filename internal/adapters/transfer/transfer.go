// Package transfer moves entity data between the stores and spreadsheet
// files. Exports and templates are written to a blob store; imports decode an
// uploaded file and feed the bulk importer.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dell121212/laberaer/internal/blob"
	"github.com/dell121212/laberaer/internal/core"
	"github.com/dell121212/laberaer/internal/importer"
	"github.com/dell121212/laberaer/internal/spreadsheet"
	"github.com/dell121212/laberaer/pkg/domain"
)

// DefaultURLExpiry bounds download links when none is configured.
const DefaultURLExpiry = 15 * time.Minute

// Artifact describes a spreadsheet written to the blob store.
type Artifact struct {
	Key         string             `json:"key"`
	Entity      domain.EntityType  `json:"entity"`
	Format      spreadsheet.Format `json:"format"`
	ContentType string             `json:"content_type"`
	SizeBytes   int64              `json:"size_bytes"`
	Rows        int                `json:"rows"`
	URL         string             `json:"url,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Service exports, templates and imports entity sheets.
type Service struct {
	app       *core.Service
	blobs     blob.Store
	urlExpiry time.Duration
}

// Option customizes New.
type Option func(*Service)

// WithURLExpiry sets the lifetime of download links.
func WithURLExpiry(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.urlExpiry = d
		}
	}
}

// New builds a transfer service over svc writing files to blobs.
func New(svc *core.Service, blobs blob.Store, opts ...Option) *Service {
	s := &Service{app: svc, blobs: blobs, urlExpiry: DefaultURLExpiry}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportKey names an export written on day.
func ExportKey(label string, day domain.Date, format spreadsheet.Format) string {
	return fmt.Sprintf("%s_%s.%s", label, day, format)
}

// TemplateKey names an import template.
func TemplateKey(label string, format spreadsheet.Format) string {
	return fmt.Sprintf("%s导入模板.%s", label, format)
}

// Export renders every record of entity and stores the file as
// <label>_<YYYY-MM-DD>.<ext>. A second export on the same day replaces the
// first.
func (s *Service) Export(ctx context.Context, entity domain.EntityType, format spreadsheet.Format) (Artifact, error) {
	table, err := s.exportTable(entity)
	if err != nil {
		return Artifact{}, err
	}
	label, codec, err := s.resolve(entity, format)
	if err != nil {
		return Artifact{}, err
	}
	key := ExportKey(label, domain.DateOf(s.app.Now()), codec.Format())
	art, err := s.store(ctx, entity, key, codec, table)
	if err != nil {
		return Artifact{}, err
	}
	s.app.RecordAudit(ctx, domain.VerbExport, entity, fmt.Sprintf("导出%d条数据到Excel", art.Rows))
	s.app.Logger().Info("sheet exported", "entity", string(entity), "key", key, "rows", art.Rows)
	return art, nil
}

// Template stores the import template of entity as <label>导入模板.<ext>.
func (s *Service) Template(ctx context.Context, entity domain.EntityType, format spreadsheet.Format) (Artifact, error) {
	table, err := templateTable(entity)
	if err != nil {
		return Artifact{}, err
	}
	label, codec, err := s.resolve(entity, format)
	if err != nil {
		return Artifact{}, err
	}
	art, err := s.store(ctx, entity, TemplateKey(label, codec.Format()), codec, table)
	if err != nil {
		return Artifact{}, err
	}
	s.app.RecordAudit(ctx, domain.VerbDownload, entity, fmt.Sprintf("下载%s导入模板", label))
	return art, nil
}

// Import decodes payload by the extension of filename and creates one record
// per valid row. The actor must be allowed to create entity before any row is
// read.
func (s *Service) Import(ctx context.Context, entity domain.EntityType, filename string, payload []byte) (importer.Result, error) {
	var actor *domain.Actor
	if current, ok := s.app.Identity.CurrentActor(ctx); ok {
		actor = &current
	}
	if err := domain.Authorize(actor, domain.OpCreate, entity); err != nil {
		return importer.Result{}, err
	}
	codec, err := spreadsheet.ForFilename(filename)
	if err != nil {
		return importer.Result{}, err
	}
	table, err := codec.Decode(payload)
	if err != nil {
		return importer.Result{}, fmt.Errorf("decode %s: %w", filename, err)
	}
	rows := table.Records()

	svc := s.app
	audit, logger := svc.Audit, svc.Logger()
	switch entity {
	case domain.EntityStrain:
		return importer.Import(ctx, spreadsheet.StrainSheet(), svc.Strains, rows, importer.Options[domain.Strain]{
			Audit: audit, Logger: logger, Prepare: importer.StampStrainAuthor(svc.Identity),
		}), nil
	case domain.EntityMember:
		return importer.Import(ctx, spreadsheet.MemberSheet(), svc.Members, rows, importer.Options[domain.Member]{
			Audit: audit, Logger: logger,
		}), nil
	case domain.EntityDuty:
		return importer.Import(ctx, spreadsheet.DutySheet(), svc.Duty, rows, importer.Options[domain.DutySchedule]{
			Audit: audit, Logger: logger,
		}), nil
	case domain.EntityMedium:
		return importer.Import(ctx, spreadsheet.MediumSheet(), svc.Media, rows, importer.Options[domain.Medium]{
			Audit: audit, Logger: logger,
			Prepare: importer.Chain(importer.ResolveStrainRefs(svc.Strains.List), importer.StampRecommender(svc.Identity)),
		}), nil
	case domain.EntityThesis:
		return importer.Import(ctx, spreadsheet.ThesisSheet(), svc.Theses, rows, importer.Options[domain.Thesis]{
			Audit: audit, Logger: logger,
		}), nil
	default:
		return importer.Result{}, fmt.Errorf("import %s: %w", entity, ErrNoSheet)
	}
}

// Artifacts lists stored files whose key starts with prefix.
func (s *Service) Artifacts(ctx context.Context, prefix string) ([]blob.Info, error) {
	return s.blobs.List(ctx, prefix)
}

// Fetch reads a stored file.
func (s *Service) Fetch(ctx context.Context, key string) (blob.Info, []byte, error) {
	info, rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return blob.Info{}, nil, fmt.Errorf("read %s: %w", key, err)
	}
	return info, b, nil
}

// ErrNoSheet rejects entity types without a spreadsheet form.
var ErrNoSheet = errors.New("entity has no sheet")

func (s *Service) resolve(entity domain.EntityType, format spreadsheet.Format) (string, spreadsheet.Codec, error) {
	label, err := spreadsheet.Label(entity)
	if err != nil {
		return "", nil, err
	}
	codec, err := spreadsheet.ForFormat(string(format))
	if err != nil {
		return "", nil, err
	}
	if _, ok := codec.(spreadsheet.XLSX); ok {
		codec = spreadsheet.XLSX{SheetName: label}
	}
	return label, codec, nil
}

func (s *Service) store(ctx context.Context, entity domain.EntityType, key string, codec spreadsheet.Codec, table spreadsheet.Table) (Artifact, error) {
	payload, err := codec.Encode(table)
	if err != nil {
		return Artifact{}, fmt.Errorf("encode %s: %w", key, err)
	}
	info, err := s.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: codec.ContentType(),
		Metadata: map[string]string{
			"entity": string(entity),
			"rows":   strconv.Itoa(len(table.Rows)),
		},
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("store %s: %w", key, err)
	}
	art := Artifact{
		Key:         info.Key,
		Entity:      entity,
		Format:      codec.Format(),
		ContentType: info.ContentType,
		SizeBytes:   info.Size,
		Rows:        len(table.Rows),
		CreatedAt:   s.app.Now(),
	}
	url, err := s.blobs.URL(ctx, key, s.urlExpiry)
	switch {
	case err == nil:
		art.URL = url
	case errors.Is(err, blob.ErrUnsupported):
	default:
		s.app.Logger().Warn("download url unavailable", "key", key, "error", err.Error())
	}
	return art, nil
}

func (s *Service) exportTable(entity domain.EntityType) (spreadsheet.Table, error) {
	svc := s.app
	switch entity {
	case domain.EntityStrain:
		return spreadsheet.StrainSheet().Export(svc.Strains.List()), nil
	case domain.EntityMember:
		return spreadsheet.MemberSheet().Export(svc.Members.List()), nil
	case domain.EntityDuty:
		return spreadsheet.DutySheet().Export(svc.Duty.List()), nil
	case domain.EntityMedium:
		return spreadsheet.MediumSheet().Export(svc.Media.List()), nil
	case domain.EntityThesis:
		return spreadsheet.ThesisSheet().Export(svc.Theses.List()), nil
	default:
		return spreadsheet.Table{}, fmt.Errorf("export %s: %w", entity, ErrNoSheet)
	}
}

func templateTable(entity domain.EntityType) (spreadsheet.Table, error) {
	switch entity {
	case domain.EntityStrain:
		return spreadsheet.StrainSheet().Template(), nil
	case domain.EntityMember:
		return spreadsheet.MemberSheet().Template(), nil
	case domain.EntityDuty:
		return spreadsheet.DutySheet().Template(), nil
	case domain.EntityMedium:
		return spreadsheet.MediumSheet().Template(), nil
	case domain.EntityThesis:
		return spreadsheet.ThesisSheet().Template(), nil
	default:
		return spreadsheet.Table{}, fmt.Errorf("template %s: %w", entity, ErrNoSheet)
	}
}
