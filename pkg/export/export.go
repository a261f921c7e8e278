package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/epicollect5/epicollect5-server-sub010/pkg/export/entries"
	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

const DEFAULT_CHUNK_SIZE = 1000

const (
	SORT_BY_DEFAULT    = "created_at"
	SORT_ORDER_DEFAULT = "ASC"
)

type Params struct {
	Format    string
	MapIndex  int
	SortBy    string
	SortOrder string
	ChunkSize int64
}

func (p *Params) applyDefaults() {
	if p.Format == "" {
		p.Format = entries.FORMAT_CSV
	}
	if p.SortBy == "" {
		p.SortBy = SORT_BY_DEFAULT
	}
	if p.SortOrder == "" {
		p.SortOrder = SORT_ORDER_DEFAULT
	}
	if p.ChunkSize <= 0 {
		p.ChunkSize = DEFAULT_CHUNK_SIZE
	}
}

// EntryStore is the chunked read interface of the entry storage layer.
// Pages are 1-based; a short page signals the end of the data.
type EntryStore interface {
	GetEntries(ctx context.Context, projectRef string, formRef string, sortBy string, sortOrder string, page int64, limit int64) ([]projectTypes.EntryRow, error)
	GetBranchEntries(ctx context.Context, projectRef string, formRef string, ownerInputRef string, sortBy string, sortOrder string, page int64, limit int64) ([]projectTypes.EntryRow, error)
}

// Service drives a full project export: one file per form, one per branch
// input, assembled into a single zip archive.
type Service struct {
	store       EntryStore
	emails      entries.UserEmailResolver
	mediaURLs   entries.MediaURLBuilder
	workingRoot string
}

func NewService(
	store EntryStore,
	emails entries.UserEmailResolver,
	mediaURLs entries.MediaURLBuilder,
	workingRoot string,
) *Service {
	return &Service{
		store:       store,
		emails:      emails,
		mediaURLs:   mediaURLs,
		workingRoot: workingRoot,
	}
}

// ExportProject writes all form and branch files for the project and returns
// the path of the assembled archive. Each run gets a fresh working directory;
// on failure the directory is removed and nothing partial survives.
func (s *Service) ExportProject(ctx context.Context, project *projectTypes.Project, params Params) (string, error) {
	params.applyDefaults()

	outDir := filepath.Join(s.workingRoot, uuid.NewString())
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("could not create export directory: %w", err)
	}

	archivePath, err := s.exportProjectInto(ctx, project, params, outDir)
	if err != nil {
		if rmErr := os.RemoveAll(outDir); rmErr != nil {
			slog.Error("could not clean up export directory", slog.String("path", outDir), slog.String("error", rmErr.Error()))
		}
		return "", err
	}

	return archivePath, nil
}

func (s *Service) exportProjectInto(ctx context.Context, project *projectTypes.Project, params Params, outDir string) (string, error) {
	ext := params.Format

	// branches are numbered across the whole project so two forms with
	// identically slugged branch questions cannot collide on a file name
	branchNumber := 0
	for formIndex, form := range project.Forms {
		filename := fmt.Sprintf("form-%d__%s.%s", formIndex+1, form.Slug, ext)
		if err := s.exportFile(ctx, project, form.Ref, "", params, filepath.Join(outDir, filename)); err != nil {
			return "", fmt.Errorf("form %s: %w", form.Ref, err)
		}

		for _, branchInput := range branchInputsOf(form) {
			branchNumber++
			filename := fmt.Sprintf("branch-%d__%s.%s", branchNumber, Slugify(branchInput.Question), ext)
			if err := s.exportFile(ctx, project, form.Ref, branchInput.Ref, params, filepath.Join(outDir, filename)); err != nil {
				return "", fmt.Errorf("branch %s: %w", branchInput.Ref, err)
			}
		}
	}

	archivePath := filepath.Join(outDir, fmt.Sprintf("%s-%s.zip", project.Slug, params.Format))
	if err := BuildArchive(outDir, ext, archivePath); err != nil {
		return "", err
	}

	return archivePath, nil
}

// exportFile streams one form or branch context into a single output file,
// reading the entry store one chunk at a time. The file is held under an
// exclusive advisory lock for the duration of the write.
func (s *Service) exportFile(
	ctx context.Context,
	project *projectTypes.Project,
	formRef string,
	branchRef string,
	params Params,
	path string,
) error {
	parser, err := entries.NewEntryParser(project, formRef, branchRef, params.MapIndex, params.Format, s.mediaURLs, s.emails)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("could not lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("output file already locked: %s", path)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Error("could not unlock export file", slog.String("path", path), slog.String("error", err.Error()))
		}
	}()

	exporter, err := entries.NewEntryExporter(parser, file, params.Format)
	if err != nil {
		return err
	}

	for page := int64(1); ; page++ {
		var rows []projectTypes.EntryRow
		if branchRef == "" {
			rows, err = s.store.GetEntries(ctx, project.Ref, formRef, params.SortBy, params.SortOrder, page, params.ChunkSize)
		} else {
			rows, err = s.store.GetBranchEntries(ctx, project.Ref, formRef, branchRef, params.SortBy, params.SortOrder, page, params.ChunkSize)
		}
		if err != nil {
			return fmt.Errorf("could not read entries: %w", err)
		}

		for _, row := range rows {
			if err := exporter.WriteEntry(row); err != nil {
				return fmt.Errorf("could not write entry %s: %w", row.EntryUUID, err)
			}
		}

		if int64(len(rows)) < params.ChunkSize {
			break
		}
	}

	if err := exporter.Finish(); err != nil {
		return err
	}

	if exporter.Skipped() > 0 {
		slog.Warn("export skipped malformed entries",
			slog.String("file", filepath.Base(path)),
			slog.Int("written", exporter.Written()),
			slog.Int("skipped", exporter.Skipped()))
	}

	return nil
}

// branchInputsOf lists the branch inputs of a form in definition order,
// including branches nested inside groups.
func branchInputsOf(form projectTypes.Form) []projectTypes.Input {
	branches := []projectTypes.Input{}
	for _, input := range form.Inputs {
		switch input.Type {
		case projectTypes.INPUT_TYPE_BRANCH:
			branches = append(branches, input)
		case projectTypes.INPUT_TYPE_GROUP:
			for _, child := range input.Group {
				if child.Type == projectTypes.INPUT_TYPE_BRANCH {
					branches = append(branches, child)
				}
			}
		}
	}
	return branches
}
