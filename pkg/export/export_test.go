package export

import (
	"archive/zip"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/epicollect5/epicollect5-server-sub010/pkg/export/entries"
	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

type fakeEntryStore struct {
	entries       map[string][]projectTypes.EntryRow
	branchEntries map[string][]projectTypes.EntryRow
}

func (s *fakeEntryStore) GetEntries(ctx context.Context, projectRef string, formRef string, sortBy string, sortOrder string, page int64, limit int64) ([]projectTypes.EntryRow, error) {
	if page > 1 {
		return nil, nil
	}
	return s.entries[formRef], nil
}

func (s *fakeEntryStore) GetBranchEntries(ctx context.Context, projectRef string, formRef string, ownerInputRef string, sortBy string, sortOrder string, page int64, limit int64) ([]projectTypes.EntryRow, error) {
	if page > 1 {
		return nil, nil
	}
	return s.branchEntries[ownerInputRef], nil
}

type fakeEmails struct{}

func (fakeEmails) ResolveEmail(userID int64) string { return "n/a" }

func exportTestProject() *projectTypes.Project {
	return &projectTypes.Project{
		Ref:    "proj-ref",
		Slug:   "ec5-demo",
		Access: projectTypes.PROJECT_ACCESS_PUBLIC,
		Forms: []projectTypes.Form{
			{
				Ref:  "form-1",
				Slug: "site-survey",
				Inputs: []projectTypes.Input{
					{Ref: "input-name", Type: projectTypes.INPUT_TYPE_TEXT, Question: "Name"},
					{Ref: "input-branch", Type: projectTypes.INPUT_TYPE_BRANCH, Question: "Sightings", Branch: []projectTypes.Input{
						{Ref: "input-species", Type: projectTypes.INPUT_TYPE_TEXT, Question: "Species"},
					}},
				},
			},
			{
				Ref:  "form-2",
				Slug: "follow-up",
				Inputs: []projectTypes.Input{
					{Ref: "input-notes", Type: projectTypes.INPUT_TYPE_TEXT, Question: "Notes"},
				},
			},
		},
		Mappings: []projectTypes.Mapping{
			{
				Name:    "EC5_AUTO",
				Default: true,
				Forms: map[string]projectTypes.FormMap{
					"form-1": {
						"input-name": {MapTo: "name"},
						"input-branch": {MapTo: "sightings", Branch: map[string]projectTypes.InputMap{
							"input-species": {MapTo: "species"},
						}},
					},
					"form-2": {
						"input-notes": {MapTo: "notes"},
					},
				},
			},
		},
	}
}

func TestExportProject(t *testing.T) {
	uploadedAt := time.Date(2016, 10, 21, 15, 0, 0, 0, time.UTC)
	store := &fakeEntryStore{
		entries: map[string][]projectTypes.EntryRow{
			"form-1": {
				{
					EntryUUID:  "e-0001",
					ProjectRef: "proj-ref",
					FormRef:    "form-1",
					Title:      "Site A",
					EntryData: `{"type":"entry","entry":{"entry_uuid":"e-0001","created_at":"2016-10-21T14:49:00.000Z",` +
						`"answers":{"input-name":{"answer":"Site A"}}}}`,
					BranchCounts: `{"input-branch":1}`,
					UploadedAt:   uploadedAt,
				},
			},
			"form-2": {},
		},
		branchEntries: map[string][]projectTypes.EntryRow{
			"input-branch": {
				{
					EntryUUID:      "b-0001",
					ProjectRef:     "proj-ref",
					FormRef:        "form-1",
					OwnerInputRef:  "input-branch",
					OwnerEntryUUID: "e-0001",
					Title:          "Lynx",
					EntryData: `{"type":"branch_entry","branch_entry":{"entry_uuid":"b-0001","created_at":"2016-10-21T14:50:00.000Z",` +
						`"answers":{"input-species":{"answer":"Lynx"}}},` +
						`"relationships":{"branch":{"data":{"owner_input_ref":"input-branch","owner_entry_uuid":"e-0001"}}}}`,
					UploadedAt: uploadedAt,
				},
			},
		},
	}

	service := NewService(store, fakeEmails{}, entries.APIMediaURLBuilder{APIRoot: "https://five.epicollect.net"}, t.TempDir())

	archivePath, err := service.ExportProject(context.Background(), exportTestProject(), Params{Format: entries.FORMAT_CSV})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(archivePath) != "ec5-demo-csv.zip" {
		t.Errorf("unexpected archive name: %s", filepath.Base(archivePath))
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("could not open archive: %v", err)
	}
	defer reader.Close()

	contents := map[string]string{}
	for _, entry := range reader.File {
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("could not open archive entry: %v", err)
		}
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("could not read archive entry: %v", err)
		}
		rc.Close()
		contents[entry.Name] = string(data)
	}

	wantFiles := []string{
		"form-1__site-survey.csv",
		"form-2__follow-up.csv",
		"branch-1__sightings.csv",
	}
	if len(contents) != len(wantFiles) {
		t.Fatalf("unexpected archive contents: %v", contents)
	}
	for _, name := range wantFiles {
		if _, ok := contents[name]; !ok {
			t.Errorf("archive missing %s", name)
		}
	}

	t.Run("form file", func(t *testing.T) {
		lines := strings.Split(strings.TrimRight(strings.TrimPrefix(contents["form-1__site-survey.csv"], "\ufeff"), "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one row, got %d lines", len(lines))
		}
		if lines[0] != "ec5_uuid,created_at,uploaded_at,title,name,sightings" {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if lines[1] != "e-0001,2016-10-21T14:49:00.000Z,2016-10-21T15:00:00.000Z,Site A,Site A,1" {
			t.Errorf("unexpected row: %s", lines[1])
		}
	})

	t.Run("empty form file keeps header", func(t *testing.T) {
		lines := strings.Split(strings.TrimRight(strings.TrimPrefix(contents["form-2__follow-up.csv"], "\ufeff"), "\n"), "\n")
		if len(lines) != 1 {
			t.Fatalf("expected header only, got %d lines", len(lines))
		}
		if lines[0] != "ec5_uuid,ec5_parent_uuid,created_at,uploaded_at,title,notes" {
			t.Errorf("unexpected header: %s", lines[0])
		}
	})

	t.Run("branch file", func(t *testing.T) {
		lines := strings.Split(strings.TrimRight(strings.TrimPrefix(contents["branch-1__sightings.csv"], "\ufeff"), "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one row, got %d lines", len(lines))
		}
		if lines[0] != "ec5_branch_owner_uuid,ec5_branch_uuid,created_at,uploaded_at,title,species" {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if !strings.HasPrefix(lines[1], "e-0001,b-0001,") {
			t.Errorf("unexpected row: %s", lines[1])
		}
	})
}

func TestExportProjectBranchFileNames(t *testing.T) {
	project := exportTestProject()
	// second form carries a branch whose question slugifies identically
	project.Forms[1].Inputs = append(project.Forms[1].Inputs, projectTypes.Input{
		Ref: "input-branch-2", Type: projectTypes.INPUT_TYPE_BRANCH, Question: "Sightings",
		Branch: []projectTypes.Input{
			{Ref: "input-count", Type: projectTypes.INPUT_TYPE_INTEGER, Question: "Count"},
		},
	})
	project.Mappings[0].Forms["form-2"]["input-branch-2"] = projectTypes.InputMap{
		MapTo: "sightings",
		Branch: map[string]projectTypes.InputMap{
			"input-count": {MapTo: "count"},
		},
	}

	store := &fakeEntryStore{
		entries: map[string][]projectTypes.EntryRow{"form-1": {}, "form-2": {}},
		branchEntries: map[string][]projectTypes.EntryRow{
			"input-branch":   {},
			"input-branch-2": {},
		},
	}

	service := NewService(store, fakeEmails{}, entries.APIMediaURLBuilder{APIRoot: "https://five.epicollect.net"}, t.TempDir())

	archivePath, err := service.ExportProject(context.Background(), project, Params{Format: entries.FORMAT_CSV})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("could not open archive: %v", err)
	}
	defer reader.Close()

	names := map[string]bool{}
	for _, entry := range reader.File {
		names[entry.Name] = true
	}
	if !names["branch-1__sightings.csv"] || !names["branch-2__sightings.csv"] {
		t.Errorf("branch files not numbered across forms: %v", names)
	}
	if len(reader.File) != 4 {
		t.Errorf("expected 4 archive entries, got %d", len(reader.File))
	}
}

func TestExportProjectJSON(t *testing.T) {
	store := &fakeEntryStore{
		entries: map[string][]projectTypes.EntryRow{
			"form-1": {},
			"form-2": {},
		},
		branchEntries: map[string][]projectTypes.EntryRow{"input-branch": {}},
	}

	service := NewService(store, fakeEmails{}, entries.APIMediaURLBuilder{APIRoot: "https://five.epicollect.net"}, t.TempDir())

	archivePath, err := service.ExportProject(context.Background(), exportTestProject(), Params{Format: entries.FORMAT_JSON})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(archivePath) != "ec5-demo-json.zip" {
		t.Errorf("unexpected archive name: %s", filepath.Base(archivePath))
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("could not open archive: %v", err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if !strings.HasSuffix(entry.Name, ".json") {
			t.Errorf("unexpected archive entry: %s", entry.Name)
		}
	}
	if len(reader.File) != 3 {
		t.Errorf("expected 3 archive entries, got %d", len(reader.File))
	}
}
