package entries

import (
	"encoding/json"
	"fmt"

	"github.com/epicollect5/epicollect5-server-sub010/pkg/export/mapping"
	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

// EntryParser converts stored entry rows of one form or branch context into
// ordered output records. The column sequence it emits is exactly the header
// sequence for the same (form, branch, mapping, format, privacy) parameters.
type EntryParser struct {
	project   *projectTypes.Project
	form      *projectTypes.Form
	branchRef string
	resolved  *mapping.ResolvedMapping
	format    string
	mediaURLs MediaURLBuilder
	emails    UserEmailResolver
	columns   []string
}

func NewEntryParser(
	project *projectTypes.Project,
	formRef string,
	branchRef string,
	mapIndex int,
	format string,
	mediaURLs MediaURLBuilder,
	emails UserEmailResolver,
) (*EntryParser, error) {
	if format != FORMAT_CSV && format != FORMAT_JSON {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	form := project.FormByRef(formRef)
	if form == nil {
		return nil, fmt.Errorf("form %s not found in project %s", formRef, project.Slug)
	}

	resolved, err := mapping.Resolve(project, formRef, branchRef, mapIndex)
	if err != nil {
		return nil, err
	}

	ep := &EntryParser{
		project:   project,
		form:      form,
		branchRef: branchRef,
		resolved:  resolved,
		format:    format,
		mediaURLs: mediaURLs,
		emails:    emails,
	}
	ep.initColumnNames()

	return ep, nil
}

// HeaderRow returns the full ordered column name list.
func (ep *EntryParser) HeaderRow() []string {
	return ep.columns
}

func (ep *EntryParser) isBranchContext() bool {
	return ep.branchRef != ""
}

func (ep *EntryParser) isTopHierarchyForm() bool {
	return ep.form.Ref == ep.project.FirstFormRef()
}

func (ep *EntryParser) initColumnNames() {
	cols := []string{}

	if ep.isBranchContext() {
		cols = append(cols, COL_BRANCH_OWNER_UUID, COL_BRANCH_UUID)
	} else {
		cols = append(cols, COL_ENTRY_UUID)
		if !ep.isTopHierarchyForm() {
			cols = append(cols, COL_PARENT_UUID)
		}
	}

	cols = append(cols, COL_CREATED_AT, COL_UPLOADED_AT)
	if ep.project.IsPrivate() {
		cols = append(cols, COL_CREATED_BY)
	}
	cols = append(cols, COL_TITLE)

	ep.forEachVisibleInput(func(input projectTypes.Input, rule mapping.InputRule) {
		handler := handlerForInputType(input.Type)
		cols = append(cols, handler.ColumnNames(input, rule.MapTo, ep.format)...)
	})

	ep.columns = cols
}

// forEachVisibleInput walks the context's inputs in definition order. Group
// inputs contribute their children (already flattened into the rule
// namespace), readme inputs contribute nothing, and inputs hidden or left
// unmapped by the mapping are skipped entirely.
func (ep *EntryParser) forEachVisibleInput(fn func(input projectTypes.Input, rule mapping.InputRule)) {
	var walk func(inputs []projectTypes.Input)
	walk = func(inputs []projectTypes.Input) {
		for _, input := range inputs {
			switch input.Type {
			case projectTypes.INPUT_TYPE_GROUP:
				walk(input.Group)
				continue
			case projectTypes.INPUT_TYPE_README:
				continue
			}

			rule := ep.resolved.RuleFor(input.Ref)
			if !rule.Show || rule.MapTo == "" {
				continue
			}
			fn(input, rule)
		}
	}
	walk(ep.resolved.Inputs)
}

// ParseEntry decodes one stored row into an ordered output record. A
// malformed payload returns an error; the caller skips the row and the
// export continues.
func (ep *EntryParser) ParseEntry(row projectTypes.EntryRow) ([]ParsedColumn, error) {
	var doc projectTypes.EntryDocument
	if err := json.Unmarshal([]byte(row.EntryData), &doc); err != nil {
		return nil, fmt.Errorf("could not decode entry %s: %w", row.EntryUUID, err)
	}

	payload, err := doc.Payload()
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", row.EntryUUID, err)
	}

	pc := &ParseContext{
		ProjectSlug:  ep.project.Slug,
		IsPrivate:    ep.project.IsPrivate(),
		Format:       ep.format,
		MediaURLs:    ep.mediaURLs,
		BranchCounts: decodeBranchCounts(row.BranchCounts),
	}

	cols := []ParsedColumn{}

	if ep.isBranchContext() {
		ownerUUID := doc.OwnerEntryUUID()
		if ownerUUID == "" {
			ownerUUID = row.OwnerEntryUUID
		}
		cols = append(cols,
			ParsedColumn{Name: COL_BRANCH_OWNER_UUID, Value: ownerUUID},
			ParsedColumn{Name: COL_BRANCH_UUID, Value: payload.EntryUUID},
		)
	} else {
		cols = append(cols, ParsedColumn{Name: COL_ENTRY_UUID, Value: payload.EntryUUID})
		if !ep.isTopHierarchyForm() {
			cols = append(cols, ParsedColumn{Name: COL_PARENT_UUID, Value: doc.ParentEntryUUID()})
		}
	}

	cols = append(cols,
		ParsedColumn{Name: COL_CREATED_AT, Value: payload.CreatedAt},
		ParsedColumn{Name: COL_UPLOADED_AT, Value: uploadedAtToISO(row.UploadedAt)},
	)
	if ep.project.IsPrivate() {
		cols = append(cols, ParsedColumn{Name: COL_CREATED_BY, Value: ep.resolveCreatedBy(row.UserID)})
	}
	cols = append(cols, ParsedColumn{Name: COL_TITLE, Value: row.Title})

	ep.forEachVisibleInput(func(input projectTypes.Input, rule mapping.InputRule) {
		handler := handlerForInputType(input.Type)
		var answer interface{}
		if a, ok := payload.Answers[input.Ref]; ok {
			answer = a.Answer
		}
		cols = append(cols, handler.ParseAnswer(input, rule, answer, pc)...)
	})

	return cols, nil
}

func (ep *EntryParser) resolveCreatedBy(userID int64) string {
	if ep.emails == nil {
		return CREATED_BY_UNKNOWN
	}
	return ep.emails.ResolveEmail(userID)
}

// EntryToStrList renders a parsed record as CSV cells.
func (ep *EntryParser) EntryToStrList(cols []ParsedColumn) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = valueToStr(col.Value)
	}
	return out
}

// EntryToFlatObj renders a parsed record as a JSON object.
func (ep *EntryParser) EntryToFlatObj(cols []ParsedColumn) map[string]interface{} {
	out := make(map[string]interface{}, len(cols))
	for _, col := range cols {
		out[col.Name] = col.Value
	}
	return out
}

func decodeBranchCounts(raw string) map[string]int {
	counts := map[string]int{}
	if raw == "" {
		return counts
	}
	// a broken counts blob only loses the branch count columns, not the row
	_ = json.Unmarshal([]byte(raw), &counts)
	return counts
}
