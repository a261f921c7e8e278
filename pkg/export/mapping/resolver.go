package mapping

import (
	"fmt"
	"log/slog"

	projectTypes "github.com/epicollect5/epicollect5-server-sub010/pkg/project/types"
)

// InputRule is the resolved export instruction for one input. An input only
// produces columns when Show is true and MapTo is non-empty; an empty MapTo
// suppresses the column without hiding the input from iteration.
type InputRule struct {
	Show            bool
	MapTo           string
	PossibleAnswers map[string]string
}

// ResolvedMapping pairs the ordered input list of a form or branch context
// with the per-ref rules, group sub-maps already flattened into Rules.
type ResolvedMapping struct {
	Inputs []projectTypes.Input
	Rules  map[string]InputRule
}

func (rm *ResolvedMapping) RuleFor(inputRef string) InputRule {
	rule, ok := rm.Rules[inputRef]
	if !ok {
		return InputRule{}
	}
	return rule
}

// Resolve selects the mapping at mapIndex (falling back to the default map
// when the index is out of range or the selected map is empty) and flattens
// it for the given form, or for the branch owned by the input branchRef when
// branchRef is non-empty.
func Resolve(project *projectTypes.Project, formRef string, branchRef string, mapIndex int) (*ResolvedMapping, error) {
	if len(project.Mappings) == 0 {
		return nil, fmt.Errorf("project %s has no mapping", project.Slug)
	}

	selected := project.Mappings[projectTypes.DEFAULT_MAP_INDEX]
	if mapIndex >= 0 && mapIndex < len(project.Mappings) && len(project.Mappings[mapIndex].Forms) > 0 {
		selected = project.Mappings[mapIndex]
	}

	form := project.FormByRef(formRef)
	if form == nil {
		return nil, fmt.Errorf("form %s not found in project %s", formRef, project.Slug)
	}

	formMap, ok := selected.Forms[formRef]
	if !ok {
		return nil, fmt.Errorf("form %s not found in mapping %s", formRef, selected.Name)
	}

	inputs := form.Inputs
	inputMaps := map[string]projectTypes.InputMap(formMap)

	if branchRef != "" {
		owner := form.InputByRef(branchRef)
		if owner == nil || owner.Type != projectTypes.INPUT_TYPE_BRANCH {
			return nil, fmt.Errorf("branch input %s not found in form %s", branchRef, formRef)
		}
		inputs = owner.Branch

		ownerMap, ok := lookupInputMap(formMap, branchRef)
		if !ok || ownerMap.Branch == nil {
			return nil, fmt.Errorf("branch map for input %s not found in mapping %s", branchRef, selected.Name)
		}
		inputMaps = ownerMap.Branch
	}

	resolved := &ResolvedMapping{
		Inputs: inputs,
		Rules:  map[string]InputRule{},
	}

	for ref, im := range inputMaps {
		resolved.Rules[ref] = ruleFromInputMap(im)
		// flatten group sub-maps into the same namespace; group children are
		// addressed by their own ref, not a compound path
		for childRef, childMap := range im.Group {
			resolved.Rules[childRef] = ruleFromInputMap(childMap)
		}
	}

	warnOnDuplicateMapTo(resolved, selected.Name, formRef)

	return resolved, nil
}

func lookupInputMap(formMap projectTypes.FormMap, ref string) (projectTypes.InputMap, bool) {
	if im, ok := formMap[ref]; ok {
		return im, true
	}
	// branch inputs may sit inside a group
	for _, im := range formMap {
		if child, ok := im.Group[ref]; ok {
			return child, true
		}
	}
	return projectTypes.InputMap{}, false
}

func ruleFromInputMap(im projectTypes.InputMap) InputRule {
	rule := InputRule{
		Show:  !im.Hide,
		MapTo: im.MapTo,
	}
	if len(im.PossibleAnswers) > 0 {
		rule.PossibleAnswers = make(map[string]string, len(im.PossibleAnswers))
		for answerRef, pa := range im.PossibleAnswers {
			rule.PossibleAnswers[answerRef] = pa.MapTo
		}
	}
	return rule
}

// Duplicate map_to values collide in the flattened column set; the export
// still runs (last written column wins for JSON consumers) but the mapping
// should be fixed, so flag it.
func warnOnDuplicateMapTo(resolved *ResolvedMapping, mappingName string, formRef string) {
	seen := map[string]string{}
	for ref, rule := range resolved.Rules {
		if !rule.Show || rule.MapTo == "" {
			continue
		}
		if otherRef, ok := seen[rule.MapTo]; ok {
			slog.Warn("duplicate map_to in mapping",
				slog.String("mapping", mappingName),
				slog.String("formRef", formRef),
				slog.String("mapTo", rule.MapTo),
				slog.String("inputRef", ref),
				slog.String("conflictsWith", otherRef))
			continue
		}
		seen[rule.MapTo] = ref
	}
}
