package types

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PROJECT_ACCESS_PUBLIC  = "public"
	PROJECT_ACCESS_PRIVATE = "private"
)

// Input types a project definition can contain. The set is closed; unknown
// values fall back to the pass-through handler during export.
const (
	INPUT_TYPE_TEXT           = "text"
	INPUT_TYPE_INTEGER        = "integer"
	INPUT_TYPE_DECIMAL        = "decimal"
	INPUT_TYPE_DATE           = "date"
	INPUT_TYPE_TIME           = "time"
	INPUT_TYPE_DROPDOWN       = "dropdown"
	INPUT_TYPE_RADIO          = "radio"
	INPUT_TYPE_CHECKBOX       = "checkbox"
	INPUT_TYPE_SEARCH_SINGLE  = "searchsingle"
	INPUT_TYPE_SEARCH_MULTI   = "searchmultiple"
	INPUT_TYPE_TEXTAREA       = "textarea"
	INPUT_TYPE_LOCATION       = "location"
	INPUT_TYPE_PHOTO          = "photo"
	INPUT_TYPE_AUDIO          = "audio"
	INPUT_TYPE_VIDEO          = "video"
	INPUT_TYPE_BARCODE        = "barcode"
	INPUT_TYPE_BRANCH         = "branch"
	INPUT_TYPE_GROUP          = "group"
	INPUT_TYPE_README         = "readme"
	INPUT_TYPE_PHONE          = "phone"
)

type Project struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Ref      string             `bson:"ref" json:"ref"`
	Slug     string             `bson:"slug" json:"slug"`
	Name     string             `bson:"name" json:"name"`
	Access   string             `bson:"access" json:"access"`
	Forms    []Form             `bson:"forms" json:"forms"`
	Mappings []Mapping          `bson:"mappings" json:"mappings"`
}

func (p Project) IsPrivate() bool {
	return p.Access == PROJECT_ACCESS_PRIVATE
}

// FirstFormRef identifies the top of the form hierarchy; entries of that form
// carry no parent UUID column.
func (p Project) FirstFormRef() string {
	if len(p.Forms) == 0 {
		return ""
	}
	return p.Forms[0].Ref
}

func (p Project) FormByRef(formRef string) *Form {
	for i := range p.Forms {
		if p.Forms[i].Ref == formRef {
			return &p.Forms[i]
		}
	}
	return nil
}

type Form struct {
	Ref    string  `bson:"ref" json:"ref"`
	Name   string  `bson:"name" json:"name"`
	Slug   string  `bson:"slug" json:"slug"`
	Inputs []Input `bson:"inputs" json:"inputs"`
}

// InputByRef looks up a top-level input or a group child by ref.
func (f Form) InputByRef(ref string) *Input {
	for i := range f.Inputs {
		if f.Inputs[i].Ref == ref {
			return &f.Inputs[i]
		}
		for j := range f.Inputs[i].Group {
			if f.Inputs[i].Group[j].Ref == ref {
				return &f.Inputs[i].Group[j]
			}
		}
	}
	return nil
}

type Input struct {
	Ref             string           `bson:"ref" json:"ref"`
	Type            string           `bson:"type" json:"type"`
	Question        string           `bson:"question" json:"question"`
	DatetimeFormat  string           `bson:"datetime_format,omitempty" json:"datetime_format,omitempty"`
	PossibleAnswers []PossibleAnswer `bson:"possible_answers,omitempty" json:"possible_answers,omitempty"`
	Group           []Input          `bson:"group,omitempty" json:"group,omitempty"`
	Branch          []Input          `bson:"branch,omitempty" json:"branch,omitempty"`
}

type PossibleAnswer struct {
	AnswerRef string `bson:"answer_ref" json:"answer_ref"`
	Answer    string `bson:"answer" json:"answer"`
}
