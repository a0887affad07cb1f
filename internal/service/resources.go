package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/school-admin-console/internal/models"
)

// Resource names as they appear in console routes.
const (
	ResourceStudents        = "students"
	ResourceTeachers        = "teachers"
	ResourceClasses         = "classes"
	ResourceSubjects        = "subjects"
	ResourceScores          = "scores"
	ResourceFeeStructures   = "fee-structures"
	ResourceFeePayments     = "fee-payments"
	ResourcePickupLocations = "pickup-locations"
)

// FieldKind tells how a draft value is normalised before validation and dispatch.
type FieldKind string

const (
	FieldText      FieldKind = "text"
	FieldNumber    FieldKind = "number"
	FieldDate      FieldKind = "date"
	FieldEnum      FieldKind = "enum"
	FieldReference FieldKind = "reference"
)

const (
	dateRule     = "datetime=2006-01-02"
	termRule     = "oneof='Term 1' 'Term 2' 'Term 3'"
	paymentRule  = "oneof='Direct Deposit' 'Mobile Money'"
	genderRule   = "oneof=Male Female"
	validateNote = "Please provide all required fields"
)

// FieldSpec declares one form field and its validator rules.
type FieldSpec struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Kind      FieldKind `json:"kind"`
	Rules     string    `json:"rules,omitempty"`
	Reference string    `json:"reference,omitempty"`
	Options   []string  `json:"options,omitempty"`
}

// Required reports whether the field must be filled in.
func (f FieldSpec) Required() bool {
	for _, rule := range strings.Split(f.Rules, ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

// FormSchema is the declarative form of one entity.
type FormSchema struct {
	Fields    []FieldSpec `json:"fields"`
	Updatable bool        `json:"updatable"`
}

// Field returns the field named name.
func (s FormSchema) Field(name string) (FieldSpec, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// Column maps a list field onto an export column.
type Column struct {
	Header string `json:"header"`
	Field  string `json:"field"`
}

// ResourceSpec describes everything the console knows about one resource.
type ResourceSpec struct {
	Name   string     `json:"name"`
	Label  string     `json:"label"`
	Plural string     `json:"plural"`
	Form   FormSchema `json:"form"`
	// SearchFields are matched by the free-text search box.
	SearchFields []string `json:"search_fields"`
	// ServerSearch hands the free-text search to the backend instead.
	ServerSearch bool     `json:"server_search"`
	FilterFields []string `json:"filter_fields"`
	Columns      []Column `json:"columns"`
}

func (s ResourceSpec) noticeName() string {
	return strings.ToLower(s.Label)
}

// SavedNotice is shown after a successful create or update.
func (s ResourceSpec) SavedNotice(mode models.FormMode) models.Notice {
	verb := "added"
	if mode == models.FormUpdate {
		verb = "updated"
	}
	return models.Notice{Level: models.NoticeSuccess, Message: fmt.Sprintf("%s %s successfully!", s.Label, verb)}
}

// SaveFailedNotice is shown when the backend rejects a create or update.
func (s ResourceSpec) SaveFailedNotice() models.Notice {
	return models.Notice{Level: models.NoticeError, Message: fmt.Sprintf("Failed to save %s!", s.noticeName())}
}

// DeletedNotice is shown after a successful delete.
func (s ResourceSpec) DeletedNotice() models.Notice {
	return models.Notice{Level: models.NoticeSuccess, Message: fmt.Sprintf("%s deleted successfully!", s.Label)}
}

// DeleteFailedNotice is shown when a delete fails.
func (s ResourceSpec) DeleteFailedNotice() models.Notice {
	return models.Notice{Level: models.NoticeError, Message: fmt.Sprintf("Failed to delete %s!", s.noticeName())}
}

// LoadFailedMessage is shown when the list cannot be fetched.
func (s ResourceSpec) LoadFailedMessage() string {
	return fmt.Sprintf("Failed to load %s!", s.Plural)
}

// ValidationNotice is shown when a draft fails local validation.
func ValidationNotice() models.Notice {
	return models.Notice{Level: models.NoticeError, Message: validateNote}
}

var (
	StudentSpec = ResourceSpec{
		Name:   ResourceStudents,
		Label:  "Student",
		Plural: "students",
		Form: FormSchema{Updatable: true, Fields: []FieldSpec{
			{Name: "name", Label: "Name", Kind: FieldText, Rules: "required"},
			{Name: "date_of_birth", Label: "Date of birth", Kind: FieldDate, Rules: "required," + dateRule},
			{Name: "date_of_admission", Label: "Date of admission", Kind: FieldDate, Rules: "required," + dateRule},
			{Name: "gender", Label: "Gender", Kind: FieldEnum, Rules: "required," + genderRule, Options: []string{"Male", "Female"}},
			{Name: "class_id", Label: "Class", Kind: FieldReference, Reference: ResourceClasses},
			{Name: "nemis_no", Label: "NEMIS number", Kind: FieldText},
			{Name: "assessment_no", Label: "Assessment number", Kind: FieldText},
			{Name: "pickup_location_id", Label: "Pickup location", Kind: FieldReference, Reference: ResourcePickupLocations},
		}},
		SearchFields: []string{"name", "id"},
		FilterFields: []string{"id", "name", "gender", "class_id", "class_name", "pickup_location_id", "pickup_location_name", "date_of_admission", "nemis_no", "assessment_no"},
		Columns: []Column{
			{Header: "ID", Field: "id"},
			{Header: "Name", Field: "name"},
			{Header: "Date of Birth", Field: "date_of_birth"},
			{Header: "Gender", Field: "gender"},
			{Header: "Class", Field: "class_name"},
			{Header: "Date of Admission", Field: "date_of_admission"},
			{Header: "NEMIS No", Field: "nemis_no"},
			{Header: "Assessment No", Field: "assessment_no"},
			{Header: "Pickup Location", Field: "pickup_location_name"},
		},
	}

	TeacherSpec = ResourceSpec{
		Name:   ResourceTeachers,
		Label:  "Teacher",
		Plural: "teachers",
		Form: FormSchema{Updatable: true, Fields: []FieldSpec{
			{Name: "first_name", Label: "First name", Kind: FieldText, Rules: "required"},
			{Name: "last_name", Label: "Last name", Kind: FieldText, Rules: "required"},
			{Name: "date_of_admission", Label: "Date of admission", Kind: FieldDate, Rules: "omitempty," + dateRule},
			{Name: "subject_id", Label: "Subject", Kind: FieldReference, Rules: "required", Reference: ResourceSubjects},
		}},
		ServerSearch: true,
		FilterFields: []string{"id", "first_name", "last_name", "subject_id", "subject_name"},
		Columns: []Column{
			{Header: "ID", Field: "id"},
			{Header: "First Name", Field: "first_name"},
			{Header: "Last Name", Field: "last_name"},
			{Header: "Date of Admission", Field: "date_of_admission"},
			{Header: "Subject", Field: "subject_name"},
		},
	}

	ClassSpec = ResourceSpec{
		Name:   ResourceClasses,
		Label:  "Class",
		Plural: "classes",
		Form: FormSchema{Updatable: true, Fields: []FieldSpec{
			{Name: "class_name", Label: "Class name", Kind: FieldText, Rules: "required"},
			{Name: "teacher_id", Label: "Class teacher", Kind: FieldReference, Reference: ResourceTeachers},
		}},
		SearchFields: []string{"class_name"},
		FilterFields: []string{"id", "class_name", "teacher_id", "teacher_name"},
		Columns: []Column{
			{Header: "ID", Field: "id"},
			{Header: "Class Name", Field: "class_name"},
			{Header: "Teacher", Field: "teacher_name"},
		},
	}

	SubjectSpec = ResourceSpec{
		Name:   ResourceSubjects,
		Label:  "Subject",
		Plural: "subjects",
		Form: FormSchema{Updatable: true, Fields: []FieldSpec{
			{Name: "subject_name", Label: "Subject name", Kind: FieldText, Rules: "required"},
		}},
		SearchFields: []string{"subject_name"},
		FilterFields: []string{"id", "subject_name"},
		Columns: []Column{
			{Header: "ID", Field: "id"},
			{Header: "Subject Name", Field: "subject_name"},
		},
	}

	ScoreSpec = ResourceSpec{
		Name:   ResourceScores,
		Label:  "Score",
		Plural: "scores",
		Form: FormSchema{Updatable: true, Fields: []FieldSpec{
			{Name: "student_id", Label: "Student", Kind: FieldReference, Rules: "required"},
			{Name: "subject_id", Label: "Subject", Kind: FieldReference, Rules: "required", Reference: ResourceSubjects},
			{Name: "score", Label: "Score", Kind: FieldNumber, Rules: "required,numeric"},
			{Name: "term", Label: "Term", Kind: FieldEnum, Rules: "required," + termRule, Options: models.Terms},
			{Name: "year", Label: "Year", Kind: FieldText, Rules: "required,numeric"},
		}},
		SearchFields: []string{"student_id", "subject_name"},
		FilterFields: []string{"id", "student_id", "subject_id", "subject_name", "term", "year", "class_id", "grade"},
		Columns: []Column{
			{Header: "Student ID", Field: "student_id"},
			{Header: "Subject", Field: "subject_name"},
			{Header: "Score", Field: "score"},
			{Header: "Grade", Field: "grade"},
			{Header: "Term", Field: "term"},
			{Header: "Year", Field: "year"},
		},
	}

	FeeStructureSpec = ResourceSpec{
		Name:   ResourceFeeStructures,
		Label:  "Fee structure",
		Plural: "fee structures",
		Form: FormSchema{Updatable: true, Fields: []FieldSpec{
			{Name: "class_id", Label: "Class", Kind: FieldReference, Rules: "required", Reference: ResourceClasses},
			{Name: "tuition_fee", Label: "Tuition fee", Kind: FieldNumber, Rules: "omitempty,numeric"},
			{Name: "books_fee", Label: "Books fee", Kind: FieldNumber, Rules: "omitempty,numeric"},
			{Name: "miscellaneous_fee", Label: "Miscellaneous fee", Kind: FieldNumber, Rules: "omitempty,numeric"},
			{Name: "boarding_fee", Label: "Boarding fee", Kind: FieldNumber, Rules: "omitempty,numeric"},
			{Name: "prize_giving_fee", Label: "Prize giving fee", Kind: FieldNumber, Rules: "omitempty,numeric"},
			{Name: "exam_fee", Label: "Exam fee", Kind: FieldNumber, Rules: "omitempty,numeric"},
		}},
		SearchFields: []string{"class_name"},
		FilterFields: []string{"id", "class_id", "class_name"},
		Columns: []Column{
			{Header: "Class", Field: "class_name"},
			{Header: "Tuition Fee", Field: "tuition_fee"},
			{Header: "Books Fee", Field: "books_fee"},
			{Header: "Miscellaneous Fee", Field: "miscellaneous_fee"},
			{Header: "Boarding Fee", Field: "boarding_fee"},
			{Header: "Prize Giving Fee", Field: "prize_giving_fee"},
			{Header: "Exam Fee", Field: "exam_fee"},
			{Header: "Total Fee", Field: "total_fee"},
		},
	}

	FeePaymentSpec = ResourceSpec{
		Name:   ResourceFeePayments,
		Label:  "Payment",
		Plural: "payments",
		Form: FormSchema{Fields: []FieldSpec{
			{Name: "student_id", Label: "Student", Kind: FieldReference, Rules: "required"},
			{Name: "amount", Label: "Amount", Kind: FieldNumber, Rules: "required,numeric"},
			{Name: "payment_date", Label: "Payment date", Kind: FieldDate, Rules: "required," + dateRule},
			{Name: "term", Label: "Term", Kind: FieldEnum, Rules: "required," + termRule, Options: models.Terms},
			{Name: "year", Label: "Year", Kind: FieldText, Rules: "required,numeric"},
			{Name: "method", Label: "Payment method", Kind: FieldEnum, Rules: "required," + paymentRule, Options: []string{models.PaymentMethodDirectDeposit, models.PaymentMethodMobileMoney}},
			{Name: "pickup_location_id", Label: "Pickup location", Kind: FieldReference, Reference: ResourcePickupLocations},
		}},
		SearchFields: []string{"student_id", "pickup_location_name"},
		FilterFields: []string{"id", "student_id", "term", "year", "method", "pickup_location_id", "pickup_location_name", "payment_date"},
		Columns: []Column{
			{Header: "Student ID", Field: "student_id"},
			{Header: "Amount", Field: "amount"},
			{Header: "Payment Date", Field: "payment_date"},
			{Header: "Term", Field: "term"},
			{Header: "Year", Field: "year"},
			{Header: "Method", Field: "method"},
			{Header: "Pickup Location", Field: "pickup_location_name"},
			{Header: "Balance", Field: "balance"},
		},
	}

	PickupLocationSpec = ResourceSpec{
		Name:   ResourcePickupLocations,
		Label:  "Pickup location",
		Plural: "pickup locations",
		Form: FormSchema{Fields: []FieldSpec{
			{Name: "location_name", Label: "Location name", Kind: FieldText, Rules: "required"},
			{Name: "transport_fee", Label: "Transport fee", Kind: FieldNumber, Rules: "required,numeric"},
		}},
		SearchFields: []string{"location_name"},
		FilterFields: []string{"id", "location_name", "transport_fee"},
		Columns: []Column{
			{Header: "ID", Field: "id"},
			{Header: "Location Name", Field: "location_name"},
			{Header: "Transport Fee", Field: "transport_fee"},
		},
	}
)

// Catalogue lists every resource the console manages, in navigation order.
func Catalogue() []ResourceSpec {
	return []ResourceSpec{
		StudentSpec,
		TeacherSpec,
		ClassSpec,
		SubjectSpec,
		ScoreSpec,
		FeeStructureSpec,
		FeePaymentSpec,
		PickupLocationSpec,
	}
}
