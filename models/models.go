package models

// Applicant represents one screened candidate
type Applicant struct {
	NetID    string `json:"netid" gorm:"column:netid;primaryKey"` // Unique applicant ID
	Selected bool   `json:"selected" gorm:"column:selected;not null"`
	Comments string `json:"comments" gorm:"column:comments"`
	Name     string `json:"name" gorm:"column:name"`
	Email    string `json:"email" gorm:"column:email"`
	Year     string `json:"year" gorm:"column:year"`
	Major    string `json:"major" gorm:"column:major"`
	SMajor   string `json:"smajor" gorm:"column:smajor"` // Secondary major
	Teams    string `json:"teams" gorm:"column:teams"`   // Team preference list as submitted
	Minor    string `json:"minor" gorm:"column:minor"`
	SMinor   string `json:"sminor" gorm:"column:sminor"` // Secondary minor
	TaskID   int    `json:"task_id" gorm:"column:task_id;index"`

	Assignment *Assignment `json:"-" gorm:"foreignKey:TaskID;references:ID"`
}

// TableName pins the gorm table name.
func (Applicant) TableName() string { return "applicants" }

// Assignment represents one screening task given to one applicant
type Assignment struct {
	ID                 int    `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	AssignmentNo       string `json:"assignment_no" gorm:"column:assignment_no;index"`
	TeamAssigned       Team   `json:"team_assigned" gorm:"column:team_assigned"`
	DateGiven          Date   `json:"date_given" gorm:"column:date_given"`
	DateDue            Date   `json:"date_due" gorm:"column:date_due;index"`
	Submitted          bool   `json:"submitted" gorm:"column:submitted;not null"`
	AssignmentComments string `json:"assignment_comments" gorm:"column:assignment_comments"`
}

// TableName pins the gorm table name.
func (Assignment) TableName() string { return "assignments" }

// DefaultAssignmentComments is stored when an assignment carries no comments.
const DefaultAssignmentComments = "NA"

// ApplicantDetail is an applicant together with the assignment it references
type ApplicantDetail struct {
	Applicant
	Task Assignment `json:"task"`
}

// AssignmentDetail is an assignment together with every applicant referencing it
type AssignmentDetail struct {
	Assignment
	Applicants []Applicant `json:"applicants"`
}

// AssignmentUpdate carries a partial assignment update; nil fields are left alone.
type AssignmentUpdate struct {
	AssignmentNo       *string `json:"assignment_no"`
	TeamAssigned       *Team   `json:"team_assigned"`
	DateGiven          *Date   `json:"date_given"`
	DateDue            *Date   `json:"date_due"`
	Submitted          *bool   `json:"submitted"`
	AssignmentComments *string `json:"assignment_comments"`
}

// Apply copies the set fields of u onto a.
func (u AssignmentUpdate) Apply(a *Assignment) {
	if u.AssignmentNo != nil {
		a.AssignmentNo = *u.AssignmentNo
	}
	if u.TeamAssigned != nil {
		a.TeamAssigned = *u.TeamAssigned
	}
	if u.DateGiven != nil {
		a.DateGiven = *u.DateGiven
	}
	if u.DateDue != nil {
		a.DateDue = *u.DateDue
	}
	if u.Submitted != nil {
		a.Submitted = *u.Submitted
	}
	if u.AssignmentComments != nil {
		a.AssignmentComments = *u.AssignmentComments
	}
}
