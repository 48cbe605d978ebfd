package models

import "time"

// Student represents an enrollee working through a review season. The
// identity profile is embedded rather than inherited.
type Student struct {
	ID string `db:"id" json:"id"`
	Person

	ParentFirstName string `db:"parent_first_name" json:"parent_first_name,omitempty"`
	ParentLastName  string `db:"parent_last_name" json:"parent_last_name,omitempty"`
	ParentContact   string `db:"parent_contact" json:"parent_contact,omitempty"`

	LastAttended string `db:"last_attended" json:"last_attended,omitempty"`
	CollegeYear  *int   `db:"college_year" json:"college_year,omitempty"`
	Recognition  string `db:"recognition" json:"recognition,omitempty"`
	HS           string `db:"hs" json:"hs,omitempty"`
	HSYear       *int   `db:"hs_year" json:"hs_year,omitempty"`
	Elem         string `db:"elem" json:"elem,omitempty"`
	ElemYear     *int   `db:"elem_year" json:"elem_year,omitempty"`

	ReferrerFirstName string `db:"referrer_first_name" json:"referrer_first_name,omitempty"`
	ReferrerLastName  string `db:"referrer_last_name" json:"referrer_last_name,omitempty"`
	ReferrerContact   string `db:"referrer_contact" json:"referrer_contact,omitempty"`

	Why      string `db:"why" json:"why,omitempty"`
	Facebook string `db:"facebook" json:"facebook,omitempty"`
	Twitter  string `db:"twitter" json:"twitter,omitempty"`
	LinkedIn string `db:"linkedin" json:"linkedin,omitempty"`

	Stage              Stage      `db:"stage" json:"stage"`
	Agreed             bool       `db:"agreed" json:"agreed"`
	FinishEnrollmentOn *time.Time `db:"finish_enrollment_on" json:"finish_enrollment_on,omitempty"`
	PackageType        string     `db:"package_type" json:"package_type,omitempty"`
	ProfilePic         string     `db:"profile_pic" json:"profile_pic,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasProfilePic reports whether a profile picture has been stored.
func (s Student) HasProfilePic() bool {
	return s.ProfilePic != ""
}

// StudentFilter encapsulates allowed search parameters for listing students.
// SeasonID narrows to students enrolled on a season; Status further narrows
// to a specific enrollment status.
type StudentFilter struct {
	Search    string
	SeasonID  string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination carries list metadata on API responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
