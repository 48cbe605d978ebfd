package models

// Stage selects which profile field groups are currently required while a
// student walks through the enrollment process.
type Stage int

const (
	// StageAll requires every field group.
	StageAll Stage = 0
	// StageInfo requires only the personal info group.
	StageInfo Stage = 1
	// StageEducation requires only the education group.
	StageEducation Stage = 2
	// StageOthers gates nothing additional yet; reserved.
	StageOthers Stage = 3
)

// FieldGroup names a set of profile fields validated together.
type FieldGroup string

const (
	FieldGroupInfo      FieldGroup = "info"
	FieldGroupEducation FieldGroup = "education"
	FieldGroupOthers    FieldGroup = "others"
)

// RequiredFieldGroups maps a stage to the groups a validator must enforce.
func RequiredFieldGroups(stage Stage) map[FieldGroup]bool {
	groups := make(map[FieldGroup]bool, 3)
	switch stage {
	case StageAll:
		groups[FieldGroupInfo] = true
		groups[FieldGroupEducation] = true
		groups[FieldGroupOthers] = true
	case StageInfo:
		groups[FieldGroupInfo] = true
	case StageEducation:
		groups[FieldGroupEducation] = true
	case StageOthers:
		groups[FieldGroupOthers] = true
	}
	return groups
}
