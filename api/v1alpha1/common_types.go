package v1alpha1

type DependencyMode string

type Visibility string

const (
	DependencyModeRequired DependencyMode = "required"
	DependencyModeOptional DependencyMode = "optional"

	VisibilityPrivate  Visibility = "private"
	VisibilityReexport Visibility = "reexport"
)

type ModuleIdentity struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

func (m ModuleIdentity) String() string {
	return m.ID + "@" + m.Version
}
