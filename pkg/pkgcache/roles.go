package pkgcache

// Keywords that mark a package's framework role.
const (
	KeywordAddon  = "framework-addon"
	KeywordEngine = "framework-engine"
)

// Role classifies what part a package plays in a framework-aware project.
// The role decides whether the package's node_modules directory is read
// and which validation rules apply.
type Role int

const (
	// RolePlain is an ordinary package with no framework involvement.
	RolePlain Role = iota
	// RoleApp is a framework application package.
	RoleApp
	// RoleAddon is a framework addon package.
	RoleAddon
	// RoleEngine is a framework engine, a specialized addon.
	RoleEngine
)

var roleNames = map[Role]string{
	RolePlain:  "plain",
	RoleApp:    "app",
	RoleAddon:  "addon",
	RoleEngine: "engine",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "unknown"
}

// SupportsDependents reports whether packages of this role have their own
// node_modules directory traversed. Plain packages do not: their declared
// dependencies are still resolvable through the upward search, but their
// nested trees are never walked.
func (r Role) SupportsDependents() bool {
	return r == RoleApp || r == RoleAddon || r == RoleEngine
}

// ValidatesEntryPoint reports whether packages of this role require their
// declared entry-point file to exist on disk.
func (r Role) ValidatesEntryPoint() bool {
	return r == RoleAddon || r == RoleEngine
}

// Classify maps a descriptor to its role. It is a pure function: engine
// keyword wins over addon keyword, a framework object marks an app, and
// everything else is plain.
func Classify(d *Descriptor) Role {
	switch {
	case d.HasKeyword(KeywordEngine):
		return RoleEngine
	case d.HasKeyword(KeywordAddon):
		return RoleAddon
	case d.Framework != nil:
		return RoleApp
	default:
		return RolePlain
	}
}
