package core

// Roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// Principal is the signed-in user as asserted by the identity provider.
type Principal struct {
	Subject string   `json:"sub"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles,omitempty"`
}

// Key returns the normalised email used to key per-user documents, or ErrMissingIdentity.
func (p Principal) Key() (string, error) {
	email := CleanEmail(p.Email)
	if email == "" {
		return "", ErrMissingIdentity
	}
	return email, nil
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool   { return p.HasRole(RoleAdmin) }
func (p Principal) IsManager() bool { return p.HasRole(RoleManager) }

// Owns reports whether the principal is the given admin email, or a global admin.
func (p Principal) Owns(adminEmail string) bool {
	email := CleanEmail(p.Email)
	return (email != "" && email == CleanEmail(adminEmail)) || p.IsAdmin()
}

// Directory assigns roles to principals from the configured email lists.
type Directory struct {
	admins   map[string]struct{}
	managers map[string]struct{}
}

func NewDirectory(conf IdentityConfig) *Directory {
	dir := &Directory{
		admins:   make(map[string]struct{}, len(conf.AdminEmails)),
		managers: make(map[string]struct{}, len(conf.ManagerEmails)),
	}
	for _, e := range conf.AdminEmails {
		dir.admins[CleanEmail(e)] = struct{}{}
	}
	for _, e := range conf.ManagerEmails {
		dir.managers[CleanEmail(e)] = struct{}{}
	}
	return dir
}

// Principal builds a Principal with its roles resolved.
func (d *Directory) Principal(subject, email string) Principal {
	p := Principal{Subject: subject, Email: CleanEmail(email)}
	if p.Email == "" {
		return p
	}
	if _, ok := d.admins[p.Email]; ok {
		p.Roles = append(p.Roles, RoleAdmin)
	}
	if _, ok := d.managers[p.Email]; ok {
		p.Roles = append(p.Roles, RoleManager)
	}
	return p
}
