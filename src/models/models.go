package models

// All lists every persisted entity in migration order.
func All() []any {
	return []any{
		&User{},
		&Organization{},
		&OrganizationMember{},
		&Team{},
		&Project{},
		&ProjectMember{},
		&TaskStatus{},
		&TaskItem{},
		&TaskComment{},
		&TimeEntry{},
		&TrailLog{},
	}
}
