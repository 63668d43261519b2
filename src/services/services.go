// Package services holds the domain operations. Every operation takes the
// authenticated user id explicitly and authorizes it before touching state.
package services

import "time"

type Options struct {
	RoleCacheTTL   time.Duration
	StatusCacheTTL time.Duration
	Now            func() time.Time
}

type Services struct {
	Store         Store
	Resolver      *Resolver
	Workflow      *Workflow
	Users         *UserService
	Organizations *OrganizationService
	Teams         *TeamService
	Projects      *ProjectService
	Statuses      *StatusService
	Tasks         *TaskService
}

// New wires every service over one store. cache may be nil.
func New(store Store, cache Cache, opts Options) *Services {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.RoleCacheTTL == 0 {
		opts.RoleCacheTTL = 30 * time.Second
	}
	if opts.StatusCacheTTL == 0 {
		opts.StatusCacheTTL = 5 * time.Minute
	}
	resolver := NewResolver(store, cache, opts.RoleCacheTTL)
	workflow := NewWorkflow(store, cache, opts.StatusCacheTTL)
	return &Services{
		Store:         store,
		Resolver:      resolver,
		Workflow:      workflow,
		Users:         &UserService{store: store, now: now},
		Organizations: &OrganizationService{store: store, resolver: resolver, now: now},
		Teams:         &TeamService{store: store, resolver: resolver},
		Projects:      &ProjectService{store: store, resolver: resolver, workflow: workflow, now: now},
		Statuses:      &StatusService{store: store, resolver: resolver, workflow: workflow},
		Tasks:         &TaskService{store: store, resolver: resolver, workflow: workflow, now: now},
	}
}
