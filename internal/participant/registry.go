package participant

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dusk-indust/hive/internal/completion"
)

// Registry maps roles to profiles and builds participant sets.
type Registry struct {
	mu       sync.Mutex
	profiles map[Role]Profile
}

// NewRegistry creates a Registry pre-registered with the default profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[Role]Profile)}
	for _, p := range DefaultProfiles() {
		r.profiles[p.Role] = p
	}
	return r
}

// Register adds or replaces a profile.
func (r *Registry) Register(p Profile) error {
	if p.Role == "" {
		return fmt.Errorf("register profile: empty role")
	}
	if p.Specialization == "" {
		return fmt.Errorf("register profile %q: empty specialization", p.Role)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.Role] = p
	return nil
}

// Profile returns the profile registered for role.
func (r *Registry) Profile(role Role) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[role]
	if !ok {
		return Profile{}, fmt.Errorf("no profile registered for role %q", role)
	}
	return p, nil
}

// Roles returns every registered role in sorted order.
func (r *Registry) Roles() []Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	roles := make([]Role, 0, len(r.profiles))
	for role := range r.profiles {
		roles = append(roles, role)
	}
	slices.Sort(roles)
	return roles
}

// Spawn creates a single participant by role.
func (r *Registry) Spawn(role Role, client completion.Client, logger *slog.Logger) (*Participant, error) {
	p, err := r.Profile(role)
	if err != nil {
		return nil, err
	}
	return New(p, client, logger), nil
}

// SpawnAll creates participants for roles, or for every registered role when
// roles is empty. Duplicates are dropped and the result is sorted by name.
func (r *Registry) SpawnAll(roles []Role, client completion.Client, logger *slog.Logger) ([]*Participant, error) {
	if len(roles) == 0 {
		roles = r.Roles()
	} else {
		roles = slices.Clone(roles)
		slices.Sort(roles)
		roles = slices.Compact(roles)
	}

	out := make([]*Participant, 0, len(roles))
	for _, role := range roles {
		p, err := r.Spawn(role, client, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
