package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HiddenRoleLabel is rendered in place of any role-identifying field while
// the visibility policy is off. The true data stays resident; only the
// rendered text is substituted.
const HiddenRoleLabel = "???"

// Role describes one role in the catalog.
type Role struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Team       Team   `yaml:"team"`
	SeesEvil   bool   `yaml:"sees_evil,omitempty"`   // merlin's night knowledge
	SeesMerlin bool   `yaml:"sees_merlin,omitempty"` // percival sees merlin and morgana, indistinguishably
	Assassin   bool   `yaml:"assassin,omitempty"`
}

// Catalog maps role identifiers to role definitions. Unknown identifiers
// still resolve (forward compatible) to a bare role carrying the raw id.
type Catalog struct {
	roles map[string]Role
}

// Default returns the standard six-player catalog: merlin, percival and two
// loyal servants against morgana and the assassin.
func Default() *Catalog {
	roles := []Role{
		{ID: "merlin", Name: "梅林", Team: TeamGood, SeesEvil: true},
		{ID: "percival", Name: "派西维尔", Team: TeamGood, SeesMerlin: true},
		{ID: "loyal_servant_1", Name: "忠臣亚瑟", Team: TeamGood},
		{ID: "loyal_servant_2", Name: "忠臣凯", Team: TeamGood},
		{ID: "morgana", Name: "莫甘娜", Team: TeamEvil},
		{ID: "assassin", Name: "刺客", Team: TeamEvil, Assassin: true},
	}

	c := &Catalog{roles: make(map[string]Role, len(roles))}
	for _, r := range roles {
		c.roles[r.ID] = r
	}
	return c
}

// catalogFile is the on-disk override format.
type catalogFile struct {
	Roles []Role `yaml:"roles"`
}

// LoadFile reads a role catalog override and merges it over the default set.
// Overridden ids replace the built-in definition; new ids extend it, which
// covers variant setups (other player counts, mordred, oberon).
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid role catalog: %w", err)
	}

	c := Default()
	for _, r := range file.Roles {
		if r.ID == "" {
			return nil, fmt.Errorf("role catalog entry missing id")
		}
		if !r.Team.Valid() {
			return nil, fmt.Errorf("role %q: unknown team %q", r.ID, r.Team)
		}
		if r.Name == "" {
			r.Name = r.ID
		}
		c.roles[r.ID] = r
	}
	return c, nil
}

// Lookup resolves a role id. Ids not in the catalog resolve to a bare role
// named after the id so records from variant setups still render.
func (c *Catalog) Lookup(id string) Role {
	if r, ok := c.roles[id]; ok {
		return r
	}
	return Role{ID: id, Name: id}
}

// Has reports whether id is defined in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.roles[id]
	return ok
}

// Len returns the number of defined roles.
func (c *Catalog) Len() int {
	return len(c.roles)
}
