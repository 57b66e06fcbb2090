package engine

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

// Resolution is the outcome of matching a name fragment. Exactly one of
// Person or Candidates is set. Suggested, when set, is the candidate a
// learned alias points at; it is listed first but still has to be chosen.
type Resolution struct {
	Person     *entity.Person
	Candidates []entity.Person
	Suggested  *entity.Person
}

func (r Resolution) Ambiguous() bool {
	return r.Person == nil && len(r.Candidates) > 1
}

// Resolve matches fragment against people by containment. A single exact
// match wins outright. Several partial matches are returned as candidates and
// never collapsed to one; hint only moves the learned person to the front.
func Resolve(people []entity.Person, t entity.PersonType, fragment string, hint uuid.UUID) (Resolution, *Error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return Resolution{}, newError(KindValidation, nil, "A %s name is required.", label(t))
	}

	var (
		candidates []entity.Person
		exact      []int
	)

	for _, p := range people {
		name := strings.TrimSpace(p.Name)
		if !strings.Contains(name, fragment) {
			continue
		}

		if name == fragment {
			exact = append(exact, len(candidates))
		}

		candidates = append(candidates, p)
	}

	switch {
	case len(exact) == 1:
		return Resolution{Person: &candidates[exact[0]]}, nil
	case len(candidates) == 0:
		return Resolution{}, newError(KindNotFound, entity.ErrNotFound,
			"No %s named %q is registered. Add them first.", label(t), fragment)
	case len(candidates) == 1:
		return Resolution{Person: &candidates[0]}, nil
	}

	return Resolution{Candidates: candidates, Suggested: suggest(candidates, hint)}, nil
}

// suggest moves the candidate with id to the front of candidates and returns
// it, or returns nil when id is not among them.
func suggest(candidates []entity.Person, id uuid.UUID) *entity.Person {
	if id == uuid.Nil {
		return nil
	}

	idx := slices.IndexFunc(candidates, func(p entity.Person) bool { return p.ID == id })
	if idx < 0 {
		return nil
	}

	chosen := candidates[idx]
	copy(candidates[1:idx+1], candidates[:idx])
	candidates[0] = chosen

	return &candidates[0]
}

// resolveOne is Resolve for callers that cannot ask the operator to choose.
func resolveOne(people []entity.Person, t entity.PersonType, fragment string) (*entity.Person, *Error) {
	res, verr := Resolve(people, t, fragment, uuid.Nil)
	if verr != nil {
		return nil, verr
	}

	if res.Ambiguous() {
		return nil, newError(KindValidation, ErrChoiceRequired,
			"%d people match %q; use the full name.", len(res.Candidates), strings.TrimSpace(fragment))
	}

	return res.Person, nil
}

// findCategory prefers an exact name and falls back to a unique partial match.
func findCategory(categories []entity.Category, name string) (*entity.Category, *Error) {
	name = strings.TrimSpace(name)

	var partial []int

	for i := range categories {
		c := strings.TrimSpace(categories[i].Name)
		if c == name {
			return &categories[i], nil
		}

		if strings.Contains(c, name) {
			partial = append(partial, i)
		}
	}

	switch len(partial) {
	case 0:
		return nil, newError(KindNotFound, entity.ErrNotFound, "No item named %q is in stock.", name)
	case 1:
		return &categories[partial[0]], nil
	}

	return nil, newError(KindValidation, nil, "%d items match %q; use the full name.", len(partial), name)
}

func label(t entity.PersonType) string {
	if t == "" {
		return "customer or supplier"
	}

	return string(t)
}
