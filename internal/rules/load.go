package rules

import (
	"fmt"
	"strings"

	"github.com/tac-tics/spectra-lexer/internal/keys"
)

// Def is one externally supplied rule definition, as decoded from a rule
// file. Key patterns are raw notation; Load cleanses them.
type Def struct {
	ID       string     `yaml:"id" json:"id"`
	Keys     string     `yaml:"keys" json:"keys"`
	Letters  string     `yaml:"letters" json:"letters"`
	Flags    []string   `yaml:"flags,omitempty" json:"flags,omitempty"`
	Children []ChildDef `yaml:"children,omitempty" json:"children,omitempty"`
}

// ChildDef places one referenced rule within its parent's letters.
type ChildDef struct {
	Rule   string `yaml:"rule" json:"rule"`
	Start  int    `yaml:"start" json:"start"`
	Length int    `yaml:"length" json:"length"`
}

// Load builds an immutable Repository from definitions. It returns a
// *StructuralError carrying every violation found if the definitions are
// internally inconsistent: duplicate or empty ids, empty key patterns,
// illegal flags, dangling child references, child spans out of bounds, or
// child key sets that overlap or fail to cover the parent (modulo ignorable
// keys). Validation runs exactly once here; queries never re-validate.
func Load(defs []Def) (*Repository, error) {
	var errs []ValidationError

	// Pass 1: build rule skeletons and validate everything that does not
	// require cross-references.
	repo := &Repository{
		byID:    make(map[string]*Rule, len(defs)),
		ordered: make([]*Rule, 0, len(defs)),
	}
	for _, def := range defs {
		if def.ID == "" {
			errs = append(errs, ValidationError{
				Field:   "id",
				Message: "rule id is required",
				Code:    ErrEmptyID,
			})
			continue
		}
		if _, dup := repo.byID[def.ID]; dup {
			errs = append(errs, ValidationError{
				RuleID:  def.ID,
				Field:   "id",
				Message: "rule id defined more than once",
				Code:    ErrDuplicateID,
			})
			continue
		}
		// Letter patterns are matched against lowercased words, so they
		// are folded here once instead of on every query.
		r := &Rule{
			ID:      def.ID,
			Keys:    keys.Cleanse(def.Keys),
			Letters: strings.ToLower(def.Letters),
		}
		if r.Keys.IsEmpty() {
			errs = append(errs, ValidationError{
				RuleID:  def.ID,
				Field:   "keys",
				Message: fmt.Sprintf("key pattern %q contains no recognizable keys", def.Keys),
				Code:    ErrEmptyKeys,
			})
		}
		for _, f := range def.Flags {
			flag := Flag(f)
			if !legalFlags[flag] {
				errs = append(errs, ValidationError{
					RuleID:  def.ID,
					Field:   "flags",
					Message: fmt.Sprintf("flag %q is not in the legal vocabulary", f),
					Code:    ErrIllegalFlag,
				})
				continue
			}
			r.Flags = append(r.Flags, flag)
		}
		repo.byID[def.ID] = r
		repo.ordered = append(repo.ordered, r)
	}

	// Pass 2: resolve child decompositions and check span and key-coverage
	// invariants against the now-complete rule table.
	for _, def := range defs {
		parent, ok := repo.byID[def.ID]
		if !ok || len(def.Children) == 0 {
			continue
		}
		errs = append(errs, resolveChildren(repo, parent, def.Children)...)
	}

	if len(errs) > 0 {
		return nil, &StructuralError{Errors: errs}
	}
	return repo, nil
}

// resolveChildren attaches child map items to parent and validates the
// decomposition invariants: spans inside the parent's letters, child key
// sets pairwise disjoint, and their union equal to the parent's keys
// ignoring separator and star.
func resolveChildren(repo *Repository, parent *Rule, children []ChildDef) []ValidationError {
	var errs []ValidationError

	// Budget of parent keys available to children, ignorable keys excluded.
	budget := make(map[rune]int)
	for _, r := range parent.Keys {
		if !keys.IsIgnorable(r) {
			budget[r]++
		}
	}

	for _, cd := range children {
		child, ok := repo.byID[cd.Rule]
		if !ok {
			errs = append(errs, ValidationError{
				RuleID:  parent.ID,
				Field:   "children",
				Message: fmt.Sprintf("child references undefined rule %q", cd.Rule),
				Code:    ErrUnknownChild,
			})
			continue
		}
		if cd.Start < 0 || cd.Length < 0 || cd.Start+cd.Length > len(parent.Letters) {
			errs = append(errs, ValidationError{
				RuleID:  parent.ID,
				Field:   "children",
				Message: fmt.Sprintf("child %q span [%d,+%d) exceeds letters %q", cd.Rule, cd.Start, cd.Length, parent.Letters),
				Code:    ErrChildSpan,
			})
		}
		for _, r := range child.Keys {
			if keys.IsIgnorable(r) {
				continue
			}
			if budget[r] == 0 {
				errs = append(errs, ValidationError{
					RuleID:  parent.ID,
					Field:   "children",
					Message: fmt.Sprintf("child %q key %q overlaps another child or is absent from parent keys %q", cd.Rule, string(r), parent.Keys),
					Code:    ErrChildOverlap,
				})
				continue
			}
			budget[r]--
		}
		parent.Children = append(parent.Children, MapItem{Rule: child, Start: cd.Start, Length: cd.Length})
	}

	for r, n := range budget {
		if n > 0 {
			errs = append(errs, ValidationError{
				RuleID:  parent.ID,
				Field:   "children",
				Message: fmt.Sprintf("parent key %q is not covered by any child", string(r)),
				Code:    ErrChildCoverage,
			})
		}
	}
	return errs
}
