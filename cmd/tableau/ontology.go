// Package main implements the tableau CLI: load a YAML ontology
// description, build a Reasoner from it, and run a query subcommand
// against it (classify / consistent / sat / sub).
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/dltableau/pkg/tableau"
)

// Ontology is the YAML ontology-description file format named in
// SPEC_FULL.md §3's CLI section. It stays at the named-concept /
// named-role level: the concept-expression parser front-end is an
// out-of-scope external collaborator (spec.md §1), so this format never
// needs to parse ∧/∨/∃/∀ syntax itself.
type Ontology struct {
	Concepts []ConceptDecl `yaml:"concepts"`
	Roles    []RoleDecl    `yaml:"roles"`
	Axioms   AxiomsDecl    `yaml:"axioms"`
	ABox     ABoxDecl      `yaml:"abox"`
}

type ConceptDecl struct {
	Name      string `yaml:"name"`
	Primitive bool   `yaml:"primitive"`
}

type RoleDecl struct {
	Name        string   `yaml:"name"`
	Functional  bool     `yaml:"functional"`
	Symmetric   bool     `yaml:"symmetric"`
	Transitive  bool     `yaml:"transitive"`
	Reflexive   bool     `yaml:"reflexive"`
	Irreflexive bool     `yaml:"irreflexive"`
	SubRoleOf   []string `yaml:"subRoleOf"`
	EquivalentTo []string `yaml:"equivalentTo"`
	DisjointWith []string `yaml:"disjointWith"`
	Domain      string   `yaml:"domain"`
	Range       string   `yaml:"range"`
}

type AxiomsDecl struct {
	SubClassOf        []SubClassOfDecl `yaml:"subClassOf"`
	EquivalentClasses [][]string       `yaml:"equivalentClasses"`
	Disjoint          [][]string       `yaml:"disjoint"`
}

type SubClassOfDecl struct {
	Sub   string `yaml:"sub"`
	Super string `yaml:"super"`
}

type ABoxDecl struct {
	Individuals []IndividualDecl  `yaml:"individuals"`
	Related     []RelatedDecl     `yaml:"related"`
	Different   [][]string        `yaml:"different"`
	Same        [][]string        `yaml:"same"`
}

type IndividualDecl struct {
	Name     string   `yaml:"name"`
	Concepts []string `yaml:"concepts"`
}

type RelatedDecl struct {
	From string `yaml:"from"`
	Role string `yaml:"role"`
	To   string `yaml:"to"`
}

// loadOntology reads and parses the YAML file at path.
func loadOntology(path string) (*Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tableau: reading ontology file: %w", err)
	}
	var o Ontology
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("tableau: parsing ontology YAML: %w", err)
	}
	return &o, nil
}

// build materialises an Ontology into a fresh Reasoner, posting every
// declared concept, role, TBox axiom, and ABox assertion.
func build(o *Ontology, cfg *tableau.Config) (*tableau.Reasoner, map[string]tableau.BP, error) {
	r := tableau.NewReasoner(cfg, nil)
	concepts := make(map[string]tableau.BP)

	for _, c := range o.Concepts {
		concepts[c.Name] = r.NewConcept(c.Name, c.Primitive)
	}
	// Any concept named only in an axiom/ABox block is implicitly
	// primitive, matching a told-subsumer style ontology author's
	// expectation that naming a concept in an axiom declares it.
	ensure := func(name string) tableau.BP {
		if bp, ok := concepts[name]; ok {
			return bp
		}
		bp := r.NewConcept(name, true)
		concepts[name] = bp
		return bp
	}

	roles := make(map[string]*tableau.Role)
	for _, rd := range o.Roles {
		role, err := r.NewRole(rd.Name)
		if err != nil {
			return nil, nil, err
		}
		roles[rd.Name] = role
		if rd.Functional {
			r.Functional(role)
		}
		if rd.Symmetric {
			r.Symmetric(role)
		}
		if rd.Transitive {
			r.Transitive(role)
		}
		if rd.Reflexive {
			r.Reflexive(role)
		}
		if rd.Irreflexive {
			r.Irreflexive(role)
		}
	}
	ensureRole := func(name string) (*tableau.Role, error) {
		if role, ok := roles[name]; ok {
			return role, nil
		}
		role, err := r.NewRole(name)
		if err != nil {
			return nil, err
		}
		roles[name] = role
		return role, nil
	}
	for _, rd := range o.Roles {
		sub := roles[rd.Name]
		for _, superName := range rd.SubRoleOf {
			super, err := ensureRole(superName)
			if err != nil {
				return nil, nil, err
			}
			r.SubRole(sub, super)
		}
		for _, otherName := range rd.EquivalentTo {
			other, err := ensureRole(otherName)
			if err != nil {
				return nil, nil, err
			}
			r.EquivalentRoles(sub, other)
		}
		for _, otherName := range rd.DisjointWith {
			other, err := ensureRole(otherName)
			if err != nil {
				return nil, nil, err
			}
			r.DisjointRoles(sub, other)
		}
		if rd.Domain != "" {
			r.RoleDomain(sub, ensure(rd.Domain))
		}
		if rd.Range != "" {
			r.RoleRange(sub, ensure(rd.Range))
		}
	}

	for _, sc := range o.Axioms.SubClassOf {
		r.SubClassOf(ensure(sc.Sub), ensure(sc.Super))
	}
	for _, group := range o.Axioms.EquivalentClasses {
		for i := 1; i < len(group); i++ {
			r.EquivalentClasses(ensure(group[0]), ensure(group[i]))
		}
	}
	for _, group := range o.Axioms.Disjoint {
		bps := make([]tableau.BP, len(group))
		for i, n := range group {
			bps[i] = ensure(n)
		}
		r.Disjoint(bps...)
	}

	for _, ind := range o.ABox.Individuals {
		r.NewIndividual(ind.Name)
		for _, cn := range ind.Concepts {
			r.AssertConcept(ind.Name, ensure(cn))
		}
	}
	for _, rel := range o.ABox.Related {
		role, err := ensureRole(rel.Role)
		if err != nil {
			return nil, nil, err
		}
		r.Related(rel.From, role, rel.To)
	}
	for _, group := range o.ABox.Different {
		r.DifferentIndividuals(group...)
	}
	for _, group := range o.ABox.Same {
		r.SameIndividuals(group...)
	}

	return r, concepts, nil
}
