package validator

import (
	"fmt"
	"sort"

	"github.com/go-openapi/inflect"

	"github.com/crewtrack/modelgen/loader"
	"github.com/crewtrack/modelgen/schema"
)

// Issue is one validation finding.
type Issue struct {
	Table   string `json:"table"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result partitions findings by severity. Errors make the associations file
// unusable for the named table; warnings are advisory.
type Result struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Valid reports whether the config can drive a generation run.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateAssociations checks a declared associations config against a live
// schema snapshot: every referenced table and column must exist, and every
// polymorphic declarer must carry its (type, id) column pair.
func ValidateAssociations(cfg *loader.Config, snap *schema.Snapshot) *Result {
	res := &Result{}
	if cfg == nil || cfg.Models == nil {
		return res
	}

	tables := make([]string, 0, len(cfg.Models))
	for table := range cfg.Models {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	collectors := map[string]bool{} // interfaces with at least one has_many as:
	declarers := map[string][]string{}

	for _, tableName := range tables {
		mc := cfg.Models[tableName]
		table, ok := snap.Table(tableName)
		if !ok {
			res.Errors = append(res.Errors, Issue{
				Table:   tableName,
				Message: "declared model has no matching table in the database",
			})
			continue
		}

		for _, a := range mc.BelongsTo {
			if a.Polymorphic {
				declarers[a.Name] = append(declarers[a.Name], tableName)
				for _, col := range []string{a.Name + "_type", a.Name + "_id"} {
					if !table.HasColumn(col) {
						res.Errors = append(res.Errors, Issue{
							Table:   tableName,
							Field:   a.Name,
							Message: fmt.Sprintf("polymorphic association requires column %q", col),
						})
					}
				}
				continue
			}

			fk := a.ForeignKey
			if fk == "" {
				fk = a.Name + "_id"
			}
			if !table.HasColumn(fk) {
				res.Errors = append(res.Errors, Issue{
					Table:   tableName,
					Field:   a.Name,
					Message: fmt.Sprintf("belongs_to foreign key column %q does not exist", fk),
				})
			}
			target := a.Table
			if target == "" {
				target = inflect.Pluralize(a.Name)
			}
			if _, ok := snap.Table(target); !ok {
				res.Errors = append(res.Errors, Issue{
					Table:   tableName,
					Field:   a.Name,
					Message: fmt.Sprintf("belongs_to target table %q does not exist", target),
				})
			}
		}

		for _, a := range append(append([]loader.Association{}, mc.HasMany...), mc.HasOne...) {
			if a.As != "" {
				collectors[a.As] = true
				continue
			}
			target := a.Table
			if target == "" && a.Through == "" {
				target = inflect.Pluralize(inflect.Singularize(a.Name))
			}
			if target != "" {
				if _, ok := snap.Table(target); !ok {
					res.Errors = append(res.Errors, Issue{
						Table:   tableName,
						Field:   a.Name,
						Message: fmt.Sprintf("association target table %q does not exist", target),
					})
				}
			}
		}
	}

	for iface := range collectors {
		if len(declarers[iface]) == 0 {
			res.Warnings = append(res.Warnings, Issue{
				Field:   iface,
				Message: fmt.Sprintf("polymorphic interface %q has no belongs_to declarers; its allowed-types list will be empty", iface),
			})
		}
	}

	for _, name := range cfg.Loggable {
		found := false
		for _, t := range snap.Tables {
			if schema.ModelName(t.Name) == name {
				found = true
				break
			}
		}
		if !found {
			res.Warnings = append(res.Warnings, Issue{
				Field:   name,
				Message: "loggable model does not match any table",
			})
		}
	}

	sort.Slice(res.Warnings, func(i, j int) bool { return res.Warnings[i].Field < res.Warnings[j].Field })
	return res
}
