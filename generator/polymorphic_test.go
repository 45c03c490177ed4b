package generator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewtrack/modelgen/loader"
	"github.com/crewtrack/modelgen/schema"
)

// ownerSnapshot builds the canonical completeness case: comments, photos
// and attachments all declare `belongs_to owner, polymorphic`, and projects
// collects them with `has_many items, as: owner`.
func ownerFixture() (*schema.Snapshot, *loader.Config) {
	ownable := func(name string) schema.TableSchema {
		return schema.TableSchema{
			Name: name,
			Columns: []schema.Column{
				{Name: "id", Type: "bigint"},
				{Name: "owner_type", Type: "character varying"},
				{Name: "owner_id", Type: "bigint"},
			},
		}
	}
	snap := &schema.Snapshot{
		Tables: []schema.TableSchema{
			ownable("attachments"),
			ownable("comments"),
			ownable("photos"),
			{Name: "projects", Columns: []schema.Column{{Name: "id", Type: "bigint"}}},
		},
	}
	owner := loader.ModelConfig{
		BelongsTo: []loader.Association{{Name: "owner", Polymorphic: true}},
	}
	cfg := &loader.Config{
		Models: map[string]loader.ModelConfig{
			"comments":    owner,
			"photos":      owner,
			"attachments": owner,
			"projects": {
				HasMany: []loader.Association{{Name: "items", As: "owner"}},
			},
		},
	}
	return snap, cfg
}

// Every model sharing the interface must be enumerated, deduplicated, and
// compared order-independently.
func TestPolymorphicCompleteness(t *testing.T) {
	snap, cfg := ownerFixture()
	rels := BuildRelationships(snap, cfg)
	analyzer := NewPolymorphicAnalyzer(rels)

	assocs := analyzer.AssociationsForTable("projects")
	require.Len(t, assocs, 1)

	got := assocs[0]
	assert.Equal(t, "owner", got.Name)
	assert.Equal(t, "owner_type", got.TypeField)
	assert.Equal(t, "owner_id", got.IDField)

	want := []string{"Photo", "Comment", "Attachment"}
	if diff := cmp.Diff(want, got.AllowedTypes, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("allowed types mismatch (-want +got):\n%s", diff)
	}
}

func TestPolymorphicNoAssociations(t *testing.T) {
	snap, cfg := ownerFixture()
	rels := BuildRelationships(snap, cfg)
	analyzer := NewPolymorphicAnalyzer(rels)

	assert.Empty(t, analyzer.AssociationsForTable("comments"))
}

func TestPolymorphicBelongsToProperty(t *testing.T) {
	snap, cfg := ownerFixture()
	rels := BuildRelationships(snap, cfg)
	p := NewRelationshipProcessor(rels)

	out, err := p.Process("comments")
	require.NoError(t, err)

	owner := findProperty(t, out.Properties, "owner")
	assert.Equal(t, "ProjectType", owner.Type)

	var reg *Registration
	for i := range out.Registrations {
		if out.Registrations[i].Name == "owner" {
			reg = &out.Registrations[i]
		}
	}
	require.NotNil(t, reg)
	assert.True(t, reg.Polymorphic)
	assert.Equal(t, "owner_type", reg.TypeField)
	assert.Equal(t, "owner_id", reg.IDField)
}

// The collection side renders a union element type across all declarers.
func TestPolymorphicCollectionUnion(t *testing.T) {
	snap, cfg := ownerFixture()
	rels := BuildRelationships(snap, cfg)
	p := NewRelationshipProcessor(rels)

	out, err := p.Process("projects")
	require.NoError(t, err)

	items := findProperty(t, out.Properties, "items")
	assert.Equal(t, "(AttachmentType | CommentType | PhotoType)[]", items.Type)
}

func TestPolymorphicValidateMissingColumns(t *testing.T) {
	snap, cfg := ownerFixture()
	// Remove the pair from one declarer.
	for i, tbl := range snap.Tables {
		if tbl.Name == "photos" {
			snap.Tables[i].Columns = tbl.Columns[:1]
		}
	}
	rels := BuildRelationships(snap, cfg)
	analyzer := NewPolymorphicAnalyzer(rels)

	assocs := analyzer.AssociationsForTable("projects")
	require.Len(t, assocs, 1)
	err := analyzer.Validate(snap, assocs[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "photos")
}
